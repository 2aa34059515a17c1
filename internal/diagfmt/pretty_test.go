package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"netxlate/internal/diag"
	"netxlate/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("* amp\nR1 a b 1k tc1=0.1\n")
	fileID := fs.AddVirtual("/home/user/project/nets/amp.sp", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.MapParamRemoved,
		source.Span{File: fileID, Start: 16, End: 23}, "parameter TC1 dropped"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/nets/amp.sp:2:11"},
		{name: "Relative path", mode: PathModeRelative, contains: "nets/amp.sp:2:11"},
		{name: "Basename only", mode: PathModeBasename, contains: "amp.sp:2:11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "WARNING MAP3") || !strings.Contains(output, "parameter TC1 dropped") {
				t.Errorf("missing severity, code or message:\n%s", output)
			}
		})
	}
}

func TestContextCaret(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("amp.sp", []byte("* amp\nR1 a b 1k tc1=0.1\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.MapParamRemoved,
		source.Span{File: fileID, Start: 16, End: 23}, "parameter TC1 dropped").
		WithNote(source.Span{File: fileID, Start: 6, End: 8}, "on R1"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: true, ShowNotes: true, PathMode: PathModeBasename})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d:\n%s", len(lines), buf.String())
	}
	if lines[1] != "    2 | R1 a b 1k tc1=0.1" {
		t.Errorf("context line = %q", lines[1])
	}
	if want := "      | " + strings.Repeat(" ", 10) + "^~~~~~~"; lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
	if !strings.HasPrefix(lines[3], "  amp.sp:2:1: note: on R1") {
		t.Errorf("note = %q", lines[3])
	}
}

func TestSynthesizedSpanHasNoLocation(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.RdUnbalancedBrackets, source.Span{}, "1 .LIB section(s) not closed by .ENDL"))

	var buf bytes.Buffer
	Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{Context: true})
	if got := buf.String(); !strings.HasPrefix(got, "WARNING RD1008: ") {
		t.Errorf("output = %q", got)
	}
}

// TestPathModeAuto проверяет авто-режим выбора пути
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "Short path - as is", path: "amp.sp", expected: "amp.sp"},
		{name: "Long absolute path - basename", path: "/very/long/absolute/path/to/some/nested/directory/amp.sp", expected: "amp.sp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("R1 a b 1k\n"))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevInfo, diag.MapInfo, source.Span{File: fileID, Start: 3, End: 4}, "note"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, buf.String())
			}
		})
	}
}
