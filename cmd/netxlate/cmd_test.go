package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"netxlate/internal/project"
)

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Errorf("expected an error for an unknown mode")
	}
}

func TestCollectInputsSkipsTranslations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"amp.sp", "amp_xyce.cir", "models.inc"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("* x\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	cfg := project.Default()
	files, err := collectInputs([]string{dir}, &cfg, "xyce")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if want := []string{filepath.Join(dir, "amp.sp")}; !slices.Equal(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}

	one, err := collectInputs([]string{filepath.Join(dir, "models.inc")}, &cfg, "xyce")
	if err != nil || len(one) != 1 {
		t.Errorf("a file argument is taken as is: %v %v", one, err)
	}
}

func TestCollectInputsNeedsProject(t *testing.T) {
	cfg := project.Default()
	if _, err := collectInputs(nil, &cfg, "xyce"); err == nil {
		t.Errorf("expected an error without arguments or project root")
	}
}
