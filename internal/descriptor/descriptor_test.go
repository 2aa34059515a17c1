package descriptor

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"netxlate/internal/token"
)

func loadXyce(t *testing.T) *Language {
	t.Helper()
	l, err := Load("xyce")
	if err != nil {
		t.Fatalf("load xyce: %v", err)
	}
	return l
}

func TestBuiltinDescriptorsLoad(t *testing.T) {
	names := Builtin()
	for _, want := range []string{"hspice", "pspice", "xyce"} {
		if !slices.Contains(names, want) {
			t.Fatalf("builtin dialects %v miss %s", names, want)
		}
	}
	for _, n := range names {
		if _, err := Load(n); err != nil {
			t.Errorf("load %s: %v", n, err)
		}
	}
	if _, err := Load("spectre"); !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("unknown dialect error = %v", err)
	}
}

func TestDeviceLookup(t *testing.T) {
	l := loadXyce(t)
	tests := []struct {
		name, level, version string
		wantLevel, wantVer   string
	}{
		{"R", "", "", "1", ""},
		{"m", "1", "", "1", ""},
		{"M", "54", "", "14", "4.8.1"},
		{"M", "14", "4.7", "14", "4.7.0"},
		{"M", "14", "4.8.2", "14", "4.8.1"},
		{"M", "49", "3.2.2", "9", "3.2.2"},
		{"Q", "10", "", "10", ""},
	}
	for _, tt := range tests {
		d := l.Device(tt.name, tt.level, tt.version)
		if d == nil {
			t.Errorf("Device(%s, %s, %s) = nil", tt.name, tt.level, tt.version)
			continue
		}
		if d.Level != tt.wantLevel || d.Version != tt.wantVer {
			t.Errorf("Device(%s, %s, %s) = %s", tt.name, tt.level, tt.version, d.Key())
		}
	}
	if d := l.Device("M", "14", "4.5"); d != nil {
		t.Errorf("version below every entry matched %s", d.Key())
	}
	if d := l.Device("M", "77", ""); d != nil {
		t.Errorf("unknown level matched %s", d.Key())
	}
}

func TestDefaultDevice(t *testing.T) {
	l := loadXyce(t)
	if d := l.DefaultDevice("r"); d == nil || d.Name != "R" {
		t.Fatalf("DefaultDevice(r) = %v", d)
	}
	d := l.DefaultDevice("M")
	if d == nil || d.Level != "1" {
		t.Fatalf("DefaultDevice(M) = %v", d)
	}
}

func TestModelDevice(t *testing.T) {
	l := loadXyce(t)
	d := l.ModelDevice("nmos", "54", "")
	if d == nil || d.LevelKey != "M_14" {
		t.Fatalf("ModelDevice(nmos, 54) = %v", d)
	}
	if _, ok := d.ModelParam("VTH0"); !ok {
		t.Errorf("passthrough model rejected VTH0")
	}
	if _, ok := d.ModelParam("acm"); ok {
		t.Errorf("dropped ACM accepted")
	}
	if p, ok := d.Param("delvt0"); !ok || p.Label != "DELVTO" {
		t.Errorf("local alias = %v %v", p, ok)
	}
}

func TestPropsKeepOrderAndHandlers(t *testing.T) {
	l := loadXyce(t)
	v := l.Device("V", "", "")
	var roles []token.Kind
	for _, p := range v.Props {
		roles = append(roles, p.Role)
	}
	want := []token.Kind{token.PosNode, token.NegNode, token.DCValue, token.ACValue, token.Transient}
	if !slices.Equal(roles, want) {
		t.Fatalf("V props = %v", roles)
	}
	x := l.Device("X", "", "")
	p, ok := x.Prop(token.Params)
	if !ok || p.Handler != HSubcircuitParams || p.RenderKind() != RSubcircuitParams || p.Label != "PARAMS:" {
		t.Errorf("X params prop = %+v", p)
	}
	if d := l.Device("D", "", ""); !d.HasMFlag() {
		t.Errorf("diode has no multiplier parameter")
	}
}

func TestDirectives(t *testing.T) {
	l := loadXyce(t)
	if l.Directive(".tran") == nil || l.Directive(".TEMP") != nil {
		t.Fatalf("directive table mismatch")
	}
	opt := l.Directive(".OPTIONS")
	if !opt.PackageParam("nonlin", "maxstep") || opt.PackageParam("NONLIN", "METHOD") {
		t.Errorf("package restriction not applied")
	}
	if !opt.PackageParam("SENS", "ANYTHING") {
		t.Errorf("unlisted package restricted")
	}
	if !l.Admin.IsUnsupported(".protect") || !l.Admin.IsReserved("temp") {
		t.Errorf("admin lists not loaded")
	}
	if !l.Admin.OutputFunction("vdb") {
		t.Errorf("output function VDB missing")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"handler", "[language]\nname=\"x\"\n[[device]]\nname=\"R\"\nprops=[{role=\"POSNODE\", handler=\"nodes\"}]\n", "unknown prop handler"},
		{"render", "[language]\nname=\"x\"\n[[device]]\nname=\"R\"\nprops=[{role=\"POSNODE\", handler=\"node\", render=\"fancy\"}]\n", "unknown render kind"},
		{"duplicate", "[language]\nname=\"x\"\n[[device]]\nname=\"R\"\n[[device]]\nname=\"r\"\n", "declared twice"},
		{"ambiguity", "[language]\nname=\"x\"\n[[device]]\nname=\"R\"\nambiguity=[\"modelName\",\"R\"]\n", "not a parameter"},
		{"key", "[language]\nname=\"x\"\ncolour=1\n", "unknown descriptor key"},
		{"name", "[admin]\ncase_insensitive=true\n", "no language name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	l, err := Parse([]byte("[language]\nname=\"Tiny\"\n[[device]]\nname=\"r\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "tiny" || l.Admin.LineWidth != 80 || l.Admin.Continuation != "+" {
		t.Errorf("defaults not applied: %+v", l.Admin)
	}
	d := l.Device("R", "", "")
	if d == nil || !d.Default || d.LevelKey != "R_1" {
		t.Errorf("device defaults = %+v", d)
	}
}
