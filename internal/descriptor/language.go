// Package descriptor loads the declarative description of a netlist dialect:
// which devices and directives it knows, which props each of them carries and
// how the props are built and written. The mapping factory and the writer are
// driven entirely by these tables.
package descriptor

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"netxlate/internal/token"
)

// Prop is one typed slot of a device or directive.
type Prop struct {
	Role    token.Kind `toml:"role"`
	Handler Handler    `toml:"handler"`
	Render  Render     `toml:"render"`
	// Label is written in front of the value ("PARAMS:", "ON").
	Label string `toml:"label"`
}

// RenderKind returns the explicit render kind or the handler default.
func (p Prop) RenderKind() Render {
	if p.Render != RDefault {
		return p.Render
	}
	return p.Handler.DefaultRender()
}

// Param is a free-form NAME=value parameter the dialect accepts.
type Param struct {
	Label string `toml:"label"`
	// Local lists input spellings renamed to Label.
	Local []string `toml:"local"`
	// MFlag is "*" or "/" when the parameter absorbs a multiplier M the
	// device does not support.
	MFlag string `toml:"m_flag"`
}

// Model describes the .MODEL line of a device family.
type Model struct {
	Types  []string `toml:"types"`
	Params []Param  `toml:"params"`
	// Passthrough accepts parameters that are not listed.
	Passthrough bool `toml:"passthrough"`
	// Drop lists parameters removed with a warning.
	Drop []string `toml:"drop"`
}

// Device is one (type, level, version) entry.
type Device struct {
	Name       string   `toml:"name"`
	LocalName  string   `toml:"local_name"`
	Level      string   `toml:"level"`
	LevelKey   string   `toml:"level_key"`
	Version    string   `toml:"version"`
	VersionKey string   `toml:"version_key"`
	LocalLevel []string `toml:"local_levels"`
	Default    bool     `toml:"default"`
	// Ambiguity lists, in order, what a bare positional name may be:
	// "modelName" or the label of a parameter.
	Ambiguity   []string `toml:"ambiguity"`
	Props       []Prop   `toml:"props"`
	Params      []Param  `toml:"params"`
	Passthrough bool     `toml:"passthrough"`
	Model       *Model   `toml:"model"`

	semver *semver.Version
}

// Key returns the identity string used in diagnostics: "M level 14 4.8".
func (d *Device) Key() string {
	out := d.Name + " level " + d.Level
	if d.Version != "" {
		out += " " + d.Version
	}
	return out
}

// Prop returns the prop for role, if declared.
func (d *Device) Prop(role token.Kind) (Prop, bool) { return findProp(d.Props, role) }

// Param resolves an input parameter name to the declared parameter.
func (d *Device) Param(name string) (Param, bool) { return findParam(d.Params, name) }

// HasMFlag reports whether any parameter absorbs the multiplier.
func (d *Device) HasMFlag() bool {
	return slices.ContainsFunc(d.Params, func(p Param) bool { return p.MFlag != "" })
}

// ModelParam resolves a .MODEL parameter name. Passthrough models accept
// any name that is not dropped.
func (d *Device) ModelParam(name string) (Param, bool) {
	if d.Model == nil {
		return Param{}, false
	}
	if p, ok := findParam(d.Model.Params, name); ok {
		return p, true
	}
	if d.Model.Passthrough && !d.ModelDrops(name) {
		return Param{Label: strings.ToUpper(name)}, true
	}
	return Param{}, false
}

// ModelDrops reports whether name is removed from .MODEL lines.
func (d *Device) ModelDrops(name string) bool {
	return d.Model != nil && slices.ContainsFunc(d.Model.Drop, func(s string) bool {
		return strings.EqualFold(s, name)
	})
}

func (d *Device) matchesLevel(level string) bool {
	if level == d.Level {
		return true
	}
	return slices.Contains(d.LocalLevel, level)
}

// Directive is one dot command.
type Directive struct {
	Name        string  `toml:"name"`
	LocalName   string  `toml:"local_name"`
	Props       []Prop  `toml:"props"`
	Params      []Param `toml:"params"`
	Passthrough bool    `toml:"passthrough"`
	// ParamsHeader is written before the params ("PARAMS:").
	ParamsHeader string `toml:"params_header"`
	// WriteName puts the command name right after the directive.
	WriteName bool `toml:"write_name"`
	// Packages restricts .OPTIONS parameters per package.
	Packages map[string][]string `toml:"packages"`
}

func (d *Directive) Prop(role token.Kind) (Prop, bool) { return findProp(d.Props, role) }

// Param resolves an input parameter name. Passthrough directives accept
// anything.
func (d *Directive) Param(name string) (Param, bool) {
	if p, ok := findParam(d.Params, name); ok {
		return p, true
	}
	if d.Passthrough {
		return Param{Label: name}, true
	}
	return Param{}, false
}

// PackageParam reports whether an .OPTIONS package accepts name. Packages
// without an entry accept everything.
func (d *Directive) PackageParam(pkg, name string) bool {
	allowed, ok := d.Packages[strings.ToUpper(pkg)]
	if !ok {
		return true
	}
	return slices.ContainsFunc(allowed, func(s string) bool { return strings.EqualFold(s, name) })
}

// Admin holds dialect-wide settings.
type Admin struct {
	CaseInsensitive   bool     `toml:"case_insensitive"`
	StoreDevicePrefix bool     `toml:"store_device_prefix"`
	LineWidth         int      `toml:"line_width"`
	Continuation      string   `toml:"continuation"`
	CommentPrefix     string   `toml:"comment_prefix"`
	Ground            []string `toml:"ground"`
	// Reserved are names a .PARAM may not define; they are renamed with
	// ReservedPrefix.
	Reserved       []string `toml:"reserved"`
	ReservedPrefix string   `toml:"reserved_prefix"`
	// OutputFunctions are the accessors allowed in output variables.
	OutputFunctions []string `toml:"output_functions"`
	Unsupported     []string `toml:"unsupported_directives"`
	Extension       string   `toml:"extension"`
}

// IsGround reports whether node is a ground synonym other than "0".
func (a *Admin) IsGround(node string) bool {
	return slices.ContainsFunc(a.Ground, func(g string) bool { return strings.EqualFold(g, node) })
}

// IsReserved reports whether name may not be used as a parameter name.
func (a *Admin) IsReserved(name string) bool {
	return slices.ContainsFunc(a.Reserved, func(r string) bool { return strings.EqualFold(r, name) })
}

// IsUnsupported reports whether a directive is known but not translated.
func (a *Admin) IsUnsupported(name string) bool {
	return slices.ContainsFunc(a.Unsupported, func(r string) bool { return strings.EqualFold(r, name) })
}

// OutputFunction reports whether fn may wrap an output variable.
func (a *Admin) OutputFunction(fn string) bool {
	return slices.ContainsFunc(a.OutputFunctions, func(r string) bool { return strings.EqualFold(r, fn) })
}

// Language is a loaded dialect descriptor.
type Language struct {
	Name    string
	Version string
	Admin   Admin

	devices    map[string][]*Device
	directives map[string]*Directive
	order      []string
}

// Device returns the entry for (name, level, version). An empty level
// means "1". With a version, the highest declared version that does not
// exceed it wins; without one, the default entry of that level does.
func (l *Language) Device(name, level, version string) *Device {
	if level == "" {
		level = "1"
	}
	var match []*Device
	for _, d := range l.devices[strings.ToUpper(name)] {
		if d.matchesLevel(level) {
			match = append(match, d)
		}
	}
	if len(match) == 0 {
		return nil
	}
	if version == "" {
		for _, d := range match {
			if d.Default {
				return d
			}
		}
		return match[0]
	}
	want, err := semver.NewVersion(version)
	if err != nil {
		for _, d := range match {
			if d.Version == version {
				return d
			}
		}
		return nil
	}
	var best *Device
	for _, d := range match {
		if d.semver == nil || d.semver.GreaterThan(want) {
			continue
		}
		if best == nil || d.semver.GreaterThan(best.semver) {
			best = d
		}
	}
	return best
}

// DefaultDevice returns the entry to use for a local type name when no
// level or version selects one: the only candidate, or the default one.
func (l *Language) DefaultDevice(localName string) *Device {
	var cands []*Device
	for _, name := range l.order {
		for _, d := range l.devices[name] {
			if strings.EqualFold(d.LocalName, localName) {
				cands = append(cands, d)
			}
		}
	}
	if len(cands) == 1 {
		return cands[0]
	}
	for _, d := range cands {
		if d.Default {
			return d
		}
	}
	return nil
}

// Devices returns every entry declared for name.
func (l *Language) Devices(name string) []*Device {
	return slices.Clone(l.devices[strings.ToUpper(name)])
}

// DeviceNames lists device types in declaration order.
func (l *Language) DeviceNames() []string { return slices.Clone(l.order) }

// Directive returns the directive called name, nil when the dialect does
// not have it.
func (l *Language) Directive(name string) *Directive {
	return l.directives[strings.ToUpper(name)]
}

// DirectiveNames lists the directives in sorted order.
func (l *Language) DirectiveNames() []string {
	out := make([]string, 0, len(l.directives))
	for n := range l.directives {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// ModelDevice returns the device entry a .MODEL of modelType belongs to.
func (l *Language) ModelDevice(modelType, level, version string) *Device {
	for _, name := range l.order {
		for _, d := range l.devices[name] {
			if d.Model == nil {
				continue
			}
			if slices.ContainsFunc(d.Model.Types, func(t string) bool { return strings.EqualFold(t, modelType) }) {
				return l.Device(d.Name, level, version)
			}
		}
	}
	return nil
}

func findProp(props []Prop, role token.Kind) (Prop, bool) {
	for _, p := range props {
		if p.Role == role {
			return p, true
		}
	}
	return Prop{}, false
}

func findParam(params []Param, name string) (Param, bool) {
	for _, p := range params {
		if strings.EqualFold(p.Label, name) {
			return p, true
		}
		for _, l := range p.Local {
			if strings.EqualFold(l, name) {
				return p, true
			}
		}
	}
	return Param{}, false
}
