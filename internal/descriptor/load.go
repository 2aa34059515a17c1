package descriptor

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

//go:embed dialects/*.toml
var builtin embed.FS

// ErrUnknownDialect is returned by Load for names without a descriptor.
var ErrUnknownDialect = errors.New("unknown dialect")

type file struct {
	Language struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"language"`
	Admin      Admin        `toml:"admin"`
	Devices    []*Device    `toml:"device"`
	Directives []*Directive `toml:"directive"`
}

// Builtin lists the dialects with an embedded descriptor.
func Builtin() []string {
	entries, err := fs.ReadDir(builtin, "dialects")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(out)
	return out
}

// Load returns the embedded descriptor of dialect.
func Load(dialect string) (*Language, error) {
	data, err := builtin.ReadFile("dialects/" + strings.ToLower(dialect) + ".toml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, dialect)
	}
	return Parse(data)
}

// LoadFile reads a descriptor from disk.
func LoadFile(p string) (*Language, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return l, nil
}

// Parse decodes and validates a TOML descriptor. Unknown handlers or render
// kinds, props without a role and duplicate identities are errors.
func Parse(data []byte) (*Language, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("unknown descriptor key %q", undec[0].String())
	}
	if f.Language.Name == "" {
		return nil, errors.New("descriptor has no language name")
	}
	l := &Language{
		Name:       strings.ToLower(f.Language.Name),
		Version:    f.Language.Version,
		Admin:      f.Admin,
		devices:    make(map[string][]*Device),
		directives: make(map[string]*Directive),
	}
	if l.Admin.LineWidth <= 0 {
		l.Admin.LineWidth = 80
	}
	if l.Admin.Continuation == "" {
		l.Admin.Continuation = "+"
	}
	if l.Admin.CommentPrefix == "" {
		l.Admin.CommentPrefix = "*"
	}
	for _, d := range f.Devices {
		if err := l.addDevice(d); err != nil {
			return nil, err
		}
	}
	for _, devs := range l.devices {
		if !slices.ContainsFunc(devs, func(d *Device) bool { return d.Default }) {
			devs[0].Default = true
		}
	}
	for _, d := range f.Directives {
		if d.Name == "" {
			return nil, errors.New("directive without a name")
		}
		d.Name = strings.ToUpper(d.Name)
		if d.LocalName == "" {
			d.LocalName = d.Name
		}
		if _, dup := l.directives[d.Name]; dup {
			return nil, fmt.Errorf("directive %s declared twice", d.Name)
		}
		if err := checkProps(d.Name, d.Props); err != nil {
			return nil, err
		}
		l.directives[d.Name] = d
	}
	return l, nil
}

func (l *Language) addDevice(d *Device) error {
	if d.Name == "" {
		return errors.New("device without a name")
	}
	d.Name = strings.ToUpper(d.Name)
	if d.LocalName == "" {
		d.LocalName = d.Name
	}
	if d.Level == "" {
		d.Level = "1"
	}
	if d.LevelKey == "" {
		d.LevelKey = d.Name + "_" + d.Level
	}
	if d.Version != "" {
		v, err := semver.NewVersion(d.Version)
		if err != nil {
			return fmt.Errorf("device %s: version %q: %w", d.Key(), d.Version, err)
		}
		d.semver = v
		if d.VersionKey == "" {
			d.VersionKey = d.LevelKey + "_" + d.Version
		}
	}
	if err := checkProps(d.Key(), d.Props); err != nil {
		return err
	}
	for _, a := range d.Ambiguity {
		if a == "modelName" {
			continue
		}
		if _, ok := d.Param(a); !ok {
			return fmt.Errorf("device %s: ambiguity entry %q is not a parameter", d.Key(), a)
		}
	}
	for _, p := range d.Params {
		if p.MFlag != "" && p.MFlag != "*" && p.MFlag != "/" {
			return fmt.Errorf("device %s: parameter %s: m_flag must be * or /", d.Key(), p.Label)
		}
	}
	for _, other := range l.devices[d.Name] {
		if other.Level == d.Level && other.Version == d.Version {
			return fmt.Errorf("device %s declared twice", d.Key())
		}
	}
	if _, seen := l.devices[d.Name]; !seen {
		l.order = append(l.order, d.Name)
	}
	l.devices[d.Name] = append(l.devices[d.Name], d)
	return nil
}

func checkProps(owner string, props []Prop) error {
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		if p.Role == "" {
			return fmt.Errorf("%s: prop without a role", owner)
		}
		if p.Handler == HInvalid {
			return fmt.Errorf("%s: prop %s has no handler", owner, p.Role)
		}
		if seen[string(p.Role)] {
			return fmt.Errorf("%s: prop %s declared twice", owner, p.Role)
		}
		seen[string(p.Role)] = true
	}
	return nil
}
