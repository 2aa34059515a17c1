package stmt

import (
	"regexp"
	"strings"

	"netxlate/internal/source"
	"netxlate/internal/token"
)

// Identity is the descriptor identity a device or model was built from.
type Identity struct {
	Type       string // output device letter ("M", "YPDE")
	LocalType  string // spelling in the input dialect
	Level      string
	LevelKey   string
	Version    string
	VersionKey string
}

// Device is a circuit element instance. Its name excludes the type letter:
// "R1" is Type R, Name "1".
type Device struct {
	Base
	Ident
	Identity

	// ResolveControl marks devices whose control device names still need
	// to be looked up.
	ResolveControl bool
	// Unresolved marks devices built before their model was known.
	Unresolved bool
}

// NewDevice allocates an unregistered device.
func NewDevice(name string, id Identity, path string, span source.Span, lines []uint32) *Device {
	return &Device{Base: NewBase(path, span, lines), Ident: Ident{Ident: name}, Identity: id}
}

func (*Device) Kind() Kind { return KindDevice }

// FullName is the type letter followed by the name.
func (d *Device) FullName() string { return d.Type + d.Ident.Ident }

func (d *Device) SpiceString() string { return d.FullName() }

// Model returns the bound model, nil while unresolved.
func (d *Device) Model() *MasterModel {
	m, _ := d.Prop(token.ModelName).(*MasterModel)
	return m
}

// SetModel binds the device to m.
func (d *Device) SetModel(m *MasterModel) { d.SetProp(token.ModelName, m) }

// Subckt returns the subcircuit definition an X device instantiates, nil
// while it is a forward reference.
func (d *Device) Subckt() *Command {
	c, _ := d.Prop(token.SubcktName).(*Command)
	return c
}

// SubcktName returns the instantiated subcircuit name, resolved or not.
func (d *Device) SubcktName() string { return d.PropText(token.SubcktName) }

// Bind resolves a forward reference: a model or a subcircuit definition.
func (d *Device) Bind(name string, def Statement) bool {
	if !d.IsValidBind(name, def) {
		return false
	}
	switch v := def.(type) {
	case *MasterModel:
		if d.Model() == nil {
			d.SetModel(v)
		}
	case *Command:
		if _, lazy := d.Prop(token.SubcktName).(*Lazy); lazy && v.Type == ".SUBCKT" {
			d.SetProp(token.SubcktName, v)
		}
	}
	d.Slots.Delete(name)
	return true
}

// ModelDef is one .MODEL line.
type ModelDef struct {
	Base
	Ident
	Identity
}

func NewModelDef(name string, id Identity, path string, span source.Span, lines []uint32) *ModelDef {
	return &ModelDef{Base: NewBase(path, span, lines), Ident: Ident{Ident: name}, Identity: id}
}

func (*ModelDef) Kind() Kind { return KindModelDef }

var binSuffix = regexp.MustCompile(`^(.+)\.(\d+)$`)

// BinRoot returns the root of a binned model name ("nch" for "nch.3") and
// whether the name was binned at all.
func BinRoot(name string) (string, bool) {
	if m := binSuffix.FindStringSubmatch(name); m != nil {
		return m[1], true
	}
	return name, false
}

// MasterModel aggregates the definitions sharing one (root) name.
type MasterModel struct {
	Base
	Ident
	Models []*ModelDef
}

func NewMasterModel(name string) *MasterModel {
	return &MasterModel{Base: NewBase("", source.Span{}, nil), Ident: Ident{Ident: name}}
}

func (*MasterModel) Kind() Kind { return KindMasterModel }

// SpiceString renders the name a device line references.
func (m *MasterModel) SpiceString() string { return m.Ident.Ident }

// Add appends m when its name, or its bin root, matches. Comparison is
// case-insensitive.
func (mm *MasterModel) Add(m *ModelDef) bool {
	root, _ := BinRoot(m.Name())
	if !strings.EqualFold(root, mm.Name()) && !strings.EqualFold(m.Name(), mm.Name()) {
		return false
	}
	mm.Models = append(mm.Models, m)
	return true
}

// Identity returns the identity shared by the definitions, or the zero
// value when bins disagree or none were added.
func (mm *MasterModel) Identity() Identity {
	if len(mm.Models) == 0 {
		return Identity{}
	}
	id := mm.Models[0].Identity
	for _, m := range mm.Models[1:] {
		if m.Identity != id {
			return Identity{}
		}
	}
	return id
}

// Command is a directive.
type Command struct {
	Base
	Ident
	Type      string // canonical (".TRAN")
	LocalType string
}

func NewCommand(name, typ, local string, path string, span source.Span, lines []uint32) *Command {
	return &Command{Base: NewBase(path, span, lines), Ident: Ident{Ident: name}, Type: typ, LocalType: local}
}

func (*Command) Kind() Kind { return KindCommand }

func (c *Command) SpiceString() string { return c.Ident.Ident }

// LibEntry returns the section name of a .LIB command.
func (c *Command) LibEntry() string { return c.PropText(token.LibEntry) }

// InterfaceNodes returns the ports of a .SUBCKT command.
func (c *Command) InterfaceNodes() NodeList {
	n, _ := c.Prop(token.InterfaceNodeList).(NodeList)
	return n
}

// RefKind distinguishes administrative rows.
type RefKind uint8

const (
	RefComment RefKind = iota + 1
	RefTitle
	RefData
)

// Ref is a title, comment or data row.
type Ref struct {
	Base
	RefKind RefKind
	Text    string
}

func NewRef(kind RefKind, text, path string, span source.Span, lines []uint32) *Ref {
	return &Ref{Base: NewBase(path, span, lines), RefKind: kind, Text: text}
}

func (*Ref) Kind() Kind { return KindRef }

// Lazy stands in for a name referenced before its definition. Listeners
// are the UIDs of statements waiting for it.
type Lazy struct {
	Base
	Ident
	Listeners []UID
}

func NewLazy(name string) *Lazy {
	return &Lazy{Base: NewBase("", source.Span{}, nil), Ident: Ident{Ident: name}}
}

func (*Lazy) Kind() Kind { return KindLazy }

func (l *Lazy) SpiceString() string { return l.Ident.Ident }

// Listen adds uid once.
func (l *Lazy) Listen(uid UID) {
	for _, u := range l.Listeners {
		if u == uid {
			return
		}
	}
	l.Listeners = append(l.Listeners, uid)
}

// ENode is an electrical node.
type ENode struct {
	Base
	Ident
	// Interface marks subcircuit ports, which are not registered in a
	// scope name table.
	Interface bool
}

func NewENode(name string) *ENode {
	return &ENode{Base: NewBase("", source.Span{}, nil), Ident: Ident{Ident: name}}
}

func (*ENode) Kind() Kind { return KindENode }

func (n *ENode) SpiceString() string { return n.Ident.Ident }
