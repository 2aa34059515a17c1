package mapping

import (
	"fmt"
	"strings"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/netlist"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// buildDevice maps a device line. Unless final, a line naming an unknown
// model is deferred; Resolve finishes it once every file was read.
func (f *Factory) buildDevice(l *netlist.Line, final bool) (Result, error) {
	var d *descriptor.Device
	if name, ok := l.Known.Get(token.ModelName); ok && name != "" && l.Type != "X" {
		m := f.lookupModel(l, name)
		if m == nil {
			if sub := f.visibleSubckt(name); sub != nil {
				return f.buildDevice(f.asInstance(l, name), final)
			}
			if !final {
				l.Set(netlist.FlagUnresolvedDevice)
				return Result{Outcome: Deferred}, nil
			}
		} else {
			d = f.deviceForModel(l, m)
		}
	}
	if d == nil {
		d = f.out.Device(l.Type, "", "")
		if d == nil {
			d = f.out.DefaultDevice(l.Type)
		}
	}
	if d == nil {
		diag.ReportWarning(f.rep, diag.MapDeviceTypeNotFound, l.Span,
			fmt.Sprintf("Device type %s is not supported by %s", l.LocalType, f.out.Name)).
			WithNote(l.Span, "line kept as a comment").Emit()
		return f.comment(l)
	}

	dev := stmt.NewDevice(l.Name, stmt.Identity{
		Type:       d.Name,
		LocalType:  l.LocalType,
		Level:      d.Level,
		LevelKey:   d.LevelKey,
		Version:    d.Version,
		VersionKey: d.VersionKey,
	}, l.Path, l.Span, l.Lines)
	b := f.newBuilder(l, dev)
	b.accept = func(k string) (descriptor.Param, bool) {
		if p, ok := d.Param(k); ok {
			return p, true
		}
		if d.Passthrough {
			return descriptor.Param{Label: k}, true
		}
		return descriptor.Param{}, false
	}

	b.props(d.Props)
	b.ambiguous(d)
	b.multiplier(d)
	b.params(d.Key())

	if err := f.sess.Add(dev); err != nil {
		return Result{}, err
	}
	return Result{Stmt: dev, Outcome: Built}, nil
}

// deviceForModel picks the entry matching the identity of m, falling back
// to the default entry of the line type.
func (f *Factory) deviceForModel(l *netlist.Line, m *stmt.MasterModel) *descriptor.Device {
	id := m.Identity()
	if id.Type == "" && len(m.Models) > 0 {
		id = m.Models[0].Identity
	}
	if id.Type != "" && strings.EqualFold(id.Type, l.Type) {
		if d := f.out.Device(id.Type, id.Level, id.Version); d != nil {
			return d
		}
	}
	return nil
}

func (f *Factory) visibleSubckt(name string) *stmt.Command {
	c, _ := f.sess.GetObject(f.sess.Current(), scope.TagSubckt, name).(*stmt.Command)
	return c
}

// asInstance rewrites a device line whose model turned out to be a
// subcircuit into an X line named after the original device.
func (f *Factory) asInstance(l *netlist.Line, subckt string) *netlist.Line {
	x := l.Derive("X")
	x.LocalType = "X"
	x.Name = l.LocalType + l.Name
	x.Raw, x.InlineComment = l.Raw, l.InlineComment
	x.Append(token.NodeList, l.UnknownNodes...)
	x.Known.Set(token.SubcktName, subckt)
	for _, k := range l.Params.Keys() {
		x.Params.Set(k, l.Params.Value(k))
	}
	diag.ReportInfo(f.rep, diag.MapInfo, l.Span,
		fmt.Sprintf("%s%s instantiates subcircuit %s and is written as X%s%s", l.LocalType, l.Name, subckt, l.LocalType, l.Name)).Emit()
	return x
}

// ambiguous settles bare names that may be a model or a value. A known
// model wins; otherwise the device waits for a placeholder whose
// candidates come from the ambiguity list of the entry.
func (b *builder) ambiguous(d *descriptor.Device) {
	for _, name := range b.line.Lazy.Keys() {
		if m := b.f.lookupModel(b.line, name); m != nil && b.dev.Model() == nil {
			b.dev.SetModel(m)
			continue
		}
		var cands []stmt.Candidate
		for _, a := range d.Ambiguity {
			if a == "modelName" {
				cands = append(cands, stmt.Candidate{Kind: stmt.KindMasterModel})
				continue
			}
			p, _ := d.Param(a)
			cands = append(cands, stmt.Candidate{Param: p.Label})
		}
		if len(cands) == 0 {
			// no ambiguity declared: the name is a value
			b.base.SetProp(token.Value, stmt.Text(b.f.rename(name)))
			continue
		}
		b.f.sess.AddLazy(name, b.dev, cands)
	}
}

// multiplier folds the parallel multiplier M into the parameters flagged
// for it when the entry has no M of its own.
func (b *builder) multiplier(d *descriptor.Device) {
	if b.line.MParam == "" || !d.HasMFlag() {
		return
	}
	if _, ok := d.Param("M"); ok {
		return
	}
	m := unbrace(b.f.rename(b.line.MParam))
	for _, p := range d.Params {
		if p.MFlag == "" {
			continue
		}
		old, key := "", ""
		for _, k := range b.line.Params.Keys() {
			if q, ok := d.Param(k); ok && q.Label == p.Label {
				old, key = b.f.rename(b.line.Params.Value(k)), k
				break
			}
		}
		// a positional area counts as the AREA parameter
		if key == "" && p.Label == "AREA" {
			if v := b.base.PropText(token.AreaValue); v != "" {
				old = v
				b.base.Props.Delete(token.AreaValue)
			}
		}
		if old == "" {
			if p.MFlag == "/" {
				continue
			}
			old = "1"
		}
		b.base.SetParam(p.Label, "{"+unbrace(old)+p.MFlag+m+"}")
		if key != "" {
			b.consumed[key] = true
		}
	}
	b.consumed["M"] = true
	diag.ReportInfo(b.f.rep, diag.MapParamRemoved, b.line.Span,
		fmt.Sprintf("%s has no multiplier M in %s, folded into its parameters", d.Key(), b.f.out.Name)).Emit()
}

// Resolve finishes a deferred device line in the scope it was read in,
// which the caller restores first. The name the line references is tried
// as a visible subcircuit, a model, a model inside a library section and a
// subcircuit of a child or sibling scope, in that order. When nothing
// matches the default entry is used and the model stays a placeholder.
func (f *Factory) Resolve(l *netlist.Line) (Result, error) {
	l.Clear(netlist.FlagUnresolvedDevice)
	name := l.KnownValue(token.ModelName)
	if name == "" {
		return f.build(l, true)
	}
	if f.visibleSubckt(name) != nil {
		return f.buildDevice(f.asInstance(l, name), true)
	}
	if f.lookupModel(l, name) != nil {
		return f.build(l, true)
	}
	cur := f.sess.Current()
	if sc := f.sess.Scope(cur); sc != nil {
		for _, child := range sc.Children {
			if f.sess.Scope(child).OwnerKind != scope.OwnerLib {
				continue
			}
			if m, ok := f.sess.GetObject(child, scope.TagModel, name).(*stmt.MasterModel); ok {
				return f.buildWithModel(l, m)
			}
		}
	}
	for _, id := range []scope.ScopeID{cur, f.parentOf(cur)} {
		if !id.IsValid() {
			continue
		}
		if child := f.sess.GetChildScope(id, name); child.IsValid() && f.sess.Scope(child).OwnerKind == scope.OwnerSubckt {
			return f.buildDevice(f.asInstance(l, name), true)
		}
	}
	diag.ReportWarning(f.rep, diag.ScpUnresolvedDevice, l.Span,
		fmt.Sprintf("%s%s references %s, which is neither a model nor a subcircuit", l.LocalType, l.Name, name)).Emit()
	return f.build(l, true)
}

// buildWithModel builds l bound to a model that is not visible from the
// current scope.
func (f *Factory) buildWithModel(l *netlist.Line, m *stmt.MasterModel) (Result, error) {
	res, err := f.build(l, true)
	if err != nil || res.Stmt == nil {
		return res, err
	}
	dev, ok := res.Stmt.(*stmt.Device)
	if !ok {
		return res, nil
	}
	if lz, ok := dev.Prop(token.ModelName).(*stmt.Lazy); ok {
		dev.Bind(lz.Name(), m)
		dev.Unresolved = false
	}
	if d := f.deviceForModel(l, m); d != nil {
		dev.Identity = stmt.Identity{
			Type: d.Name, LocalType: dev.LocalType,
			Level: d.Level, LevelKey: d.LevelKey, Version: d.Version, VersionKey: d.VersionKey,
		}
	}
	return res, nil
}

func (f *Factory) parentOf(id scope.ScopeID) scope.ScopeID {
	if sc := f.sess.Scope(id); sc != nil {
		return sc.Parent
	}
	return scope.NoScopeID
}

// ResolveControlDevices replaces controlling device names with the
// devices they name, looked up from the scope of each controlled device.
func (f *Factory) ResolveControlDevices() {
	for _, dev := range f.controls {
		if !dev.ResolveControl {
			continue
		}
		dev.ResolveControl = false
		id := f.sess.ScopeOf(dev.UID)
		if v, ok := dev.Prop(token.ControlDeviceValue).(stmt.Text); ok {
			if c := f.controlDevice(id, dev, string(v)); c != nil {
				dev.SetProp(token.ControlDeviceValue, stmt.DeviceList{c})
			}
		}
		if w, ok := dev.Prop(token.ControlDeviceList).(stmt.Words); ok {
			list := make(stmt.DeviceList, 0, len(w))
			for _, name := range w {
				c := f.controlDevice(id, dev, name)
				if c == nil {
					list = nil
					break
				}
				list = append(list, c)
			}
			if list != nil {
				dev.SetProp(token.ControlDeviceList, list)
			}
		}
		if p, ok := dev.Prop(token.PolyExpr).(*stmt.Poly); ok {
			for i, c := range p.Controls {
				if c.Name == "" {
					continue
				}
				if d := f.controlDevice(id, dev, c.Name); d != nil {
					p.Controls[i].Device = d
				}
			}
		}
	}
}

func (f *Factory) controlDevice(id scope.ScopeID, owner *stmt.Device, name string) *stmt.Device {
	for _, cand := range []string{name, "L" + name} {
		if d, ok := f.sess.GetObject(id, scope.TagDevice, cand).(*stmt.Device); ok {
			return d
		}
	}
	diag.ReportWarning(f.rep, diag.ScpControlDeviceNotFound, owner.Span,
		fmt.Sprintf("control device %s of %s not found", name, owner.FullName())).Emit()
	return nil
}

func (f *Factory) wantControls(d *stmt.Device) {
	if d == nil || d.ResolveControl {
		return
	}
	d.ResolveControl = true
	f.controls = append(f.controls, d)
}

// PWLFiles lists the data files referenced by PWL FILE waveforms.
func (f *Factory) PWLFiles() []string { return append([]string(nil), f.pwlFiles...) }

func unbrace(s string) string {
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}
