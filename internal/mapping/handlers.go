package mapping

import (
	"fmt"
	"slices"
	"strings"

	"netxlate/internal/descriptor"
	"netxlate/internal/diag"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// handlerFunc builds the value of one prop. ok is false when the line has
// nothing for it.
type handlerFunc func(b *builder, p descriptor.Prop) (v stmt.Value, ok bool)

var handlers [descriptor.HAnalysisType + 1]handlerFunc

func init() {
	handlers = [...]handlerFunc{
		descriptor.HNode:               nodeHandler,
		descriptor.HValue:              valueHandler,
		descriptor.HModelName:          modelNameHandler,
		descriptor.HControlDeviceValue: controlDeviceValueHandler,
		descriptor.HControlDeviceList:  controlDeviceListHandler,
		descriptor.HValueExpression:    valueExpressionHandler,
		descriptor.HTableExpression:    tableExpressionHandler,
		descriptor.HPolyExpression:     polyExpressionHandler,
		descriptor.HVoltageExpression:  sourceExpressionHandler(token.Voltage),
		descriptor.HCurrentExpression:  sourceExpressionHandler(token.Current),
		descriptor.HACValue:            acHandler,
		descriptor.HDCValue:            dcHandler,
		descriptor.HTransient:          transientHandler,
		descriptor.HSubcircuitName:     subcircuitNameHandler,
		descriptor.HSubcircuitParams:   paramsListHandler,
		descriptor.HParamsList:         paramsListHandler,
		descriptor.HNodeList:           nodeListHandler,
		descriptor.HInterfaceNodeList:  interfaceNodeListHandler,
		descriptor.HSweep:              sweepHandler,
		descriptor.HSchedule:           scheduleHandler,
		descriptor.HValueList:          wordsHandler(token.ValueList),
		descriptor.HDataList:           wordsHandler(token.DataParamValue),
		descriptor.HFileName:           valueHandler,
		descriptor.HLibEntry:           valueHandler,
		descriptor.HOptionPackage:      optionPackageHandler,
		descriptor.HOutputVariables:    wordsHandler(token.OutputVariables),
		descriptor.HFuncArgList:        wordsHandler(token.FuncArgList),
		descriptor.HFuncExpression:     valueHandler,
		descriptor.HInitialConditions:  initialConditionsHandler,
		descriptor.HMeasurement:        measurementHandler,
		descriptor.HAnalysisType:       analysisTypeHandler,
	}
}

func nodeHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	name, ok := b.line.Known.Get(p.Role)
	if !ok || name == "" {
		return nil, false
	}
	return b.node(name, false), true
}

func valueHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	return b.text(p.Role)
}

// modelNameHandler binds the device to its model, or to a placeholder
// when the model was not read yet.
func modelNameHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	name, ok := b.line.Known.Get(token.ModelName)
	if !ok || name == "" || b.dev == nil {
		return nil, false
	}
	if m := b.f.lookupModel(b.line, name); m != nil {
		return m, true
	}
	lz := b.f.sess.AddLazy(name, b.dev, []stmt.Candidate{{Kind: stmt.KindMasterModel}})
	b.dev.Unresolved = true
	return lz, true
}

func controlDeviceValueHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	name, ok := b.line.Known.Get(token.ControlDeviceValue)
	if !ok || name == "" {
		return nil, false
	}
	b.f.wantControls(b.dev)
	return stmt.Text(name), true
}

func controlDeviceListHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	names := b.line.List(token.ControlDeviceList)
	if len(names) == 0 || b.line.Known.Has(token.Poly) {
		return nil, false
	}
	b.f.wantControls(b.dev)
	return stmt.Words(slices.Clone(names)), true
}

func valueExpressionHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	if !b.line.Known.Has(token.ValueKeyword) {
		return nil, false
	}
	return b.text(token.Expression)
}

func tableExpressionHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	if !b.line.Known.Has(token.Table) {
		return nil, false
	}
	expr, _ := b.known(token.Expression)
	t := stmt.Table{Expr: expr}
	pts := b.line.List(token.Table)
	for i := 0; i+1 < len(pts); i += 2 {
		t.Pairs = append(t.Pairs, [2]string{pts[i], pts[i+1]})
	}
	if len(pts)%2 != 0 {
		diag.ReportWarning(b.f.rep, diag.MapOddTableValues, b.line.Span,
			"TABLE has an odd number of values, the last one is dropped").Emit()
	}
	return t, true
}

// polyExpressionHandler reads POLY(n): n node pairs for voltage control,
// n device names for current control, then the coefficients.
func polyExpressionHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	if !b.line.Known.Has(token.Poly) {
		return nil, false
	}
	degree := strings.TrimSpace(b.line.KnownValue(token.PolyValue))
	n, ok := token.Count(degree)
	if !ok || n == 0 {
		diag.ReportWarning(b.f.rep, diag.MapPolyWithoutControl, b.line.Span,
			"POLY without a number of controls on "+b.line.LocalType+b.line.Name).Emit()
		return nil, false
	}
	poly := &stmt.Poly{Degree: degree}
	words := b.line.List(token.Poly)
	if devs := b.line.List(token.ControlDeviceList); len(devs) > 0 {
		if n > len(devs) {
			diag.ReportWarning(b.f.rep, diag.MapPolyWithoutControl, b.line.Span,
				fmt.Sprintf("POLY(%s) lists only %d controlling devices", degree, len(devs))).Emit()
			return nil, false
		}
		for _, d := range devs {
			poly.Controls = append(poly.Controls, stmt.PolyControl{Name: d})
		}
		if len(devs) != n {
			diag.ReportWarning(b.f.rep, diag.MapTooManyControlValues, b.line.Span,
				fmt.Sprintf("POLY(%d) lists %d controlling devices", n, len(devs))).Emit()
		}
		b.f.wantControls(b.dev)
		poly.Coeffs = slices.Clone(words)
		return poly, true
	}
	// n is checked against len(words)/2 so 2*n cannot overflow
	if n > len(words)/2 {
		diag.ReportWarning(b.f.rep, diag.MapPolyWithoutControl, b.line.Span,
			fmt.Sprintf("POLY(%s) needs twice as many controlling nodes, the line has %d words", degree, len(words))).Emit()
		return nil, false
	}
	for i := 0; i < n; i++ {
		poly.Controls = append(poly.Controls, stmt.PolyControl{
			Pos: b.node(words[2*i], false),
			Neg: b.node(words[2*i+1], false),
		})
	}
	poly.Coeffs = slices.Clone(words[2*n:])
	return poly, true
}

func sourceExpressionHandler(kind token.Kind) handlerFunc {
	return func(b *builder, p descriptor.Prop) (stmt.Value, bool) {
		if !b.line.Known.Has(kind) {
			return nil, false
		}
		return b.text(token.Expression)
	}
}

func acHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	if !b.line.Known.Has(token.ACValue) {
		return nil, false
	}
	mag, _ := b.known(token.ACMagValue)
	phase, _ := b.known(token.ACPhaseValue)
	return stmt.AC{Mag: mag, Phase: phase}, true
}

func dcHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	v, ok := b.known(token.DCValueValue)
	if !ok && !b.line.Known.Has(token.DCValue) {
		return nil, false
	}
	return stmt.DC{Value: v}, true
}

func transientHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	fn, ok := b.line.Known.Get(token.TransFunc)
	if !ok {
		return nil, false
	}
	var args []string
	for _, a := range b.line.List(token.Transient) {
		if k, v, kv := strings.Cut(a, "="); kv {
			args = append(args, k, b.f.rename(v))
			continue
		}
		args = append(args, b.f.rename(a))
	}
	t, err := stmt.NewTransient(fn, args)
	if err != nil {
		diag.ReportWarning(b.f.rep, diag.MapTooManyTransientArgs, b.line.Span, err.Error()).
			WithNote(b.line.Span, "waveform kept as written").Emit()
		return stmt.Text(strings.ToUpper(fn) + "(" + strings.Join(args, " ") + ")"), true
	}
	if file := t.PWLFile(); file != "" {
		b.f.pwlFiles = append(b.f.pwlFiles, file)
	}
	return t, true
}

func subcircuitNameHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	name, ok := b.line.Known.Get(token.SubcktName)
	if !ok || name == "" || b.dev == nil {
		return nil, false
	}
	if c, ok := b.f.sess.GetObject(b.f.sess.Current(), scope.TagSubckt, name).(*stmt.Command); ok {
		return c, true
	}
	return b.f.sess.AddLazy(name, b.dev, []stmt.Candidate{{Kind: stmt.KindCommand}}), true
}

// paramsListHandler moves the accepted line params into one list prop.
func paramsListHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	var out stmt.ParamList
	for _, k := range b.line.Params.Keys() {
		if b.consumed[k] {
			continue
		}
		dp, ok := b.accept(k)
		if !ok {
			continue
		}
		out = append(out, stmt.Param{Name: dp.Label, Value: b.f.rename(b.line.Params.Value(k))})
		b.consumed[k] = true
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func nodeListHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	names := b.line.List(token.NodeList)
	if len(names) == 0 {
		return nil, false
	}
	out := make(stmt.NodeList, 0, len(names))
	for _, n := range names {
		out = append(out, b.node(n, false))
	}
	return out, true
}

func interfaceNodeListHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	names := b.line.List(token.InterfaceNodeList)
	if len(names) == 0 {
		return nil, false
	}
	out := make(stmt.NodeList, 0, len(names))
	for _, n := range names {
		out = append(out, b.node(n, true))
	}
	return out, true
}

func sweepHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	words := b.line.List(token.Sweep)
	if len(words) == 0 {
		return nil, false
	}
	sw, err := stmt.ParseSweep(words)
	if err != nil {
		diag.ReportWarning(b.f.rep, diag.MapInfo, b.line.Span, err.Error()).Emit()
		return stmt.Words(slices.Clone(words)), true
	}
	return sw, true
}

func scheduleHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	vals := b.line.List(token.Schedule)
	if len(vals) < 2 {
		return nil, false
	}
	var s stmt.Schedule
	for i := 0; i+1 < len(vals); i += 2 {
		s = append(s, [2]string{vals[i], vals[i+1]})
	}
	return s, true
}

func wordsHandler(list token.Kind) handlerFunc {
	return func(b *builder, p descriptor.Prop) (stmt.Value, bool) {
		vals := b.line.List(list)
		if len(vals) == 0 {
			return nil, false
		}
		return stmt.Words(slices.Clone(vals)), true
	}
}

func optionPackageHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	pkg, ok := b.line.Known.Get(token.OptionPkgType)
	if !ok || pkg == "" {
		return nil, false
	}
	return stmt.Text(strings.ToUpper(pkg)), true
}

func initialConditionsHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	if len(b.line.ICs) == 0 {
		return nil, false
	}
	out := make(stmt.ICList, 0, len(b.line.ICs))
	for _, ic := range b.line.ICs {
		out = append(out, stmt.IC{Kind: ic.Kind, Node: b.node(ic.Node, false), Value: b.f.rename(ic.Value)})
	}
	return out, true
}

// measureQualifiers start the second half of a measurement.
var measureQualifiers = []string{"TARG", "WHEN", "AT"}

func measurementHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	typ, ok := b.line.Known.Get(token.MeasureType)
	if !ok {
		return nil, false
	}
	m := &stmt.Measure{Analysis: b.line.KnownValue(token.AnalysisType), Type: typ}
	if m.Analysis == "" {
		m.Analysis = "TRAN"
	}
	second := false
	for _, e := range b.line.List(token.MeasureParamValue) {
		name, val, kv := strings.Cut(e, "=")
		if !kv && !second && slices.Contains(measureQualifiers, strings.ToUpper(name)) {
			m.Qualifier = strings.ToUpper(name)
			second = true
			continue
		}
		prm := stmt.Param{Name: name, Value: b.f.rename(val)}
		if second {
			m.QualifierParams = append(m.QualifierParams, prm)
		} else {
			m.TypeParams = append(m.TypeParams, prm)
		}
	}
	if !stmt.ValidMeasure(m.Analysis, m.Type) {
		diag.ReportWarning(b.f.rep, diag.MapInvalidMeasure, b.line.Span,
			fmt.Sprintf("measurement %s is not available for %s analysis", m.Type, m.Analysis)).Emit()
	}
	return m, true
}

func analysisTypeHandler(b *builder, p descriptor.Prop) (stmt.Value, bool) {
	if v, ok := b.line.Known.Get(token.AnalysisType); ok && v != "" {
		return stmt.Text(strings.ToUpper(v)), true
	}
	if b.cmd == nil {
		return nil, false
	}
	if b.cmd.Type == ".PRINT" {
		b.f.prints = append(b.f.prints, b.cmd)
	}
	return stmt.Text("TRAN"), true
}
