// Package instctx walks the finished scope tree along every subcircuit
// instantiation chain. Each distinct chain gets one Context holding the
// parameters visible along it and the user function calls inside .PARAM
// values that must be evaluated once per instance. Apply threads the
// evaluated numbers back into the netlist as subcircuit parameters.
package instctx

import (
	"slices"
	"strings"

	"netxlate/internal/expr"
	"netxlate/internal/ordered"
	"netxlate/internal/scope"
	"netxlate/internal/stmt"
	"netxlate/internal/token"
)

// Hop is one step of an instantiation chain: an X device and the
// subcircuit it instantiates.
type Hop struct {
	Device *stmt.Device
	Subckt *stmt.Command
}

func (h Hop) same(o Hop) bool {
	return h.Device.UID == o.Device.UID && h.Subckt.UID == o.Subckt.UID
}

// Call is a function call found in a .PARAM value.
type Call struct {
	// Param is the parameter name qualified by the device chain, "X1:X2:P".
	Param string
	// Expr is the call text upper-cased without spaces, "F(A,2)".
	Expr string
	Name string

	// Key is the parameter of Command holding the call.
	Key     string
	Command *stmt.Command
	// Owner is the subcircuit the .PARAM belongs to, nil at the top level.
	Owner *stmt.Command
}

// Func is a user function definition.
type Func struct {
	Args []string
	Body string
}

// Context is one instantiation chain together with the scopes visible
// along it. Contexts are built once and not modified afterwards.
type Context struct {
	Path   []Hop
	Scopes []scope.ScopeID
	Global bool

	// Params maps upper-case names to values, braces stripped. Inner
	// scopes override outer ones.
	Params *ordered.Map[string, string]
	Funcs  map[string]Func
	Calls  []Call
}

// Hierarchy renders the device chain as "X1:X2:".
func (c *Context) Hierarchy() string {
	var b strings.Builder
	for _, h := range c.Path {
		b.WriteString(h.Device.FullName())
		b.WriteByte(':')
	}
	return b.String()
}

// Exists reports whether c was built for exactly this chain and scope set.
func (c *Context) Exists(path []Hop, scopes []scope.ScopeID) bool {
	return slices.EqualFunc(c.Path, path, Hop.same) && slices.Equal(c.Scopes, scopes)
}

// NonTerminal reports whether path is a prefix of the chain of c, c's own
// chain included.
func (c *Context) NonTerminal(path []Hop) bool {
	if len(path) > len(c.Path) {
		return false
	}
	return slices.EqualFunc(c.Path[:len(path)], path, Hop.same)
}

// denied are functions the simulator evaluates itself.
var denied = map[string]bool{
	"EXP": true, "LOG": true, "SQRT": true, "MAX": true, "MIN": true,
	"AGAUSS": true, "LIMIT": true, "SIN": true, "COS": true, "TAN": true,
	"ATAN": true, "PI": true, "INT": true, "ABS": true, "LOG10": true,
}

// collect scans the visible scopes in hierarchy order.
func (c *Context) collect(sess *scope.Session) {
	c.Params = ordered.New[string, string](8)
	c.Funcs = map[string]Func{}
	for _, id := range c.Scopes {
		var (
			owner = sess.Owner(id)
			hier  string
		)
		if owner != nil && owner.Type == ".SUBCKT" {
			hier = c.subcktParams(owner)
		} else {
			owner = nil
		}
		for _, st := range sortedStatements(sess, id) {
			cmd, ok := st.(*stmt.Command)
			if !ok {
				continue
			}
			switch cmd.Type {
			case ".PARAM", ".GLOBAL_PARAM":
				c.params(cmd, owner, hier)
			case ".FUNC":
				name := strings.ToUpper(cmd.PropText(token.FuncNameValue))
				if name == "" {
					name = strings.ToUpper(cmd.Name())
				}
				var args []string
				if w, ok := cmd.Prop(token.FuncArgList).(stmt.Words); ok {
					for _, a := range w {
						args = append(args, strings.ToUpper(a))
					}
				}
				c.Funcs[name] = Func{Args: args, Body: strings.ToUpper(unbrace(cmd.PropText(token.FuncExpression)))}
			}
		}
	}
}

// subcktParams records the defaults of owner and the overrides of the
// instance reaching it. It returns the chain prefix naming that instance.
func (c *Context) subcktParams(owner *stmt.Command) string {
	var b strings.Builder
	var hop *Hop
	for i := range c.Path {
		b.WriteString(c.Path[i].Device.FullName())
		b.WriteByte(':')
		if c.Path[i].Subckt.UID == owner.UID {
			hop = &c.Path[i]
			break
		}
	}
	if hop == nil {
		return ""
	}
	for _, k := range owner.Params.Keys() {
		c.Params.Set(strings.ToUpper(k), strings.ToUpper(unbrace(owner.Params.Value(k))))
	}
	if pl, ok := hop.Device.Prop(token.Params).(stmt.ParamList); ok {
		for _, p := range pl {
			c.Params.Set(strings.ToUpper(p.Name), strings.ToUpper(unbrace(p.Value)))
		}
	}
	return b.String()
}

func (c *Context) params(cmd, owner *stmt.Command, hier string) {
	for _, k := range cmd.Params.Keys() {
		value := unbrace(cmd.Params.Value(k))
		c.Params.Set(strings.ToUpper(k), strings.ToUpper(value))
		if !c.Global && hier == "" {
			continue
		}
		outer := 0
		for _, call := range expr.Calls(value) {
			// calls nested in a recorded call are evaluated with it
			if call.End == 0 || call.Start < outer || denied[strings.ToUpper(call.Name)] {
				continue
			}
			outer = call.End
			c.Calls = append(c.Calls, Call{
				Param:   hier + strings.ToUpper(k),
				Expr:    strings.ToUpper(call.Text()),
				Name:    strings.ToUpper(call.Name),
				Key:     k,
				Command: cmd,
				Owner:   owner,
			})
		}
	}
}

// sortedStatements lists the statements of a scope by first source line.
func sortedStatements(sess *scope.Session, id scope.ScopeID) []stmt.Statement {
	sc := sess.Scope(id)
	if sc == nil {
		return nil
	}
	var out []stmt.Statement
	for _, uid := range sc.Statements() {
		if st := sess.Stmt(uid); st != nil {
			out = append(out, st)
		}
	}
	slices.SortStableFunc(out, func(a, b stmt.Statement) int {
		return int(a.Common().FirstLine()) - int(b.Common().FirstLine())
	})
	return out
}

func unbrace(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}' {
		return s[1 : len(s)-1]
	}
	return s
}
