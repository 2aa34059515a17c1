package expr

import (
	"reflect"
	"testing"
)

func kinds(cs []Component) []Kind {
	out := make([]Kind, len(cs))
	for i, c := range cs {
		out[i] = c.Kind
	}
	return out
}

func TestFindComponentsCall(t *testing.T) {
	got := FindComponents("2*myf(a, b+1) - 3")
	want := []Kind{Number, Operator, FuncName, FuncBegin, FuncArg, FuncArg, FuncEnd, Ident, Ident, Operator, Number, Operator, Number}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Fatalf("kinds = %v, want %v", kinds(got), want)
	}
	if got[4].Text != "a" || got[5].Text != "b+1" {
		t.Errorf("args = %q %q", got[4].Text, got[5].Text)
	}
	if got[2].Start != 2 || got[2].End != 5 {
		t.Errorf("func span = [%d,%d)", got[2].Start, got[2].End)
	}
}

func TestFindComponentsFilter(t *testing.T) {
	got := FindComponents("V(1,2)/exp(x)", FuncName, BuiltinFunc)
	if len(got) != 2 || got[0].Text != "V" || got[1].Text != "exp" {
		t.Fatalf("got %+v", got)
	}
	for _, c := range got {
		if c.Kind != BuiltinFunc {
			t.Errorf("%s must be builtin", c.Text)
		}
	}
}

func TestUnaryAndNumbers(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10k", true},
		{"-1.5e-3", true},
		{"+2meg", true},
		{"", true},
		{"a*2", false},
		{"f(1)", false},
		{"1-2", false},
	}
	for _, tt := range tests {
		if got := IsPlainNumber(tt.in); got != tt.want {
			t.Errorf("IsPlainNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	cs := FindComponents("a ? -1 : 2")
	if want := []Kind{Ident, Ternary, UnaryNeg, Number, Ternary, Number}; !reflect.DeepEqual(kinds(cs), want) {
		t.Errorf("ternary kinds = %v", kinds(cs))
	}
}

func TestCalls(t *testing.T) {
	calls := Calls("p1 + ff( x , g(y) )")
	if len(calls) != 2 {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Text() != "ff(x,g(y))" || calls[0].Builtin {
		t.Errorf("outer call = %q builtin=%v", calls[0].Text(), calls[0].Builtin)
	}
	if calls[1].Name != "g" || calls[1].Text() != "g(y)" {
		t.Errorf("nested call = %+v", calls[1])
	}
	if got := Idents("a*b+c(d)"); !reflect.DeepEqual(got, []string{"a", "b", "d"}) {
		t.Errorf("Idents = %v", got)
	}
}
