package token

import "testing"

func TestTokenKinds(t *testing.T) {
	tok := Token{Kinds: []Kind{ModelName, Value}, Value: "RMOD"}
	if !tok.Ambiguous() {
		t.Fatalf("expected ambiguous token")
	}
	if tok.Kind() != Invalid {
		t.Errorf("ambiguous token must not report a single kind, got %s", tok.Kind())
	}
	if !tok.Is(Value) || tok.Is(PosNode) {
		t.Errorf("Is mismatch for %v", tok)
	}
	if got := tok.String(); got != "MODEL_NAME|VALUE(RMOD)" {
		t.Errorf("String() = %q", got)
	}

	one := New(PosNode, "1", tok.Span)
	if one.Kind() != PosNode || one.Ambiguous() {
		t.Errorf("single kind token mismatch: %v", one)
	}
}

func TestKindIsNode(t *testing.T) {
	for _, k := range []Kind{PosNode, GateNode, GeneralNode} {
		if !k.IsNode() {
			t.Errorf("%s must be a node kind", k)
		}
	}
	for _, k := range []Kind{Value, ModelName, NodeList} {
		if k.IsNode() {
			t.Errorf("%s must not be a node kind", k)
		}
	}
}

func TestCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 3 ", 3, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"x", 0, false},
		{"", 0, false},
		{"4611686018427387905", 4611686018427387905, true},
		{"99999999999999999999", 0, false},
	}
	for _, c := range cases {
		n, ok := Count(c.in)
		if n != c.want || ok != c.ok {
			t.Errorf("Count(%q) = %d, %v; want %d, %v", c.in, n, ok, c.want, c.ok)
		}
	}
}
