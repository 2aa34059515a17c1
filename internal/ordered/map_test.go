package ordered

import (
	"reflect"
	"testing"
)

func TestMapOrder(t *testing.T) {
	var m Map[string, int]
	m.Set("W", 1)
	m.Set("L", 2)
	m.Set("AD", 3)
	m.Set("W", 10)

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"W", "L", "AD"}) {
		t.Fatalf("keys = %v", got)
	}
	if m.Value("W") != 10 {
		t.Errorf("W = %d, want 10", m.Value("W"))
	}

	if !m.Delete("L") || m.Delete("L") {
		t.Errorf("delete semantics broken")
	}
	if !m.Rename("AD", "AS") {
		t.Fatalf("rename failed")
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"W", "AS"}) {
		t.Errorf("keys after rename = %v", got)
	}
	if m.Rename("AS", "W") {
		t.Errorf("rename onto an existing key must fail")
	}

	cp := m.Clone()
	cp.Set("Z", 0)
	if m.Has("Z") || cp.Len() != 3 {
		t.Errorf("clone must not alias the original")
	}
}
