package weave

import "testing"

func TestConfigs_ProvideAndConfigOf(t *testing.T) {
	type dbHandle struct{ name string }
	c := NewConfigs()
	Provide(c, dbHandle{name: "primary"})

	h, ok := ConfigOf[dbHandle](c)
	if !ok || h.name != "primary" {
		t.Errorf("expected (dbHandle{primary}, true), got (%v, %v)", h, ok)
	}
}

func TestConfigOf_MissingTypeReturnsZeroFalse(t *testing.T) {
	type unregistered struct{ n int }
	c := NewConfigs()
	v, ok := ConfigOf[unregistered](c)
	if ok {
		t.Error("expected ok=false for an unregistered type")
	}
	if v != (unregistered{}) {
		t.Errorf("expected the zero value, got %v", v)
	}
}

func TestConfigOf_NilConfigsReturnsZeroFalse(t *testing.T) {
	v, ok := ConfigOf[int](nil)
	if ok || v != 0 {
		t.Errorf("expected (0, false) for a nil Configs, got (%v, %v)", v, ok)
	}
}

func TestConfigs_KeyedByConcreteType(t *testing.T) {
	type a struct{ v int }
	type b struct{ v int }
	c := NewConfigs()
	Provide(c, a{v: 1})
	Provide(c, b{v: 2})

	av, ok := ConfigOf[a](c)
	if !ok || av.v != 1 {
		t.Errorf("expected a{1}, got %v, %v", av, ok)
	}
	bv, ok := ConfigOf[b](c)
	if !ok || bv.v != 2 {
		t.Errorf("expected b{2}, got %v, %v", bv, ok)
	}
}
