package cache

import "testing"

func TestLRUEvictsOldest(t *testing.T) {
	c := New(2)
	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	c.Put("c", []float32{3}) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be evicted")
	}
	if v, ok := c.Get("b"); !ok || v[0] != 2 {
		t.Fatalf("expected b present with value 2, got %v ok=%v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v[0] != 3 {
		t.Fatalf("expected c present with value 3, got %v ok=%v", v, ok)
	}
}

func TestLRUGetReturnsCopy(t *testing.T) {
	c := New(1)
	c.Put("a", []float32{1, 2, 3})
	v, _ := c.Get("a")
	v[0] = 999
	v2, _ := c.Get("a")
	if v2[0] == 999 {
		t.Fatalf("Get must return a defensive copy")
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	if Key("passage: ", "hello") != Key("passage: ", "hello") {
		t.Fatalf("Key must be deterministic for identical input")
	}
	if Key("passage: ", "hello") == Key("query: ", "hello") {
		t.Fatalf("Key must differ across prefixes")
	}
}
