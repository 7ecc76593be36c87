package cache

import "testing"

func TestLRUGetPut(t *testing.T) {
	c := NewLRU[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("a", 10)

	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d, want 10", v)
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts a

	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should still be cached")
	}
}

func TestLRURecencyOrder(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch a so b becomes least recently used.
	c.Get("a")
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted after a was touched")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
}

func TestLRUPeekDoesNotTouch(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Peek must not promote a.
	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Fatalf("Peek(a) = %d, %v; want 1, true", v, ok)
	}
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted; Peek must not refresh recency")
	}
}

func TestLRUOnEvict(t *testing.T) {
	var evictedKeys []string
	c := NewLRU[string, int](2)
	c.OnEvict = func(k string, _ int) { evictedKeys = append(evictedKeys, k) }

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Put("d", 4)

	want := []string{"a", "b"}
	if len(evictedKeys) != len(want) {
		t.Fatalf("evicted %v, want %v", evictedKeys, want)
	}
	for i := range want {
		if evictedKeys[i] != want[i] {
			t.Errorf("evicted[%d] = %q, want %q", i, evictedKeys[i], want[i])
		}
	}
}

func TestLRUDelete(t *testing.T) {
	c := NewLRU[string, int](4)
	c.OnEvict = func(string, int) { t.Error("OnEvict must not fire for Delete") }

	c.Put("a", 1)
	if !c.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestLRUClear(t *testing.T) {
	c := NewLRU[string, int](4)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	// Cache must remain usable after Clear.
	c.Put("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after Clear = %d, %v; want 3, true", v, ok)
	}
}

func TestLRUUnbounded(t *testing.T) {
	c := NewLRU[int, int](0)
	for i := 0; i < 100; i++ {
		c.Put(i, i)
	}
	if got := c.Len(); got != 100 {
		t.Errorf("Len() = %d, want 100 (capacity 0 means unbounded)", got)
	}
}
