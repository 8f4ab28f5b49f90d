package sat

import "testing"

func TestResetSet_AddContainsClear(t *testing.T) {
	s := &resetSet{}
	s.Grow(4)

	if s.Contains(2) {
		t.Errorf("fresh resetSet reports Contains(2) = true")
	}
	s.Add(2)
	if !s.Contains(2) {
		t.Errorf("Contains(2) = false after Add(2)")
	}
	if s.Contains(1) {
		t.Errorf("Contains(1) = true, want false (never added)")
	}

	s.Clear()
	if s.Contains(2) {
		t.Errorf("Contains(2) = true after Clear()")
	}
}

func TestResetSet_GrowPreservesState(t *testing.T) {
	s := &resetSet{}
	s.Grow(2)
	s.Add(1)
	s.Grow(10)
	if !s.Contains(1) {
		t.Errorf("Contains(1) = false after Grow extended the backing slice")
	}
}

func TestEpochStamps_DefaultUnmarked(t *testing.T) {
	e := &epochStamps{}
	e.Grow(3)
	if got := e.Get(1); got != stampUnmarked {
		t.Errorf("Get(1) = %v, want stampUnmarked", got)
	}
}

func TestEpochStamps_SetAndClear(t *testing.T) {
	e := &epochStamps{}
	e.Grow(3)

	e.Set(0, stampRemovable)
	e.Set(1, stampPoison)

	if got := e.Get(0); got != stampRemovable {
		t.Errorf("Get(0) = %v, want stampRemovable", got)
	}
	if got := e.Get(1); got != stampPoison {
		t.Errorf("Get(1) = %v, want stampPoison", got)
	}
	if got := e.Get(2); got != stampUnmarked {
		t.Errorf("Get(2) = %v, want stampUnmarked", got)
	}

	e.Clear()
	if got := e.Get(0); got != stampUnmarked {
		t.Errorf("Get(0) = %v after Clear(), want stampUnmarked", got)
	}
}
