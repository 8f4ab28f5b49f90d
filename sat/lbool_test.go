package sat

import "testing"

func TestLBool_Opposite(t *testing.T) {
	tests := []struct {
		in, want LBool
	}{
		{True, False},
		{False, True},
		{WeakTrue, False},
		{Unknown, Unknown},
	}
	for _, tc := range tests {
		if got := tc.in.Opposite(); got != tc.want {
			t.Errorf("%v.Opposite() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLBool_Bool(t *testing.T) {
	tests := []struct {
		in   LBool
		want bool
	}{
		{True, true},
		{WeakTrue, true},
		{False, false},
		{Unknown, false},
	}
	for _, tc := range tests {
		if got := tc.in.Bool(); got != tc.want {
			t.Errorf("%v.Bool() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLift(t *testing.T) {
	if Lift(true) != True {
		t.Errorf("Lift(true) = %v, want True", Lift(true))
	}
	if Lift(false) != False {
		t.Errorf("Lift(false) = %v, want False", Lift(false))
	}
}
