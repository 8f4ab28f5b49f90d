package sat

import "testing"

func TestLiteral_PositiveNegative(t *testing.T) {
	v := Var(7)
	pos := PositiveLiteral(v)
	neg := NegativeLiteral(v)

	if !pos.IsPositive() {
		t.Errorf("PositiveLiteral(%d).IsPositive() = false, want true", v)
	}
	if neg.IsPositive() {
		t.Errorf("NegativeLiteral(%d).IsPositive() = true, want false", v)
	}
	if pos.Var() != v || neg.Var() != v {
		t.Errorf("Var() mismatch: pos.Var()=%d neg.Var()=%d, want %d", pos.Var(), neg.Var(), v)
	}
}

func TestLiteral_Opposite(t *testing.T) {
	v := Var(3)
	pos := PositiveLiteral(v)

	got := pos.Opposite()
	want := NegativeLiteral(v)
	if got != want {
		t.Errorf("Opposite() = %v, want %v", got, want)
	}
	if got.Opposite() != pos {
		t.Errorf("Opposite().Opposite() = %v, want %v", got.Opposite(), pos)
	}
}

func TestLiteral_ScratchFlagIndependentOfIdentity(t *testing.T) {
	v := Var(5)
	l := PositiveLiteral(v)
	flagged := l.WithScratchFlag(true)

	if flagged == l {
		t.Errorf("WithScratchFlag(true) produced the same value as the unflagged literal")
	}
	if !flagged.ScratchFlag() {
		t.Errorf("ScratchFlag() = false after WithScratchFlag(true)")
	}
	if flagged.index() != l.index() {
		t.Errorf("index() changed under scratch flag: flagged=%d plain=%d, want equal", flagged.index(), l.index())
	}
	if flagged.Var() != v || !flagged.IsPositive() {
		t.Errorf("flagged literal lost its identity: Var()=%d IsPositive()=%v", flagged.Var(), flagged.IsPositive())
	}
	cleared := flagged.WithScratchFlag(false)
	if cleared != l {
		t.Errorf("WithScratchFlag(false) = %v, want %v", cleared, l)
	}
}

func TestLiteral_OppositePreservesScratchFlag(t *testing.T) {
	l := PositiveLiteral(Var(2)).WithScratchFlag(true)
	if !l.Opposite().ScratchFlag() {
		t.Errorf("Opposite() dropped the scratch flag")
	}
}

func TestComplementary(t *testing.T) {
	a := PositiveLiteral(Var(1))
	b := NegativeLiteral(Var(1))
	c := PositiveLiteral(Var(2))

	if !Complementary(a, b) {
		t.Errorf("Complementary(%v, %v) = false, want true", a, b)
	}
	if Complementary(a, c) {
		t.Errorf("Complementary(%v, %v) = true, want false", a, c)
	}
	// Complementary must ignore scratch flags.
	if !Complementary(a.WithScratchFlag(true), b) {
		t.Errorf("Complementary ignored-flag case failed")
	}
}

func TestLiteral_Index(t *testing.T) {
	a := PositiveLiteral(Var(4))
	b := NegativeLiteral(Var(4))
	if a.index() == b.index() {
		t.Errorf("positive and negative literals of the same var share an index: %d", a.index())
	}
	if a.index() < 0 || b.index() < 0 {
		t.Errorf("index() returned a negative slot: %d, %d", a.index(), b.index())
	}
}

func TestSentinelLiteral_IsPositiveSentinelVar(t *testing.T) {
	if SentinelLiteral.Var() != SentinelVar {
		t.Errorf("SentinelLiteral.Var() = %d, want %d", SentinelLiteral.Var(), SentinelVar)
	}
	if !SentinelLiteral.IsPositive() {
		t.Errorf("SentinelLiteral.IsPositive() = false, want true")
	}
}
