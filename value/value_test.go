package value

import "testing"

func TestConstAndInt(t *testing.T) {
	tests := []struct {
		v      int64
		size   int
		signed bool
		str    string
		back   int64
	}{
		{5, 4, false, "0101", 5},
		{-1, 4, true, "1111s", -1},
		{-3, 8, true, "11111101s", -3},
		{300, 8, false, "00101100", 44},
		{0, 1, false, "0", 0},
	}

	for _, tt := range tests {
		val := Const(tt.v, tt.size, tt.signed)
		if val.String() != tt.str {
			t.Errorf("Const(%d, %d) = %s, want %s", tt.v, tt.size, val, tt.str)
		}

		n, ok := val.Int()
		if !ok || n != tt.back {
			t.Errorf("Const(%d, %d).Int() = %d, %v, want %d", tt.v, tt.size, n, ok, tt.back)
		}
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("1x_c0", false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []Bit{Zero, Care, DontCare, One}
	for i, b := range want {
		if v.Bit(i) != b {
			t.Errorf("bit %d = %s, want %s", i, v.Bit(i), b)
		}
	}

	if _, ok := v.Int(); ok {
		t.Errorf("a value with care bits must not be constant")
	}

	if _, err := Parse("10z", false); err == nil {
		t.Errorf("expected invalid character to be rejected")
	}
}

func TestExtendedPadding(t *testing.T) {
	unsigned := MustParse("10", false)
	signed := MustParse("10", true)

	if unsigned.Extended(5) != Zero {
		t.Errorf("unsigned values must pad with zero")
	}
	if signed.Extended(5) != One {
		t.Errorf("signed values must pad with the sign bit")
	}
	if got := signed.Resize(4).String(); got != "1110s" {
		t.Errorf("Resize(4) = %s, want 1110s", got)
	}
	if got := MustParse("1011", false).Resize(2).String(); got != "11" {
		t.Errorf("Resize(2) = %s, want 11", got)
	}
}

func TestMergeIsMonotone(t *testing.T) {
	old := MustParse("cc1x", false)
	merged, changed := Merge(old, MustParse("0c01", false))
	if !changed {
		t.Fatalf("expected merge to refine the value")
	}

	// care bits take the new information, constant and don't-care bits stay
	if got := merged.String(); got != "0c1x" {
		t.Errorf("Merge = %s, want 0c1x", got)
	}

	if _, changed := Merge(merged, merged); changed {
		t.Errorf("merging a value with itself must not change it")
	}

	if _, changed := Merge(merged, New(4, false)); changed {
		t.Errorf("merging with less information must not change the value")
	}
}

func TestMergeCare(t *testing.T) {
	old := New(3, false)
	merged, changed := MergeCare(old, MustParse("xcx", false))
	if !changed || merged.String() != "xcx" {
		t.Fatalf("MergeCare = %s (changed=%v), want xcx", merged, changed)
	}

	if _, changed := MergeCare(merged, New(3, false)); changed {
		t.Errorf("a care bit must never be restored")
	}
}

func TestAgree(t *testing.T) {
	a := MustParse("0x10", false)
	b := MustParse("0x11", false)
	if got := Agree(4, false, a, b).String(); got != "0x1c" {
		t.Errorf("Agree = %s, want 0x1c", got)
	}

	// a narrow signed input pads with its sign, an unsigned one with zero
	narrow := MustParse("11", true)
	wide := MustParse("1111", false)
	if got := Agree(4, false, narrow, wide).String(); got != "1111" {
		t.Errorf("Agree with sign extension = %s, want 1111", got)
	}

	narrowUnsigned := MustParse("11", false)
	if got := Agree(4, false, narrowUnsigned, wide).String(); got != "cc11" {
		t.Errorf("Agree with zero extension = %s, want cc11", got)
	}
}
