package utils

import (
	"errors"
	"testing"
)

func TestFormatBoxNumber(t *testing.T) {
	testCases := []struct {
		n    int
		want string
	}{
		{0, "BOX00000"},
		{1, "BOX00001"},
		{42, "BOX00042"},
		{12345, "BOX12345"},
		{99999, "BOX99999"},
	}

	for _, tc := range testCases {
		got, err := FormatBoxNumber(tc.n)
		if err != nil {
			t.Fatalf("FormatBoxNumber(%d) failed: %v", tc.n, err)
		}
		if got != tc.want {
			t.Errorf("FormatBoxNumber(%d) = %s, want %s", tc.n, got, tc.want)
		}
		if !ValidateBoxNumber(got) {
			t.Errorf("formatted number %s does not validate", got)
		}
	}

	for _, n := range []int{-1, 100000} {
		if _, err := FormatBoxNumber(n); !errors.Is(err, ErrInvalidBoxNumber) {
			t.Errorf("FormatBoxNumber(%d) should fail with ErrInvalidBoxNumber, got %v", n, err)
		}
	}
}

func TestValidateBoxNumber(t *testing.T) {
	valid := []string{"BOX00001", "BOX00000", "BOX99999", "BOX10203"}
	invalid := []string{
		"",
		"BOX",
		"BOX123",
		"BOX000001",
		"box00001",
		"Box00001",
		" BOX00001",
		"BOX00001 ",
		"BOX0000A",
		"BXO00001",
		"BOX-0001",
		"BOX٠٠٠٠١", // non-ASCII digits
	}

	for _, s := range valid {
		if !ValidateBoxNumber(s) {
			t.Errorf("ValidateBoxNumber(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidateBoxNumber(s) {
			t.Errorf("ValidateBoxNumber(%q) = true, want false", s)
		}
	}
}

func TestNormalizeBoxNumber(t *testing.T) {
	got, err := NormalizeBoxNumber("  box00042\n")
	if err != nil {
		t.Fatalf("NormalizeBoxNumber failed: %v", err)
	}
	if got != "BOX00042" {
		t.Errorf("NormalizeBoxNumber = %s, want BOX00042", got)
	}

	for _, s := range []string{"box123", "BOX000001", "pallet-1"} {
		if _, err := NormalizeBoxNumber(s); !errors.Is(err, ErrInvalidBoxNumber) {
			t.Errorf("NormalizeBoxNumber(%q) should fail, got %v", s, err)
		}
	}
}

func TestParseBoxNumber(t *testing.T) {
	n, err := ParseBoxNumber("BOX00042")
	if err != nil {
		t.Fatalf("ParseBoxNumber failed: %v", err)
	}
	if n != 42 {
		t.Errorf("ParseBoxNumber = %d, want 42", n)
	}

	// Round trip across the whole range boundaries
	for _, want := range []int{0, 7, 99999} {
		s, _ := FormatBoxNumber(want)
		got, err := ParseBoxNumber(s)
		if err != nil || got != want {
			t.Errorf("round trip %d -> %s -> %d (%v)", want, s, got, err)
		}
	}

	if _, err := ParseBoxNumber("BOX12"); err == nil {
		t.Error("ParseBoxNumber should reject malformed numbers")
	}
}
