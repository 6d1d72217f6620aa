package luaast

import "testing"

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name     string
		reserved bool
	}{
		{"end", true},
		{"local", true},
		{"function", true},
		{"nil", true},
		{"repeat", true},
		{"goto", true},
		{"End", false}, // reserved words are case-sensitive
		{"ending", false},
		{"foo", false},
		{"", false},
	}

	for _, test := range tests {
		if IsReserved(test.name) != test.reserved {
			t.Errorf("IsReserved(%q) = %v, expected %v", test.name, !test.reserved, test.reserved)
		}
	}
}

func TestValidIdent(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"foo", true},
		{"_0", true},
		{"camelCase", true},
		{"SCREAMING_SNAKE", true},
		{"x2", true},
		{"2x", false},
		{"kebab-case", false},
		{"with space", false},
		{"with.dot", false},
		{"", false},
		{"end", false},     // reserved
		{"while", false},   // reserved
		{"café", false}, // non-ASCII never qualifies
	}

	for _, test := range tests {
		if ValidIdent(test.name) != test.valid {
			t.Errorf("ValidIdent(%q) = %v, expected %v", test.name, !test.valid, test.valid)
		}
	}
}

func TestValidIdentNormalizesBeforeChecking(t *testing.T) {
	// "café" spelled with a combining accent normalizes to the same
	// non-ASCII string as the precomposed form, so both are rejected the
	// same way rather than one slipping through byte-wise checks.
	decomposed := "café"
	if ValidIdent(decomposed) {
		t.Errorf("ValidIdent(%q) = true, expected false", decomposed)
	}
}
