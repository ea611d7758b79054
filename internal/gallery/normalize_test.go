package gallery

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Alice", "alice"},
		{"diacritics", "Jiří", "jiri"},
		{"dashes", "Anna-Marie", "anna marie"},
		{"whitespace", "  Bob  ", "bob"},
		{"combined", "Ondřej-Novák", "ondrej novak"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeName(tc.input); got != tc.expected {
				t.Errorf("NormalizeName(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSimilarName(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"case variant", "alice", "Alice", true},
		{"diacritic variant", "Jiri", "Jiří", true},
		{"exact equal is not flagged", "Alice", "Alice", false},
		{"different names", "Alice", "Bob", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SimilarName(tc.a, tc.b); got != tc.expected {
				t.Errorf("SimilarName(%q, %q) = %v; want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}
