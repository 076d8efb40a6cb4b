package hunt

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already canonical",
			input:    "crossroads",
			expected: "crossroads",
		},
		{
			name:     "uppercase and punctuation",
			input:    "Cross-Roads!",
			expected: "crossroads",
		},
		{
			name:     "surrounding whitespace",
			input:    "  ALPHA ",
			expected: "alpha",
		},
		{
			name:     "trailing punctuation",
			input:    "beta?",
			expected: "beta",
		},
		{
			name:     "interior whitespace collapses",
			input:    "old   oak\ttree",
			expected: "old oak tree",
		},
		{
			name:     "hyphen joins words",
			input:    "cross-roads",
			expected: "crossroads",
		},
		{
			name:     "hyphen with surrounding spaces keeps word break",
			input:    "well - known",
			expected: "well known",
		},
		{
			name:     "digits survive",
			input:    "Room 101",
			expected: "room 101",
		},
		{
			name:     "accents fold to base letters",
			input:    "Café Crème",
			expected: "cafe creme",
		},
		{
			name:     "symbols stripped",
			input:    "@tt*c (he) #sh&d",
			expected: "ttc he shd",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    " \t\n ",
			expected: "",
		},
		{
			name:     "punctuation only",
			input:    "?!...",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
			// Normalization must be a fixed point.
			if again := Normalize(got); again != got {
				t.Errorf("Not idempotent: Normalize(%q) = %q", got, again)
			}
		})
	}
}

func TestNormalize_HyphenEquivalence(t *testing.T) {
	if Normalize("Cross-Roads!") != Normalize("crossroads") {
		t.Errorf("Expected %q and %q to normalize equally, got %q and %q",
			"Cross-Roads!", "crossroads", Normalize("Cross-Roads!"), Normalize("crossroads"))
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		expected  string
		want      bool
	}{
		{
			name:      "exact match",
			submitted: "lantern",
			expected:  "lantern",
			want:      true,
		},
		{
			name:      "case and whitespace variance",
			submitted: "  LANTERN ",
			expected:  "lantern",
			want:      true,
		},
		{
			name:      "punctuation variance",
			submitted: "lantern!",
			expected:  "lantern",
			want:      true,
		},
		{
			name:      "hyphenated form matches joined form",
			submitted: "Cross-Roads",
			expected:  "crossroads",
			want:      true,
		},
		{
			name:      "wrong answer",
			submitted: "candle",
			expected:  "lantern",
			want:      false,
		},
		{
			name:      "near miss is still wrong",
			submitted: "lanterns",
			expected:  "lantern",
			want:      false,
		},
		{
			name:      "empty submission never matches",
			submitted: "",
			expected:  "lantern",
			want:      false,
		},
		{
			name:      "empty expected never matches empty submission",
			submitted: "",
			expected:  "",
			want:      false,
		},
		{
			name:      "expected that normalizes to empty never matches",
			submitted: "!!!",
			expected:  "!!!",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.submitted, tt.expected); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, expected %v", tt.submitted, tt.expected, got, tt.want)
			}
		})
	}
}
