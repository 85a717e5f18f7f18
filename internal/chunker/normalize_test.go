package chunker

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invisible characters", "zero\u200bwidth\u200c join\u200der\u2060", "zerowidth joiner"},
		{"lone letter between lines", "the value\n x \nis positive", "the value x is positive"},
		{"displaystyle wrapper", "area { \\displaystyle  \\pi r^{2 }", "area {\\displaystyle \\pi r^{2}"},
		{"displaystyle trailing space", "{ \\displaystyle x + y }", "{\\displaystyle x + y}"},
		{"space runs", "a  \t b   c", "a b c"},
		{"newlines kept", "line one\n\nline two", "line one\n\nline two"},
		{"space before punctuation", "Hello , world ! Really ? Yes ; no : maybe .", "Hello, world! Really? Yes; no: maybe."},
		{"parentheses", "prime ( 2 or 3 ) numbers", "prime (2 or 3) numbers"},
		{"trim", "  \n padded \n ", "padded"},
		{"empty", "", ""},
		{"already clean", "A prime number is a natural number.", "A prime number is a natural number."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"plain text",
		"\na\n\nb\n",
		"x\n y \n.\n z \n",
		"( ( nested ) )",
		"a ,\n, b",
		"{ \\displaystyle  }",
		"{\\displaystylex}",
		"{ \\displaystyle :=}",
		"{ \\displaystyle )}",
		"value\n\t q \t\nnext ( ) .",
		"Primes\u200b are\n\n\n\nimportant .",
		"\u0085\na\n",
		"multi\n\n\nparagraph \t text ; with : punctuation !",
		"a\n)\nb\n(\nc",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
