package textutil

import "testing"

func TestCleanStripsDisallowedRunes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"punctuation kept", "Wait, really?! Yes - ok.", "Wait, really?! Yes - ok."},
		{"emoji and sigils", "pasta recipe! #foodie @chef \U0001F60D", "pasta recipe! foodie chef"},
		{"control junk", "line1\x00\x07line2", "line1 line2"},
		{"whitespace collapse", "  a \t\t b\n\nc  ", "a b c"},
		{"unicode letters dropped", "café résumé", "caf r sum"},
		{"empty", "", ""},
		{"only junk", "❤️✨", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"Check out this amazing pasta recipe! #foodie",
		"  \t weird \x00 input \n with ✨ everything  ",
		"already clean text.",
		"",
		"!?.,- only punctuation",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestStripChromeRemovesUIPhrases(t *testing.T) {
	in := Clean("View all comments Add a comment Great workout today foodie")
	got := StripChrome(in)
	want := "Great workout today foodie"
	if got != want {
		t.Fatalf("StripChrome(%q) = %q, want %q", in, got, want)
	}
}

func TestStripChromeKeepsContentIntact(t *testing.T) {
	in := "nothing chrome-like here"
	if got := StripChrome(in); got != in {
		t.Fatalf("StripChrome(%q) = %q, want unchanged", in, got)
	}
}
