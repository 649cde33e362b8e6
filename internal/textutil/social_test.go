package textutil

import "testing"

func TestLooksSocialPositive(t *testing.T) {
	cases := []string{
		"Check out this amazing pasta recipe! #foodie",
		"10k followers and counting",
		"1.2M views in one day",
		"Liked by maria and 42 others",
		"tap to see comments",
		"@someone mentioned you",
		"new post from your favorite creator, sponsored",
	}
	for _, text := range cases {
		if !LooksSocial(text) {
			t.Fatalf("LooksSocial(%q) = false, want true", text)
		}
	}
}

func TestLooksSocialNegative(t *testing.T) {
	cases := []string{
		"Q3 earnings report draft v2",
		"Invoice 2209 due March 3",
		"The quick brown fox",
		"",
	}
	for _, text := range cases {
		if LooksSocial(text) {
			t.Fatalf("LooksSocial(%q) = true, want false", text)
		}
	}
}

func TestLooksSocialSurvivesCleaning(t *testing.T) {
	// The cleaner strips sigils, so the gate must still fire on the
	// remaining phrases for typical social text.
	text := Clean("Check out this amazing pasta recipe! #foodie")
	if !LooksSocial(text) {
		t.Fatalf("gate should fire on cleaned social text %q", text)
	}
}
