package textutil

import "strings"

// socialMarkers are engagement terms, sigils and social-UI phrases that make
// text worth sending to the paid remote classifier. Matched as lower-case
// substrings; the gate is advisory, so loose matches are acceptable.
var socialMarkers = []string{
	"like", "views", "followers", "following", "comments",
	"share", "subscribe", "retweet", "repost", "trending",
	"#", "@",
	"check out", "link in bio", "follow me", "dm me",
	"sponsored", "story", "reels", "posted",
}

// LooksSocial reports whether text plausibly came from social content. False
// negatives only cost classification quality: the caller still assigns some
// category through the fallback path.
func LooksSocial(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range socialMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
