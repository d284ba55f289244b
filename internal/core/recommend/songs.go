package recommend

import "strings"

// Song is one recommended entry, kept as the raw line the model produced.
// Lines are deliberately not split into title/artist fields; the full line is
// later used verbatim as a provider search query.
type Song string

// ParseSongs splits a raw LLM reply into songs. Every non-empty line is one
// entry; numbering and decoration are tolerated, blank lines are dropped.
func ParseSongs(raw string) []Song {
	var songs []Song
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		songs = append(songs, Song(line))
	}
	return songs
}
