// Package recommend builds the LLM prompt for song recommendations and
// parses the free-text reply into individual song entries.
package recommend

import (
	"fmt"

	"moodtunes/internal/core/emotion"
)

// MinSongs is the number of entries the prompt asks the model for.
const MinSongs = 15

// BuildPrompt renders the recommendation prompt for the detected mood and the
// user's artist and language preferences. It is pure and deterministic.
func BuildPrompt(mood emotion.Label, artist, language string) string {
	return fmt.Sprintf(
		"The user is feeling %s based on facial expression analysis. "+
			"They prefer songs in %s and like artists such as %s. "+
			"Suggest a numbered list of at least %d songs that suit this mood, "+
			"each on its own line in the format \"Song Title - Artist Name\". "+
			"Prioritize songs by %s; when there are not enough suitable matches, "+
			"fall back to stylistically similar artists singing in %s.",
		mood, language, artist, MinSongs, artist, language)
}
