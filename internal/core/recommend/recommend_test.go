package recommend

import (
	"strings"
	"testing"

	"moodtunes/internal/core/emotion"
)

func TestBuildPromptContainsInputs(t *testing.T) {
	prompt := BuildPrompt(emotion.Happy, "The Weeknd", "English")

	for _, want := range []string{"Happy", "The Weeknd", "English", "at least 15"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if !strings.Contains(prompt, "Song Title - Artist Name") {
		t.Errorf("prompt missing entry format instruction:\n%s", prompt)
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	a := BuildPrompt(emotion.Sad, "Adele", "English")
	b := BuildPrompt(emotion.Sad, "Adele", "English")
	if a != b {
		t.Error("BuildPrompt is not deterministic")
	}
}

func TestParseSongs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Song
	}{
		{
			name: "numbered list with blank line",
			raw:  "1. Song A - X\n\n2. Song B - Y\n",
			want: []Song{"1. Song A - X", "2. Song B - Y"},
		},
		{
			name: "decorated lines survive untouched",
			raw:  "1. \"Song\" - Artist (Mood: Happy)\n- Another One - Someone",
			want: []Song{"1. \"Song\" - Artist (Mood: Happy)", "- Another One - Someone"},
		},
		{
			name: "whitespace-only lines dropped",
			raw:  "  \nSong - Artist\n\t\n",
			want: []Song{"Song - Artist"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "windows line endings",
			raw:  "Song A - X\r\nSong B - Y\r\n",
			want: []Song{"Song A - X", "Song B - Y"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSongs(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d songs, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("song %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
