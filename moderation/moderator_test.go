package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newModerator(t *testing.T, words ...string) *Moderator {
	mod, err := NewModerator(words, '#', logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	return mod
}

func TestModerator_Censor_Reports_Found_Words(t *testing.T) {
	mod := newModerator(t, "badger", "snake", "idiot")

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{"single word", "you idiot", "you #####", []string{"idiot"}},
		{"words in order of appearance", "snake, then badger", "#####, then ######", []string{"snake", "badger"}},
		{"repeated word is reported each time", "idiot idiot", "##### #####", []string{"idiot", "idiot"}},
		{"leet speak", "b4dg3r", "######", []string{"badger"}},
		{"letters split by punctuation", "S.N.A.K.E!", "#########!", []string{"snake"}},
		{"accents are kept around a match", "été idiot", "été #####", []string{"idiot"}},
		{"clean text is returned untouched", "entered the room", "entered the room", nil},
		{"only punctuation", "?? ...", "?? ...", nil},
		{"empty text", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content)
			req.Equal(tt.words, words)
		})
	}
}

func TestNewModerator_Drops_Noise_Only_Words(t *testing.T) {
	req := require.New(t)

	// Given a dictionary polluted with entries made of punctuation or spaces
	mod := newModerator(t, "...", "-", "   ", "", "idiot")

	// Then they never match
	content, words := mod.Censor("wait... - what ?")
	req.Equal("wait... - what ?", content)
	req.Nil(words)

	// And the real words still do
	content, words = mod.Censor("- idiot -")
	req.Equal("- ##### -", content)
	req.Equal([]string{"idiot"}, words)
}

func TestNewModerator_Leet_Only_Word_Is_Kept(t *testing.T) {
	req := require.New(t)

	// "!" reads as an "i", so "!!!" is a word, not noise
	mod := newModerator(t, "!!!")

	content, words := mod.Censor("iii")
	req.Equal("###", content)
	req.Equal([]string{"iii"}, words)
}

func TestNewModerator_Words_Equal_Once_Normalized(t *testing.T) {
	req := require.New(t)

	// Given spellings that normalize to the same pattern
	mod := newModerator(t, "Badger", "badger", "B4DG3R", "snake")

	content, words := mod.Censor("badger snake")
	req.Equal("###### #####", content)
	req.Equal([]string{"badger", "snake"}, words)
}
