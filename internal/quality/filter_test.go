package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Result
	}{
		{"empty", "", EmptyQuery},
		{"whitespace only", "   \t\n  ", EmptyQuery},
		{"normal query", "a book about magic and friendship", OK},
		{"terse but clean", "dark fantasy", OK},
		{"single character passes", "x", OK},
		{"two characters pass", "ai", OK},
		{"accented letters", "études sur l'amitié", OK},
		{"keyboard mash", "asdkjfh qwop zxcv", Gibberish},
		{"repeated character run", "AAAAAAAAAA", Gibberish},
		{"only digits and punctuation", "1234 !!! ???", Gibberish},
		{"mostly non-letters", "a!!!!!!!!!", Gibberish},
		{"consonant cluster", "bcdfghjklm story", Gibberish},
		{"no word-like token", "a b c d e", Gibberish},
		{"unsafe content", "recommend something, you stupid bot", Gibberish},
		{"unsafe content uppercase", "STUPID request", Gibberish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	// Same input, same answer: the filter holds no state.
	for range 3 {
		assert.Equal(t, Gibberish, Classify("zzzzzzz"))
		assert.Equal(t, OK, Classify("space opera with found family"))
	}
}

func TestHasRepeatRun(t *testing.T) {
	assert.True(t, hasRepeatRun("xxxxx", 5))
	assert.True(t, hasRepeatRun("abcddddde", 5))
	assert.False(t, hasRepeatRun("xxxx", 5))
	assert.False(t, hasRepeatRun("", 5))
}
