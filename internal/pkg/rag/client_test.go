package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistoryKeepsLastTurns(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	}

	got := formatHistory(history, 2, 100)
	assert.Equal(t, "Tutor: second\nStudent: third", got)
}

func TestFormatHistoryTruncatesOnRuneBoundaries(t *testing.T) {
	content := strings.Repeat("é", 10) + " Umubano n'ubumwe"

	got := formatHistory([]Message{{Role: "user", Content: content}}, 6, 4)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Student: "+strings.Repeat("é", 4), got)
}

func TestFormatHistoryLeavesShortContentAlone(t *testing.T) {
	got := formatHistory([]Message{{Role: "assistant", Content: "Kigali"}}, 6, 400)
	assert.Equal(t, "Tutor: Kigali", got)
}
