package profanity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanTextPasses(t *testing.T) {
	for _, text := range []string{
		"Emma Johnson",
		"45 Victoria Road, Manchester",
		"Asthma, requires inhaler",
		"",
	} {
		ok, msg := Validate(text, "student name")
		require.True(t, ok, text)
		require.Empty(t, msg)
	}
}

func TestListedWordRejected(t *testing.T) {
	ok, msg := Validate("what the fuck", "address")
	require.False(t, ok)
	require.Equal(t, "The address contains inappropriate language. Please revise your input.", msg)

	has, found := ContainsProfanity("Total SHIT weather")
	require.True(t, has)
	require.Equal(t, []string{"shit"}, found)
}

func TestEducationalTermMatchesInsideWords(t *testing.T) {
	ok, msg := Validate("discriminatory remarks reported", "safeguarding notes")
	require.False(t, ok)
	require.Equal(t, "The safeguarding notes contains content that may be inappropriate for a school environment. Please revise your input.", msg)
}

func TestWordBoundariesProtectNames(t *testing.T) {
	// Embedded fragments must never trip the standalone-word list.
	for _, text := range []string{
		"Scunthorpe Primary",
		"Tom Shitara", // no standalone match
		"Cockburn Street",
	} {
		has, found := ContainsProfanity(text)
		require.False(t, has, "%s matched %v", text, found)
	}
}
