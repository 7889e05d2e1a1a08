// Package profanity screens free-text input for content that must not
// appear in a school-facing system. The list is deliberately conservative:
// standalone-word matching only, so legitimate names never trip it.
package profanity

import (
	"fmt"
	"regexp"
	"strings"
)

var wordList = []string{
	"fuck", "fucking", "fucked", "fucker", "shit", "shitting", "shitty",
	"bitch", "bastard", "asshole", "arsehole", "dickhead", "twat", "cunt",
	"nigger", "nigga", "faggot",
	"masturbate", "orgasm",
	"murder", "suicide",
	"cocaine", "heroin",
	"f*ck", "f**k", "sh1t", "fuk", "shyt", "f4ck", "sh!t",
}

// Substring matches, stricter than the standalone-word list: terms that
// are inappropriate in a school record even inside a longer word.
var educationalList = []string{
	"violent", "violence", "inappropriate", "bullying", "bully",
	"harassment", "discriminat", "racist", "sexist",
}

var wordPatterns = compilePatterns()

func compilePatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(wordList))
	for _, w := range wordList {
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return patterns
}

// ContainsProfanity reports whether text holds any listed word, returning
// the matches found.
func ContainsProfanity(text string) (bool, []string) {
	if text == "" {
		return false, nil
	}
	lower := strings.ToLower(text)
	var found []string
	for i, p := range wordPatterns {
		if p.MatchString(lower) {
			found = append(found, wordList[i])
		}
	}
	return len(found) > 0, found
}

// Validate checks text for inappropriate content. fieldLabel names the
// field in the returned message, e.g. "student name". The second return is
// empty when the text is acceptable.
func Validate(text, fieldLabel string) (bool, string) {
	if has, _ := ContainsProfanity(text); has {
		return false, fmt.Sprintf("The %s contains inappropriate language. Please revise your input.", fieldLabel)
	}
	lower := strings.ToLower(text)
	for _, w := range educationalList {
		if strings.Contains(lower, w) {
			return false, fmt.Sprintf("The %s contains content that may be inappropriate for a school environment. Please revise your input.", fieldLabel)
		}
	}
	return true, ""
}
