/*
Package hub contains the server-side logic for real-time chat rooms, user
connections, and message broadcasting.

This file implements the profanity filter applied to messages in the global
room. Private rooms are not filtered.
*/
package hub

import (
	"regexp"
	"strings"
)

// maskedWords are the stems masked in the global room. A stem match absorbs
// any trailing word characters, so suffixed variants are masked too.
var maskedWords = []string{"fuck", "shit", "bitch", "dick", "wtf"}

type maskRule struct {
	pattern *regexp.Regexp
	mask    string
}

var maskRules = buildMaskRules(maskedWords)

func buildMaskRules(words []string) []maskRule {
	rules := make([]maskRule, 0, len(words))

	for _, word := range words {
		rules = append(rules, maskRule{
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\w*\b`),
			mask:    strings.Repeat("*", len(word)),
		})
	}

	return rules
}

// FilterText masks every occurrence of the filtered stems in msg. The mask
// length follows the stem, not the matched word.
func FilterText(msg string) string {
	for _, rule := range maskRules {
		msg = rule.pattern.ReplaceAllString(msg, rule.mask)
	}

	return msg
}
