package classify

import (
	"strings"

	"github.com/JustRK-07/Sip-advanced/internal/types"
)

// Keyword sets matched against recognized utterances. Evaluation order
// matters for overlapping phrases ("not a good time" appears in both
// the not-interested and callback lists): interested keywords are
// checked first, then not-interested, then callback, and the first
// matching set wins.
var (
	interestedKeywords = []string{
		"yes", "interested", "need money", "need loan", "want loan",
		"looking for", "definitely", "absolutely", "tell me more",
		"how much", "what rates", "when can", "sign me up",
	}

	notInterestedKeywords = []string{
		"no", "not interested", "don't need", "no thanks",
		"not looking", "already have", "not right now", "remove me",
		"don't call", "not a good time", "hang up",
	}

	callbackKeywords = []string{
		"call back", "call later", "not a good time", "busy right now",
		"try again", "different time", "later today", "tomorrow",
	}
)

// Classify maps an utterance to an interest verdict using
// case-insensitive substring matching. It is a pure function: the same
// text always yields the same verdict. Returns InterestUnknown when no
// keyword set matches.
func Classify(utterance string) types.InterestStatus {
	text := strings.ToLower(utterance)

	if containsAny(text, interestedKeywords) {
		return types.InterestInterested
	}
	if containsAny(text, notInterestedKeywords) {
		return types.InterestNotInterested
	}
	if containsAny(text, callbackKeywords) {
		return types.InterestCallback
	}
	return types.InterestUnknown
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
