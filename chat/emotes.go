package chat

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Emote is one occurrence of an emote in a chat message.
type Emote struct {
	ID   string
	Name string
	// Start is the position of the emote in the message, in runes.
	Start int
}

// ParseEmotes decodes the value of the emotes tag,
// "id:start-end,start-end/id:start-end", against the message text.
// Occurrences are returned in the order they appear in the text.
func ParseEmotes(tag, text string) ([]Emote, error) {
	if tag == "" {
		return nil, nil
	}

	runes := []rune(text)
	var emotes []Emote

	for _, group := range strings.Split(tag, "/") {
		id, ranges, ok := strings.Cut(group, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: emote group %q", ErrMalformed, group)
		}

		for _, span := range strings.Split(ranges, ",") {
			first, last, ok := strings.Cut(span, "-")
			if !ok {
				return nil, fmt.Errorf("%w: emote range %q", ErrMalformed, span)
			}
			start, err := strconv.Atoi(first)
			if err != nil {
				return nil, fmt.Errorf("%w: emote range %q", ErrMalformed, span)
			}
			end, err := strconv.Atoi(last)
			if err != nil {
				return nil, fmt.Errorf("%w: emote range %q", ErrMalformed, span)
			}
			if start < 0 || end < start || end >= len(runes) {
				return nil, fmt.Errorf("%w: emote range %q outside message", ErrMalformed, span)
			}

			emotes = append(emotes, Emote{
				ID:    id,
				Name:  string(runes[start : end+1]),
				Start: start,
			})
		}
	}

	slices.SortFunc(emotes, func(a, b Emote) int {
		return a.Start - b.Start
	})
	return emotes, nil
}

// Limit keeps at most maxPerMessage emotes and at most maxDuplicates
// occurrences of any one emote, preserving order. Non-positive limits disable
// the corresponding cap.
func Limit(emotes []Emote, maxPerMessage, maxDuplicates int) []Emote {
	counts := make(map[string]int, len(emotes))
	kept := make([]Emote, 0, len(emotes))

	for _, e := range emotes {
		if maxPerMessage > 0 && len(kept) >= maxPerMessage {
			break
		}
		if maxDuplicates > 0 && counts[e.ID] >= maxDuplicates {
			continue
		}
		counts[e.ID]++
		kept = append(kept, e)
	}
	return kept
}
