package ai

import (
	"encoding/json"
	"strings"

	"github.com/dom/whats-cookin/internal/domain"
)

// ParseIngredients turns a model reply into ingredient names.
//
// The reply must hold a JSON array of strings, either as the whole text or embedded in prose.
// If any element is not a string the reply is rejected as a whole. Names are trimmed and blank
// names dropped. The result is never nil.
func ParseIngredients(raw string) []string {
	ingredients := []string{}

	items, ok := decodeArray(raw)
	if !ok {
		return ingredients
	}

	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			return []string{}
		}
		if name = strings.TrimSpace(name); name != "" {
			ingredients = append(ingredients, name)
		}
	}
	return ingredients
}

// ParseRecommendations turns a model reply into recipe suggestions.
//
// Unlike ParseIngredients, a bad element only drops that element: every object carrying
// non-blank string "name" and "link" fields is kept. The result is never nil.
func ParseRecommendations(raw string) []domain.Recommendation {
	recommendations := []domain.Recommendation{}

	items, ok := decodeArray(raw)
	if !ok {
		return recommendations
	}

	for _, item := range items {
		var entry struct {
			Name *string `json:"name"`
			Link *string `json:"link"`
		}
		if err := json.Unmarshal(item, &entry); err != nil || entry.Name == nil || entry.Link == nil {
			continue
		}
		name := strings.TrimSpace(*entry.Name)
		link := strings.TrimSpace(*entry.Link)
		if name == "" || link == "" {
			continue
		}
		recommendations = append(recommendations, domain.Recommendation{Name: name, Link: link})
	}
	return recommendations
}

// decodeArray finds a JSON array in raw. It tries, in order: the whole text, the greedy span from
// the first '[' to the last ']', and the first balanced array.
func decodeArray(raw string) ([]json.RawMessage, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, false
	}

	if items, ok := unmarshalArray(text); ok {
		return items, true
	}

	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start == -1 || end <= start {
		return nil, false
	}
	if items, ok := unmarshalArray(text[start : end+1]); ok {
		return items, true
	}

	if span, ok := firstBalancedArray(text[start:]); ok {
		return unmarshalArray(span)
	}
	return nil, false
}

func unmarshalArray(s string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false
	}
	// "null" decodes into a nil slice without error.
	if items == nil {
		return nil, false
	}
	return items, true
}

// firstBalancedArray returns the prefix of s, which starts with '[', up to its matching ']'.
// Brackets inside JSON strings are ignored.
func firstBalancedArray(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
