package domain

import (
	"fmt"
	"strings"
)

// PersonalityKey selects one of the fixed assistant personas. The set is
// static configuration, not user-extensible.
type PersonalityKey string

const (
	PersonalityIntellectual PersonalityKey = "intellectual"
	PersonalityFunny        PersonalityKey = "funny"
)

// Personality is the static configuration for one persona: its key and the
// fixed opening line shown when a conversation starts. The opening line is
// local framing only and is never sent to the completion backend.
type Personality struct {
	Key      PersonalityKey
	Greeting string
}

var personalities = map[PersonalityKey]Personality{
	PersonalityIntellectual: {
		Key:      PersonalityIntellectual,
		Greeting: "안녕? 나는 안경척!이야. 오늘은 어떤 지적인 이야기를 나눌까?",
	},
	PersonalityFunny: {
		Key:      PersonalityFunny,
		Greeting: "안녕? 나는 덕메야. 오늘은 무슨 재미난 일이 있었니?",
	},
}

// personalityOrder keeps listing stable; map iteration order is not.
var personalityOrder = []PersonalityKey{
	PersonalityIntellectual,
	PersonalityFunny,
}

// LookupPersonality returns the persona for key.
func LookupPersonality(key PersonalityKey) (Personality, bool) {
	p, ok := personalities[key]
	return p, ok
}

// ParsePersonalityKey normalizes and validates a user-supplied key.
func ParsePersonalityKey(s string) (PersonalityKey, error) {
	key := PersonalityKey(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := personalities[key]; !ok {
		return "", fmt.Errorf("unknown personality %q", s)
	}
	return key, nil
}

// PersonalityKeys lists all known keys in a stable order.
func PersonalityKeys() []PersonalityKey {
	out := make([]PersonalityKey, len(personalityOrder))
	copy(out, personalityOrder)
	return out
}

// OpeningMessage builds the fixed assistant greeting for this persona.
func (p Personality) OpeningMessage() Message {
	return NewMessage(RoleAssistant, p.Greeting)
}
