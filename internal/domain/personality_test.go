package domain

import (
	"testing"
)

func TestLookupPersonality(t *testing.T) {
	for _, key := range PersonalityKeys() {
		p, ok := LookupPersonality(key)
		if !ok {
			t.Fatalf("LookupPersonality(%q) not found", key)
		}
		if p.Greeting == "" {
			t.Errorf("personality %q has no greeting", key)
		}

		opening := p.OpeningMessage()
		if opening.Role != RoleAssistant {
			t.Errorf("opening message for %q has role %q, want assistant", key, opening.Role)
		}
		if opening.Text() != p.Greeting {
			t.Errorf("opening message text = %q, want %q", opening.Text(), p.Greeting)
		}
	}

	if _, ok := LookupPersonality("grumpy"); ok {
		t.Error("expected unknown key to miss")
	}
}

func TestParsePersonalityKey(t *testing.T) {
	key, err := ParsePersonalityKey("  Funny ")
	if err != nil {
		t.Fatalf("ParsePersonalityKey: %v", err)
	}
	if key != PersonalityFunny {
		t.Errorf("got %q, want %q", key, PersonalityFunny)
	}

	if _, err := ParsePersonalityKey("grumpy"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestMessageText(t *testing.T) {
	m := Message{
		Role:  RoleUser,
		Parts: []Part{{Text: "안녕"}, {Text: "!"}},
	}
	if got := m.Text(); got != "안녕!" {
		t.Errorf("Text() = %q", got)
	}
}
