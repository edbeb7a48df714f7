package usecases

import (
	"testing"

	"github.com/hctpa/guidebot/internal/domain/entities"
)

func TestConversation_AppendOrder(t *testing.T) {
	c := &Conversation{}
	c.Append(entities.Turn{Role: entities.RoleUser, Content: "satu"})
	c.Append(entities.Turn{Role: entities.RoleAssistant, Content: "dua"})
	c.Append(entities.Turn{Role: entities.RoleUser, Content: "tiga"})

	h := c.History()
	if len(h) != 3 {
		t.Fatalf("history length %d, want 3", len(h))
	}
	for i, want := range []string{"satu", "dua", "tiga"} {
		if h[i].Content != want {
			t.Errorf("turn %d = %q, want %q", i, h[i].Content, want)
		}
	}
}

func TestConversation_HistoryIsCopy(t *testing.T) {
	c := &Conversation{}
	c.Append(entities.Turn{Role: entities.RoleUser, Content: "asli"})

	h := c.History()
	h[0].Content = "diubah"

	if got := c.History()[0].Content; got != "asli" {
		t.Errorf("mutating the returned slice leaked into the conversation: %q", got)
	}
}

func TestConversation_Clear(t *testing.T) {
	c := &Conversation{}
	c.Append(entities.Turn{Role: entities.RoleUser, Content: "x"})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("length after clear = %d", c.Len())
	}
}

func TestNewSessionContext(t *testing.T) {
	a, b := NewSessionContext(), NewSessionContext()
	if a.ID == "" || b.ID == "" {
		t.Fatal("session ids must be non-empty")
	}
	if a.ID == b.ID {
		t.Errorf("session ids collide: %s", a.ID)
	}
	if a.Conversation.Len() != 0 {
		t.Errorf("fresh session has %d turns", a.Conversation.Len())
	}
}
