package chat_test

import (
	"context"
	"fmt"
	"testing"

	model "github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
	chat "github.com/zhouzirui/menu-assistant/backend/internal/service/chat"
)

func TestServiceTranscriptOrder(t *testing.T) {
	svc := chat.NewService(0)
	ctx := context.Background()

	for i, content := range []string{"hola", "¡Hola! ¿Qué te sirvo?", "un café"} {
		sender := model.SenderCustomer
		if i%2 == 1 {
			sender = model.SenderAssistant
		}
		if err := svc.SaveMessage(ctx, model.Message{ConversationID: "c1", Sender: sender, Content: content}); err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}

	got, err := svc.LoadTranscript(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Content != "¡Hola! ¿Qué te sirvo?" || got[1].Content != "un café" {
		t.Fatalf("unexpected transcript: %+v", got)
	}
	if got[1].ID == "" || got[1].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned: %+v", got[1])
	}
}

func TestServiceRetentionCap(t *testing.T) {
	svc := chat.NewService(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := model.Message{ConversationID: "c1", Sender: model.SenderCustomer, Content: fmt.Sprintf("m%d", i)}
		if err := svc.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}

	got, err := svc.LoadTranscript(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(got) != 3 || got[0].Content != "m2" {
		t.Fatalf("unexpected transcript after cap: %+v", got)
	}

	svc.Clear(ctx, "c1")
	got, _ = svc.LoadTranscript(ctx, "c1", 0)
	if len(got) != 0 {
		t.Fatalf("expected empty transcript after Clear, got %d", len(got))
	}
}

func TestServiceRequiresConversation(t *testing.T) {
	svc := chat.NewService(0)
	if err := svc.SaveMessage(context.Background(), model.Message{Content: "hola"}); err == nil {
		t.Fatal("expected error for missing conversation id")
	}
}
