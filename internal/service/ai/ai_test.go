package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/menu-assistant/backend/internal/config"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
)

type recordingModel struct {
	reply string
	seen  []*schema.Message
}

func (m *recordingModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.seen = input
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *recordingModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.seen = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(m.reply, nil)}), nil
}

func sampleQuestion() Question {
	return Question{
		BusinessType: "cafe",
		BranchName:   "Cafetería Centro",
		MenuText:     "Café $35\nCroissant $35",
		History: []chat.Message{
			{Sender: chat.SenderCustomer, Content: "hola"},
			{Sender: chat.SenderAssistant, Content: "¡Hola! ¿Qué te sirvo?"},
		},
		Text: "¿tienen leche de almendra?",
	}
}

func TestServiceAnswerUsesMenuAndHistory(t *testing.T) {
	ctx := context.Background()
	fake := &recordingModel{reply: "  Por ahora no manejamos leche de almendra.  "}

	svc, err := NewServiceWithModel(ctx, fake, nil)
	require.NoError(t, err)

	answer, err := svc.Answer(ctx, sampleQuestion())
	require.NoError(t, err)
	assert.Equal(t, "Por ahora no manejamos leche de almendra.", answer)

	require.Len(t, fake.seen, 4)
	assert.Equal(t, schema.System, fake.seen[0].Role)
	assert.Contains(t, fake.seen[0].Content, "Croissant $35")
	assert.Contains(t, fake.seen[0].Content, "una cafetería")
	assert.Equal(t, schema.User, fake.seen[1].Role)
	assert.Equal(t, schema.Assistant, fake.seen[2].Role)
	assert.Equal(t, "¿tienen leche de almendra?", fake.seen[3].Content)
}

func TestServiceEmptyAnswer(t *testing.T) {
	ctx := context.Background()
	svc, err := NewServiceWithModel(ctx, &recordingModel{reply: " "}, nil)
	require.NoError(t, err)

	_, err = svc.Answer(ctx, sampleQuestion())
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestOpenAIClientAnswer(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Abrimos de 8 a 21."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "", srv.URL+"/v1", nil)
	answer, err := client.Answer(context.Background(), sampleQuestion())
	require.NoError(t, err)
	assert.Equal(t, "Abrimos de 8 a 21.", answer)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "user", got.Messages[3].Role)
}

func TestNewAnswererDisabled(t *testing.T) {
	answerer, err := NewAnswerer(context.Background(), config.AIConfig{Provider: config.ProviderArk}, nil)
	require.NoError(t, err)
	assert.Nil(t, answerer)

	answerer, err = NewAnswerer(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI, OpenAIKey: "sk"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, answerer)
}

func TestBuildSystemPromptUnknownBusiness(t *testing.T) {
	prompt := BuildSystemPrompt(Question{BusinessType: "food-truck"})
	assert.Contains(t, prompt, "un negocio de comida")
	assert.NotContains(t, prompt, "Menú:")
}
