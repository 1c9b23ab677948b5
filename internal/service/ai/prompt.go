package ai

import (
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/chat"
)

const historyLimit = 10

var businessLabels = map[string]string{
	"cafe":        "una cafetería",
	"cafeteria":   "una cafetería",
	"restaurant":  "un restaurante",
	"restaurante": "un restaurante",
	"bakery":      "una panadería",
	"panaderia":   "una panadería",
	"bar":         "un bar",
}

// BuildSystemPrompt describes the assistant's role and grounds it on the menu.
func BuildSystemPrompt(q Question) string {
	business := businessLabels[strings.ToLower(q.BusinessType)]
	if business == "" {
		business = "un negocio de comida"
	}

	var b strings.Builder
	b.WriteString("Eres el asistente de pedidos de ")
	b.WriteString(business)
	if q.BranchName != "" {
		b.WriteString(" (")
		b.WriteString(q.BranchName)
		b.WriteString(")")
	}
	b.WriteString(". Respondes en español, con frases cortas y amables.\n")
	b.WriteString("Reglas:\n")
	b.WriteString("- Usa solo la información del menú; si algo no aparece, dilo con honestidad.\n")
	b.WriteString("- No inventes precios, promociones ni productos.\n")
	b.WriteString("- No confirmes pedidos: invita al cliente a escribir lo que quiere ordenar.\n")
	b.WriteString("- Máximo tres oraciones.\n")
	if menu := strings.TrimSpace(q.MenuText); menu != "" {
		b.WriteString("\nMenú:\n")
		b.WriteString(menu)
	}
	return b.String()
}

// recentHistory keeps the tail of the transcript the model gets to see.
func recentHistory(messages []chat.Message) []chat.Message {
	if len(messages) > historyLimit {
		return messages[len(messages)-historyLimit:]
	}
	return messages
}
