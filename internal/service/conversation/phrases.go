package conversation

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"
	model "github.com/zhouzirui/menu-assistant/backend/internal/model/conversation"
)

// phrases are the canned reply templates, grouped by purpose. A template id
// is the group name plus the variant index, e.g. "fallback.2".
var phrases = map[string][]string{
	"greeting.cafe": {
		"¡Hola! ☕ ¿Se te antoja algo? Puedo mostrarte el menú o tomar tu pedido.",
		"¡Buen día! Bienvenido. ¿Quieres ver el menú o ya sabes qué vas a pedir?",
		"¡Hola! Qué gusto saludarte. Escríbeme tu pedido o pídeme una recomendación.",
	},
	"greeting.restaurant": {
		"¡Hola! Bienvenido. ¿Te comparto el menú o prefieres que te recomiende algo?",
		"¡Buenas! Con gusto te ayudo con tu pedido. ¿Qué se te antoja hoy?",
		"¡Hola! ¿Mesa para cuántos o pedido para llevar? Puedo mostrarte el menú.",
	},
	"greeting.default": {
		"¡Hola! ¿En qué te puedo ayudar? Puedo mostrarte el menú o tomar tu pedido.",
		"¡Hola! Bienvenido. Escribe *menú* para ver lo que tenemos.",
		"¡Qué tal! Dime qué te gustaría pedir o si quieres una recomendación.",
	},
	"menu.followup": {
		"¿Qué te gustaría pedir?",
		"Cuando quieras, escríbeme tu pedido. Por ejemplo: _2 cafés y 1 croissant_.",
		"¿Te animas a algo? Si no te decides, pídeme una recomendación.",
	},
	"order.added": {
		"¡Anotado! Tu pedido va así:",
		"Perfecto, esto llevas hasta ahora:",
		"Listo, agregué eso. Tu pedido:",
	},
	"order.confirm": {
		"¿Lo confirmo? Responde *sí* para enviarlo o sigue agregando productos.",
		"Si está todo bien responde *sí*; si quieres algo más, solo escríbelo.",
		"¿Enviamos el pedido? Escribe *sí* para confirmar o *cancelar* para empezar de nuevo.",
	},
	"order.notfound": {
		"No encontré esos productos en el menú. ¿Quieres que te lo muestre?",
		"Mmm, no ubiqué eso en nuestro menú. Escribe *menú* para ver las opciones.",
		"No reconocí ningún producto. ¿Podrías escribirlo como aparece en el menú?",
	},
	"confirm.done": {
		"¡Listo! Tu pedido quedó registrado con el folio *%s*. Total: %s.",
		"¡Pedido enviado! Folio *%s*, total %s. En breve lo preparamos.",
		"Confirmado ✅ Folio *%s* por %s. ¡Gracias por tu compra!",
	},
	"confirm.nothing": {
		"Aún no tienes productos en tu pedido. ¿Qué te gustaría pedir?",
		"No hay nada por confirmar todavía. Escríbeme lo que quieres ordenar.",
	},
	"cancel.done": {
		"Listo, cancelé lo que llevábamos.",
		"Sin problema, empecemos de cero.",
		"Hecho, borré el pedido.",
	},
	"cancel.nothing": {
		"No hay nada pendiente que cancelar.",
		"Todo en orden, no tenías nada pendiente.",
	},
	"reco.ask_size": {
		"¡Claro! ¿Para cuántas personas es?",
		"Con gusto te recomiendo. ¿Cuántos van a ser?",
		"¡Va! Primero dime, ¿para cuántas personas?",
	},
	"reco.start": {
		"¡Perfecto! Te hago unas preguntas rápidas para recomendarte algo.",
		"Va, con unas cuantas preguntas te armo una sugerencia.",
		"¡Genial! Contéstame esto y te digo qué pedir.",
	},
	"reco.restart": {
		"Empecemos de nuevo con la recomendación.",
		"Retomemos desde el inicio.",
	},
	"reco.retry": {
		"No entendí tu respuesta. Elige una de las opciones:",
		"Perdona, no me quedó claro. Responde con el número de la opción:",
		"Mmm, esa no la tengo. ¿Cuál de estas prefieres?",
	},
	"reco.final": {
		"¡Listo! Esto es lo que te recomiendo:",
		"Con lo que me contaste, te sugiero:",
		"Mi recomendación para ustedes:",
	},
	"reco.also": {
		"También podría gustarles: %s.",
		"Otras opciones que les pueden gustar: %s.",
	},
	"reco.empty": {
		"Por ahora no tengo productos disponibles para recomendarte.",
	},
	"unavailable": {
		"Por el momento no puedo consultar el menú. Inténtalo de nuevo en unos minutos.",
		"Estamos actualizando el menú; en un momento podré tomar tu pedido.",
	},
	"fallback": {
		"No estoy seguro de haberte entendido. Puedes pedirme el *menú*, escribir tu pedido o pedir una *recomendación*.",
		"¿Me lo explicas de otra forma? Por ejemplo: _quiero 2 cafés_ o _recomiéndame algo para 4_.",
		"Puedo mostrarte el menú, tomar tu pedido o recomendarte algo. ¿Qué prefieres?",
	},
	"fallback.cart": {
		"Tienes un pedido pendiente. Responde *sí* para confirmarlo o escribe qué más agregar.",
		"Sigo con tu pedido abierto: confirma con *sí* o agrega algo más.",
	},
	"error": {
		"Perdón, tuve un problema procesando tu mensaje. ¿Me lo repites?",
		"Ups, algo salió mal de mi lado. Intenta de nuevo en un momento.",
	},
	"closing": {
		"¿Algo más en lo que te pueda ayudar?",
		"Aquí sigo si se te antoja algo más.",
		"Si necesitas otra cosa, solo escríbeme.",
	},
}

func templateID(group string, idx int) string {
	return fmt.Sprintf("%s.%d", group, idx)
}

// pick chooses a variant of group that was not used recently, or the one
// used longest ago, and records it for the current reply.
func (t *turn) pick(group string) string {
	variants := phrases[group]
	if len(variants) == 0 {
		return ""
	}

	best, bestAge := 0, -2
	for i := range variants {
		idx := (t.ctx.Turns + i) % len(variants)
		age := t.ctx.TemplateAge(templateID(group, idx))
		if age < 0 {
			best = idx
			break
		}
		if age > bestAge {
			best, bestAge = idx, age
		}
	}

	id := templateID(group, best)
	t.used = append(t.used, id)
	return variants[best]
}

// closing returns a closing phrase unless the previous reply ended with one.
func (t *turn) closing() string {
	if t.ctx.LastReplyUsed("closing.") {
		return ""
	}
	return t.pick("closing")
}

func greetingGroup(businessType string) string {
	switch textnorm.Fold(businessType) {
	case "cafe", "cafeteria", "coffee", "coffee shop":
		return "greeting.cafe"
	case "restaurant", "restaurante", "fonda", "taqueria":
		return "greeting.restaurant"
	default:
		return "greeting.default"
	}
}

func joinLines(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// rememberTurn moves the templates of this reply into the context history.
func rememberTurn(c *model.Context, used []string, limit int) {
	for _, id := range used {
		c.RememberTemplate(id, limit)
	}
	c.LastReplyTemplates = append([]string(nil), used...)
}
