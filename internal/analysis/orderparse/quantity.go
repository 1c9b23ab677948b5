package orderparse

import (
	"strings"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/textnorm"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/order"
)

// fillers may sit between a quantity and the product ("2 ordenes de tacos").
var fillers = map[string]bool{
	"de": true, "del": true,
	"orden": true, "ordenes": true,
	"pieza": true, "piezas": true,
	"porcion": true, "porciones": true,
	"vaso": true, "vasos": true,
	"taza": true, "tazas": true,
	"rebanada": true, "rebanadas": true,
	"mas": true,
}

// stopwords are ignored when matching partial phrasing.
var stopwords = map[string]bool{
	"quiero": true, "quisiera": true, "queremos": true, "dame": true, "deme": true,
	"me": true, "nos": true, "das": true, "da": true, "pon": true, "ponme": true,
	"agrega": true, "agregame": true, "anade": true, "anademe": true, "manda": true,
	"por": true, "favor": true, "porfa": true, "porfavor": true, "tambien": true,
	"unos": true, "unas": true, "el": true, "la": true, "los": true, "las": true,
	"con": true, "para": true, "mi": true, "y": true, "otro": true, "otra": true,
	"pedir": true, "ordenar": true, "gustaria": true, "podria": true, "puedes": true,
	"hola": true, "buenas": true, "buenos": true, "dias": true, "tardes": true,
	"noches": true, "gracias": true, "si": true, "no": true, "please": true,
	"llevar": true, "aqui": true, "ahora": true, "igual": true,
}

// parseQuantity reads digits, "x2"/"2x" forms, "par" and spelled numbers.
func parseQuantity(tok string) (int, bool) {
	if tok == "par" {
		return 2, true
	}
	digits := tok
	if strings.HasSuffix(digits, "x") {
		digits = strings.TrimSuffix(digits, "x")
	} else if strings.HasPrefix(digits, "x") {
		digits = strings.TrimPrefix(digits, "x")
	}
	n, ok := textnorm.Number(digits)
	if !ok {
		return 0, false
	}
	if n > order.MaxQuantity {
		n = order.MaxQuantity
	}
	return n, true
}
