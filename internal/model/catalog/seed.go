package catalog

// DemoBranchID identifies the branch provided by Seed.
const DemoBranchID = "cafeteria-centro"

// Seed provides a demo cafeteria so the service is usable without a catalog file.
func Seed() []Branch {
	return []Branch{
		{
			ID:           DemoBranchID,
			Name:         "Cafetería Centro",
			BusinessID:   "cafeteria-demo",
			BusinessType: "cafe",
			MenuText: "☕ Menú Cafetería Centro\n" +
				"Bebidas calientes: Café $35, Café Americano $40, Capuchino $48, Té Chai $45\n" +
				"Bebidas frías: Frappé de Café $65, Frappé de Fresa $65, Jugo de Naranja $38, Jarra de Limonada $120\n" +
				"Desayunos: Chilaquiles Verdes $95, Molletes $75, Hotcakes $80\n" +
				"Comida: Sándwich de Pavo $85, Ensalada César $90, Charola de Bocadillos $240\n" +
				"Panadería y postres: Croissant $35, Pan de Elote $40, Pastel de Chocolate $60\n" +
				"Horario: lunes a domingo de 8:00 a 21:00. Pedidos para recoger en sucursal.",
			Entries: []Entry{
				{Name: "Café", Aliases: []string{"cafecito", "cafe de la casa"}, Price: 3500, Category: "bebidas calientes", Tags: []string{"caliente", "cafe"}},
				{Name: "Café Americano", Aliases: []string{"americano"}, Price: 4000, Category: "bebidas calientes", Tags: []string{"caliente", "cafe"}},
				{Name: "Capuchino", Aliases: []string{"cappuccino"}, Price: 4800, Category: "bebidas calientes", Tags: []string{"caliente", "cafe", "dulce"}},
				{Name: "Té Chai", Aliases: []string{"chai"}, Price: 4500, Category: "bebidas calientes", Tags: []string{"caliente"}},
				{Name: "Frappé de Café", Aliases: []string{"frappuccino"}, Price: 6500, Category: "bebidas frias", Tags: []string{"fria", "dulce", "cafe"}},
				{Name: "Frappé de Fresa", Price: 6500, Category: "bebidas frias", Tags: []string{"fria", "dulce"}},
				{Name: "Jugo de Naranja", Aliases: []string{"jugo"}, Price: 3800, Category: "bebidas frias", Tags: []string{"fria", "ligero", "desayuno"}},
				{Name: "Jarra de Limonada", Aliases: []string{"limonada"}, Price: 12000, Category: "bebidas frias", Tags: []string{"fria", "compartir"}},
				{Name: "Chilaquiles Verdes", Aliases: []string{"chilaquiles"}, Price: 9500, Category: "desayunos", Tags: []string{"salado", "desayuno", "fuerte"}},
				{Name: "Molletes", Price: 7500, Category: "desayunos", Tags: []string{"salado", "desayuno"}},
				{Name: "Hotcakes", Aliases: []string{"pancakes"}, Price: 8000, Category: "desayunos", Tags: []string{"dulce", "desayuno"}},
				{Name: "Sándwich de Pavo", Aliases: []string{"sandwich", "torta de pavo"}, Price: 8500, Category: "comida", Tags: []string{"salado", "comida", "ligero"}},
				{Name: "Ensalada César", Aliases: []string{"ensalada"}, Price: 9000, Category: "comida", Tags: []string{"salado", "comida", "ligero"}},
				{Name: "Charola de Bocadillos", Aliases: []string{"bocadillos"}, Price: 24000, Category: "comida", Tags: []string{"salado", "compartir", "comida", "cena"}},
				{Name: "Croissant", Price: 3500, Category: "panaderia", Tags: []string{"salado", "ligero", "desayuno"}},
				{Name: "Pan de Elote", Price: 4000, Category: "panaderia", Tags: []string{"dulce", "postre"}},
				{Name: "Pastel de Chocolate", Aliases: []string{"pastel"}, Price: 6000, Category: "postres", Tags: []string{"dulce", "postre", "compartir"}},
			},
		},
	}
}
