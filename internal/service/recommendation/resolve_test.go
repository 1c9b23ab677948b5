package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/zhouzirui/menu-assistant/backend/internal/model/recommendation"
)

func TestResolveOption(t *testing.T) {
	drink := questionBank[qDrink]
	cases := []struct {
		raw  string
		want int
	}{
		{"2", 1},
		{"la 3", 2},
		{"opción dos", 1},
		{"la primera", 0},
		{"Bebida CALIENTE", 0},
		{"un café", 2},
		{"algo frío", 1},
		{"ninguna gracias", 3},
		{"9", -1},
		{"", -1},
		{"lo que sea de la casa", -1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, resolveOption(drink, tc.raw), tc.raw)
	}
}

func TestPlanIsStablePerSession(t *testing.T) {
	ids1, seq1, w1 := plan("abc", model.TierMedium, "")
	ids2, seq2, w2 := plan("abc", model.TierMedium, "")
	assert.Equal(t, ids1, ids2)
	assert.Equal(t, seq1, seq2)
	assert.Equal(t, w1, w2)
	assert.Equal(t, qMoment, ids1[0])

	withMeal, _, _ := plan("abc", model.TierMedium, "cena")
	assert.NotContains(t, withMeal, qMoment)
	assert.Len(t, withMeal, 3)
}
