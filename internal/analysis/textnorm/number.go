package textnorm

import (
	"errors"
	"strconv"
)

var spelledNumbers = map[string]int{
	"cero":   0,
	"un":     1,
	"uno":    1,
	"una":    1,
	"dos":    2,
	"tres":   3,
	"cuatro": 4,
	"cinco":  5,
	"seis":   6,
	"siete":  7,
	"ocho":   8,
	"nueve":  9,
	"diez":   10,
	"once":   11,
	"doce":   12,
	"quince": 15,
	"veinte": 20,
}

// Number reads a folded token written in digits or as a Spanish number word.
// Digit strings too long for an int saturate at the largest int.
func Number(token string) (int, bool) {
	if n, ok := spelledNumbers[token]; ok {
		return n, true
	}
	n, err := strconv.Atoi(token)
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n, true
	}
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
