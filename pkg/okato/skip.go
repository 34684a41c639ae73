package okato

import "strings"

// headerPhrases mark grouping rows ("Сельские населенные пункты", ...) that
// precede a block of real settlements.
var headerPhrases = []string{
	"Сельские населенные пункты",
	"Объекты",
	"Города районного значения",
	"Города областного значения",
	"Города краевого значения",
	"Населенные пункты",
	"Города, находящиеся в границах",
	"Поселки городского типа",
	"Административные округа",
	"Районы",
	"Сельсоветы",
}

// Skip reports whether the record is a category header rather than a place.
func Skip(r Record) bool {
	for _, p := range headerPhrases {
		if strings.Contains(r.Title, p) {
			return true
		}
	}
	return false
}
