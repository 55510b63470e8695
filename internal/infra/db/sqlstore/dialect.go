package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures what differs between the SQL backends.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2...) instead of ?.
	Numbered bool
	// Returning uses INSERT ... RETURNING id instead of LastInsertId.
	Returning bool
	// SeqColumn breaks created_at ties in insertion order.
	SeqColumn string
	Schema    []string
}

// Rebind rewrites ? placeholders for dialects with numbered parameters.
func (d Dialect) Rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
