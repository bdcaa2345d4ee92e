package mindmap

import (
	"strconv"
	"strings"
)

// Slug lowercases s and keeps ASCII letters and digits, joining the runs
// between them with single dashes. An empty result becomes "node".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return "node"
	}
	return b.String()
}

// idSpace hands out unique slugs, suffixing collisions with -2, -3, ...
type idSpace map[string]bool

func (ids idSpace) next(label string) string {
	base := Slug(label)
	id := base
	for n := 2; ids[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	ids[id] = true
	return id
}
