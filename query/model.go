package query

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// ModelOf derives the model identifier for T the same way bun derives a
// default table name: the type name in snake_case, pluralized.
// ModelOf[*Article]() and ModelOf[Article]() both return "articles".
func ModelOf[T any]() string {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return inflection.Plural(toSnake(rt.Name()))
}

// toSnake converts s to snake_case. Punctuation from reflected names
// (generic brackets, package dots) collapses into a single underscore so the
// result is safe as a cache key namespace.
func toSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false
	underscore := func() {
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					underscore()
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			underscore()
		}
	}

	return strings.Trim(b.String(), "_")
}
