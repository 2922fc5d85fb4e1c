// Package names validates and sanitizes service route names used as queue
// identities. Route names are lowercase words separated by '.', '-' or '_',
// the same alphabet the key layout assumes ('/' is reserved as the key
// separator).
package names

import "strings"

// Valid reports whether route is a well-formed service route: non-empty and
// composed only of lowercase letters, digits, '.', '-' and '_'.
func Valid(route string) bool {
	if route == "" {
		return false
	}
	for i := 0; i < len(route); i++ {
		if !validByte(route[i]) {
			return false
		}
	}
	return true
}

// Filter returns a sanitized surrogate for an invalid route: the name is
// lowercased and every disallowed character is dropped. A route that
// sanitizes to nothing becomes "invalid.route".
func Filter(route string) string {
	var b strings.Builder
	b.Grow(len(route))
	for i := 0; i < len(route); i++ {
		ch := route[i]
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		if validByte(ch) {
			b.WriteByte(ch)
		}
	}
	if b.Len() == 0 {
		return "invalid.route"
	}
	return b.String()
}

// Sanitize returns route unchanged when valid, its filtered surrogate
// otherwise.
func Sanitize(route string) string {
	if Valid(route) {
		return route
	}
	return Filter(route)
}

func validByte(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z':
		return true
	case ch >= '0' && ch <= '9':
		return true
	case ch == '.' || ch == '-' || ch == '_':
		return true
	}
	return false
}
