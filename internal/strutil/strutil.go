// Package strutil holds small string helpers shared by the hub.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// ByteLength returns the UTF-8 encoded size of s in bytes. Unlike
// len(s) on an already-encoded string this walks runes, so it also
// works when callers are sizing payloads per character.
func ByteLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf8.RuneLen(r)
	}
	return n
}

// SplitNonEmpty splits s on sep and drops empty tokens, so repeated or
// leading separators never yield "" entries.
func SplitNonEmpty(s, sep string) []string {
	var out []string
	for _, tok := range strings.Split(s, sep) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
