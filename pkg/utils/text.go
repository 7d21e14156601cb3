package utils

import "strings"

// JoinNonBlank trims each fragment, drops blanks and joins the rest with a
// single space, keeping order.
func JoinNonBlank(fragments []string) string {
	kept := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		kept = append(kept, fragment)
	}
	return strings.Join(kept, " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
