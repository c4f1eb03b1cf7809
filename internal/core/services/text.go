package services

import "unicode/utf8"

// truncateText cuts s to at most max bytes without splitting a UTF-8
// rune: the cut backs up to the nearest rune boundary, so the result is
// always valid UTF-8 and never longer than max.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
