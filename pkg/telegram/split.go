package telegram

import (
	"strings"
	"unicode/utf16"
)

// MaxMessageLength is the Telegram limit for one text message, in UTF-16 code units.
const MaxMessageLength = 4096

// SplitMessage cuts text into chunks of at most limit UTF-16 code units, breaking
// after a newline when one exists inside the window.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if utf16Len(text) <= limit {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string
	for len(runes) > 0 {
		fit := fitPrefix(runes, limit)
		if fit == len(runes) {
			break
		}
		cut := fit
		if i := lastNewline(runes[:fit]); i > 0 {
			cut = i + 1
		}
		if cut == 0 {
			cut = 1
		}
		if chunk := strings.TrimRight(string(runes[:cut]), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	if rest := strings.TrimRight(string(runes), "\n"); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// fitPrefix returns how many leading runes fit in limit UTF-16 code units.
func fitPrefix(runes []rune, limit int) int {
	units := 0
	for i, r := range runes {
		units += runeUnits(r)
		if units > limit {
			return i
		}
	}
	return len(runes)
}

func runeUnits(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}
