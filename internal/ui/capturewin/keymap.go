package capturewin

import (
	"unicode"

	"keytap/internal/core/capture"

	"fyne.io/fyne/v2"
)

// specialKeys maps non-printing keys that carry a character to that character.
var specialKeys = map[fyne.KeyName]rune{
	fyne.KeyEscape:    capture.EscapeRune,
	fyne.KeyReturn:    '\n',
	fyne.KeyEnter:     '\n',
	fyne.KeyTab:       '\t',
	fyne.KeyBackspace: '\b',
	fyne.KeyDelete:    '\x7f',
}

// KeyChars returns the characters produced by a non-printing key.
// Printable keys arrive through the typed rune callback and yield nothing here.
func KeyChars(name fyne.KeyName) []rune {
	if char, ok := specialKeys[name]; ok {
		return []rune{char}
	}
	return nil
}

// RuneChars returns the characters produced by a typed rune.
func RuneChars(char rune) []rune {
	if char == unicode.ReplacementChar {
		return nil
	}
	return []rune{char}
}
