// Package lang detects the user's language and owns every localized
// user-facing message. Nothing outside this package hard-codes Arabic or
// English reply text.
package lang

import "unicode"

// Language is the detected language of a user message.
type Language string

const (
	Arabic  Language = "arabic"
	English Language = "english"
)

// Detect classifies text as Arabic when the ratio of Arabic-script
// characters among alphabetic characters exceeds 0.3, else English.
func Detect(text string) Language {
	var arabic, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r >= 0x0600 && r <= 0x06FF {
			arabic++
		}
	}
	if letters == 0 {
		return English
	}
	if float64(arabic)/float64(letters) > 0.3 {
		return Arabic
	}
	return English
}

// pick returns the Arabic or English variant for the language.
func pick(l Language, ar, en string) string {
	if l == Arabic {
		return ar
	}
	return en
}
