package gen

import (
	"unicode"
	"unicode/utf8"
)

// reservedNames are identifiers the generated bodies declare themselves.
var reservedNames = map[string]bool{
	"v": true, // visitor
	"i": true, // loop indices
	"k": true, // map keys
	"e": true, // map values
}

// receiverName returns the receiver identifier for generated methods on
// typeName: its first letter in lower case, e.g. "Node" → "n".
func receiverName(typeName string) string {
	r, _ := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return "x"
	}
	name := string(unicode.ToLower(r))
	if reservedNames[name] {
		return "x"
	}
	return name
}
