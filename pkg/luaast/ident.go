package luaast

import (
	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// Lua reserved words. A binding whose local name lands on one of these can
// never be declared and must be rejected before emission.
var reservedWords = map[string]bool{
	"and":      true,
	"break":    true,
	"do":       true,
	"else":     true,
	"elseif":   true,
	"end":      true,
	"false":    true,
	"for":      true,
	"function": true,
	"goto":     true,
	"if":       true,
	"in":       true,
	"local":    true,
	"nil":      true,
	"not":      true,
	"or":       true,
	"repeat":   true,
	"return":   true,
	"then":     true,
	"true":     true,
	"until":    true,
	"while":    true,
}

var identPattern = regexp2.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`, regexp2.None)

// IsReserved reports whether name is a Lua reserved word.
func IsReserved(name string) bool {
	return reservedWords[name]
}

// ValidIdent reports whether name can appear as a bare Lua identifier.
// Names are NFC-normalized first so visually identical spellings that
// differ only in combining-character form are judged consistently.
func ValidIdent(name string) bool {
	name = norm.NFC.String(name)
	if IsReserved(name) {
		return false
	}
	ok, err := identPattern.MatchString(name)
	if err != nil {
		return false
	}
	return ok
}
