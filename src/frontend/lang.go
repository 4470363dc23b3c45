package frontend

// reservedItem pairs a keyword spelling with its token type.
type reservedItem struct {
	val string
	typ itemType
}

// rw buckets reserved SL keywords by length, so isKeyword only has to scan
// the words of the candidate's exact length rather than a full hash lookup.
var rw = [...][]reservedItem{
	// Two-grams
	2: {
		{val: "if", typ: KwIf},
	},
	// Three-grams
	3: {
		{val: "int", typ: KwInt},
	},
	// Four-grams
	4: {
		{val: "void", typ: KwVoid},
		{val: "else", typ: KwElse},
	},
	// Five-grams
	5: {
		{val: "break", typ: KwBreak},
		{val: "while", typ: KwWhile},
		{val: "const", typ: KwConst},
	},
	// Six-grams
	6: {
		{val: "return", typ: KwReturn},
	},
	// Eight-grams
	8: {
		{val: "continue", typ: KwContinue},
	},
}

// isKeyword returns the keyword's token type if s is a reserved SL word.
func isKeyword(s string) (itemType, bool) {
	if len(s) == 0 || len(s) >= len(rw) {
		return 0, false
	}
	for _, e1 := range rw[len(s)] {
		if e1.val == s {
			return e1.typ, true
		}
	}
	return 0, false
}
