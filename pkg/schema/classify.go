package schema

import "strings"

// LocalizedCount is the arity of a localized string cell: 16 locale strings
// followed by one flag word.
const LocalizedCount = 17

// Class is the layout a cell token resolves to.
type Class struct {
	Kind      Kind
	Array     bool
	Localized bool
}

type classRule struct {
	tokens []string
	class  Class
}

// classRules is evaluated top to bottom; the first rule with a token contained
// in the lower-cased cell name wins, so more specific tokens come first.
var classRules = []classRule{
	{[]string{"uint64", "ulong"}, Class{Kind: UInt64}},
	{[]string{"int64"}, Class{Kind: Int64}},
	{[]string{"bytearray"}, Class{Kind: UInt8, Array: true}},
	{[]string{"byte"}, Class{Kind: UInt8}},
	{[]string{"locstring", "localizedstring"}, Class{Kind: StringRef, Array: true, Localized: true}},
	{[]string{"stringarray"}, Class{Kind: StringRef, Array: true}},
	{[]string{"string"}, Class{Kind: StringRef}},
	{[]string{"floatarray"}, Class{Kind: Float32, Array: true}},
	{[]string{"uintarray"}, Class{Kind: UInt32, Array: true}},
	{[]string{"array"}, Class{Kind: Int32, Array: true}},
	{[]string{"float"}, Class{Kind: Float32}},
	{[]string{"bool", "enum", "flag", "mask", "pointer"}, Class{Kind: Int32}},
	{[]string{"uint"}, Class{Kind: UInt32}},
}

// Classify resolves a cell type token such as DBCLocStringCell to its layout
// class. Unknown tokens, plain integer and key cells are Int32 scalars.
func Classify(cell string) Class {
	lower := strings.ToLower(cell)
	for _, rule := range classRules {
		for _, tok := range rule.tokens {
			if strings.Contains(lower, tok) {
				return rule.class
			}
		}
	}
	return Class{Kind: Int32}
}
