package schema

import "fmt"

// Kind is the value type stored in one element of a field.
type Kind uint8

const (
	Int32 Kind = iota + 1
	UInt32
	Float32
	UInt64
	UInt8
	StringRef
	Int64
)

var kindNames = map[Kind]string{
	Int32:     "int32",
	UInt32:    "uint32",
	Float32:   "float32",
	UInt64:    "uint64",
	UInt8:     "uint8",
	StringRef: "string",
	Int64:     "int64",
}

// Width returns the number of bytes one element of this kind occupies.
func (k Kind) Width() int {
	switch k {
	case UInt64, Int64:
		return 8
	case UInt8:
		return 1
	case Int32, UInt32, Float32, StringRef:
		return 4
	default:
		return 0
	}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the kind by its stable document name.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown field kind %d", uint8(k))
	}
	return []byte(name), nil
}

// UnmarshalText parses a stable document name.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown field kind %q", text)
	}
	*k = kind
	return nil
}

// ParseKind maps a document name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
