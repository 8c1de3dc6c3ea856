package calculator

// KeyKind classifies a key press.
type KeyKind uint8

const (
	KeyAppend   KeyKind = iota // digits and any unrecognised token
	KeyOperator                // ÷ × + −
	KeyBack                    // back
	KeyDot                     // .
	KeyClear                   // C
	KeyEquals                  // =
	KeyPercent                 // %
	KeyNegate                  // ±
)

var keyKindNames = [...]string{
	KeyAppend:   "append",
	KeyOperator: "operator",
	KeyBack:     "back",
	KeyDot:      "dot",
	KeyClear:    "clear",
	KeyEquals:   "equals",
	KeyPercent:  "percent",
	KeyNegate:   "negate",
}

func (k KeyKind) String() string {
	if int(k) < len(keyKindNames) {
		return keyKindNames[k]
	}
	return "unknown"
}

// Key is a key token resolved to its kind.
type Key struct {
	Kind KeyKind
	Text string
}

// ParseKey resolves a raw token. Tokens outside the keypad alphabet are
// appended to the number being typed, like digits.
func ParseKey(s string) Key {
	kind := KeyAppend
	switch s {
	case string(Divide), string(Multiply), string(Add), string(Subtract):
		kind = KeyOperator
	case "back":
		kind = KeyBack
	case ".":
		kind = KeyDot
	case "C":
		kind = KeyClear
	case "=":
		kind = KeyEquals
	case "%":
		kind = KeyPercent
	case "±":
		kind = KeyNegate
	}
	return Key{Kind: kind, Text: s}
}

// Operator returns the operator named by an operator key.
func (k Key) Operator() Operator {
	if k.Kind != KeyOperator {
		return ""
	}
	return Operator(k.Text)
}

func (k Key) String() string {
	return k.Text
}
