// Package calculator implements the keypad state machine behind a basic
// four-function calculator.
//
// A Calculator is an immutable value. Input returns the state that follows
// a key press and never modifies the receiver, so a caller keeps its
// current state in a single variable and replaces it after every key.
package calculator

import (
	"strings"
	"unicode/utf8"
)

// Calculator is the display state of the keypad. The zero value is the
// cleared state.
type Calculator struct {
	number   string
	operator Operator

	number1    float64
	hasNumber1 bool
	number2    float64
	hasNumber2 bool
	result     float64
	hasResult  bool

	number2Percentage bool
}

// Replay feeds keys to a cleared calculator and returns the final state.
func Replay(keys ...string) (Calculator, error) {
	var c Calculator
	for _, key := range keys {
		next, err := c.Input(key)
		if err != nil {
			return c, err
		}
		c = next
	}
	return c, nil
}

// Input returns the state after pressing key.
func (c Calculator) Input(key string) (Calculator, error) {
	return c.Press(ParseKey(key))
}

// Press returns the state after pressing k. On error the receiver is
// returned unchanged.
func (c Calculator) Press(k Key) (Calculator, error) {
	if c.hasResult {
		// Only an operator continues from a finished computation; every
		// other key clears the display and is otherwise ignored.
		if k.Kind != KeyOperator {
			return Calculator{}, nil
		}
		c = Calculator{
			number1:    c.result,
			hasNumber1: true,
			operator:   k.Operator(),
		}
	}

	switch k.Kind {
	case KeyOperator:
		return c.pressOperator(k.Operator())
	case KeyBack:
		return c.back(), nil
	case KeyDot:
		return c.dot(), nil
	case KeyClear:
		return Calculator{}, nil
	case KeyEquals:
		return c.evaluate(false)
	case KeyPercent:
		return c.evaluate(true)
	case KeyNegate:
		return c.negate(), nil
	}

	if k.Text == "0" && !c.HasNumber() {
		return c, nil
	}
	c.number += k.Text
	return c, nil
}

func (c Calculator) pressOperator(op Operator) (Calculator, error) {
	switch {
	case c.HasNumber() && c.HasOperator() && c.hasNumber1:
		evaluated, err := c.evaluate(false)
		if err != nil {
			return c, err
		}
		return Calculator{
			operator:   op,
			number1:    evaluated.result,
			hasNumber1: true,
		}, nil

	case c.HasNumber() && !c.HasOperator():
		n, err := parseNumber(c.number)
		if err != nil {
			return c, err
		}
		c.operator = op
		c.number1, c.hasNumber1 = n, true
		c.number = ""

	case !c.HasNumber() && c.HasOperator() && c.hasNumber1:
		c.operator = op
	}
	return c, nil
}

func (c Calculator) back() Calculator {
	if c.HasNumber() {
		_, size := utf8.DecodeLastRuneInString(c.number)
		c.number = c.number[:len(c.number)-size]
	}
	return c
}

func (c Calculator) dot() Calculator {
	switch {
	case !c.HasNumber():
		c.number = "0."
	case !strings.Contains(c.number, "."):
		c.number += "."
	}
	return c
}

func (c Calculator) negate() Calculator {
	if c.HasNumber() {
		if rest, ok := strings.CutPrefix(c.number, "-"); ok {
			c.number = rest
		} else {
			c.number = "-" + c.number
		}
	}
	return c
}

// evaluate applies the pending operator. With percent set the second
// operand is taken as a percentage of the first.
func (c Calculator) evaluate(percent bool) (Calculator, error) {
	if !c.HasOperator() || !c.hasNumber1 {
		return c, nil
	}

	var n2 float64
	if c.HasNumber() {
		n, err := parseNumber(c.number)
		if err != nil {
			return c, err
		}
		n2 = n
	}

	operand := n2
	if percent {
		operand = n2 / 100 * c.number1
		c.number2Percentage = true
	}

	c.number2, c.hasNumber2 = n2, true
	c.result, c.hasResult = c.operator.apply(c.number1, operand), true
	return c, nil
}

// Output is the main display line.
func (c Calculator) Output() string {
	switch {
	case c.hasResult:
		return FormatNumber(c.result)
	case c.HasNumber():
		return c.number
	default:
		return "0"
	}
}

// Equation is the secondary display line, e.g. "3 + 4 =" or "200 × 50% =".
func (c Calculator) Equation() string {
	var b strings.Builder
	if c.hasNumber1 {
		b.WriteString(FormatNumber(c.number1))
	}
	b.WriteByte(' ')
	b.WriteString(string(c.operator))
	b.WriteByte(' ')
	if c.hasNumber2 {
		b.WriteString(FormatNumber(c.number2))
	}
	if c.number2Percentage {
		b.WriteByte('%')
	}
	if c.hasResult {
		b.WriteString(" =")
	}
	return b.String()
}

// HasOperator reports whether an operator is pending.
func (c Calculator) HasOperator() bool { return c.operator != "" }

// HasNumber reports whether digits are being typed.
func (c Calculator) HasNumber() bool { return c.number != "" }

// HasNumber1 reports whether the first operand is fixed.
func (c Calculator) HasNumber1() bool { return c.hasNumber1 }

// Number is the digit string being typed.
func (c Calculator) Number() string { return c.number }

// Operator is the pending operator, empty when none.
func (c Calculator) Operator() Operator { return c.operator }

// Number1 is the first operand and whether it is set.
func (c Calculator) Number1() (float64, bool) { return c.number1, c.hasNumber1 }

// Number2 is the second operand of the last evaluation and whether it is set.
func (c Calculator) Number2() (float64, bool) { return c.number2, c.hasNumber2 }

// Result is the last computed value and whether one is shown.
func (c Calculator) Result() (float64, bool) { return c.result, c.hasResult }

// IsNumber2Percentage reports whether the last evaluation used the percent key.
func (c Calculator) IsNumber2Percentage() bool { return c.number2Percentage }
