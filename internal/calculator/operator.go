package calculator

import "fmt"

// Operator is a binary operation waiting for its second operand.
type Operator string

const (
	Divide   Operator = "÷"
	Multiply Operator = "×"
	Add      Operator = "+"
	Subtract Operator = "−"

	// hyphen is evaluated as subtraction but no key produces it.
	hyphen Operator = "-"
)

// apply evaluates a op b with float64 semantics. Division by zero yields
// ±Inf or NaN.
func (op Operator) apply(a, b float64) float64 {
	switch op {
	case Divide:
		return a / b
	case Multiply:
		return a * b
	case Add:
		return a + b
	case Subtract, hyphen:
		return a - b
	default:
		panic(fmt.Sprintf("calculator: unknown operator %q", string(op)))
	}
}
