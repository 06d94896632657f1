package calculation

import (
	"fmt"
	"math"
)

// Type identifies an arithmetic operation.
type Type string

// Supported operation types.
const (
	TypeAddition       Type = "addition"
	TypeSubtraction    Type = "subtraction"
	TypeMultiplication Type = "multiplication"
	TypeDivision       Type = "division"
	TypePower          Type = "power"
)

// InvalidInputError reports a compute request that cannot be evaluated:
// unknown operation type, wrong arity, or a zero divisor.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func invalidInputf(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// operation describes one entry of the dispatch table: the arity rule
// plus the evaluation function.
type operation struct {
	// exactArity > 0 requires exactly that many inputs; otherwise
	// minArity applies.
	minArity   int
	exactArity int
	apply      func(inputs []float64) (float64, error)
}

// fold reduces inputs left to right with a binary function.
func fold(f func(acc, x float64) float64) func([]float64) (float64, error) {
	return func(inputs []float64) (float64, error) {
		acc := inputs[0]
		for _, x := range inputs[1:] {
			acc = f(acc, x)
		}
		return acc, nil
	}
}

var operations = map[Type]operation{
	TypeAddition: {
		minArity: 2,
		apply:    fold(func(acc, x float64) float64 { return acc + x }),
	},
	TypeSubtraction: {
		minArity: 2,
		apply:    fold(func(acc, x float64) float64 { return acc - x }),
	},
	TypeMultiplication: {
		minArity: 2,
		apply:    fold(func(acc, x float64) float64 { return acc * x }),
	},
	TypeDivision: {
		minArity: 2,
		apply: func(inputs []float64) (float64, error) {
			acc := inputs[0]
			for _, x := range inputs[1:] {
				if x == 0 {
					return 0, invalidInputf("cannot divide by zero")
				}
				acc /= x
			}
			return acc, nil
		},
	},
	TypePower: {
		exactArity: 2,
		apply: func(inputs []float64) (float64, error) {
			// Follows IEEE 754 semantics: a negative base with a
			// non-integer exponent yields NaN rather than an error.
			return math.Pow(inputs[0], inputs[1]), nil
		},
	},
}

// ParseType validates a client-supplied operation type string.
func ParseType(s string) (Type, error) {
	typ := Type(s)
	if _, ok := operations[typ]; !ok {
		return "", invalidInputf("unsupported calculation type: %q", s)
	}
	return typ, nil
}

// Compute evaluates the operation over inputs. The result is a pure
// function of (typ, inputs); on error no partial result is returned.
func Compute(typ Type, inputs []float64) (float64, error) {
	op, ok := operations[typ]
	if !ok {
		return 0, invalidInputf("unsupported calculation type: %q", typ)
	}

	if op.exactArity > 0 {
		if len(inputs) != op.exactArity {
			return 0, invalidInputf("%s requires exactly %d inputs, got %d", typ, op.exactArity, len(inputs))
		}
	} else if len(inputs) < op.minArity {
		return 0, invalidInputf("%s requires at least %d inputs, got %d", typ, op.minArity, len(inputs))
	}

	return op.apply(inputs)
}
