package model

import (
	"fmt"
	"strings"
	"time"

	"calc_service/internal/common"
)

type CalculationType string

const (
	CalculationAddition       CalculationType = "addition"
	CalculationSubtraction    CalculationType = "subtraction"
	CalculationMultiplication CalculationType = "multiplication"
	CalculationDivision       CalculationType = "division"
)

// ParseCalculationType normalizes and validates a calculation type string.
func ParseCalculationType(s string) (CalculationType, error) {
	switch t := CalculationType(strings.ToLower(s)); t {
	case CalculationAddition, CalculationSubtraction, CalculationMultiplication, CalculationDivision:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported calculation type %q: %w", s, common.ErrInvalidInput)
	}
}

type Calculation struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      CalculationType `json:"type"`
	Inputs    []float64       `json:"inputs"`
	Result    float64         `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Compute evaluates inputs under calcType. At least two inputs are
// required; for division every divisor past the first input must be
// non-zero.
func Compute(calcType CalculationType, inputs []float64) (float64, error) {
	if len(inputs) < 2 {
		return 0, fmt.Errorf("at least two numbers are required for calculation: %w", common.ErrInvalidInput)
	}

	switch calcType {
	case CalculationAddition:
		var sum float64
		for _, v := range inputs {
			sum += v
		}
		return sum, nil
	case CalculationSubtraction:
		result := inputs[0]
		for _, v := range inputs[1:] {
			result -= v
		}
		return result, nil
	case CalculationMultiplication:
		result := 1.0
		for _, v := range inputs {
			result *= v
		}
		return result, nil
	case CalculationDivision:
		result := inputs[0]
		for _, v := range inputs[1:] {
			if v == 0 {
				return 0, fmt.Errorf("cannot divide by zero: %w", common.ErrInvalidInput)
			}
			result /= v
		}
		return result, nil
	default:
		return 0, fmt.Errorf("unsupported calculation type %q: %w", calcType, common.ErrInvalidInput)
	}
}
