// Package input sanitizes raw user input before it reaches the calculator.
//
// The calculator assumes well-formed non-negative numbers. Callers run form
// values through Amount/Quantity and whole states through Validate.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Digits strips every character that is not an ASCII digit.
// "Rp 25.000" becomes "25000".
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Amount parses raw as a non-negative whole amount in minor units, defaulting to zero.
func Amount(raw string) float64 {
	digits := Digits(raw)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}

// Quantity parses raw as a non-negative count, defaulting to zero.
func Quantity(raw string) int {
	v, err := strconv.Atoi(Digits(raw))
	if err != nil {
		return 0
	}
	return v
}

// AssignIDs gives every participant, item and fee without an ID a fresh UUID.
// Hand-written bills usually omit IDs, but the calculator keys allocations by them.
func AssignIDs(state *models.BillState) {
	for i := range state.Participants {
		p := &state.Participants[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		for j := range p.Items {
			if p.Items[j].ID == "" {
				p.Items[j].ID = uuid.New().String()
			}
		}
	}
	for i := range state.Fees {
		if state.Fees[i].ID == "" {
			state.Fees[i].ID = uuid.New().String()
		}
	}
}

// Validate checks a bill state against the model's struct tags.
// The returned error lists every failing field.
func Validate(state models.BillState) error {
	err := validate.Struct(state)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate bill state: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid bill state: %s", strings.Join(msgs, "; "))
}
