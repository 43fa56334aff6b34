// README: Card payment check performed before a rental is stored (no real gateway).
package payment

import (
	"errors"
	"strings"
)

var ErrRejected = errors.New("payment rejected")

// Details is the card payload the booking client submits.
type Details struct {
	FullName   string `json:"FullName"`
	CardNumber string `json:"CardNumber"`
	CVV        string `json:"CVV"`
	Price      int64  `json:"Price"`
}

type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// ValidationError lists every rejected field. errors.Is(err, ErrRejected) holds for it.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Param+": "+f.Msg)
	}
	return ErrRejected.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrRejected
}

const (
	cardNumberDigits = 16
	cvvDigits        = 3
)

// Validate accepts a payment when the holder name is present, the card number has
// exactly 16 digits, the CVV exactly 3 and the amount is at least 1.
func Validate(d Details) error {
	var fields []FieldError
	add := func(param, msg string) {
		fields = append(fields, FieldError{Param: param, Msg: msg})
	}

	if strings.TrimSpace(d.FullName) == "" {
		add("FullName", "Full Name can't be empty")
	}
	switch {
	case d.CardNumber == "":
		add("CardNumber", "Card Number can't be empty")
	case !digits(d.CardNumber, cardNumberDigits):
		add("CardNumber", "CardNumber must have 16 digits")
	}
	switch {
	case d.CVV == "":
		add("CVV", "CVV can't be empty")
	case !digits(d.CVV, cvvDigits):
		add("CVV", "CVV must have 3 digits")
	}
	if d.Price < 1 {
		add("Price", "Price must be higher than 0")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
