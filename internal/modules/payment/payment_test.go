package payment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{FullName: "Mario Rossi", CardNumber: "4111111111111111", CVV: "123", Price: 347}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate(validDetails()))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Details)
		param  string
	}{
		{"empty name", func(d *Details) { d.FullName = "  " }, "FullName"},
		{"empty card", func(d *Details) { d.CardNumber = "" }, "CardNumber"},
		{"short card", func(d *Details) { d.CardNumber = "411111111111111" }, "CardNumber"},
		{"long card", func(d *Details) { d.CardNumber = "41111111111111112" }, "CardNumber"},
		{"letters in card", func(d *Details) { d.CardNumber = "4111-1111-1111-1" }, "CardNumber"},
		{"empty cvv", func(d *Details) { d.CVV = "" }, "CVV"},
		{"short cvv", func(d *Details) { d.CVV = "12" }, "CVV"},
		{"letters in cvv", func(d *Details) { d.CVV = "12a" }, "CVV"},
		{"zero price", func(d *Details) { d.Price = 0 }, "Price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)

			err := Validate(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRejected))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.param, verr.Fields[0].Param)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := Validate(Details{})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	params := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		params = append(params, f.Param)
	}
	assert.Equal(t, []string{"FullName", "CardNumber", "CVV", "Price"}, params)
	assert.Contains(t, err.Error(), "payment rejected")
}
