package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_AcceptedShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trunk prefix", "0712345678", "254712345678"},
		{"bare subscriber", "712345678", "254712345678"},
		{"canonical", "254712345678", "254712345678"},
		{"international prefix", "+254712345678", "254712345678"},
		{"safaricom 1xx range", "0110123456", "254110123456"},
		{"spaces and dashes", "0712 345-678", "254712345678"},
		{"parentheses", "(0712) 345678", "254712345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_AllFormsAgree(t *testing.T) {
	forms := []string{"0712345678", "712345678", "254712345678", "+254712345678"}

	for _, f := range forms {
		got, err := Normalize(f)
		assert.NoError(t, err)
		assert.Equal(t, "254712345678", got, "form %q", f)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "12345"},
		{"empty", ""},
		{"letters only", "not-a-phone"},
		{"landline leading digit", "0212345678"},
		{"wrong country code", "255712345678"},
		{"eleven digits", "07123456789"},
		{"bare subscriber wrong lead", "212345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			assert.ErrorIs(t, err, ErrInvalidPhone)
		})
	}
}

func TestToDisplay_RoundTrip(t *testing.T) {
	inputs := []string{"0712345678", "712345678", "+254 712 345 678", "0110123456"}

	for _, in := range inputs {
		canonical, err := Normalize(in)
		assert.NoError(t, err)

		display := ToDisplay(canonical)
		again, err := Normalize(display)
		assert.NoError(t, err)
		assert.Equal(t, canonical, again)
	}
}

func TestToDisplay_NonCanonicalPassthrough(t *testing.T) {
	assert.Equal(t, "garbage", ToDisplay("garbage"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("0712345678"))
	assert.False(t, IsValid("12345"))
}
