// Package phone canonicalizes Kenyan mobile numbers into the 254XXXXXXXXX
// form the payment gateway and the order backend both expect.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

const (
	countryCode     = "254"
	canonicalLength = 12
)

var nonDigitRegex = regexp.MustCompile(`\D+`)

// Normalize converts a loosely formatted mobile number into canonical
// international form (254 followed by the 9-digit subscriber number).
// Accepted inputs: 07XXXXXXXX / 01XXXXXXXX, bare 7XXXXXXXX / 1XXXXXXXX,
// 2547XXXXXXXX, and the same with a leading "+". Anything else fails
// with ErrInvalidPhone.
func Normalize(input string) (string, error) {
	digits := nonDigitRegex.ReplaceAllString(input, "")

	var canonical string
	switch {
	case len(digits) == 10 && digits[0] == '0' && isMobileLeading(digits[1]):
		canonical = countryCode + digits[1:]
	case len(digits) == 9 && isMobileLeading(digits[0]):
		canonical = countryCode + digits
	case len(digits) == canonicalLength && strings.HasPrefix(digits, countryCode) && isMobileLeading(digits[3]):
		canonical = digits
	default:
		return "", ErrInvalidPhone
	}

	if len(canonical) != canonicalLength {
		return "", ErrInvalidPhone
	}
	return canonical, nil
}

// ToDisplay formats a canonical number back to the local trunk-prefix
// form (0XXXXXXXXX) for UI echo. Input that is not canonical is
// returned unchanged.
func ToDisplay(canonical string) string {
	if len(canonical) == canonicalLength && strings.HasPrefix(canonical, countryCode) {
		return "0" + canonical[len(countryCode):]
	}
	return canonical
}

// IsValid reports whether input normalizes successfully.
func IsValid(input string) bool {
	_, err := Normalize(input)
	return err == nil
}

// Kenyan mobile subscriber numbers start with 7 or 1.
func isMobileLeading(b byte) bool {
	return b == '7' || b == '1'
}
