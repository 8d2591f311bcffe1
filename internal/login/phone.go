// Package login holds the phone-number handling of the login form.
package login

import (
	"strings"
	"unicode"
)

// Prefix is the fixed country code.
const Prefix = "+998"

// SubscriberLen is the length of the local number after the prefix.
const SubscriberLen = 9

// Digits keeps the local part of whatever was typed or pasted.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	d := b.String()
	// 998 is only a country code when it leaves more than a local number
	// behind: 998 12 34 56 is itself a complete subscriber number.
	if len(d) > SubscriberLen {
		d = strings.TrimPrefix(d, "998")
	}
	if len(d) > SubscriberLen {
		d = d[:SubscriberLen]
	}
	return d
}

// Format renders digits as "+998 XX XXX XX XX", as far as they go.
func Format(digits string) string {
	out := Prefix
	groups := []int{0, 2, 5, 7, 9}
	for i := 0; i < len(groups)-1; i++ {
		start, end := groups[i], groups[i+1]
		if len(digits) <= start {
			break
		}
		if end > len(digits) {
			end = len(digits)
		}
		out += " " + digits[start:end]
	}
	return out
}

// Raw is the value submitted to the API.
func Raw(digits string) string {
	return Prefix + digits
}

// Ready reports whether the form may be submitted.
func Ready(digits string) bool {
	return len(digits) == SubscriberLen
}
