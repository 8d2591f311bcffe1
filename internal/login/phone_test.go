package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain", input: "901234567", want: "901234567"},
		{name: "formatted", input: "+998 90 123 45 67", want: "901234567"},
		{name: "pasted with code", input: "998901234567", want: "901234567"},
		{name: "too long", input: "90123456789", want: "901234567"},
		{name: "letters", input: "90-abc-12", want: "9012"},
		{name: "local number starting with 998", input: "998123456", want: "998123456"},
		{name: "local 998 number with code", input: "+998 99 812 34 56", want: "998123456"},
		{name: "partial 998 number", input: "9981", want: "9981"},
		{name: "code only", input: "+998", want: "998"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Digits(tt.input))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		digits string
		want   string
	}{
		{"", "+998"},
		{"9", "+998 9"},
		{"90", "+998 90"},
		{"901", "+998 90 1"},
		{"90123", "+998 90 123"},
		{"901234", "+998 90 123 4"},
		{"9012345", "+998 90 123 45"},
		{"90123456", "+998 90 123 45 6"},
		{"901234567", "+998 90 123 45 67"},
	}
	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.digits))
		})
	}
}

func TestRawReady(t *testing.T) {
	assert.Equal(t, "+998901234567", Raw("901234567"))
	assert.True(t, Ready("901234567"))
	assert.False(t, Ready("90123456"))
	assert.False(t, Ready(""))
}
