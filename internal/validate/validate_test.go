package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Phone     string `json:"phone" validate:"required,uzphone"`
	Day       string `json:"day" validate:"omitempty,isodate"`
	Status    string `json:"status" validate:"omitempty,attendance_status"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		in         profile
		wantFields map[string]string
	}{
		{name: "valid", in: profile{FirstName: "Aziz", LastName: "Karimov", Phone: "+998901234567", Day: "2026-10-01", Status: "KELDI"}},
		{
			name: "blank names",
			in:   profile{FirstName: "  ", Phone: "+998901234567"},
			wantFields: map[string]string{
				"firstName": "bu maydon bo'sh bo'lishi mumkin emas",
				"lastName":  "bu maydon bo'sh bo'lishi mumkin emas",
			},
		},
		{
			name:       "missing phone",
			in:         profile{FirstName: "A", LastName: "B"},
			wantFields: map[string]string{"phone": "bu maydon to'ldirilishi shart"},
		},
		{
			name: "bad formats",
			in:   profile{FirstName: "A", LastName: "B", Phone: "901234567", Day: "01.10.2026", Status: "ABSENT"},
			wantFields: map[string]string{
				"phone":  "telefon raqam +998XXXXXXXXX formatida bo'lishi kerak",
				"day":    "sana YYYY-MM-DD formatida bo'lishi kerak",
				"status": "noma'lum davomat holati",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in, "Ism, Familiya va Telefon raqam kiritilishi shart.")
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			verr, ok := As(err)
			require.True(t, ok)
			assert.Equal(t, "Ism, Familiya va Telefon raqam kiritilishi shart.", err.Error())
			assert.Equal(t, tt.wantFields, verr.Map())
		})
	}
}

func TestVar(t *testing.T) {
	assert.Empty(t, Var("2c9f3c8e-8d3b-4b1e-9d61-1f4cbd2f6a10", "uuid"))
	assert.Equal(t, "noto'g'ri ID", Var("s1", "uuid"))
}

func TestErrors(t *testing.T) {
	e := New("")
	assert.NoError(t, e.OrNil())
	e.Add("ball", "first")
	e.Add("ball", "second")
	e.Add("feedback", "empty")
	assert.Equal(t, "first", e.Get("ball"))
	assert.Equal(t, "first; empty", e.Error())
	assert.Error(t, e.OrNil())

	var nilErrs *Errors
	assert.Empty(t, nilErrs.Get("x"))
}
