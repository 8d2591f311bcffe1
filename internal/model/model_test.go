package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_Students(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "studentCount wins", body: `{"id":"g1","studentCount":7,"_count":{"students":3}}`, want: 7},
		{name: "falls back to _count", body: `{"id":"g1","_count":{"students":3}}`, want: 3},
		{name: "neither present", body: `{"id":"g1"}`, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Group
			require.NoError(t, json.Unmarshal([]byte(tt.body), &g))
			assert.Equal(t, tt.want, g.Students())
		})
	}
}

func TestGroup_DisplayName(t *testing.T) {
	assert.Equal(t, "Ingliz tili", Group{Name: "Ingliz tili", GroupID: "G-1"}.DisplayName())
	assert.Equal(t, "Guruh G-1", Group{GroupID: "G-1"}.DisplayName())
	assert.Equal(t, "Guruh abc", Group{ID: "abc"}.DisplayName())
}

func TestAttendanceStatus(t *testing.T) {
	for _, s := range AttendanceStatuses {
		assert.True(t, s.Valid(), s)
		assert.NotEqual(t, string(s), s.Label())
	}
	assert.False(t, AttendanceStatus("KELGAN").Valid())
	assert.Equal(t, "KELGAN", AttendanceStatus("KELGAN").Label())
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, "2024-05-03", DayOf("2024-05-03T00:00:00Z"))
	assert.Equal(t, "2024-05-03", DayOf("2024-05-03T10:11:12.000Z"))
	assert.Equal(t, "2024-05-03", DayOf("2024-05-03"))
	assert.Equal(t, "", DayOf(""))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AK", Student{FirstName: "Aziz", LastName: "Karimov"}.Initials())
	assert.Equal(t, "A", Teacher{FirstName: "Aziz"}.Initials())
	assert.Equal(t, "Шк", Student{FirstName: "Шахзод", LastName: "к"}.Initials())
}
