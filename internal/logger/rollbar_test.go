package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"teacherdash/internal/config"
	"teacherdash/internal/model"
)

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), config.App{Env: "test", Debug: true})

	l.Error("loading groups", errors.New("boom"), model.Teacher{ID: "t1", FirstName: "Aziz"})

	out := buf.String()
	assert.Contains(t, out, "loading groups\n")
	assert.Contains(t, out, "boom\n")
	assert.Contains(t, out, "Aziz")
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := Discard()
	teacher := model.Teacher{ID: "t1"}
	args := l.prepare("msg", []interface{}{teacher, "x", teacher})
	assert.Equal(t, []interface{}{"msg", "x"}, args)
}
