package apiclient

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeList accepts a bare JSON array or an object whose data field is an array.
func DecodeList[T any](resp *Response) ([]T, error) {
	if resp.Empty() {
		return nil, ErrShape
	}
	raw := bytes.TrimSpace(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, errors.Wrap(ErrShape, err.Error())
		}
		raw = bytes.TrimSpace(env.Data)
	}
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrShape
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(ErrShape, err.Error())
	}
	return out, nil
}

// DecodeOne accepts an object or {data: object}.
func DecodeOne[T any](resp *Response) (T, error) {
	var zero T
	if resp.Empty() {
		return zero, ErrShape
	}
	raw := bytes.TrimSpace(resp.Body)
	if len(raw) == 0 || raw[0] != '{' {
		return zero, ErrShape
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, errors.Wrap(ErrShape, err.Error())
	}
	if d := bytes.TrimSpace(env.Data); len(d) > 0 && d[0] == '{' {
		raw = d
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, errors.Wrap(ErrShape, err.Error())
	}
	return out, nil
}
