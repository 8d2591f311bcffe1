package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"teacherdash/internal/model"
)

// NewAttendance is the create body; reason is always sent.
type NewAttendance struct {
	GroupID   string                 `json:"groupId"`
	StudentID string                 `json:"studentId"`
	Date      string                 `json:"date"`
	Status    model.AttendanceStatus `json:"status"`
	Reason    string                 `json:"reason"`
}

// AttendanceUpdate is the patch body.
type AttendanceUpdate struct {
	Status model.AttendanceStatus `json:"status,omitempty"`
	Date   string                 `json:"date,omitempty"`
}

// AttendanceFilter narrows ListAttendance; empty fields are not sent.
type AttendanceFilter struct {
	GroupID string
	Date    string
}

// CreateAttendance stores one student's mark.
func (c *Client) CreateAttendance(ctx context.Context, in NewAttendance) (model.AttendanceRecord, error) {
	if in.GroupID == "" || in.StudentID == "" || in.Date == "" || in.Status == "" {
		return model.AttendanceRecord{}, localError("Davomat ma'lumotlari to'liq emas (groupId, studentId, date, status talab qilinadi).")
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/attendances", Body: in})
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	fallback := model.AttendanceRecord{
		GroupID:   in.GroupID,
		StudentID: in.StudentID,
		Date:      in.Date,
		Status:    in.Status,
		Reason:    in.Reason,
	}
	return decodeOr(resp, fallback)
}

// UpdateAttendance changes the status or date of an existing record.
func (c *Client) UpdateAttendance(ctx context.Context, id string, in AttendanceUpdate) (model.AttendanceRecord, error) {
	if id == "" {
		return model.AttendanceRecord{}, localError("Davomat ID si ko'rsatilmagan.")
	}
	if in.Status == "" && in.Date == "" {
		return model.AttendanceRecord{}, localError("Yangilash uchun status yoki sana ma'lumotlari kiritilmagan.")
	}
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/attendances/" + url.PathEscape(id),
		Route:  "/attendances/:id",
		Body:   in,
	})
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	return decodeOr(resp, model.AttendanceRecord{ID: id, Status: in.Status, Date: in.Date})
}

// ListAttendance returns up to 100 records matching f.
func (c *Client) ListAttendance(ctx context.Context, f AttendanceFilter) ([]model.AttendanceRecord, error) {
	q := url.Values{}
	if f.GroupID != "" {
		q.Set("filterByGroupId", f.GroupID)
	}
	if f.Date != "" {
		q.Set("filterByDate", f.Date)
	}
	q.Set("limit", "100")
	resp, err := c.Do(ctx, Request{Path: "/attendances", Query: q})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.AttendanceRecord](resp)
}

// decodeOr decodes a single object, or returns fallback when the reply had no body.
func decodeOr[T any](resp *Response, fallback T) (T, error) {
	if resp.Empty() {
		return fallback, nil
	}
	return DecodeOne[T](resp)
}
