package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"teacherdash/internal/model"
)

const msgNoFeedbackID = "Fikr-mulohaza ID si ko'rsatilmagan."

// NewFeedback is the create body for a daily feedback.
type NewFeedback struct {
	StudentID    string `json:"studentId"`
	GroupID      string `json:"groupId"`
	Ball         int    `json:"ball"`
	Feedback     string `json:"feedback"`
	FeedbackDate string `json:"feedbackDate"`
}

// FeedbackUpdate patches score and comment; nil fields are left unchanged.
type FeedbackUpdate struct {
	Ball     *int    `json:"ball,omitempty"`
	Feedback *string `json:"feedback,omitempty"`
}

func (c *Client) CreateFeedback(ctx context.Context, in NewFeedback) (model.DailyFeedback, error) {
	if in.StudentID == "" || in.GroupID == "" || in.Feedback == "" {
		return model.DailyFeedback{}, localError("Kunlik fikr-mulohaza ma'lumotlari to'liq emas.")
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/daily-feedbacks", Body: in})
	if err != nil {
		return model.DailyFeedback{}, err
	}
	return decodeOr(resp, model.DailyFeedback{
		StudentID:    in.StudentID,
		GroupID:      in.GroupID,
		Ball:         in.Ball,
		Feedback:     in.Feedback,
		FeedbackDate: in.FeedbackDate,
	})
}

// ListFeedback returns a group's feedback, optionally for one date.
func (c *Client) ListFeedback(ctx context.Context, groupID, date string) ([]model.DailyFeedback, error) {
	if groupID == "" {
		return nil, localError(msgNoGroupID)
	}
	q := url.Values{"groupId": {groupID}}
	if date != "" {
		q.Set("date", date)
	}
	resp, err := c.Do(ctx, Request{Path: "/daily-feedbacks", Query: q})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.DailyFeedback](resp)
}

func (c *Client) GetFeedback(ctx context.Context, id string) (model.DailyFeedback, error) {
	if id == "" {
		return model.DailyFeedback{}, localError(msgNoFeedbackID)
	}
	resp, err := c.Do(ctx, Request{Path: "/daily-feedbacks/" + url.PathEscape(id), Route: "/daily-feedbacks/:id"})
	if err != nil {
		return model.DailyFeedback{}, err
	}
	return DecodeOne[model.DailyFeedback](resp)
}

func (c *Client) UpdateFeedback(ctx context.Context, id string, in FeedbackUpdate) (model.DailyFeedback, error) {
	if id == "" {
		return model.DailyFeedback{}, localError(msgNoFeedbackID)
	}
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/daily-feedbacks/" + url.PathEscape(id),
		Route:  "/daily-feedbacks/:id",
		Body:   in,
	})
	if err != nil {
		return model.DailyFeedback{}, err
	}
	if resp.Empty() {
		return c.GetFeedback(ctx, id)
	}
	return DecodeOne[model.DailyFeedback](resp)
}

func (c *Client) DeleteFeedback(ctx context.Context, id string) error {
	if id == "" {
		return localError(msgNoFeedbackID)
	}
	_, err := c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/daily-feedbacks/" + url.PathEscape(id),
		Route:  "/daily-feedbacks/:id",
	})
	return err
}
