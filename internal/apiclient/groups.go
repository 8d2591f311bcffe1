package apiclient

import (
	"context"
	"net/url"

	"teacherdash/internal/model"
)

const msgNoGroupID = "Guruh ID si ko'rsatilmagan."

// ListGroups returns the groups taught by teacherID.
func (c *Client) ListGroups(ctx context.Context, teacherID string) ([]model.Group, error) {
	if teacherID == "" {
		return nil, localError(msgNoTeacherID)
	}
	resp, err := c.Do(ctx, Request{Path: "/groups", Query: url.Values{"filterByTeacherId": {teacherID}}})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Group](resp)
}

// ListStudents returns up to 100 students of a group.
func (c *Client) ListStudents(ctx context.Context, groupID string) ([]model.Student, error) {
	if groupID == "" {
		return nil, localError(msgNoGroupID)
	}
	resp, err := c.Do(ctx, Request{
		Path:  "/students",
		Query: url.Values{"filterByGroupId": {groupID}, "limit": {"100"}},
	})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Student](resp)
}
