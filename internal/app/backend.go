package app

import (
	"context"

	"teacherdash/internal/apiclient"
	"teacherdash/internal/attendance"
	"teacherdash/internal/feedback"
	"teacherdash/internal/model"
	"teacherdash/internal/session"
)

// Backend is the remote API as the controller uses it. *apiclient.Client implements it.
type Backend interface {
	session.Authenticator
	attendance.Saver
	feedback.Creator
	feedback.Updater

	GetTeacher(ctx context.Context, id string) (model.Teacher, error)
	UpdateTeacher(ctx context.Context, id string, in apiclient.ProfileUpdate) (model.Teacher, error)
	ListLeaders(ctx context.Context) ([]model.Teacher, error)
	ListGroups(ctx context.Context, teacherID string) ([]model.Group, error)
	ListStudents(ctx context.Context, groupID string) ([]model.Student, error)
	ListAttendance(ctx context.Context, f apiclient.AttendanceFilter) ([]model.AttendanceRecord, error)
	ListFeedback(ctx context.Context, groupID, date string) ([]model.DailyFeedback, error)
	GetFeedback(ctx context.Context, id string) (model.DailyFeedback, error)
	DeleteFeedback(ctx context.Context, id string) error
}

var _ Backend = (*apiclient.Client)(nil)
