package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"teacherdash/internal/model"
)

const msgNoTeacherID = "O'qituvchi ID si ko'rsatilmagan."

// Credentials is the login body.
type Credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token. An empty token is returned as-is.
func (c *Client) Login(ctx context.Context, phone, password string) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/teacher",
		Body:   Credentials{Phone: phone, Password: password},
	})
	if err != nil {
		return "", err
	}
	if resp.Empty() {
		return "", nil
	}
	out, err := DecodeOne[struct {
		AccessToken string `json:"accessToken"`
	}](resp)
	if err != nil {
		return "", nil
	}
	return out.AccessToken, nil
}

// GetTeacher loads one teacher profile.
func (c *Client) GetTeacher(ctx context.Context, id string) (model.Teacher, error) {
	if id == "" {
		return model.Teacher{}, localError(msgNoTeacherID)
	}
	resp, err := c.Do(ctx, Request{Path: "/teachers/" + url.PathEscape(id), Route: "/teachers/:id"})
	if err != nil {
		return model.Teacher{}, err
	}
	return DecodeOne[model.Teacher](resp)
}

// ProfileUpdate is the edit-profile form. Image, when set, switches the body to multipart.
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Image     *File  `json:"-"`
}

// UpdateTeacher patches the profile and returns the stored result.
func (c *Client) UpdateTeacher(ctx context.Context, id string, in ProfileUpdate) (model.Teacher, error) {
	if id == "" {
		return model.Teacher{}, localError(msgNoTeacherID)
	}
	req := Request{
		Method: http.MethodPatch,
		Path:   "/teachers/" + url.PathEscape(id),
		Route:  "/teachers/:id",
		Body:   in,
	}
	if in.Image != nil && len(in.Image.Data) > 0 {
		avatar, err := PrepareAvatar(*in.Image, c.AvatarMaxPx)
		if err != nil {
			return model.Teacher{}, err
		}
		fields := map[string]string{
			"firstName": in.FirstName,
			"lastName":  in.LastName,
			"phone":     in.Phone,
		}
		if in.Address != "" {
			fields["address"] = in.Address
		}
		req.Body = nil
		req.Multipart = &Multipart{Fields: fields, Files: []File{avatar}}
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return model.Teacher{}, err
	}
	if resp.Empty() {
		return c.GetTeacher(ctx, id)
	}
	return DecodeOne[model.Teacher](resp)
}

// ListLeaders returns teachers ranked as leaders, newest first.
func (c *Client) ListLeaders(ctx context.Context) ([]model.Teacher, error) {
	resp, err := c.Do(ctx, Request{
		Path:  "/teachers",
		Query: url.Values{"sortBy": {"createdAt"}, "status": {model.StatusLeader}},
	})
	if err != nil {
		return nil, err
	}
	return DecodeList[model.Teacher](resp)
}
