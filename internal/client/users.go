package client

import (
	"context"
	"strconv"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

type passwordBody struct {
	NewPassword string `json:"new_password"`
}

// ListUsers GET /api/admin/users
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	req, err := c.newRequest(ctx, c.reads)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	resp, err := req.SetResult(&users).Get("/api/admin/users")
	if err := c.check("list users", resp, err); err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// RegisterUser POST /api/admin/users/register
func (c *Client) RegisterUser(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Registering user", zap.String("new_username", u.Username), zap.String("role", u.Role))

	var created domain.User
	resp, err := req.
		SetBody(u).
		SetResult(&created).
		Post("/api/admin/users/register")
	if err := c.check("register user", resp, err); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteUser DELETE /api/admin/users/{id}
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return err
	}

	c.logger.Info("Deleting user", zap.Int64("user_id", id))

	resp, err := req.
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete("/api/admin/users/{id}")
	return c.check("delete user", resp, err)
}

// ResetPassword PUT /api/admin/users/{id}/reset-password
func (c *Client) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(passwordBody{NewPassword: newPassword}).
		Put("/api/admin/users/{id}/reset-password")
	return c.check("reset password", resp, err)
}

// ChangePassword PUT /api/users/me/change-password
func (c *Client) ChangePassword(ctx context.Context, newPassword string) error {
	req, err := c.newRequest(ctx, c.writes)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(passwordBody{NewPassword: newPassword}).
		Put("/api/users/me/change-password")
	return c.check("change password", resp, err)
}
