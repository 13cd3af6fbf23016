package portal

import (
	"context"
	"strings"

	"maestro/internal/services"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns the new user record.
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "register", "email and password required", nil)
	}
	var user User
	if err := c.postJSON(ctx, "register", "/auth/register", registerRequest{Email: email, Password: password, Name: name}, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "register", "user payload missing id", nil)
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "login", "email and password required", nil)
	}
	var token Token
	if err := c.postJSON(ctx, "login", "/auth/login", loginRequest{Email: email, Password: password}, &token); err != nil {
		return nil, err
	}
	if err := validateToken(&token); err != nil {
		return nil, services.Wrap(services.ErrValidation, "portal", "login", "invalid token payload", err)
	}
	return &token, nil
}
