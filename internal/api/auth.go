package api

import (
	"context"
	"net/url"
)

// Login authenticates with an email or username and returns the account.
// The session cookie is set by the server; the follow-up /auth/me call
// mirrors what the web client does.
func (c *Client) Login(ctx context.Context, emailOrUsername, password string) (User, error) {
	form := url.Values{}
	form.Set("email_or_username", emailOrUsername)
	form.Set("password", password)

	if err := c.postForm(ctx, "/auth/login", form, nil); err != nil {
		return User{}, err
	}
	return c.Me(ctx)
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, create UserCreate) (User, error) {
	var user User
	err := c.post(ctx, "/auth/register", create, &user)
	return user, err
}

// Me returns the currently authenticated account
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.get(ctx, "/auth/me", &user)
	return user, err
}

// Logout invalidates the server-side session
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}
