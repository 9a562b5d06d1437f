package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dwikikusuma/storefront/pkg/httpx"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotSignedIn        = errors.New("not signed in")
)

// Client signs the session in and out against the record service's auth routes.
type Client struct {
	c       *httpx.Client
	session *Session
}

func NewClient(c *httpx.Client, session *Session) *Client {
	return &Client{c: c, session: session}
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.c.Do(ctx, http.MethodPost, "/login", nil, body, &out); err != nil {
		return User{}, mapErr(err)
	}
	c.session.SignIn(out.User, out.Token)
	return out.User, nil
}

func (c *Client) Register(ctx context.Context, name, email, password, confirm string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" || password != confirm {
		return User{}, ErrInvalidInput
	}

	var out authResponse
	body := map[string]string{"name": name, "email": email, "password": password, "confirmPassword": confirm}
	if err := c.c.Do(ctx, http.MethodPost, "/register", nil, body, &out); err != nil {
		return User{}, mapErr(err)
	}
	c.session.SignIn(out.User, out.Token)
	return out.User, nil
}

// Profile refreshes the signed-in user from the record service.
func (c *Client) Profile(ctx context.Context) (User, error) {
	token := c.session.Token()
	if token == "" {
		return User{}, ErrNotSignedIn
	}

	var u User
	hc := *c.c
	hc.Token = func() string { return token }
	if err := hc.Do(ctx, http.MethodGet, "/profile", nil, nil, &u); err != nil {
		return User{}, mapErr(err)
	}
	if c.session.Token() == token {
		c.session.SignIn(u, token)
	}
	return u, nil
}

func (c *Client) Logout() {
	c.session.SignOut()
}

func mapErr(err error) error {
	switch httpx.StatusCode(err) {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case http.StatusConflict:
		return fmt.Errorf("%w: %v", ErrEmailTaken, err)
	default:
		return err
	}
}
