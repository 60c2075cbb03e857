// Package session renders the sign-in status shown in the status bar.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/logging"
)

// Source is the part of the API client the badge needs.
type Source interface {
	Session(ctx context.Context) (api.Session, error)
	Logout(ctx context.Context) error
}

type Status int

const (
	Unknown Status = iota
	SignedOut
	SignedIn
)

// Badge is the rendered state of the session indicator.
type Badge struct {
	Status Status
	Name   string
	Login  string
	// LoginURL is where the sign-in hint points.
	LoginURL string
}

// FromSession builds a badge from the server's answer. An authenticated
// session without a user is treated as signed out.
func FromSession(s api.Session, loginURL string) Badge {
	b := Badge{Status: SignedOut, LoginURL: loginURL}
	if !s.Authenticated || s.User == nil {
		return b
	}
	b.Status = SignedIn
	b.Name = strings.TrimSpace(s.User.Name)
	b.Login = strings.TrimSpace(s.User.Login)
	return b
}

// Load asks src for the session. Failures leave the badge Unknown; the
// badge never blocks the rest of the client.
func Load(ctx context.Context, src Source, loginURL string) Badge {
	s, err := src.Session(ctx)
	if err != nil {
		logging.Logger().Warn("session lookup failed", "err", err)
		return Badge{Status: Unknown, LoginURL: loginURL}
	}
	return FromSession(s, loginURL)
}

// DisplayName prefers the full name and falls back to the login.
func (b Badge) DisplayName() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Login
}

func (b Badge) SignedIn() bool { return b.Status == SignedIn }

// String is the status bar text.
func (b Badge) String() string {
	switch b.Status {
	case SignedIn:
		return fmt.Sprintf("Hi, %s · L logout", b.DisplayName())
	case SignedOut:
		if b.LoginURL == "" {
			return "not signed in"
		}
		return "sign in: " + b.LoginURL
	default:
		return ""
	}
}

// LoginURL derives the sign-in page from the API base URL.
func LoginURL(apiURL string) string {
	if apiURL == "" {
		return ""
	}
	return strings.TrimRight(apiURL, "/") + "/login"
}

// Logout ends the session on the server and returns the signed-out badge.
func Logout(ctx context.Context, src Source, loginURL string) (Badge, error) {
	if err := src.Logout(ctx); err != nil {
		return Badge{}, fmt.Errorf("logging out: %w", err)
	}
	logging.Logger().Info("logged out")
	return Badge{Status: SignedOut, LoginURL: loginURL}, nil
}
