package session

import (
	"context"
	"errors"
	"testing"

	"github.com/seo-joon/benkyou/internal/api"
)

type fakeSource struct {
	sess      api.Session
	err       error
	logoutErr error
	loggedOut bool
}

func (f *fakeSource) Session(context.Context) (api.Session, error) { return f.sess, f.err }

func (f *fakeSource) Logout(context.Context) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedOut = true
	return nil
}

func TestBadgeString(t *testing.T) {
	const login = "http://localhost:8000/login"
	tests := []struct {
		name string
		sess api.Session
		want string
	}{
		{"named user", api.Session{Authenticated: true, User: &api.User{Name: "Ji-woo", Login: "jiwoo"}}, "Hi, Ji-woo · L logout"},
		{"login only", api.Session{Authenticated: true, User: &api.User{Login: "jiwoo"}}, "Hi, jiwoo · L logout"},
		{"blank name", api.Session{Authenticated: true, User: &api.User{Name: "  ", Login: "jiwoo"}}, "Hi, jiwoo · L logout"},
		{"signed out", api.Session{}, "sign in: " + login},
		{"authenticated without user", api.Session{Authenticated: true}, "sign in: " + login},
	}
	for _, tt := range tests {
		got := FromSession(tt.sess, login).String()
		if got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestLoadFailureIsUnknown(t *testing.T) {
	src := &fakeSource{err: api.ErrNetwork}
	b := Load(context.Background(), src, "x")
	if b.Status != Unknown {
		t.Errorf("Status = %v, want Unknown", b.Status)
	}
	if b.String() != "" {
		t.Errorf("unknown badge should render empty, got %q", b.String())
	}
}

func TestLoadSignedIn(t *testing.T) {
	src := &fakeSource{sess: api.Session{Authenticated: true, User: &api.User{Login: "a"}}}
	if b := Load(context.Background(), src, ""); !b.SignedIn() {
		t.Error("expected signed in")
	}
}

func TestLogout(t *testing.T) {
	src := &fakeSource{}
	b, err := Logout(context.Background(), src, "u")
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !src.loggedOut || b.Status != SignedOut {
		t.Errorf("expected signed out badge, got %+v", b)
	}

	src = &fakeSource{logoutErr: errors.New("boom")}
	if _, err := Logout(context.Background(), src, "u"); err == nil {
		t.Error("expected error")
	}
}

func TestLoginURL(t *testing.T) {
	if got := LoginURL("http://h:8000/"); got != "http://h:8000/login" {
		t.Errorf("LoginURL = %q", got)
	}
	if LoginURL("") != "" {
		t.Error("empty base should give empty URL")
	}
}
