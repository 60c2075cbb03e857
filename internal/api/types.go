package api

import "time"

// Example is one article returned by /api/examples. Title, Summary and
// Published are zero when the server sent null or omitted them.
type Example struct {
	Source    string
	Title     string
	URL       string
	Published time.Time
	Summary   string
	Concepts  []string
}

// Session is the authentication status reported by /api/session.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

type User struct {
	Name  string `json:"name,omitempty"`
	Login string `json:"login"`
}

type conceptsResponse struct {
	Concepts *[]string `json:"concepts"`
}

type apiExample struct {
	Source    string   `json:"source"`
	Title     *string  `json:"title"`
	URL       string   `json:"url"`
	Published *string  `json:"published"`
	Summary   *string  `json:"summary"`
	Concepts  []string `json:"concepts"`
}
