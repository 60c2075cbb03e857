package tui

import (
	"github.com/seo-joon/benkyou/internal/anki"
	"github.com/seo-joon/benkyou/internal/catalog"
	"github.com/seo-joon/benkyou/internal/fetcher"
	"github.com/seo-joon/benkyou/internal/session"
)

type catalogLoadedMsg struct {
	res catalog.Result
}

type examplesLoadedMsg struct {
	res fetcher.Result
}

type sessionLoadedMsg struct {
	badge session.Badge
}

type exportDoneMsg struct {
	res anki.Result
	err error
}

type copyDoneMsg struct {
	rows int
	err  error
}

type logoutDoneMsg struct {
	badge session.Badge
	err   error
}

type errMsg struct {
	err error
}
