// Package session keeps the per-browser navigation state.
package session

import (
	"context"
	"fmt"
	"strings"
)

type Page string

const (
	PageAnalytics  Page = "analytics"
	PageDiagnostic Page = "diagnostic"
)

// DefaultPage is shown to sessions that never navigated.
const DefaultPage = PageAnalytics

var Pages = []Page{PageAnalytics, PageDiagnostic}

func ParsePage(raw string) (Page, error) {
	switch Page(strings.ToLower(strings.TrimSpace(raw))) {
	case PageAnalytics:
		return PageAnalytics, nil
	case PageDiagnostic:
		return PageDiagnostic, nil
	default:
		return "", fmt.Errorf("unknown page %q", raw)
	}
}

type State struct {
	Page Page `json:"page"`
}

func DefaultState() State {
	return State{Page: DefaultPage}
}

// Store returns DefaultState for unknown or expired sessions.
type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Set(ctx context.Context, id string, state State) error
}
