// Package domain holds the core types shared across finsight subsystems.
package domain

import (
	"strings"
	"time"
)

// Mode selects which backend agents answer a query.
type Mode string

const (
	ModeWeb     Mode = "web"
	ModeNews    Mode = "news"
	ModeFinance Mode = "finance"
	// ModeTeam fans the query out to the news and finance agents
	// and merges both answers into one result.
	ModeTeam Mode = "team"
)

// Modes lists all recognized query modes.
var Modes = []Mode{ModeWeb, ModeNews, ModeFinance, ModeTeam}

// ParseMode normalizes and validates a mode string.
// Unrecognized values return an *InvalidModeError and must not
// trigger any agent invocation.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", &InvalidModeError{Mode: s}
}

// Languages accepted by the news agent.
const (
	LangEnglish = "en"
	LangFrench  = "fr"
)

// Query is a single user request: free text plus a mode selector.
// Language only affects the news agent and defaults to English.
type Query struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Mode      Mode      `json:"mode"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
