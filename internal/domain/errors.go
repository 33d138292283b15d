package domain

import "fmt"

// InvalidModeError is returned when a query carries an unknown mode.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid query mode: %q", e.Mode)
}

// AgentError is returned when a backend agent call fails.
// Code carries an HTTP-like status when the upstream provider reported one.
type AgentError struct {
	AgentID string
	Code    int
	Message string
}

func (e *AgentError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("agent %s: %d %s", e.AgentID, e.Code, e.Message)
	}
	return fmt.Sprintf("agent %s: %s", e.AgentID, e.Message)
}
