package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode_Valid(t *testing.T) {
	for _, s := range []string{"web", "news", "finance", "team"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}
}

func TestParseMode_Normalizes(t *testing.T) {
	m, err := ParseMode("  TEAM ")
	require.NoError(t, err)
	assert.Equal(t, ModeTeam, m)
}

func TestParseMode_Invalid(t *testing.T) {
	_, err := ParseMode("stocks")
	require.Error(t, err)

	var invalid *InvalidModeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "stocks", invalid.Mode)
	assert.Contains(t, err.Error(), "invalid query mode")
}

func TestParseMode_Empty(t *testing.T) {
	_, err := ParseMode("")
	require.Error(t, err)
}

func TestAgentError_Message(t *testing.T) {
	err := &AgentError{AgentID: "finance", Code: 503, Message: "upstream unavailable"}
	assert.Equal(t, "agent finance: 503 upstream unavailable", err.Error())

	err = &AgentError{AgentID: "news", Message: "connection refused"}
	assert.Equal(t, "agent news: connection refused", err.Error())
}

func TestAggregatedResult_Succeeded(t *testing.T) {
	r := &AggregatedResult{
		Responses: []AgentResponse{
			{AgentID: "news"},
			{AgentID: "finance", Failed: true, Error: "timeout"},
		},
	}

	ok := r.Succeeded()
	require.Len(t, ok, 1)
	assert.Equal(t, "news", ok[0].AgentID)
}
