package agent

import (
	"testing"

	"github.com/soyeahso/finsight/internal/domain"
	"github.com/soyeahso/finsight/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	log := logging.New(nil, "silent", "")
	reg := NewRegistry(log)

	assert.Equal(t, 0, reg.Count())

	reg.Register(&Mock{AgentID: "news", AgentKind: domain.KindNews})
	reg.Register(&Mock{AgentID: "finance", AgentKind: domain.KindFinance})

	assert.Equal(t, 2, reg.Count())
	assert.ElementsMatch(t, []string{"news", "finance"}, reg.List())

	a, ok := reg.Get("news")
	require.True(t, ok)
	assert.Equal(t, "news", a.ID())

	_, ok = reg.Get("weather")
	assert.False(t, ok)
}

func TestRegistry_ReplaceSameID(t *testing.T) {
	log := logging.New(nil, "silent", "")
	reg := NewRegistry(log)

	first := &Mock{AgentID: "news"}
	second := &Mock{AgentID: "news"}
	reg.Register(first)
	reg.Register(second)

	assert.Equal(t, 1, reg.Count())
	a, _ := reg.Get("news")
	assert.Same(t, second, a)
}
