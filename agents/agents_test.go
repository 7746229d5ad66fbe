package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRotator_RoundRobin(t *testing.T) {
	r := NewRotator(StaticProvider{"a", "b", "c"}, time.Minute)

	assert.Equal(t, "a", r.Next())
	assert.Equal(t, "b", r.Next())
	assert.Equal(t, "c", r.Next())
	assert.Equal(t, "a", r.Next())
}

func TestRotator_SkipsFailedAgent(t *testing.T) {
	r := NewRotator(StaticProvider{"a", "b", "c"}, time.Minute)

	r.MarkFailed("a")

	assert.Equal(t, "b", r.Next())
	assert.Equal(t, "c", r.Next())
	assert.Equal(t, "b", r.Next())
}

func TestRotator_FailedAgentReturnsAfterCooldown(t *testing.T) {
	r := NewRotator(StaticProvider{"a", "b"}, 20*time.Millisecond)

	r.MarkFailed("a")
	assert.Equal(t, "b", r.Next())

	time.Sleep(30 * time.Millisecond)

	got := map[string]bool{r.Next(): true, r.Next(): true}
	assert.True(t, got["a"])
}

func TestRotator_SoleAgentAlwaysEligible(t *testing.T) {
	r := NewRotator(StaticProvider{"only"}, time.Minute)

	r.MarkFailed("only")

	assert.Equal(t, "only", r.Next())
}

func TestRotator_AllAgentsCoolingRotatesAnyway(t *testing.T) {
	r := NewRotator(StaticProvider{"a", "b"}, time.Minute)

	r.MarkFailed("a")
	r.MarkFailed("b")

	first := r.Next()
	second := r.Next()
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

func TestRotator_EmptyProvider(t *testing.T) {
	r := NewRotator(StaticProvider{}, time.Minute)

	assert.Equal(t, "", r.Next())
}

func TestRotator_MarkFailedIgnoresEmptyAgent(t *testing.T) {
	r := NewRotator(StaticProvider{"a", "b"}, time.Minute)

	r.MarkFailed("")

	assert.Equal(t, "a", r.Next())
}

func TestNewRotator_DefaultCooldown(t *testing.T) {
	r := NewRotator(StaticProvider{"a"}, 0)
	assert.Equal(t, DefaultCooldown, r.cooldown)
}
