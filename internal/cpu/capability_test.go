package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopcount_String(t *testing.T) {
	for _, p := range []Popcount{Generic, POPCNT, ASIMD} {
		parsed, ok := ParsePopcount(p.String())
		assert.True(t, ok)
		assert.Equal(t, p, parsed)
	}
	assert.Equal(t, "unknown", Popcount(99).String())

	_, ok := ParsePopcount("avx9")
	assert.False(t, ok)
}

func TestActive_IsAvailable(t *testing.T) {
	assert.True(t, available(Active()))
	assert.True(t, available(Generic))
}

func TestInitCapabilities_Override(t *testing.T) {
	prevActive, prevOverride := active, hasOverride
	t.Cleanup(func() { active, hasOverride = prevActive, prevOverride })

	t.Setenv("HAMLSH_POPCOUNT", "generic")
	initCapabilities()
	assert.Equal(t, Generic, Active())
	assert.True(t, IsOverridden())

	hasOverride = false
	t.Setenv("HAMLSH_POPCOUNT", "bogus")
	initCapabilities()
	assert.False(t, IsOverridden())
	assert.Equal(t, detect(), Active())
}
