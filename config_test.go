package hamlsh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
r: 4
c: 2.5
family: randomized
delta: 0.1
seed: 42
`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.R)
	assert.Equal(t, 2.5, cfg.C)
	assert.Equal(t, FamilyRandomized, cfg.Family)
	assert.Equal(t, 0.1, cfg.Delta)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(42), *cfg.Seed)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("r: 1\nc: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, FamilyAuto, cfg.Family)
	assert.Zero(t, cfg.Delta)
	assert.Nil(t, cfg.Seed)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "r: 1\nc: 2\nk: 3\n"},
		{"unknown family", "r: 1\nc: 2\nfamily: a3\n"},
		{"missing radius", "c: 2\n"},
		{"negative c", "r: 1\nc: -1\n"},
		{"delta out of range", "r: 1\nc: 2\ndelta: 1\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")
	require.NoError(t, os.WriteFile(path, []byte("r: 2\nc: 3\nfamily: a1\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FamilyA1, cfg.Family)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_WithSeed(t *testing.T) {
	base := Config{R: 1, C: 2}
	seeded := base.WithSeed(5)

	assert.Nil(t, base.Seed)
	require.NotNil(t, seeded.Seed)
	assert.Equal(t, int64(5), *seeded.Seed)
}
