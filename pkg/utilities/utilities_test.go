package utilities

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	seed := "0xsignature-and-password"
	fp := Fingerprint(seed)

	assert.Len(t, fp, 12)
	assert.Equal(t, fp, Fingerprint(seed), "fingerprint must be stable")
	assert.NotEqual(t, fp, Fingerprint(seed+"x"))
	assert.False(t, strings.Contains(seed, fp))
	assert.Empty(t, Fingerprint(""))
}

func TestNewSnowflakeIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSnowflakeID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestInitWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "wizard.log")
	lg, err := Init(Config{Level: "debug", File: file})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, "debug", levelFromString("debug").String())
	assert.Equal(t, "warn", levelFromString("warning").String())
	assert.Equal(t, "info", levelFromString("bogus").String())
}
