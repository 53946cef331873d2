package common

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitHashFallback(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	hash := CommitHash("none")
	// the test binary may still live inside a checkout
	assert.NotEmpty(t, hash)
	assert.LessOrEqual(t, len(hash), 8)
}

func TestColorize(t *testing.T) {
	assert.Equal(t, ColorGreen+"ok"+ColorReset, Colorize(ColorGreen, "ok"))
	SetColorsEnabled(false)
	defer SetColorsEnabled(true)
	assert.Equal(t, "ok", Colorize(ColorGreen, "ok"))
}
