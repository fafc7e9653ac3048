package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent_Stamped(t *testing.T) {
	old := []string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })
	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"

	b := Current()

	assert.Equal(t, "v1.2.3", b.Version)
	assert.Equal(t, "abc123", b.Commit)
	assert.Equal(t, "2026-01-02", b.Date)
	assert.Equal(t, runtime.Version(), b.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, b.Platform)
}

func TestCurrent_Unstamped(t *testing.T) {
	b := Current()
	assert.NotEmpty(t, b.Version)
	assert.NotEmpty(t, b.Commit)
}
