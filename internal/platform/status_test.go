package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

func TestManager_Status(t *testing.T) {
	m, _, _, _ := newTestManager(t,
		settings.Platform{Name: "saved"},
		settings.Platform{Name: "missing"},
		settings.Platform{Name: "broken"},
	)

	doc := mcp.NewConfig()
	doc.Set("b", &mcp.Server{Command: "b"})
	doc.Set("a", &mcp.Server{Command: "a"})
	_, err := m.Write("saved", doc)
	require.NoError(t, err)

	broken := m.Path("broken")
	require.NoError(t, os.MkdirAll(filepath.Dir(broken), 0o755))
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))

	all := m.StatusAll()
	require.Len(t, all, 3)

	assert.Equal(t, "saved", all[0].Name)
	assert.Equal(t, StatePresent, all[0].State)
	assert.Equal(t, []string{"a", "b"}, all[0].Servers)
	assert.True(t, all[0].Declared)

	assert.Equal(t, StateMissing, all[1].State)
	assert.NoError(t, all[1].Err)

	assert.Equal(t, StateInvalid, all[2].State)
	assert.Error(t, all[2].Err)

	undeclared := m.Status("other")
	assert.False(t, undeclared.Declared)
	assert.Equal(t, StateMissing, undeclared.State)
}
