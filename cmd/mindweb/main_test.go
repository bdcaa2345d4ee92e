package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/domain"
)

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	t.Setenv("ANTHROPIC_API_KEY", "")
	var out bytes.Buffer
	app := newApp(strings.NewReader(stdin), &out)
	err := app.Run(append([]string{"mindweb", "--config", filepath.Join(t.TempDir(), "absent.yml")}, args...))
	return out.String(), err
}

func TestMindmapCommand_Network(t *testing.T) {
	out, err := runApp(t, "", "mindmap", "--title", "T", "--type", "network", "a", "b")
	require.NoError(t, err)

	var set domain.MindMapSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.NotNil(t, set.Network)
	assert.Len(t, set.Network.Nodes, 3)
	assert.Len(t, set.Network.Edges, 2)
	assert.Nil(t, set.Hierarchical)
}

func TestMindmapCommand_VisualIsPlainText(t *testing.T) {
	out, err := runApp(t, "", "mindmap", "--title", "Oceans", "--type", "visual", "tides", "reefs")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Oceans"))
	assert.Contains(t, out, "tides")
}

func TestMindmapCommand_NoConcepts(t *testing.T) {
	_, err := runApp(t, "", "mindmap", "--title", "T")
	assert.ErrorIs(t, err, domain.ErrMindMap)
}

func TestSummarizeCommand_Stdin(t *testing.T) {
	text := "Tides rise and fall twice a day. The moon pulls the oceans toward it.\n\nSpring tides happen when the sun and moon align."
	out, err := runApp(t, text, "summarize", "--length", "12")
	require.NoError(t, err)

	var res domain.SummaryResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.MethodExtractive, res.Method)
	assert.LessOrEqual(t, len(strings.Fields(res.Summary)), 12)
	assert.NotEmpty(t, res.KeyConcepts)
}

func TestSummarizeCommand_EmptyInput(t *testing.T) {
	_, err := runApp(t, "   ", "summarize")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestProcessCommand_RequiresURL(t *testing.T) {
	_, err := runApp(t, "", "process")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestTypesCommand(t *testing.T) {
	out, err := runApp(t, "", "types")
	require.NoError(t, err)
	for _, typ := range []string{"visual", "network", "hierarchical", "all"} {
		assert.Contains(t, out, typ)
	}
}
