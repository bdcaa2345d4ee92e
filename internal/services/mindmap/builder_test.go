package mindmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweb/internal/domain"
)

func TestBuild_NetworkScenario(t *testing.T) {
	set, err := New().Build("T", []string{"a", "b"}, "", domain.MindMapNetwork)
	require.NoError(t, err)

	require.NotNil(t, set.Network)
	assert.Len(t, set.Network.Nodes, 3)
	assert.Len(t, set.Network.Edges, 2)
	assert.Empty(t, set.Visual)
	assert.Nil(t, set.Hierarchical)

	ids := map[string]bool{}
	for _, n := range set.Network.Nodes {
		ids[n.ID] = true
	}
	for _, e := range set.Network.Edges {
		assert.True(t, ids[e.Source], "dangling source %s", e.Source)
		assert.True(t, ids[e.Target], "dangling target %s", e.Target)
		assert.Equal(t, "t", e.Source)
	}
}

func TestBuild_AllFormatsAgreeByIndex(t *testing.T) {
	concepts := []string{"Machine Learning", "machine learning", "Data", "C++", "  ", "Neural   Nets"}
	set, err := New().Build("Machine Learning", concepts, "", "")
	require.NoError(t, err)

	kept := []string{"Machine Learning", "machine learning", "Data", "C++", "Neural Nets"}
	lines := strings.Split(set.Visual, "\n")
	require.Len(t, lines, len(kept)+1)
	require.Len(t, set.Network.Nodes, len(kept)+1)
	require.Len(t, set.Hierarchical.Nodes, len(kept))

	assert.Equal(t, "Machine Learning", lines[0])
	for i, c := range kept {
		assert.Equal(t, "  - "+c, lines[i+1])
		assert.Equal(t, c, set.Network.Nodes[i+1].Label)
		assert.Equal(t, c, set.Hierarchical.Nodes[i].Name)
	}
}

func TestBuild_UniqueSlugs(t *testing.T) {
	set, err := New().Build("Machine Learning", []string{"Machine Learning", "machine-learning", "!!!", "???"}, "", domain.MindMapAll)
	require.NoError(t, err)

	var netIDs []string
	for _, n := range set.Network.Nodes {
		netIDs = append(netIDs, n.ID)
	}
	assert.Equal(t, []string{"machine-learning", "machine-learning-2", "machine-learning-3", "node", "node-2"}, netIDs)

	// The tree keeps its own namespace: the root takes the bare slug again.
	assert.Equal(t, "machine-learning", set.Hierarchical.Root.ID)
	assert.Equal(t, "machine-learning-2", set.Hierarchical.Nodes[0].ID)
}

func TestBuild_HierarchyIsRootedTree(t *testing.T) {
	set, err := New().Build("Topic", []string{"x", "y", "z"}, "", domain.MindMapHierarchical)
	require.NoError(t, err)

	h := set.Hierarchical
	assert.Equal(t, RootType, h.Root.Type)
	assert.Equal(t, "Topic", h.Root.Name)

	known := map[string]bool{h.Root.ID: true}
	for _, n := range h.Nodes {
		known[n.ID] = true
	}
	for _, n := range h.Nodes {
		assert.Equal(t, ConceptType, n.Type)
		assert.True(t, known[n.Parent])
		assert.NotEqual(t, n.ID, n.Parent)
	}
}

func TestBuild_VisualSummaryBlock(t *testing.T) {
	summary := strings.Repeat("river delta ", 20)
	set, err := New().Build("Rivers", []string{"nile"}, summary, domain.MindMapVisual)
	require.NoError(t, err)

	lines := strings.Split(set.Visual, "\n")
	assert.Equal(t, []string{"Rivers", "  - nile", "", "Summary:"}, lines[:4])
	for _, l := range lines[4:] {
		assert.LessOrEqual(t, len(l), wrapWidth)
		assert.True(t, strings.HasPrefix(l, "  "))
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := New().Build("T", nil, "", domain.MindMapAll)
	assert.ErrorIs(t, err, domain.ErrMindMap)

	_, err = New().Build("T", []string{" ", ""}, "", domain.MindMapAll)
	assert.ErrorIs(t, err, domain.ErrMindMap)

	_, err = New().Build("T", []string{"a"}, "", "radial")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "hello-world", Slug("  Hello, World! "))
	assert.Equal(t, "c", Slug("C++"))
	assert.Equal(t, "node", Slug("日本"))
	assert.Equal(t, "a1-b2", Slug("a1--b2"))
}

func TestTypes(t *testing.T) {
	var names []domain.MindMapType
	for _, ti := range Types() {
		names = append(names, ti.Type)
		assert.NotEmpty(t, ti.Description)
	}
	assert.Equal(t, []domain.MindMapType{domain.MindMapVisual, domain.MindMapNetwork, domain.MindMapHierarchical, domain.MindMapAll}, names)
}
