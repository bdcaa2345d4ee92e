// Package mindmap renders a title and its key concepts as a text outline,
// a node/edge graph and a parented tree.
package mindmap

import (
	"strings"

	"mindweb/internal/domain"
)

const (
	RootType    = "topic"
	ConceptType = "concept"

	// wrapWidth is the column limit of the visual summary block.
	wrapWidth = 78
)

// TypeInfo describes one selectable rendering.
type TypeInfo struct {
	Type        domain.MindMapType `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
}

// Types lists the renderings Build understands.
func Types() []TypeInfo {
	return []TypeInfo{
		{domain.MindMapVisual, "Visual", "Plain-text outline: the title followed by one indented line per key concept"},
		{domain.MindMapNetwork, "Network", "Graph of nodes and edges linking the title node to each key concept"},
		{domain.MindMapHierarchical, "Hierarchical", "Tree with the title as root and each key concept as a child node"},
		{domain.MindMapAll, "All", "Every rendering above"},
	}
}

type Builder struct{}

func New() *Builder { return &Builder{} }

// Build renders keyConcepts in the formats selected by typ. Concept i is
// line i+1 of the visual outline and node i of the network (after the
// root) and of the hierarchical tree.
func (b *Builder) Build(title string, keyConcepts []string, summary string, typ domain.MindMapType) (*domain.MindMapSet, error) {
	typ, err := domain.ParseMindMapType(string(typ))
	if err != nil {
		return nil, err
	}
	concepts := make([]string, 0, len(keyConcepts))
	for _, c := range keyConcepts {
		if c = strings.Join(strings.Fields(c), " "); c != "" {
			concepts = append(concepts, c)
		}
	}
	if len(concepts) == 0 {
		return nil, domain.MindMapError("cannot build a mind map without key concepts")
	}
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = "Untitled"
	}

	out := &domain.MindMapSet{}
	if typ == domain.MindMapAll || typ == domain.MindMapVisual {
		out.Visual = visual(title, concepts, summary)
	}
	if typ == domain.MindMapAll || typ == domain.MindMapNetwork {
		out.Network = network(title, concepts)
	}
	if typ == domain.MindMapAll || typ == domain.MindMapHierarchical {
		out.Hierarchical = hierarchical(title, concepts)
	}
	return out, nil
}

func visual(title string, concepts []string, summary string) string {
	lines := make([]string, 0, len(concepts)+2)
	lines = append(lines, title)
	for _, c := range concepts {
		lines = append(lines, "  - "+c)
	}
	if summary = strings.TrimSpace(summary); summary != "" {
		lines = append(lines, "", "Summary:")
		lines = append(lines, wrap(summary, wrapWidth)...)
	}
	return strings.Join(lines, "\n")
}

func network(title string, concepts []string) *domain.NetworkMap {
	ids := idSpace{}
	root := domain.NetworkNode{ID: ids.next(title), Label: title}
	m := &domain.NetworkMap{
		Nodes: make([]domain.NetworkNode, 0, len(concepts)+1),
		Edges: make([]domain.NetworkEdge, 0, len(concepts)),
	}
	m.Nodes = append(m.Nodes, root)
	for _, c := range concepts {
		id := ids.next(c)
		m.Nodes = append(m.Nodes, domain.NetworkNode{ID: id, Label: c})
		m.Edges = append(m.Edges, domain.NetworkEdge{Source: root.ID, Target: id})
	}
	return m
}

func hierarchical(title string, concepts []string) *domain.HierarchicalMap {
	ids := idSpace{}
	m := &domain.HierarchicalMap{
		Root:  domain.TreeRoot{ID: ids.next(title), Name: title, Type: RootType},
		Nodes: make([]domain.TreeNode, 0, len(concepts)),
	}
	for _, c := range concepts {
		m.Nodes = append(m.Nodes, domain.TreeNode{
			ID:     ids.next(c),
			Name:   c,
			Type:   ConceptType,
			Parent: m.Root.ID,
		})
	}
	return m
}

// wrap breaks s into lines of at most width columns, indented by two
// spaces. Words longer than a line stand alone.
func wrap(s string, width int) []string {
	const indent = "  "
	var (
		lines []string
		line  strings.Builder
	)
	for _, w := range strings.Fields(s) {
		if line.Len() > 0 && line.Len()+1+len(w) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() == 0 {
			line.WriteString(indent)
		} else {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
