package domain

import "time"

// Core domain models. JSON tags are the wire shape served by the HTTP
// adapter, so field names here are part of the client contract.

type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Stage names reported while a job advances through the pipeline.
const (
	StageQueued      = "queued"
	StageExtracting  = "extracting"
	StageSummarizing = "summarizing"
	StageBuilding    = "building_mindmap"
	StageDone        = "done"
)

// Progress checkpoints written by the pipeline.
const (
	ProgressStarted    = 10
	ProgressExtracted  = 40
	ProgressSummarized = 70
	ProgressMapped     = 95
	ProgressDone       = 100
)

type Job struct {
	ID            string      `json:"job_id"`
	URL           string      `json:"url"`
	SummaryLength int         `json:"summary_length"`
	MindMapType   MindMapType `json:"mindmap_type"`
	Status        JobStatus   `json:"status"`
	Progress      int         `json:"progress"`
	Stage         string      `json:"stage"`
	Result        *Result     `json:"result,omitempty"`
	Error         string      `json:"error,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// Clone returns a deep copy so stores never hand out aliases of their state.
func (j Job) Clone() Job {
	out := j
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	if j.Result != nil {
		r := j.Result.Clone()
		out.Result = &r
	}
	return out
}

type Section struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
}

type ScrapedContent struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Site      string    `json:"site,omitempty"`
	Language  string    `json:"language,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Sections  []Section `json:"sections"`
	FullText  string    `json:"full_text"`
	WordCount int       `json:"word_count"`
}

type SummaryMethod string

const (
	MethodExtractive SummaryMethod = "extractive"
	MethodAnthropic  SummaryMethod = "anthropic"
)

type SummaryResult struct {
	Summary     string        `json:"summary"`
	KeyConcepts []string      `json:"key_concepts"`
	Method      SummaryMethod `json:"method"`
}

type MindMapType string

const (
	MindMapVisual       MindMapType = "visual"
	MindMapNetwork      MindMapType = "network"
	MindMapHierarchical MindMapType = "hierarchical"
	MindMapAll          MindMapType = "all"
)

type NetworkNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type NetworkEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type NetworkMap struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

type TreeRoot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type TreeNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Parent string `json:"parent"`
}

type HierarchicalMap struct {
	Root  TreeRoot   `json:"root"`
	Nodes []TreeNode `json:"nodes"`
}

// MindMapSet holds the renderings requested for one set of key concepts.
// Unrequested renderings are left nil/empty and omitted on the wire.
type MindMapSet struct {
	Visual       string           `json:"visual,omitempty"`
	Network      *NetworkMap      `json:"network,omitempty"`
	Hierarchical *HierarchicalMap `json:"hierarchical,omitempty"`
}

type Result struct {
	ScrapedContent ScrapedContent `json:"scraped_content"`
	Summary        SummaryResult  `json:"summary"`
	MindMaps       MindMapSet     `json:"mind_maps"`
}

func (r Result) Clone() Result {
	out := r
	sc := r.ScrapedContent
	sc.Sections = make([]Section, len(r.ScrapedContent.Sections))
	for i, s := range r.ScrapedContent.Sections {
		s.Keywords = append([]string(nil), s.Keywords...)
		sc.Sections[i] = s
	}
	out.ScrapedContent = sc
	out.Summary.KeyConcepts = append([]string(nil), r.Summary.KeyConcepts...)
	if r.MindMaps.Network != nil {
		n := NetworkMap{
			Nodes: append([]NetworkNode(nil), r.MindMaps.Network.Nodes...),
			Edges: append([]NetworkEdge(nil), r.MindMaps.Network.Edges...),
		}
		out.MindMaps.Network = &n
	}
	if r.MindMaps.Hierarchical != nil {
		h := HierarchicalMap{
			Root:  r.MindMaps.Hierarchical.Root,
			Nodes: append([]TreeNode(nil), r.MindMaps.Hierarchical.Nodes...),
		}
		out.MindMaps.Hierarchical = &h
	}
	return out
}
