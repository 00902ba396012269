package graph

// ============================================================================
// Interaction Graph Types
// ============================================================================

// Pair is an unordered pair of contributor identities, stored in canonical
// (ascending) order so that {a,b} and {b,a} share one key.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Edge is one undirected interaction edge and its accumulated weight
type Edge struct {
	Pair
	Weight int `json:"weight"`
}

// NodeSummary is the per-node annotation handed to the render layer
type NodeSummary struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
	Label  string `json:"label"`
}

// EdgeSummary is the per-edge annotation handed to the render layer
type EdgeSummary struct {
	Pair
	Weight int    `json:"weight"`
	Label  string `json:"label"`
}

// Summary holds the projected annotations of a graph, in graph order
type Summary struct {
	Nodes []NodeSummary `json:"nodes"`
	Edges []EdgeSummary `json:"edges"`
}

// BuildReport counts what the builder saw while folding over the records
type BuildReport struct {
	Issues           int `json:"issues"`            // issues that contributed
	Skipped          int `json:"skipped"`           // malformed issues left out
	Interactions     int `json:"interactions"`      // creator/author occurrences turned into weight
	SelfInteractions int `json:"self_interactions"` // events authored by the issue creator
	AnonymousEvents  int `json:"anonymous_events"`  // events without an author
}
