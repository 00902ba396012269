package graph

import (
	"fmt"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"issue-insights/backend/internal/model"
	apperrors "issue-insights/backend/pkg/errors"
)

// MalformedPolicy decides what Build does with an issue that has no creator
type MalformedPolicy int

const (
	// SkipMalformed leaves the issue out and counts it in BuildReport.Skipped
	SkipMalformed MalformedPolicy = iota
	// FailOnMalformed aborts the build with *errors.ErrMalformedRecord
	FailOnMalformed
)

// ParsePolicy maps the config spelling ("skip", "fail") to a policy
func ParsePolicy(s string) (MalformedPolicy, error) {
	switch s {
	case "", "skip":
		return SkipMalformed, nil
	case "fail":
		return FailOnMalformed, nil
	}
	return SkipMalformed, apperrors.NewConfigValidationFailed("MALFORMED_POLICY", fmt.Sprintf("unknown policy %q", s))
}

type buildOptions struct {
	policy MalformedPolicy
	logger *zap.Logger
}

// Option configures Build
type Option func(*buildOptions)

// WithMalformedPolicy sets the policy for issues without a creator
func WithMalformedPolicy(p MalformedPolicy) Option {
	return func(o *buildOptions) { o.policy = p }
}

// WithLogger sets the logger used for skipped records and the build summary
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// accumulator is the state threaded through the fold. step never modifies
// its receiver; it works on copy-on-write snapshots of the trees.
type accumulator struct {
	nodes  *btree.Set[string]
	edges  *btree.BTreeG[Edge]
	report BuildReport
}

func newAccumulator() accumulator {
	return accumulator{
		nodes: new(btree.Set[string]),
		edges: newEdgeTree(),
	}
}

func (a accumulator) step(index int, issue model.Issue, policy MalformedPolicy) (accumulator, error) {
	if issue.Creator == "" {
		if policy == FailOnMalformed {
			return a, apperrors.NewMalformedRecord(index, "issue has no creator")
		}
		a.report.Skipped++
		return a, nil
	}

	next := accumulator{
		nodes:  a.nodes.Copy(),
		edges:  a.edges.Copy(),
		report: a.report,
	}
	next.report.Issues++
	next.nodes.Insert(issue.Creator)

	for _, event := range issue.Events {
		if !event.HasAuthor() {
			next.report.AnonymousEvents++
			continue
		}
		next.nodes.Insert(event.Author)

		// Only creator-to-author interactions are recorded; two event
		// authors on the same issue are not linked to each other.
		if event.Author == issue.Creator {
			next.report.SelfInteractions++
			continue
		}
		next.addInteraction(Canonical(issue.Creator, event.Author))
	}
	return next, nil
}

func (a *accumulator) addInteraction(p Pair) {
	e, ok := a.edges.Get(Edge{Pair: p})
	if ok {
		e.Weight++
	} else {
		e = Edge{Pair: p, Weight: 1}
	}
	a.edges.Set(e)
	a.report.Interactions++
}

// Build folds the issue sequence into an interaction graph. Each event with an
// author different from the issue creator adds one to the weight of the
// {creator, author} edge. Every creator and event author becomes a node, even
// when it ends up with no edges. The result depends only on the multiset of
// issues, not on their order.
func Build(issues []model.Issue, opts ...Option) (*InteractionGraph, BuildReport, error) {
	o := buildOptions{policy: SkipMalformed, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	acc := newAccumulator()
	for i, issue := range issues {
		next, err := acc.step(i, issue, o.policy)
		if err != nil {
			return nil, acc.report, err
		}
		if next.report.Skipped > acc.report.Skipped {
			o.logger.Warn("Skipping issue without creator",
				zap.Int("issue_index", i),
				zap.Int("issue_number", issue.Number),
			)
		}
		acc = next
	}

	g := &InteractionGraph{nodes: acc.nodes, edges: acc.edges}
	o.logger.Debug("Interaction graph built",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("issues", acc.report.Issues),
		zap.Int("skipped", acc.report.Skipped),
	)
	return g, acc.report, nil
}
