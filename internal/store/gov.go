package store

import (
	"maps"
	"strings"

	"github.com/krel404/shades/internal/types"
)

// GovTable holds governance records: proposals and proposal
// candidates, keyed by lowercased id the way the subgraph returns
// them. Votes and feedback posts live as list-shaped sub-fields and
// are reconciled by the merge layer.
type GovTable struct {
	proposals  map[string]types.Proposal
	candidates map[string]types.ProposalCandidate
}

func newGovTable() *GovTable {
	return &GovTable{
		proposals:  map[string]types.Proposal{},
		candidates: map[string]types.ProposalCandidate{},
	}
}

func (t *GovTable) clone() *GovTable {
	return &GovTable{
		proposals:  maps.Clone(t.proposals),
		candidates: maps.Clone(t.candidates),
	}
}

func (t *GovTable) Proposal(id string) (types.Proposal, bool) {
	p, ok := t.proposals[strings.ToLower(id)]
	return p, ok
}

func (t *GovTable) Candidate(id string) (types.ProposalCandidate, bool) {
	c, ok := t.candidates[strings.ToLower(id)]
	return c, ok
}

func (t *GovTable) reduce(action Action) *GovTable {
	switch a := action.(type) {
	case ProposalsFetched:
		next := t.clone()
		for _, p := range a.Proposals {
			next.upsertProposal(p)
		}
		return next
	case CandidatesFetched:
		next := t.clone()
		for _, c := range a.Candidates {
			next.upsertCandidate(c)
		}
		return next
	case FeedbackSubmitted:
		post := a.Post
		post.Pending = true
		next := t.clone()
		switch {
		case post.ProposalID != "":
			next.upsertProposal(types.Proposal{
				ID:            post.ProposalID,
				FeedbackPosts: []types.FeedbackPost{post},
			})
		case post.CandidateID != "":
			next.upsertCandidate(types.ProposalCandidate{
				ID:            post.CandidateID,
				FeedbackPosts: []types.FeedbackPost{post},
			})
		}
		return next
	default:
		return t
	}
}

func (t *GovTable) upsertProposal(incoming types.Proposal) {
	id := strings.ToLower(incoming.ID)
	incoming.ID = id
	var existing *types.Proposal
	if p, ok := t.proposals[id]; ok {
		existing = &p
	}
	t.proposals[id] = mergeProposals(existing, incoming)
}

func (t *GovTable) upsertCandidate(incoming types.ProposalCandidate) {
	id := strings.ToLower(incoming.ID)
	incoming.ID = id
	if incoming.Slug == "" {
		incoming.Slug = slugFromCandidateID(id)
	}
	var existing *types.ProposalCandidate
	if c, ok := t.candidates[id]; ok {
		existing = &c
	}
	t.candidates[id] = mergeCandidates(existing, incoming)
}

// slugFromCandidateID extracts the slug part of a candidate id, which
// is the proposer address followed by the slug.
func slugFromCandidateID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], "-")
}
