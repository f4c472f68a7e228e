package api

import (
	"context"
	"time"

	"github.com/krel404/shades/internal/store"
	"github.com/krel404/shades/internal/types"
)

// Governance fetchers. Proposals and candidates arrive in partial
// shapes (a list page without votes, a detail fetch with votes and
// feedback) and converge through the merge layer.

func (c *Client) FetchProposals(ctx context.Context) ([]types.Proposal, error) {
	var proposals []types.Proposal
	if err := c.get(ctx, "proposals", "/proposals", nil, &proposals); err != nil {
		return nil, err
	}
	c.store.Dispatch(store.ProposalsFetched{Proposals: proposals})
	return proposals, nil
}

func (c *Client) FetchProposal(ctx context.Context, proposalID string) (types.Proposal, error) {
	var proposal types.Proposal
	if err := c.get(ctx, "proposals", "/proposals/"+proposalID, nil, &proposal); err != nil {
		return types.Proposal{}, err
	}
	c.store.Dispatch(store.ProposalsFetched{Proposals: []types.Proposal{proposal}})
	return proposal, nil
}

func (c *Client) FetchCandidates(ctx context.Context) ([]types.ProposalCandidate, error) {
	var candidates []types.ProposalCandidate
	if err := c.get(ctx, "candidates", "/candidates", nil, &candidates); err != nil {
		return nil, err
	}
	c.store.Dispatch(store.CandidatesFetched{Candidates: candidates})
	return candidates, nil
}

type feedbackRequest struct {
	Support int    `json:"support"`
	Reason  string `json:"reason,omitempty"`
}

// SubmitProposalFeedback posts feedback optimistically; the confirmed
// counterpart returned by a later fetch clears the pending entry via
// its composite key.
func (c *Client) SubmitProposalFeedback(ctx context.Context, proposalID string, support int, reason string) error {
	post := types.FeedbackPost{
		ProposalID: proposalID,
		VoterID:    c.userID,
		Support:    support,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	c.store.Dispatch(store.FeedbackSubmitted{Post: post})

	return c.post(ctx, "feedback", "/proposals/"+proposalID+"/feedback",
		feedbackRequest{Support: support, Reason: reason}, nil)
}

func (c *Client) SubmitCandidateFeedback(ctx context.Context, candidateID string, support int, reason string) error {
	post := types.FeedbackPost{
		CandidateID: candidateID,
		VoterID:     c.userID,
		Support:     support,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	c.store.Dispatch(store.FeedbackSubmitted{Post: post})

	return c.post(ctx, "feedback", "/candidates/"+candidateID+"/feedback",
		feedbackRequest{Support: support, Reason: reason}, nil)
}
