package types

import "time"

// Governance records mirror the subgraph-shaped entities the
// governance screens read: proposals and proposal candidates, each
// carrying votes and/or feedback posts fetched incrementally.

type Vote struct {
	ID      string `json:"id"`
	VoterID string `json:"voter_id"`
	Support int    `json:"support"`
	Votes   int    `json:"votes"`
	Reason  string `json:"reason,omitempty"`
}

type FeedbackPost struct {
	ID          string    `json:"id,omitempty"`
	ProposalID  string    `json:"proposal_id,omitempty"`
	CandidateID string    `json:"candidate_id,omitempty"`
	VoterID     string    `json:"voter_id"`
	Support     int       `json:"support"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	// Pending marks an optimistic post that has no server id yet.
	Pending bool `json:"-"`
}

type Proposal struct {
	ID            string         `json:"id"`
	Title         string         `json:"title,omitempty"`
	State         string         `json:"state,omitempty"`
	ProposerID    string         `json:"proposer_id,omitempty"`
	Votes         []Vote         `json:"votes,omitempty"`
	FeedbackPosts []FeedbackPost `json:"feedback_posts,omitempty"`
}

type CandidateContent struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type CandidateVersion struct {
	Content CandidateContent `json:"content"`
}

type ProposalCandidate struct {
	ID            string            `json:"id"`
	Slug          string            `json:"slug,omitempty"`
	ProposerID    string            `json:"proposer_id,omitempty"`
	LatestVersion *CandidateVersion `json:"latest_version,omitempty"`
	FeedbackPosts []FeedbackPost    `json:"feedback_posts,omitempty"`
}
