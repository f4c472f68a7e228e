package store

import (
	"time"

	"github.com/krel404/shades/internal/types"
)

// Action is the closed set of state transitions. The root transition
// switches exhaustively over these types; anything else reaching the
// store is a programmer error and panics.
type Action interface {
	isAction()
}

// viewer

type LoggedIn struct {
	User types.User
}

// channels

type ChannelsFetched struct {
	Channels []types.Channel
}

type ChannelCreated struct {
	Channel types.Channel
}

type ChannelUpdated struct {
	ChannelID string
	Patch     types.ChannelPatch
}

type ChannelDeleted struct {
	ChannelID string
}

type MemberJoined struct {
	ChannelID string
	UserID    string
}

type MemberLeft struct {
	ChannelID string
	UserID    string
}

type ChannelStarred struct {
	ChannelID string
	StarID    string
}

type ChannelUnstarred struct {
	ChannelID string
}

type ChannelMarkedRead struct {
	ChannelID string
	At        time.Time
}

// messages

type MessagesFetched struct {
	ChannelID string
	Messages  []types.Message
}

// MessageSent is the optimistic insert: Message carries TempID,
// CorrelationID, Pending and a client-capture SortKey.
type MessageSent struct {
	Message types.Message
}

// MessageConfirmed replaces the pending entry matched by correlation
// token with the authoritative record.
type MessageConfirmed struct {
	CorrelationID string
	Message       types.Message
}

// MessageSendFailed marks a still-pending entry as failed. It is a
// no-op when the entry was already confirmed, so the send watchdog
// can fire unconditionally.
type MessageSendFailed struct {
	CorrelationID string
}

type MessageReceived struct {
	Message types.Message
}

type MessageUpdated struct {
	MessageID string
	Patch     types.MessagePatch
}

type MessageRemoved struct {
	MessageID string
}

type ReactionAdded struct {
	MessageID string
	Emoji     string
	UserID    string
}

type ReactionRemoved struct {
	MessageID string
	Emoji     string
	UserID    string
}

// users

type UsersFetched struct {
	Users []types.User
}

type UserProfileUpdated struct {
	User types.User
}

type UserPresenceUpdated struct {
	UserID string
	Online bool
}

// typing

type TypingStarted struct {
	ChannelID string
	UserID    string
	ExpiresAt time.Time
}

type TypingEnded struct {
	ChannelID string
	UserID    string
}

// governance

type ProposalsFetched struct {
	Proposals []types.Proposal
}

type CandidatesFetched struct {
	Candidates []types.ProposalCandidate
}

// FeedbackSubmitted is the optimistic governance insert; the post is
// pending until a fetch returns its confirmed counterpart, which the
// merge layer matches by composite key.
type FeedbackSubmitted struct {
	Post types.FeedbackPost
}

func (LoggedIn) isAction()            {}
func (ChannelsFetched) isAction()     {}
func (ChannelCreated) isAction()      {}
func (ChannelUpdated) isAction()      {}
func (ChannelDeleted) isAction()      {}
func (MemberJoined) isAction()        {}
func (MemberLeft) isAction()          {}
func (ChannelStarred) isAction()      {}
func (ChannelUnstarred) isAction()    {}
func (ChannelMarkedRead) isAction()   {}
func (MessagesFetched) isAction()     {}
func (MessageSent) isAction()         {}
func (MessageConfirmed) isAction()    {}
func (MessageSendFailed) isAction()   {}
func (MessageReceived) isAction()     {}
func (MessageUpdated) isAction()      {}
func (MessageRemoved) isAction()      {}
func (ReactionAdded) isAction()       {}
func (ReactionRemoved) isAction()     {}
func (UsersFetched) isAction()        {}
func (UserProfileUpdated) isAction()  {}
func (UserPresenceUpdated) isAction() {}
func (TypingStarted) isAction()       {}
func (TypingEnded) isAction()         {}
func (ProposalsFetched) isAction()    {}
func (CandidatesFetched) isAction()   {}
func (FeedbackSubmitted) isAction()   {}
