package types

import (
	"time"
)

type ChannelKind string

const (
	ChannelKindDM    ChannelKind = "dm"
	ChannelKindTopic ChannelKind = "topic"
)

type AccessLevel string

const (
	AccessOpen    AccessLevel = "open"
	AccessClosed  AccessLevel = "closed"
	AccessPrivate AccessLevel = "private"
)

type Channel struct {
	ID            string      `json:"id"`
	Kind          ChannelKind `json:"kind"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Avatar        string      `json:"avatar,omitempty"`
	OwnerUserID   string      `json:"owner_user_id,omitempty"`
	MemberUserIDs []string    `json:"member_user_ids,omitempty"`
	Access        AccessLevel `json:"access,omitempty"`
	LastMessageAt time.Time   `json:"last_message_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at,omitempty"`
}

// ChannelPatch is a sparse channel update. Only non-nil fields apply,
// which lets an empty string clear a field without a zero-value ambiguity.
type ChannelPatch struct {
	Name          *string      `json:"name,omitempty"`
	Description   *string      `json:"description,omitempty"`
	Avatar        *string      `json:"avatar,omitempty"`
	Access        *AccessLevel `json:"access,omitempty"`
	LastMessageAt *time.Time   `json:"last_message_at,omitempty"`
	MemberUserIDs *[]string    `json:"member_user_ids,omitempty"`
}

type SystemMessageKind string

const (
	SystemMessageChannelUpdated SystemMessageKind = "channel-updated"
	SystemMessageMemberJoined   SystemMessageKind = "member-joined"
	SystemMessageMemberLeft     SystemMessageKind = "member-left"
)

type SystemMessagePayload struct {
	UserID        string        `json:"user_id,omitempty"`
	ChannelUpdate *ChannelPatch `json:"channel_update,omitempty"`
}

type Message struct {
	ID string `json:"id,omitempty"`
	// TempID identifies an optimistic entry before the server assigns an id.
	TempID string `json:"temp_id,omitempty"`
	// CorrelationID links an optimistic entry to its confirming record.
	CorrelationID string    `json:"correlation_id,omitempty"`
	ChannelID     string    `json:"channel_id"`
	AuthorUserID  string    `json:"author_user_id"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	// SortKey is fixed at first insertion and never revised, so a
	// confirmed message keeps its optimistic position.
	SortKey          time.Time             `json:"-"`
	Content          []Block               `json:"content,omitempty"`
	Reactions        []Reaction            `json:"reactions,omitempty"`
	ReplyToMessageID string                `json:"reply_to_message_id,omitempty"`
	System           bool                  `json:"system,omitempty"`
	SystemKind       SystemMessageKind     `json:"system_kind,omitempty"`
	SystemPayload    *SystemMessagePayload `json:"system_payload,omitempty"`
	Pending          bool                  `json:"-"`
	Failed           bool                  `json:"-"`
}

// Key returns the id a message is stored under: the server id once
// known, the temporary id while the entry is still optimistic.
func (m Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.TempID
}

// MessagePatch is a sparse message update.
type MessagePatch struct {
	Content   *[]Block    `json:"content,omitempty"`
	Reactions *[]Reaction `json:"reactions,omitempty"`
}

type Reaction struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
}

type User struct {
	ID             string `json:"id"`
	WalletAddress  string `json:"wallet_address,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Online         bool   `json:"online,omitempty"`
	Deleted        bool   `json:"deleted,omitempty"`
}

// Name returns the user's display name, falling back to a truncated
// checksummed wallet address.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return TruncateAddress(u.WalletAddress)
}
