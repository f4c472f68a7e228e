package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"

	"github.com/krel404/shades/internal/store"
	"github.com/krel404/shades/internal/types"
)

// sendFailTimeout bounds how long an optimistic entry may stay
// pending. If neither the HTTP response nor the push event confirms
// it in time, the entry is marked failed instead of lingering.
const sendFailTimeout = 15 * time.Second

type sendMessageRequest struct {
	Content          []types.Block `json:"content"`
	CorrelationID    string        `json:"correlation_id"`
	ReplyToMessageID string        `json:"reply_to_message_id,omitempty"`
}

// SendMessage inserts the message optimistically, then posts it. The
// confirming record may arrive through the HTTP response or through
// the push channel, whichever is first; both funnel through the same
// correlation token. Returns the correlation id of the send.
func (c *Client) SendMessage(ctx context.Context, channelID string, content []types.Block, replyTo string) (string, error) {
	tempID, err := shortid.Generate()
	if err != nil {
		return "", fmt.Errorf("temp id: %w", err)
	}
	correlationID := uuid.NewString()

	pending := types.Message{
		TempID:           "tmp-" + tempID,
		CorrelationID:    correlationID,
		ChannelID:        channelID,
		AuthorUserID:     c.userID,
		SortKey:          time.Now().UTC(),
		Content:          content,
		ReplyToMessageID: replyTo,
		Pending:          true,
	}
	c.store.Dispatch(store.MessageSent{Message: pending})

	// the watchdog fires unconditionally; the reducer ignores it once
	// the entry is no longer pending
	time.AfterFunc(c.sendFailTimeout, func() {
		c.store.Dispatch(store.MessageSendFailed{CorrelationID: correlationID})
	})

	var confirmed types.Message
	req := sendMessageRequest{
		Content:          content,
		CorrelationID:    correlationID,
		ReplyToMessageID: replyTo,
	}
	if err := c.post(ctx, "messages", "/channels/"+channelID+"/messages", req, &confirmed); err != nil {
		c.store.Dispatch(store.MessageSendFailed{CorrelationID: correlationID})
		return correlationID, err
	}

	confirmed.CorrelationID = correlationID
	c.store.Dispatch(store.MessageConfirmed{CorrelationID: correlationID, Message: confirmed})
	return correlationID, nil
}

func (c *Client) UpdateMessage(ctx context.Context, messageID string, content []types.Block) error {
	var updated types.Message
	body := map[string]any{"content": content}
	if err := c.patch(ctx, "messages", "/messages/"+messageID, body, &updated); err != nil {
		return err
	}
	c.store.Dispatch(store.MessageUpdated{
		MessageID: messageID,
		Patch:     types.MessagePatch{Content: &updated.Content},
	})
	return nil
}

func (c *Client) RemoveMessage(ctx context.Context, messageID string) error {
	if err := c.del(ctx, "messages", "/messages/"+messageID, nil); err != nil {
		return err
	}
	c.store.Dispatch(store.MessageRemoved{MessageID: messageID})
	return nil
}

// AddReaction applies the reaction locally first; the server's echo
// through the push channel dedups by (emoji, user).
func (c *Client) AddReaction(ctx context.Context, messageID, emoji string) error {
	c.store.Dispatch(store.ReactionAdded{MessageID: messageID, Emoji: emoji, UserID: c.userID})
	return c.post(ctx, "reactions", "/messages/"+messageID+"/reactions/"+emoji, nil, nil)
}

func (c *Client) RemoveReaction(ctx context.Context, messageID, emoji string) error {
	c.store.Dispatch(store.ReactionRemoved{MessageID: messageID, Emoji: emoji, UserID: c.userID})
	return c.del(ctx, "reactions", "/messages/"+messageID+"/reactions/"+emoji, nil)
}
