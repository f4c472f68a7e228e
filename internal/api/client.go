package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/krel404/shades/internal/metrics"
	"github.com/krel404/shades/internal/store"
	"github.com/krel404/shades/internal/types"
)

const (
	requestTimeout   = 15 * time.Second
	defaultPageLimit = 50
	userBatchSize    = 50

	// typingSignalInterval throttles outbound typing notifications
	// per channel.
	typingSignalInterval = 3 * time.Second
)

// Client is the async boundary: it issues requests against the API
// origin and dispatches success actions into the store. The store is
// left untouched on failure so the tables never hold partial results.
type Client struct {
	log     *zap.SugaredLogger
	store   *store.Store
	metrics *metrics.Metrics

	http   *http.Client
	origin string
	token  string
	userID string

	sendFailTimeout time.Duration

	typingMu sync.Mutex
	typing   map[string]*rate.Limiter
}

func NewClient(logger *zap.SugaredLogger, st *store.Store, m *metrics.Metrics, origin, token string) (*Client, error) {
	claims, err := ParseAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	return &Client{
		log:             logger,
		store:           st,
		metrics:         m,
		http:            &http.Client{Timeout: requestTimeout},
		origin:          origin,
		token:           token,
		userID:          claims.UserID,
		sendFailTimeout: sendFailTimeout,
		typing:          make(map[string]*rate.Limiter),
	}, nil
}

// UserID is the authenticated viewer's id, read from the token.
func (c *Client) UserID() string { return c.userID }

// Login fetches the viewer's own record and seeds the store with it.
func (c *Client) Login(ctx context.Context) (types.User, error) {
	var me types.User
	if err := c.get(ctx, "me", "/me", nil, &me); err != nil {
		return types.User{}, err
	}
	c.store.Dispatch(store.LoggedIn{User: me})
	return me, nil
}

// FetchChannels loads the viewer's channel list.
func (c *Client) FetchChannels(ctx context.Context) ([]types.Channel, error) {
	var channels []types.Channel
	if err := c.get(ctx, "channels", "/channels", nil, &channels); err != nil {
		return nil, err
	}
	c.store.Dispatch(store.ChannelsFetched{Channels: channels})
	return channels, nil
}

// FetchChannelMessages loads one page of a channel's history. The
// cursor contract is beforeMessageID + limit; overlapping pages are
// harmless because the merge layer dedups by id.
func (c *Client) FetchChannelMessages(ctx context.Context, channelID, beforeMessageID string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if beforeMessageID != "" {
		query.Set("before", beforeMessageID)
	}

	var messages []types.Message
	if err := c.get(ctx, "messages", "/channels/"+channelID+"/messages", query, &messages); err != nil {
		return nil, err
	}
	c.store.Dispatch(store.MessagesFetched{ChannelID: channelID, Messages: messages})
	return messages, nil
}

// FetchUsers loads user records in parallel batches.
func (c *Client) FetchUsers(ctx context.Context, userIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)

	batches := make([][]types.User, (len(userIDs)+userBatchSize-1)/userBatchSize)
	for i := range batches {
		i := i
		lo, hi := i*userBatchSize, (i+1)*userBatchSize
		if hi > len(userIDs) {
			hi = len(userIDs)
		}
		ids := userIDs[lo:hi]
		g.Go(func() error {
			query := url.Values{"ids": {joinIDs(ids)}}
			return c.get(ctx, "users", "/users", query, &batches[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var users []types.User
	for _, b := range batches {
		users = append(users, b...)
	}
	c.store.Dispatch(store.UsersFetched{Users: users})
	return nil
}

type CreateChannelParams struct {
	Kind        types.ChannelKind `json:"kind"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Access      types.AccessLevel `json:"access,omitempty"`
	MemberIDs   []string          `json:"member_user_ids,omitempty"`
}

func (c *Client) CreateChannel(ctx context.Context, params CreateChannelParams) (types.Channel, error) {
	var channel types.Channel
	if err := c.post(ctx, "channels", "/channels", params, &channel); err != nil {
		return types.Channel{}, err
	}
	c.store.Dispatch(store.ChannelCreated{Channel: channel})
	return channel, nil
}

// CreateDMChannel resolves to the existing DM for the member set when
// one is known locally; a second DM for the same members is never
// created. The viewer is always part of the set.
func (c *Client) CreateDMChannel(ctx context.Context, memberIDs []string) (types.Channel, error) {
	members := withViewer(memberIDs, c.userID)

	state := c.store.State()
	if id, ok := state.Channels.DMWithMembers(members); ok {
		channel, _ := state.Channels.Channel(id)
		return channel, nil
	}

	return c.CreateChannel(ctx, CreateChannelParams{
		Kind:      types.ChannelKindDM,
		MemberIDs: members,
	})
}

func (c *Client) UpdateChannel(ctx context.Context, channelID string, patch types.ChannelPatch) error {
	var updated types.ChannelPatch
	if err := c.patch(ctx, "channels", "/channels/"+channelID, patch, &updated); err != nil {
		return err
	}
	// the server's confirmed diff applies, even when it contradicts
	// the optimistic guess
	c.store.Dispatch(store.ChannelUpdated{ChannelID: channelID, Patch: updated})
	return nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	if err := c.del(ctx, "channels", "/channels/"+channelID, nil); err != nil {
		return err
	}
	c.store.Dispatch(store.ChannelDeleted{ChannelID: channelID})
	return nil
}

func (c *Client) JoinChannel(ctx context.Context, channelID string) error {
	if err := c.post(ctx, "members", "/channels/"+channelID+"/members", nil, nil); err != nil {
		return err
	}
	c.store.Dispatch(store.MemberJoined{ChannelID: channelID, UserID: c.userID})
	return nil
}

func (c *Client) LeaveChannel(ctx context.Context, channelID string) error {
	if err := c.del(ctx, "members", "/channels/"+channelID+"/members/me", nil); err != nil {
		return err
	}
	c.store.Dispatch(store.MemberLeft{ChannelID: channelID, UserID: c.userID})
	return nil
}

type starResponse struct {
	StarID string `json:"star_id"`
}

func (c *Client) StarChannel(ctx context.Context, channelID string) error {
	var res starResponse
	if err := c.post(ctx, "stars", "/channels/"+channelID+"/star", nil, &res); err != nil {
		return err
	}
	c.store.Dispatch(store.ChannelStarred{ChannelID: channelID, StarID: res.StarID})
	return nil
}

func (c *Client) UnstarChannel(ctx context.Context, channelID string) error {
	if err := c.del(ctx, "stars", "/channels/"+channelID+"/star", nil); err != nil {
		return err
	}
	c.store.Dispatch(store.ChannelUnstarred{ChannelID: channelID})
	return nil
}

// MarkChannelRead advances the read marker to the channel's newest
// known activity and tells the server.
func (c *Client) MarkChannelRead(ctx context.Context, channelID string) error {
	state := c.store.State()
	at := time.Now().UTC()
	if channel, ok := state.Channels.Channel(channelID); ok && channel.LastMessageAt.After(at) {
		at = channel.LastMessageAt
	}

	c.store.Dispatch(store.ChannelMarkedRead{ChannelID: channelID, At: at})
	return c.post(ctx, "read", "/channels/"+channelID+"/read", map[string]any{"at": at}, nil)
}

// NotifyTyping signals the server that the viewer is composing.
// Signals are rate-limited per channel so key-by-key input does not
// flood the API.
func (c *Client) NotifyTyping(ctx context.Context, channelID string) error {
	if !c.typingLimiter(channelID).Allow() {
		return nil
	}
	return c.post(ctx, "typing", "/channels/"+channelID+"/typing", nil, nil)
}

func (c *Client) typingLimiter(channelID string) *rate.Limiter {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()
	l, ok := c.typing[channelID]
	if !ok {
		l = rate.NewLimiter(rate.Every(typingSignalInterval), 1)
		c.typing[channelID] = l
	}
	return l
}

func (c *Client) get(ctx context.Context, resource, path string, query url.Values, v any) error {
	return c.do(ctx, resource, http.MethodGet, path, query, nil, v)
}

func (c *Client) post(ctx context.Context, resource, path string, body, v any) error {
	return c.do(ctx, resource, http.MethodPost, path, nil, body, v)
}

func (c *Client) patch(ctx context.Context, resource, path string, body, v any) error {
	return c.do(ctx, resource, http.MethodPatch, path, nil, body, v)
}

func (c *Client) del(ctx context.Context, resource, path string, query url.Values) error {
	return c.do(ctx, resource, http.MethodDelete, path, query, nil, nil)
}

func (c *Client) do(ctx context.Context, resource, method, path string, query url.Values, body, v any) error {
	start := time.Now()
	err := c.doRequest(ctx, method, path, query, body, v)
	c.metrics.FetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues(resource).Inc()
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, v any) error {
	u := c.origin + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil {
			c.log.Debugf("api: undecodable error body for %s %s: %v", method, path, err)
		}
		return apiErr
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func joinIDs(ids []string) string {
	var s string
	for i, id := range ids {
		if i > 0 {
			s += ","
		}
		s += id
	}
	return s
}

func withViewer(memberIDs []string, viewerID string) []string {
	for _, id := range memberIDs {
		if id == viewerID {
			return memberIDs
		}
	}
	return append(append([]string{}, memberIDs...), viewerID)
}
