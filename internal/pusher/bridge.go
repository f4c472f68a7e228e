package pusher

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/krel404/shades/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1 << 20

	// TypingWindow is the silence window after which a typing entry
	// expires without a refreshing event.
	TypingWindow = 6 * time.Second

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

type typingKey struct {
	channelID string
	userID    string
}

// Bridge maintains the live subscription to the viewer's private
// event channel and funnels every inbound event through the store's
// dispatch entry point. It owns the typing-expiry timers: one
// cancellable timer per (channel,user) pair, replaced on refresh.
type Bridge struct {
	log   *zap.SugaredLogger
	store *store.Store

	gatewayURL string
	token      string
	userID     string

	dialer       *websocket.Dialer
	typingWindow time.Duration

	state         atomic.Int32
	onStateChange func(ConnState)

	timersMu sync.Mutex
	timers   map[typingKey]*time.Timer

	stop chan struct{}
	done chan struct{}
}

func NewBridge(logger *zap.SugaredLogger, st *store.Store, gatewayURL, token, userID string) *Bridge {
	return &Bridge{
		log:          logger,
		store:        st,
		gatewayURL:   gatewayURL,
		token:        token,
		userID:       userID,
		dialer:       websocket.DefaultDialer,
		typingWindow: TypingWindow,
		timers:       make(map[typingKey]*time.Timer),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// SetStateChangeHandler registers the connectivity callback. Must be
// set before Run.
func (b *Bridge) SetStateChangeHandler(fn func(ConnState)) {
	b.onStateChange = fn
}

// Connected is the boolean connectivity signal surfaced to the UI.
func (b *Bridge) Connected() bool {
	return ConnState(b.state.Load()) == StateConnected
}

// Run drives the connect/subscribe/read loop until Shutdown. A
// transport drop re-establishes the subscription with backoff; the
// rest of the store is untouched, so in-flight optimistic entries
// survive a reconnect.
func (b *Bridge) Run() {
	defer close(b.done)
	defer b.setState(StateDisconnected)

	backoff := initialBackoff
	for {
		select {
		case <-b.stop:
			return
		default:
		}

		b.setState(StateConnecting)
		conn, err := b.connect()
		if err != nil {
			b.log.Warnf("pusher: connect: %v", err)
			b.setState(StateDisconnected)
			select {
			case <-time.After(backoff):
			case <-b.stop:
				return
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = initialBackoff
		b.setState(StateConnected)
		b.readLoop(conn)
		b.setState(StateDisconnected)
	}
}

// Shutdown stops the loop and cancels every live typing timer.
func (b *Bridge) Shutdown() {
	close(b.stop)
	<-b.done

	b.timersMu.Lock()
	defer b.timersMu.Unlock()
	for key, timer := range b.timers {
		timer.Stop()
		delete(b.timers, key)
	}
}

func (b *Bridge) connect() (*websocket.Conn, error) {
	conn, _, err := b.dialer.Dial(b.gatewayURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", b.gatewayURL, err)
	}

	sub := Envelope{Event: "subscribe", Channel: "private-" + b.userID}
	data, err := json.Marshal(map[string]string{"auth": b.token})
	if err == nil {
		sub.Data = data
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return conn, nil
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	stopPing := make(chan struct{})
	defer close(stopPing)
	go b.pingLoop(conn, stopPing)

	// unblock the read when Shutdown is called mid-connection
	go func() {
		select {
		case <-b.stop:
			conn.Close()
		case <-stopPing:
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				b.log.Warnf("pusher: read: %v", err)
			}
			return
		}
		b.handleFrame(raw)
	}
}

func (b *Bridge) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			return
		case <-b.stop:
			return
		}
	}
}

// handleFrame decodes one inbound frame and dispatches its action.
// Malformed and unrecognized events are logged and dropped.
func (b *Bridge) handleFrame(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		b.log.Warnf("pusher: malformed frame: %v", err)
		return
	}

	action, err := decodeEvent(env)
	if err != nil {
		b.log.Debugf("pusher: dropping event: %v", err)
		return
	}

	if typed, ok := action.(store.TypingStarted); ok {
		typed.ExpiresAt = time.Now().Add(b.typingWindow)
		b.store.Dispatch(typed)
		b.armTypingTimer(typed.ChannelID, typed.UserID)
		return
	}

	b.store.Dispatch(action)
}

// armTypingTimer schedules the typing-ended synthesis for a
// (channel,user) pair. A live timer for the same pair is cancelled
// and replaced, never stacked.
func (b *Bridge) armTypingTimer(channelID, userID string) {
	key := typingKey{channelID: channelID, userID: userID}

	b.timersMu.Lock()
	defer b.timersMu.Unlock()

	if existing, ok := b.timers[key]; ok {
		existing.Stop()
	}
	b.timers[key] = time.AfterFunc(b.typingWindow, func() {
		b.timersMu.Lock()
		delete(b.timers, key)
		b.timersMu.Unlock()
		b.store.Dispatch(store.TypingEnded{ChannelID: channelID, UserID: userID})
	})
}

func (b *Bridge) setState(s ConnState) {
	prev := ConnState(b.state.Swap(int32(s)))
	if prev == s {
		return
	}
	b.log.Infof("pusher: %s", s)
	if b.onStateChange != nil {
		b.onStateChange(s)
	}
}
