package store

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/krel404/shades/internal/types"
)

// State is one immutable snapshot of every entity table. Readers
// always work against a snapshot taken at a dispatch boundary, never
// a live reference, so a partially-applied transition is unobservable.
type State struct {
	ViewerID string
	Channels *ChannelTable
	Messages *MessageTable
	Users    *UserTable
	Typing   *TypingTable
	Gov      *GovTable
}

func newState() *State {
	return &State{
		Channels: newChannelTable(),
		Messages: newMessageTable(),
		Users:    newUserTable(),
		Typing:   newTypingTable(),
		Gov:      newGovTable(),
	}
}

// Store owns the entity tables. All mutation funnels through
// Dispatch, which serializes transitions; fetch results and push
// events go through the identical path and so obey the same
// invariants.
type Store struct {
	log *zap.SugaredLogger

	dispatchMu sync.Mutex
	state      atomic.Pointer[State]

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(*State)
	beforeHooks map[int]func(Action)
	afterHooks  map[int]func(Action, *State)
}

func NewStore(logger *zap.SugaredLogger) *Store {
	s := &Store{
		log:         logger,
		subscribers: make(map[int]func(*State)),
		beforeHooks: make(map[int]func(Action)),
		afterHooks:  make(map[int]func(Action, *State)),
	}
	s.state.Store(newState())
	return s
}

// State returns the current snapshot.
func (s *Store) State() *State {
	return s.state.Load()
}

// Dispatch applies one action. Transitions are serialized; the new
// snapshot is visible to readers before any after-hook or subscriber
// runs.
func (s *Store) Dispatch(action Action) {
	s.dispatchMu.Lock()
	s.log.Debugf("dispatch %T", action)
	for _, hook := range s.copyBeforeHooks() {
		hook(action)
	}

	prev := s.state.Load()
	next := reduce(prev, action)
	s.state.Store(next)

	for _, hook := range s.copyAfterHooks() {
		hook(action, next)
	}
	s.dispatchMu.Unlock()

	if next != prev {
		for _, fn := range s.copySubscribers() {
			fn(next)
		}
	}
}

// Subscribe registers a snapshot listener, returning its remove func.
func (s *Store) Subscribe(fn func(*State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// OnBeforeDispatch registers a hook called with each action before it
// is applied. Used by side-effecting collaborators such as
// notification triggers.
func (s *Store) OnBeforeDispatch(fn func(Action)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.beforeHooks[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.beforeHooks, id)
	}
}

// OnAfterDispatch registers a hook called with each action and the
// snapshot it produced.
func (s *Store) OnAfterDispatch(fn func(Action, *State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.afterHooks[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.afterHooks, id)
	}
}

func (s *Store) copySubscribers() []func(*State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	out := make([]func(*State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		out = append(out, fn)
	}
	return out
}

func (s *Store) copyBeforeHooks() []func(Action) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	out := make([]func(Action), 0, len(s.beforeHooks))
	for _, fn := range s.beforeHooks {
		out = append(out, fn)
	}
	return out
}

func (s *Store) copyAfterHooks() []func(Action, *State) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	out := make([]func(Action, *State), 0, len(s.afterHooks))
	for _, fn := range s.afterHooks {
		out = append(out, fn)
	}
	return out
}

// reduce is the root transition function. Each table reduces the
// action independently, then the cross-table rules run so that a
// single dispatch leaves every derived index consistent.
func reduce(prev *State, action Action) *State {
	assertKnownAction(action)

	next := *prev
	if a, ok := action.(LoggedIn); ok {
		next.ViewerID = a.User.ID
	}

	next.Channels = prev.Channels.reduce(action)
	next.Messages = prev.Messages.reduce(action)
	next.Users = prev.Users.reduce(action)
	next.Typing = prev.Typing.reduce(action)
	next.Gov = prev.Gov.reduce(action)

	switch a := action.(type) {
	case ChannelDeleted:
		next.Messages = next.Messages.dropChannel(a.ChannelID)
		next.Typing = next.Typing.dropChannel(a.ChannelID)
	case MessageSent:
		next.Channels = next.Channels.bumpLastMessage(a.Message.ChannelID, messageTime(a.Message))
	case MessageConfirmed:
		next.Channels = next.Channels.bumpLastMessage(a.Message.ChannelID, messageTime(a.Message))
	case MessageReceived:
		next.Channels = next.Channels.bumpLastMessage(a.Message.ChannelID, messageTime(a.Message))
	case MessagesFetched:
		var latest time.Time
		for _, m := range a.Messages {
			if at := messageTime(m); at.After(latest) {
				latest = at
			}
		}
		next.Channels = next.Channels.bumpLastMessage(a.ChannelID, latest)
	}

	if next.ViewerID == prev.ViewerID &&
		next.Channels == prev.Channels &&
		next.Messages == prev.Messages &&
		next.Users == prev.Users &&
		next.Typing == prev.Typing &&
		next.Gov == prev.Gov {
		return prev
	}
	return &next
}

// messageTime is the watermark a message contributes to its channel's
// lastMessageAt: the server timestamp when known, the optimistic sort
// key otherwise.
func messageTime(m types.Message) time.Time {
	if !m.CreatedAt.IsZero() {
		return m.CreatedAt
	}
	return m.SortKey
}

// assertKnownAction panics on an action type outside the closed set.
// Such a value reaching the store is a code defect, not a runtime
// condition to recover from.
func assertKnownAction(action Action) {
	switch action.(type) {
	case LoggedIn,
		ChannelsFetched, ChannelCreated, ChannelUpdated, ChannelDeleted,
		MemberJoined, MemberLeft,
		ChannelStarred, ChannelUnstarred, ChannelMarkedRead,
		MessagesFetched, MessageSent, MessageConfirmed, MessageSendFailed,
		MessageReceived, MessageUpdated, MessageRemoved,
		ReactionAdded, ReactionRemoved,
		UsersFetched, UserProfileUpdated, UserPresenceUpdated,
		TypingStarted, TypingEnded,
		ProposalsFetched, CandidatesFetched, FeedbackSubmitted:
	default:
		panic(fmt.Sprintf("store: unhandled action type %T", action))
	}
}
