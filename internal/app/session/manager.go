package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ssechho/fanchatbot/internal/domain"
	"github.com/ssechho/fanchatbot/internal/observability"
)

var (
	// ErrSendInFlight is returned when a submit arrives while another send
	// is still waiting on the completion backend. Exactly one request may be
	// outstanding per session; callers resubmit once the first resolves.
	ErrSendInFlight = errors.New("a send is already in flight")

	// ErrNoPersonality is returned when a message is submitted before any
	// personality or conversation has been selected.
	ErrNoPersonality = errors.New("no personality selected")

	// ErrSuperseded is returned when a completion resolved after the session
	// moved on (reset or reselect); its result has been discarded.
	ErrSuperseded = errors.New("send superseded, result discarded")

	// ErrNoSuchConversation is returned for an out-of-range roster index.
	ErrNoSuchConversation = errors.New("no such conversation")
)

// Session owns the live chat state for one authenticated user: the cached
// roster of their conversations, the active-conversation pointer, and the
// live message transcript. All mutation goes through its methods; the mutex
// stands in for the single event timeline the browser had.
type Session struct {
	id       string
	identity domain.Identity

	store      domain.ConversationStore
	completion domain.CompletionClient
	now        func() time.Time

	mu           sync.Mutex
	roster       []*domain.Conversation
	activeIndex  int // -1 = none
	live         []domain.Message
	pendingMode  domain.PersonalityKey // "" = none
	sendInFlight bool
	lastActivity time.Time

	// generation invalidates in-flight work: reset and reselect bump it, and
	// a completion that resolves under a stale generation is discarded
	// instead of landing in a conversation it no longer belongs to.
	generation uint64
}

func newSession(ctx context.Context, id string, identity domain.Identity, store domain.ConversationStore, completion domain.CompletionClient, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		identity:    identity,
		store:       store,
		completion:  completion,
		now:         now,
		activeIndex: -1,
	}
	s.lastActivity = now()
	s.loadRoster(ctx)
	return s
}

// loadRoster fetches all conversations owned by this session's user. A query
// failure degrades to an empty roster rather than blocking session start.
func (s *Session) loadRoster(ctx context.Context) {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", s.id,
		"username", s.identity.Username,
	)

	roster, err := s.store.ListConversationsByOwner(ctx, s.identity.Username)
	if err != nil {
		log.Warn("failed to load conversation roster, starting empty", "error", err)
		roster = []*domain.Conversation{}
	}

	s.mu.Lock()
	s.roster = roster
	s.mu.Unlock()

	log.Info("session roster loaded", "conversations", len(roster))
}

// ID is the registry key for this session.
func (s *Session) ID() string {
	return s.id
}

// Identity returns the owner identity the session was started with.
func (s *Session) Identity() domain.Identity {
	return s.identity
}

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	Roster      []*domain.Conversation
	ActiveIndex int // -1 when no conversation is active
	Messages    []domain.Message
	PendingMode domain.PersonalityKey // "" when none selected
	Sending     bool
}

// Snapshot returns a consistent copy of the current state. Mutating the
// returned slices does not touch the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster := make([]*domain.Conversation, 0, len(s.roster))
	for _, c := range s.roster {
		roster = append(roster, copyConversation(c))
	}

	return Snapshot{
		Roster:      roster,
		ActiveIndex: s.activeIndex,
		Messages:    copyMessages(s.live),
		PendingMode: s.pendingMode,
		Sending:     s.sendInFlight,
	}
}

// SelectPersonality starts a new conversation for the given persona: the
// fixed opening line becomes the whole transcript, and the conversation is
// created in the store before any in-memory state changes. Creation is the
// gate; if the store write fails the session stays exactly where it was.
func (s *Session) SelectPersonality(ctx context.Context, key domain.PersonalityKey) (*domain.Conversation, error) {
	persona, ok := domain.LookupPersonality(key)
	if !ok {
		return nil, fmt.Errorf("unknown personality %q", key)
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", s.id,
		"username", s.identity.Username,
		"mode", key,
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendInFlight {
		return nil, ErrSendInFlight
	}

	opening := persona.OpeningMessage()
	conv := &domain.Conversation{
		Title:    conversationTitle(s.now()),
		Mode:     key,
		Owner:    s.identity.Username,
		Messages: []domain.Message{opening},
	}

	id, err := s.store.CreateConversation(ctx, conv)
	if err != nil {
		// Creation failed, so nothing was applied: no roster entry without
		// an id, no live transcript. The caller retries by selecting again.
		log.Error("failed to create conversation", "error", err)
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	conv.ID = id

	s.generation++
	s.roster = append(s.roster, conv)
	s.activeIndex = len(s.roster) - 1
	s.live = []domain.Message{opening}
	s.pendingMode = key
	s.sendInFlight = false
	s.touchLocked()

	log.Info("conversation started", "conversation_id", id)

	return copyConversation(conv), nil
}

// SelectConversation binds the live transcript to an existing roster entry.
// The transcript is replaced wholesale with the stored messages, never
// merged with whatever was on screen before.
func (s *Session) SelectConversation(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.roster) {
		return ErrNoSuchConversation
	}

	conv := s.roster[index]

	s.generation++
	s.activeIndex = index
	s.live = copyMessages(conv.Messages)
	s.pendingMode = conv.Mode
	s.sendInFlight = false
	s.touchLocked()

	return nil
}

// Reset returns the session to the no-conversation state. The previous
// conversation stays in the roster and in the store untouched; any send
// still outstanding is invalidated and its result will be dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.pendingMode = ""
	s.activeIndex = -1
	s.live = []domain.Message{}
	s.sendInFlight = false
	s.touchLocked()
}

// SendOutput is the result of one completed send cycle.
type SendOutput struct {
	UserMessage domain.Message
	Reply       domain.Message

	// PersistWarning is set when the exchange completed but the store update
	// failed. The transcript is not rolled back; the caller surfaces this as
	// a warning because a reload would lose the exchange.
	PersistWarning error
}

// Send runs one request/response cycle: append the user message
// optimistically, call the completion backend with the transcript minus the
// opening line, append the single reply, and persist the active conversation
// once. On completion failure the user message stays visible, the sending
// flag clears, and nothing is persisted; there is no automatic retry.
func (s *Session) Send(ctx context.Context, text string) (*SendOutput, error) {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", s.id,
		"username", s.identity.Username,
	)

	s.mu.Lock()
	if s.pendingMode == "" {
		s.mu.Unlock()
		return nil, ErrNoPersonality
	}
	if s.sendInFlight {
		s.mu.Unlock()
		return nil, ErrSendInFlight
	}

	userMsg := domain.NewMessage(domain.RoleUser, text)
	s.live = append(s.live, userMsg)
	s.sendInFlight = true
	s.touchLocked()

	gen := s.generation
	mode := s.pendingMode
	// The opening line is local framing only; everything after it goes out.
	history := copyMessages(s.live[1:])
	s.mu.Unlock()

	log.Info("sending message", "mode", mode, "history_len", len(history))

	reply, completeErr := s.completion.Complete(ctx, mode, history)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		// The session was reset or rebound while the call was outstanding.
		// The bump already cleared sendInFlight and rebuilt the transcript,
		// so the only correct move is to drop this result on the floor.
		log.Warn("discarding stale completion result")
		return nil, ErrSuperseded
	}

	s.sendInFlight = false
	s.touchLocked()

	if completeErr != nil {
		log.Error("completion failed", "error", completeErr)
		return nil, fmt.Errorf("completion: %w", completeErr)
	}

	s.live = append(s.live, reply)

	out := &SendOutput{
		UserMessage: userMsg,
		Reply:       reply,
	}

	if s.activeIndex >= 0 {
		if err := s.syncActiveConversationLocked(ctx); err != nil {
			log.Warn("failed to persist conversation after send", "error", err)
			out.PersistWarning = err
		}
	}

	log.Info("send completed", "messages", len(s.live))

	return out, nil
}

// syncActiveConversationLocked is the single write path from the live
// transcript to the roster cache and the store: one full-array overwrite per
// completed send cycle. Caller holds s.mu.
func (s *Session) syncActiveConversationLocked(ctx context.Context) error {
	conv := s.roster[s.activeIndex]
	conv.Messages = copyMessages(s.live)

	if err := s.store.UpdateConversationMessages(ctx, conv.ID, conv.Messages); err != nil {
		return fmt.Errorf("update conversation %s: %w", conv.ID, err)
	}
	return nil
}

func (s *Session) touchLocked() {
	s.lastActivity = s.now()
}

func (s *Session) idleSince(now time.Time, window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity) > window
}

// conversationTitle renders the creation timestamp the way the product
// always has: Korean locale date with 오전/오후 clock.
func conversationTitle(t time.Time) string {
	meridiem := "오전"
	h := t.Hour()
	if h >= 12 {
		meridiem = "오후"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d. %02d. %02d. %s %02d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(), meridiem, h12, t.Minute(), t.Second())
}

func copyMessages(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

func copyConversation(c *domain.Conversation) *domain.Conversation {
	return &domain.Conversation{
		ID:       c.ID,
		Title:    c.Title,
		Mode:     c.Mode,
		Owner:    c.Owner,
		Messages: copyMessages(c.Messages),
	}
}
