package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ssechho/fanchatbot/internal/adapters/identity"
	"github.com/ssechho/fanchatbot/internal/app/library"
	"github.com/ssechho/fanchatbot/internal/app/session"
	"github.com/ssechho/fanchatbot/internal/app/trending"
	"github.com/ssechho/fanchatbot/internal/domain"
)

type Server struct {
	registry *session.Registry
	library  *library.Service
	trending *trending.Rotator
	identity identity.Resolver
}

func NewServer(registry *session.Registry, librarySvc *library.Service, rotator *trending.Rotator, resolver identity.Resolver) http.Handler {
	s := &Server{
		registry: registry,
		library:  librarySvc,
		trending: rotator,
		identity: resolver,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /sessions           → POST: start session for the authenticated user
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}              → GET: state snapshot, DELETE: end
	// /sessions/{id}/personality  → POST: start a conversation for a persona
	// /sessions/{id}/conversation → POST: bind an existing roster entry
	// /sessions/{id}/messages     → POST: send one message
	// /sessions/{id}/reset        → POST: back to no-conversation
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	mux.HandleFunc("/library", s.handleLibrary)
	mux.HandleFunc("/trending", s.handleTrending)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type partJSON struct {
	Text string `json:"text"`
}

type messageJSON struct {
	Role  string     `json:"role"`
	Parts []partJSON `json:"parts"`
}

type conversationJSON struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Mode     string        `json:"mode"`
	Username string        `json:"username"`
	Messages []messageJSON `json:"messages"`
}

type startSessionResponse struct {
	SessionID string             `json:"session_id"`
	Username  string             `json:"username"`
	ImageURL  string             `json:"image_url,omitempty"`
	Roster    []conversationJSON `json:"conversations"`
}

type sessionStateResponse struct {
	Roster      []conversationJSON `json:"conversations"`
	ActiveIndex *int               `json:"active_index"`
	Messages    []messageJSON      `json:"messages"`
	Mode        string             `json:"mode,omitempty"`
	Sending     bool               `json:"sending"`
}

type selectPersonalityRequest struct {
	Mode string `json:"mode"`
}

type selectConversationRequest struct {
	Index int `json:"index"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage    messageJSON `json:"user_message"`
	AssistantReply messageJSON `json:"assistant_message"`
	PersistWarning string      `json:"persist_warning,omitempty"`
}

type keywordEntryJSON struct {
	ID              string   `json:"id"`
	Word            string   `json:"word"`
	ConversationIDs []string `json:"conversation_ids"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleStartSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id} or /sessions/{id}/{intent}
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	sess, ok := s.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleSessionState(w, r, sess)
		case http.MethodDelete:
			s.registry.End(id)
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch parts[1] {
		case "personality":
			s.handleSelectPersonality(w, r, sess)
		case "conversation":
			s.handleSelectConversation(w, r, sess)
		case "messages":
			s.handleSendMessage(w, r, sess)
		case "reset":
			sess.Reset()
			s.handleSessionState(w, r, sess)
		default:
			http.NotFound(w, r)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id := s.identity.Resolve(r)

	sess, err := s.registry.Start(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			// The front-end redirects to the login surface on this.
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
				"login": "/login",
			})
			return
		}
		internalError(w, err)
		return
	}

	snap := sess.Snapshot()
	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID: sess.ID(),
		Username:  string(id.Username),
		ImageURL:  id.ImageURL,
		Roster:    toConversationsJSON(snap.Roster),
	})
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, toStateResponse(sess.Snapshot()))
}

func (s *Server) handleSelectPersonality(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req selectPersonalityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	key, err := domain.ParsePersonalityKey(req.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	conv, err := sess.SelectPersonality(r.Context(), key)
	if err != nil {
		if errors.Is(err, session.ErrSendInFlight) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toConversationJSON(conv))
}

func (s *Server) handleSelectConversation(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req selectConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if err := sess.SelectConversation(req.Index); err != nil {
		if errors.Is(err, session.ErrNoSuchConversation) {
			badRequest(w, err.Error())
			return
		}
		internalError(w, err)
		return
	}

	s.handleSessionState(w, r, sess)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := sess.Send(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNoPersonality):
			badRequest(w, err.Error())
		case errors.Is(err, session.ErrSendInFlight), errors.Is(err, session.ErrSuperseded):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			// Completion backend failure: the optimistic user message stays
			// in the transcript; the client may resubmit.
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "completion failed"})
		}
		return
	}

	resp := sendMessageResponse{
		UserMessage:    toMessageJSON(out.UserMessage),
		AssistantReply: toMessageJSON(out.Reply),
	}
	if out.PersistWarning != nil {
		resp.PersistWarning = "conversation could not be persisted; it may be lost on reload"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	id := s.identity.Resolve(r)
	if !id.Authenticated() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
			"login": "/login",
		})
		return
	}

	entries := s.library.ListForUser(r.Context(), id.Username)

	out := make([]keywordEntryJSON, 0, len(entries))
	for _, e := range entries {
		ids := make([]string, 0, len(e.ConversationIDs))
		for _, cid := range e.ConversationIDs {
			ids = append(ids, string(cid))
		}
		out = append(out, keywordEntryJSON{
			ID:              e.ID,
			Word:            e.Word,
			ConversationIDs: ids,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"words": out})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	snap := s.trending.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": snap.Items,
		"index": snap.Index,
	})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toMessageJSON(m domain.Message) messageJSON {
	parts := make([]partJSON, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, partJSON{Text: p.Text})
	}
	return messageJSON{
		Role:  string(m.Role),
		Parts: parts,
	}
}

func toMessagesJSON(msgs []domain.Message) []messageJSON {
	out := make([]messageJSON, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageJSON(m))
	}
	return out
}

func toConversationJSON(c *domain.Conversation) conversationJSON {
	return conversationJSON{
		ID:       string(c.ID),
		Title:    c.Title,
		Mode:     string(c.Mode),
		Username: string(c.Owner),
		Messages: toMessagesJSON(c.Messages),
	}
}

func toConversationsJSON(convs []*domain.Conversation) []conversationJSON {
	out := make([]conversationJSON, 0, len(convs))
	for _, c := range convs {
		out = append(out, toConversationJSON(c))
	}
	return out
}

func toStateResponse(snap session.Snapshot) sessionStateResponse {
	resp := sessionStateResponse{
		Roster:   toConversationsJSON(snap.Roster),
		Messages: toMessagesJSON(snap.Messages),
		Mode:     string(snap.PendingMode),
		Sending:  snap.Sending,
	}
	if snap.ActiveIndex >= 0 {
		idx := snap.ActiveIndex
		resp.ActiveIndex = &idx
	}
	return resp
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
