package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssechho/fanchatbot/internal/adapters/completion"
	httpadapter "github.com/ssechho/fanchatbot/internal/adapters/http"
	"github.com/ssechho/fanchatbot/internal/adapters/identity"
	"github.com/ssechho/fanchatbot/internal/adapters/storage/memory"
	"github.com/ssechho/fanchatbot/internal/app/library"
	"github.com/ssechho/fanchatbot/internal/app/session"
	"github.com/ssechho/fanchatbot/internal/app/trending"
	"github.com/ssechho/fanchatbot/internal/domain"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewConversationStore()
	index := memory.NewKeywordIndex()
	index.Put(&domain.KeywordEntry{
		ID:              "w1",
		Word:            "콘서트",
		Owner:           "alice",
		ConversationIDs: []domain.ConversationID{"c1", "c2"},
	})

	registry := session.NewRegistry(completion.NewMockClient(), store, time.Hour)
	librarySvc := library.NewService(index)
	rotator := trending.NewRotator([]string{"검색어 1", "검색어 2"}, time.Hour)

	return httpadapter.NewServer(registry, librarySvc, rotator, identity.NewHeaderResolver())
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body []byte, asUser string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if asUser != "" {
		req.Header.Set("X-Fanchat-User", asUser)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestStartSessionRequiresIdentity(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/sessions", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/login", resp["login"])
}

func TestChatFlow(t *testing.T) {
	srv := newTestServer(t)

	// Start a session as alice.
	w := doJSON(t, srv, http.MethodPost, "/sessions", nil, "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var started struct {
		SessionID string `json:"session_id"`
		Username  string `json:"username"`
		Roster    []any  `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.NotEmpty(t, started.SessionID)
	assert.Equal(t, "alice", started.Username)
	assert.Empty(t, started.Roster)

	base := "/sessions/" + started.SessionID

	// Sending before choosing a personality is a client error.
	w = doJSON(t, srv, http.MethodPost, base+"/messages", []byte(`{"text":"hi"}`), "alice")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Choose the funny personality.
	w = doJSON(t, srv, http.MethodPost, base+"/personality", []byte(`{"mode":"funny"}`), "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var conv struct {
		ID       string `json:"id"`
		Mode     string `json:"mode"`
		Messages []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conv))
	require.NotEmpty(t, conv.ID)
	assert.Equal(t, "funny", conv.Mode)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "assistant", conv.Messages[0].Role)

	// One send cycle.
	w = doJSON(t, srv, http.MethodPost, base+"/messages", []byte(`{"text":"hi"}`), "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sent struct {
		UserMessage    json.RawMessage `json:"user_message"`
		AssistantReply json.RawMessage `json:"assistant_message"`
		PersistWarning string          `json:"persist_warning"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.NotEmpty(t, sent.AssistantReply)
	assert.Empty(t, sent.PersistWarning)

	// State shows the full transcript bound to the roster entry.
	w = doJSON(t, srv, http.MethodGet, base, nil, "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var state struct {
		ActiveIndex *int  `json:"active_index"`
		Messages    []any `json:"messages"`
		Roster      []any `json:"conversations"`
		Sending     bool  `json:"sending"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.ActiveIndex)
	assert.Equal(t, 0, *state.ActiveIndex)
	assert.Len(t, state.Messages, 3)
	assert.Len(t, state.Roster, 1)
	assert.False(t, state.Sending)

	// Reset detaches the transcript but keeps the roster entry.
	w = doJSON(t, srv, http.MethodPost, base+"/reset", nil, "alice")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Nil(t, state.ActiveIndex)
	assert.Empty(t, state.Messages)
	assert.Len(t, state.Roster, 1)

	// Rebind the existing conversation.
	w = doJSON(t, srv, http.MethodPost, base+"/conversation", []byte(`{"index":0}`), "alice")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.ActiveIndex)
	assert.Len(t, state.Messages, 3)

	// Teardown.
	w = doJSON(t, srv, http.MethodDelete, base, nil, "alice")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodGet, base, nil, "alice")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectUnknownPersonality(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/sessions", nil, "alice")
	require.Equal(t, http.StatusCreated, w.Code)

	var started struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))

	w = doJSON(t, srv, http.MethodPost, "/sessions/"+started.SessionID+"/personality", []byte(`{"mode":"grumpy"}`), "alice")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLibrary(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/library", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/library", nil, "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Words []struct {
			Word            string   `json:"word"`
			ConversationIDs []string `json:"conversation_ids"`
		} `json:"words"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Words, 1)
	assert.Equal(t, "콘서트", resp.Words[0].Word)
	assert.Equal(t, []string{"c1", "c2"}, resp.Words[0].ConversationIDs)

	// Another user sees an empty library, not an error.
	w = doJSON(t, srv, http.MethodGet, "/library", nil, "bob")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Words)
}

func TestTrending(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/trending", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []string `json:"items"`
		Index int      `json:"index"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 0, resp.Index)
}
