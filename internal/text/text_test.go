package text

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/engine"
)

func chatServer(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, nil)
	require.NoError(t, err)
	return c
}

func completion(content, finish string) string {
	resp := map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  DefaultModel,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]int{"total_tokens": 42},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func categoryOf(t *testing.T, err error) engine.GenerationCategory {
	t.Helper()
	var ge *engine.GenerationError
	require.True(t, errors.As(err, &ge), "want GenerationError, got %v", err)
	return ge.Category
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, engine.GenConfig, categoryOf(t, err))
}

func TestDraftFic(t *testing.T) {
	c := chatServer(t, http.StatusOK, completion("  Once upon a time.  ", "stop"))
	body, err := c.DraftFic(context.Background(), engine.DraftRequest{Title: "T", Genres: []string{"romance"}})
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time.", body)
}

func TestDraftFicFailureCategories(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   engine.GenerationCategory
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, engine.GenConfig},
		{"moderation", http.StatusBadRequest, `{"error":{"message":"flagged by content_filter","type":"invalid_request_error"}}`, engine.GenSafety},
		{"server error", http.StatusBadGateway, `{"error":{"message":"upstream","type":"server_error"}}`, engine.GenNetwork},
		{"filtered completion", http.StatusOK, completion("", "content_filter"), engine.GenSafety},
		{"empty completion", http.StatusOK, completion("   ", "stop"), engine.GenParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := chatServer(t, tc.status, tc.body)
			_, err := c.DraftFic(context.Background(), engine.DraftRequest{Title: "T"})
			require.Error(t, err)
			assert.Equal(t, tc.want, categoryOf(t, err))
			assert.True(t, strings.HasPrefix(err.Error(), string(tc.want)+":"), err.Error())
		})
	}
}

func TestReactComments(t *testing.T) {
	c := chatServer(t, http.StatusOK, completion("```json\n[\"love it\", \"\", \"more please\", \"extra\"]\n```", "stop"))
	lines, err := c.ReactComments(context.Background(), engine.ReactionRequest{PostTitle: "P", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"love it", "more please"}, lines)

	c = chatServer(t, http.StatusOK, completion("not json at all", "stop"))
	_, err = c.ReactComments(context.Background(), engine.ReactionRequest{PostTitle: "P", Count: 2})
	require.Error(t, err)
	assert.Equal(t, engine.GenParse, categoryOf(t, err))
}

func TestUnreachableServerIsNetwork(t *testing.T) {
	c, err := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1/v1"}, nil)
	require.NoError(t, err)
	_, err = c.DraftFic(context.Background(), engine.DraftRequest{Title: "T"})
	require.Error(t, err)
	assert.Equal(t, engine.GenNetwork, categoryOf(t, err))
}

func TestDraftMessagesCarryThePlan(t *testing.T) {
	msgs := draftMessages(engine.DraftRequest{
		Title:     "Tea for Two",
		WorkTitle: "Moonlit",
		Pairing:   "A/B",
		Genres:    []string{"romance", "comedy"},
		Materials: []string{"fake_dating"},
		Scenario:  "They run a tea shop.",
		SkillTier: "novice",
		Sequel:    &engine.SequelContext{Title: "Tea for One", Excerpt: "The end."},
	})
	require.Len(t, msgs, 2)
	user := msgs[1].Content
	for _, want := range []string{"Tea for Two", "Moonlit", "A/B", "romance, comedy", "fake_dating", "Tea for One", "novice"} {
		assert.Contains(t, user, want)
	}
}

func TestTemplateWriterIsDeterministic(t *testing.T) {
	w := NewTemplateWriter()
	req := engine.DraftRequest{Title: "T", Pairing: "Aria/Bram", Scenario: "A picnic.", Materials: []string{"fake_dating"}}
	a, err := w.DraftFic(context.Background(), req)
	require.NoError(t, err)
	b, _ := w.DraftFic(context.Background(), req)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "Aria")
	assert.Contains(t, a, "fake dating")

	lines, err := w.ReactComments(context.Background(), engine.ReactionRequest{PostTitle: "P", Count: 3})
	require.NoError(t, err)
	assert.Len(t, lines, 3)
}

func TestNewGhostwriterPicksByKey(t *testing.T) {
	gw, online, err := NewGhostwriter(Config{}, nil)
	require.NoError(t, err)
	assert.False(t, online)
	assert.IsType(t, templateWriter{}, gw)

	gw, online, err = NewGhostwriter(Config{APIKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.True(t, online)
	assert.IsType(t, &Client{}, gw)
}
