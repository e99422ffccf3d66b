package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"affinity-chat/internal/domain"
	"affinity-chat/internal/llm"
	"affinity-chat/internal/repository"
	"affinity-chat/internal/service"
)

type fixedRand struct{ n int }

func (f fixedRand) Intn(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

func newTestRouter(t *testing.T, client llm.LLMClient) (*gin.Engine, *service.TokenVerifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := service.DefaultEngineConfig()
	cfg.Rand = fixedRand{n: 1}
	cfg.Sleep = func(_ context.Context, _ time.Duration) error { return nil }
	convs := service.NewConversationService(
		repository.NewInMemoryConversationRepository(),
		repository.NewInMemoryMessageRepository(),
		repository.NewInMemoryPersonaRepository(),
		client,
		nil,
		cfg,
		nil,
	)
	verifier := service.NewTokenVerifier("secret")
	return NewRouter(nil, verifier, NewChatHandler(nil, convs)), verifier
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func testPersona() domain.Persona {
	return domain.Persona{
		ID:   "p1",
		Name: "林晚",
		Traits: domain.PersonaTraits{
			Age:         24,
			Occupation:  domain.OccupationDesigner,
			Education:   domain.EducationBachelor,
			Personality: domain.PersonalityCoolElegant,
			Profanity:   domain.ProfanityNone,
			Emoji:       domain.EmojiRare,
			Hobbies:     []domain.Hobby{domain.HobbyMovies},
			Proactivity: 3,
			Openness:    4,
			ChatDelay:   domain.ChatDelay{MinMS: 500, MaxMS: 1500},
		},
	}
}

func startConversation(t *testing.T, r *gin.Engine, token string) domain.Conversation {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/conversations", token, map[string]any{
		"persona":       testPersona(),
		"scene_id":      domain.SceneOnline,
		"seed_affinity": 50,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Conversation domain.Conversation `json:"conversation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Conversation
}

func TestChatHandler_StartAndTurn(t *testing.T) {
	client := &llm.MockClient{Response: llm.ChatResponse{
		Content: "嗯，周末一般在家看电影。[FAVOR:+3:聊到爱好]",
		Usage:   llm.Usage{PromptTokens: 1000, CompletionTokens: 500},
	}}
	r, verifier := newTestRouter(t, client)
	token, _ := verifier.Issue("u1", time.Minute)

	conv := startConversation(t, r, token)
	if conv.Affinity != 50 || len(conv.AffinityPoints) != 1 {
		t.Fatalf("unexpected seed conversation: %+v", conv)
	}

	rec := doJSON(t, r, http.MethodPost, "/conversations/"+conv.ID+"/turns", token, map[string]any{"content": "你平时喜欢做什么"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Reply    string `json:"reply"`
		Affinity int    `json:"affinity"`
		Round    int    `json:"round"`
		Fallback bool   `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "嗯，周末一般在家看电影。" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if resp.Affinity != 53 || resp.Round != 1 || resp.Fallback {
		t.Fatalf("unexpected turn result: %+v", resp)
	}

	rec = doJSON(t, r, http.MethodGet, "/conversations/"+conv.ID+"/messages", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs struct {
		Messages []domain.Message `json:"messages"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &msgs)
	if len(msgs.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs.Messages))
	}
}

func TestChatHandler_InvalidTraits(t *testing.T) {
	r, verifier := newTestRouter(t, nil)
	token, _ := verifier.Issue("u1", time.Minute)

	p := testPersona()
	p.Traits.Age = 50
	rec := doJSON(t, r, http.MethodPost, "/conversations", token, map[string]any{"persona": p})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatHandler_OtherUserGets404(t *testing.T) {
	r, verifier := newTestRouter(t, nil)
	owner, _ := verifier.Issue("u1", time.Minute)
	other, _ := verifier.Issue("u2", time.Minute)

	conv := startConversation(t, r, owner)
	rec := doJSON(t, r, http.MethodGet, "/conversations/"+conv.ID, other, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestChatHandler_TurnAfterEndConflicts(t *testing.T) {
	r, verifier := newTestRouter(t, nil)
	token, _ := verifier.Issue("u1", time.Minute)
	conv := startConversation(t, r, token)

	rec := doJSON(t, r, http.MethodPost, "/conversations/"+conv.ID+"/end", token, map[string]any{"reason": "user"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/conversations/"+conv.ID+"/turns", token, map[string]any{"content": "还在吗"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestChatHandler_UnknownConversation(t *testing.T) {
	r, verifier := newTestRouter(t, nil)
	token, _ := verifier.Issue("u1", time.Minute)
	rec := doJSON(t, r, http.MethodGet, "/conversations/nope", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
