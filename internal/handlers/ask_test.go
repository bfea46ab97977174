package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"statdesk/internal/provider"
	"statdesk/internal/services"
)

type stubAnswerer struct {
	text  string
	err   error
	turns []provider.Turn
	store services.StoreConfig
	calls int
}

func (s *stubAnswerer) Answer(ctx context.Context, turns []provider.Turn, store services.StoreConfig) (string, error) {
	s.calls++
	s.turns = turns
	s.store = store
	return s.text, s.err
}

func testStore() services.StoreConfig {
	return services.StoreConfig{
		ID:            "vs_price",
		Domain:        "price index",
		SystemPrompt:  "prompt",
		MaxResults:    8,
		EnforceLatest: true,
	}
}

func TestHandleAsk_Success(t *testing.T) {
	stub := &stubAnswerer{text: "The 2026-01 index rose 0.4%."}
	handler := NewAskHandler(stub, testStore())

	body := `{"messages":[{"role":"user","content":"What was last month's figure?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/price", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleAsk(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "The 2026-01 index rose 0.4%." {
		t.Errorf("text = %q", resp.Text)
	}
	if len(stub.turns) != 1 || stub.turns[0].Content != "What was last month's figure?" {
		t.Errorf("turns = %#v", stub.turns)
	}
	if stub.store.ID != "vs_price" {
		t.Errorf("store = %+v", stub.store)
	}
}

func TestHandleAsk_MalformedBody(t *testing.T) {
	stub := &stubAnswerer{}
	handler := NewAskHandler(stub, testStore())

	req := httptest.NewRequest(http.MethodPost, "/api/price", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.HandleAsk(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if stub.calls != 0 {
		t.Error("answerer should not be called for malformed input")
	}
}

func TestHandleAsk_AllTurnsEmpty(t *testing.T) {
	stub := &stubAnswerer{}
	handler := NewAskHandler(stub, testStore())

	body := `{"messages":[{"role":"user","content":"   "}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/price", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleAsk(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if stub.calls != 0 {
		t.Error("answerer should not be called when no turn survives normalization")
	}
}

func TestHandleAsk_AnswerErrorReturnsDomainEnvelope(t *testing.T) {
	stub := &stubAnswerer{err: errors.New("provider returned status 502: bad gateway")}
	handler := NewAskHandler(stub, testStore())

	body := `{"messages":[{"role":"user","content":"question"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/price", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleAsk(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp struct {
		Text   string `json:"text"`
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "price index server error" {
		t.Errorf("text = %q", resp.Text)
	}
	if !strings.Contains(resp.Detail, "bad gateway") {
		t.Errorf("detail = %q, want raw error detail", resp.Detail)
	}
}

func TestHandleAsk_LegacyTextField(t *testing.T) {
	stub := &stubAnswerer{text: "ok"}
	handler := NewAskHandler(stub, testStore())

	body := `{"messages":[{"role":"user","text":"legacy field"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/price", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.HandleAsk(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(stub.turns) != 1 || stub.turns[0].Content != "legacy field" {
		t.Errorf("turns = %#v", stub.turns)
	}
}
