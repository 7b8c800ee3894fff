package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
)

const testAdminKey = "test-admin-key"

func newTestServer(t *testing.T, items ...*model.Item) (*Server, *mockSourceUC, *mockItemUC, *mockAnswerUC) {
	t.Helper()
	sources := newMockSourceUC()
	itemsUC := newMockItemUC(items...)
	answers := &mockAnswerUC{answer: &model.Answer{
		Text:     "It is covered in the intro.",
		Grounded: true,
		Citations: []model.Citation{
			{ItemID: "item-1", ItemTitle: "Intro", Start: 10, End: 42},
		},
	}}
	log := zerolog.Nop()
	srv := NewServer(sources, itemsUC, answers, NewAuthManager("test-secret", time.Minute), testAdminKey, &log)
	return srv, sources, itemsUC, answers
}

func doRequest(t *testing.T, srv *Server, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredOnAPIRoutes(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/sources", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/sources", nil, true)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rec.Code)
	}
}

func TestHealthzIsOpen(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil, false)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestLoginMintsSessionToken(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/auth/login", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	token := resp["token"]
	if token == "" {
		t.Fatal("no token in login response")
	}

	// The minted JWT authenticates subsequent requests on its own.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sources", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Errorf("JWT-authenticated status = %d, want 200", rec2.Code)
	}
}

func TestLoginRejectsWrongKey(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestSourceCreateAndGet(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/sources",
		map[string]string{"name": "Tech Talks", "feed_url": "https://example.test/feed.xml"}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created model.Source
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Name != "Tech Talks" {
		t.Errorf("created = %+v", created)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/sources/"+created.ID, nil, true)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}
}

func TestSourceCreateRejectsBlankFields(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/sources",
		map[string]string{"name": "", "feed_url": ""}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSourceGetUnknownIs404(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/sources/nope", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestItemRetryEndpoint(t *testing.T) {
	it, err := model.NewItem("src-1", "ext-1", "Broken", "https://example.test/v/1", time.Now())
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	it.Status = model.ItemStatusFailed
	srv, _, itemsUC, _ := newTestServer(t, it)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/items/"+it.ID+"/retry", nil, true)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("retry status = %d, want 202", rec.Code)
	}
	if len(itemsUC.retried) != 1 || itemsUC.retried[0] != it.ID {
		t.Errorf("retried = %v", itemsUC.retried)
	}

	// Second retry hits a pending item and must conflict.
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/items/"+it.ID+"/retry", nil, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("second retry status = %d, want 409", rec.Code)
	}
}

func TestItemRegisterDuplicateConflicts(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	body := map[string]string{"source_id": "src-1", "url": "https://example.test/v/7", "title": "One-off"}

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/items", body, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/api/v1/items", body, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}
}

func TestAskReturnsAnswerWithCitations(t *testing.T) {
	srv, _, _, answers := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask",
		map[string]string{"query": "what is covered?"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var ans model.Answer
	if err := json.NewDecoder(rec.Body).Decode(&ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ans.Grounded || len(ans.Citations) != 1 {
		t.Errorf("answer = %+v", ans)
	}
	if len(answers.asked) != 1 || answers.asked[0] != "what is covered?" {
		t.Errorf("asked = %v", answers.asked)
	}
}

func TestAskUnavailableIs503(t *testing.T) {
	srv, _, _, answers := newTestServer(t)
	answers.err = domain.ErrUnavailable

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask",
		map[string]string{"query": "anything"}, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestAskBlankQueryIs400(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask", map[string]string{"query": ""}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAskGenericErrorIs500(t *testing.T) {
	srv, _, _, answers := newTestServer(t)
	answers.err = errors.New("boom")

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/ask",
		map[string]string{"query": "anything"}, true)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
