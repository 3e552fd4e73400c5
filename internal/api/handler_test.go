//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/biogen/internal/clipboard"
	"github.com/ashureev/biogen/internal/domain"
	"github.com/ashureev/biogen/internal/generator"
	"github.com/ashureev/biogen/internal/identity"
	"github.com/ashureev/biogen/internal/session"
	"github.com/go-chi/chi/v5"
)

type fakeGenerator struct {
	bio     string
	err     error
	release chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.release != nil {
		<-g.release
	}
	return g.bio, g.err
}

type testEnv struct {
	router   http.Handler
	sessions *session.Manager
	copied   *string
}

func newTestEnv(t *testing.T, gen generator.Generator, clip clipboard.Writer) *testEnv {
	t.Helper()
	env := &testEnv{copied: new(string)}
	if clip == nil {
		clip = clipboard.WriterFunc(func(s string) error {
			*env.copied = s
			return nil
		})
	}
	env.sessions = session.NewManager(func(ownerID, tabID string, observer session.Observer) *session.Controller {
		return session.NewController(gen, session.WithClipboard(clip), session.WithObserver(observer))
	}, nil)
	t.Cleanup(env.sessions.Close)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := identity.WithIdentity(r.Context(), "anon_test", r.Header.Get(identity.SessionHeaderName))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	base := NewHandler(env.sessions)
	NewSessionHandler(base).RegisterRoutes(r)
	NewHealthHandler(env.sessions, "http://backend/generate-bio").RegisterHealth(r)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(identity.SessionHeaderName, "tab-1")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()
	var s session.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	return s
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusConflict, "submit_in_flight")

	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"submit_in_flight"`) {
		t.Errorf("Unexpected body %s", w.Body.String())
	}
}

func TestGetSession_Initial(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)

	w := env.do(t, http.MethodGet, "/api/session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	s := decodeSnapshot(t, w)
	if s.Status != domain.StateIdle || s.Form.Tone != domain.ToneFormal || s.Form.Focus != domain.FocusResults {
		t.Errorf("Unexpected initial snapshot %+v", s)
	}
	if s.ExperienceLimit != domain.MaxExperienceLength {
		t.Errorf("Expected limit %d, got %d", domain.MaxExperienceLength, s.ExperienceLimit)
	}
}

func TestSetField(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)

	w := env.do(t, http.MethodPut, "/api/session/fields", `{"name":"experience","value":"ten years"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if s := decodeSnapshot(t, w); s.Form.Experience != "ten years" || s.ExperienceLength != 9 {
		t.Errorf("Unexpected snapshot %+v", s)
	}

	long := strings.Repeat("a", domain.MaxExperienceLength+1)
	w = env.do(t, http.MethodPut, "/api/session/fields", `{"name":"experience","value":"`+long+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected oversized value to be ignored with 200, got %d", w.Code)
	}
	if s := decodeSnapshot(t, w); s.Form.Experience != "ten years" {
		t.Errorf("Oversized value must not replace experience, got length %d", len(s.Form.Experience))
	}

	tests := []struct {
		body string
		want string
	}{
		{`{"name":"salary","value":"x"}`, "unknown_field"},
		{`{"name":"tone","value":"angry"}`, "invalid_option"},
		{`{"name":`, "invalid request body"},
	}
	for _, tt := range tests {
		w := env.do(t, http.MethodPut, "/api/session/fields", tt.body)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("body %s: expected 400 %s, got %d %s", tt.body, tt.want, w.Code, w.Body.String())
		}
	}
}

func TestSubmitAndCopy(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{bio: "X"}, nil)

	if w := env.do(t, http.MethodPost, "/api/session/copy", ""); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 before submit, got %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/session/submit", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	if s := decodeSnapshot(t, w); s.Status != domain.StatePending {
		t.Errorf("Expected pending, got %s", s.Status)
	}

	ctrl, ok := env.sessions.Lookup("anon_test", "tab-1")
	if !ok {
		t.Fatal("Expected session to exist")
	}
	ctrl.Wait()

	w = env.do(t, http.MethodGet, "/api/session", "")
	if s := decodeSnapshot(t, w); s.Status != domain.StateSucceeded || s.Bio != "X" {
		t.Fatalf("Expected succeeded X, got %s %q", s.Status, s.Bio)
	}

	w = env.do(t, http.MethodPost, "/api/session/copy", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if s := decodeSnapshot(t, w); !s.Copied {
		t.Error("Expected copied flag")
	}
	if *env.copied != "X" {
		t.Errorf("Expected clipboard X, got %q", *env.copied)
	}
}

func TestSubmit_Failure(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{err: &generator.HTTPError{StatusCode: 500, Message: "oops"}}, nil)

	env.do(t, http.MethodPost, "/api/session/submit", "")
	ctrl, _ := env.sessions.Lookup("anon_test", "tab-1")
	ctrl.Wait()

	s := decodeSnapshot(t, env.do(t, http.MethodGet, "/api/session", ""))
	if s.Status != domain.StateFailed || s.Error != "oops" {
		t.Errorf("Expected failed oops, got %s %q", s.Status, s.Error)
	}
}

func TestSubmit_InFlight(t *testing.T) {
	gen := &fakeGenerator{bio: "X", release: make(chan struct{})}
	env := newTestEnv(t, gen, nil)

	if w := env.do(t, http.MethodPost, "/api/session/submit", ""); w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/session/submit", ""); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 while pending, got %d", w.Code)
	}

	close(gen.release)
	ctrl, _ := env.sessions.Lookup("anon_test", "tab-1")
	ctrl.Wait()
}

func TestCopy_ClipboardFailure(t *testing.T) {
	clip := clipboard.WriterFunc(func(string) error { return errors.New("no display") })
	env := newTestEnv(t, &fakeGenerator{bio: "X"}, clip)

	env.do(t, http.MethodPost, "/api/session/submit", "")
	ctrl, _ := env.sessions.Lookup("anon_test", "tab-1")
	ctrl.Wait()

	w := env.do(t, http.MethodPost, "/api/session/copy", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	s := decodeSnapshot(t, w)
	if s.Error != session.MessageCopyFailed || s.Bio != "X" {
		t.Errorf("Expected copy failure with bio kept, got %q %q", s.Error, s.Bio)
	}
}

func TestReset(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	env.do(t, http.MethodPut, "/api/session/fields", `{"name":"profession","value":"Dev"}`)

	w := env.do(t, http.MethodPost, "/api/session/reset", "")
	if s := decodeSnapshot(t, w); s.Form != domain.DefaultForm() || s.Status != domain.StateIdle {
		t.Errorf("Expected default form, got %+v", s)
	}
}

func TestGetPromptAndOptions(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	env.do(t, http.MethodPut, "/api/session/fields", `{"name":"profession","value":"Designer"}`)

	var prompt map[string]string
	if err := json.NewDecoder(env.do(t, http.MethodGet, "/api/session/prompt", "").Body).Decode(&prompt); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt["prompt"], "Profissão: Designer") {
		t.Errorf("Unexpected prompt %q", prompt["prompt"])
	}

	var opts struct {
		Tones   []domain.Option `json:"tones"`
		Focuses []domain.Option `json:"focuses"`
		Max     int             `json:"max_experience_length"`
	}
	if err := json.NewDecoder(env.do(t, http.MethodGet, "/api/options", "").Body).Decode(&opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.Tones) != 4 || len(opts.Focuses) != 4 || opts.Max != domain.MaxExperienceLength {
		t.Errorf("Unexpected options %+v", opts)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeGenerator{}, nil)
	w := env.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"healthy"`) {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}
