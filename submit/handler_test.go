package submit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeEvent struct {
	prevented int
}

func (e *fakeEvent) PreventDefault() {
	e.prevented++
}

type page struct {
	form    *FieldSet
	control *ClassList
	area    *TextArea
}

func newPage(input string) *page {
	form := NewFieldSet()
	form.Set(UserInputField, input)
	return &page{form: form, control: NewClassList(), area: &TextArea{}}
}

func newHandler(t *testing.T, baseURL string, p *page, opts ...Option) *Handler {
	t.Helper()
	h, err := NewHandler(baseURL, p.form, p.control, p.area, opts...)
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}
	return h
}

func TestHandleSubmitScenarios(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		status int
		body   string
		want   string
	}{
		{name: "answer", input: "hello", status: http.StatusOK, body: `{"server_response":"world"}`, want: "world"},
		{name: "created", input: "hello", status: http.StatusCreated, body: `{"server_response":"world"}`, want: "world"},
		{name: "empty object", input: "", status: http.StatusOK, body: `{}`, want: FallbackMessage},
		{name: "null field", input: "", status: http.StatusOK, body: `{"server_response":null}`, want: FallbackMessage},
		{name: "empty field", input: "", status: http.StatusOK, body: `{"server_response":""}`, want: FallbackMessage},
		{name: "zero", input: "", status: http.StatusOK, body: `{"server_response":0}`, want: FallbackMessage},
		{name: "false", input: "", status: http.StatusOK, body: `{"server_response":false}`, want: FallbackMessage},
		{name: "number", input: "hello", status: http.StatusOK, body: `{"server_response":42}`, want: "42"},
		{name: "true", input: "hello", status: http.StatusOK, body: `{"server_response":true}`, want: "true"},
		{name: "list", input: "hello", status: http.StatusOK, body: `{"server_response":["a",1]}`, want: "a,1"},
		{name: "object", input: "hello", status: http.StatusOK, body: `{"server_response":{"a":1}}`, want: "[object Object]"},
		{name: "server error", input: "hello", status: http.StatusInternalServerError, body: `not json`, want: "Internal Server Error"},
		{name: "not found", input: "hello", status: http.StatusNotFound, body: ``, want: "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotInput atomic.Value
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != DefaultEndpoint {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
					t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("parse multipart: %v", err)
				}
				gotInput.Store(r.FormValue(UserInputField))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := newPage(tc.input)
			h := newHandler(t, srv.URL, p)
			event := &fakeEvent{}

			if err := h.HandleSubmit(context.Background(), event); err != nil {
				t.Fatalf("submit: %v", err)
			}
			if event.prevented != 1 {
				t.Fatalf("expected default navigation to be prevented once, got %d", event.prevented)
			}
			if got := p.area.TextContent(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if got, _ := gotInput.Load().(string); got != tc.input {
				t.Fatalf("server saw user_input %q, want %q", got, tc.input)
			}
			if p.control.Contains(LoadingClass) {
				t.Fatal("loading marker left on submit control")
			}
		})
	}
}

func TestLoadingMarkerDuringRequest(t *testing.T) {
	p := newPage("hello")
	var sawLoading atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLoading.Store(p.control.Contains(LoadingClass))
		_, _ = w.Write([]byte(`{"server_response":"world"}`))
	}))
	defer srv.Close()

	if p.control.Contains(LoadingClass) {
		t.Fatal("loading marker present before submission")
	}
	if err := newHandler(t, srv.URL, p).Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sawLoading.Load() {
		t.Fatal("loading marker missing while request was in flight")
	}
	if diff := cmp.Diff([]string{}, p.control.Classes()); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
}

func TestTransportFailureClearsLoading(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := newPage("hello")
	err := newHandler(t, url, p).HandleSubmit(context.Background(), &fakeEvent{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if got := p.area.TextContent(); got != TransportErrorMessage {
		t.Fatalf("expected %q, got %q", TransportErrorMessage, got)
	}
	if p.control.Contains(LoadingClass) {
		t.Fatal("loading marker left after transport failure")
	}
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"server_response":`))
	}))
	defer srv.Close()

	p := newPage("hello")
	if err := newHandler(t, srv.URL, p).Submit(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
	if got := p.area.TextContent(); got != InvalidResponseMessage {
		t.Fatalf("expected %q, got %q", InvalidResponseMessage, got)
	}
	if p.control.Contains(LoadingClass) {
		t.Fatal("loading marker left after malformed response")
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := newPage("hello")
	err := newHandler(t, srv.URL, p, WithTimeout(20*time.Millisecond)).Submit(context.Background())
	if err == nil || errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if got := p.area.TextContent(); got != TransportErrorMessage {
		t.Fatalf("expected %q, got %q", TransportErrorMessage, got)
	}
}

func TestNewSubmissionSupersedesInFlight(t *testing.T) {
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue(UserInputField) == "slow" {
			arrived <- struct{}{}
			select {
			case <-release:
			case <-r.Context().Done():
			}
			_, _ = w.Write([]byte(`{"server_response":"slow"}`))
			return
		}
		_, _ = w.Write([]byte(`{"server_response":"fast"}`))
	}))
	defer srv.Close()
	defer close(release)

	p := newPage("slow")
	h := newHandler(t, srv.URL, p)

	firstErr := make(chan error, 1)
	go func() {
		firstErr <- h.Submit(context.Background())
	}()
	<-arrived
	if !p.control.Contains(LoadingClass) {
		t.Fatal("loading marker missing while first request was in flight")
	}

	p.form.Set(UserInputField, "fast")
	if err := h.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if got := p.area.TextContent(); got != "fast" {
		t.Fatalf("expected the newest answer, got %q", got)
	}
	if p.control.Contains(LoadingClass) {
		t.Fatal("loading marker left after both submissions")
	}
}

func TestNewHandlerRequiresElements(t *testing.T) {
	if _, err := NewHandler("http://localhost", nil, NewClassList(), &TextArea{}); err == nil {
		t.Fatal("expected error without a form")
	}
}

func TestEndpointResolution(t *testing.T) {
	p := newPage("")
	h := newHandler(t, "http://example.com/app/page", p)
	if h.target != "http://example.com/results" {
		t.Fatalf("unexpected target %q", h.target)
	}
	h = newHandler(t, "http://example.com", p, WithEndpoint("api/results"))
	if h.target != "http://example.com/api/results" {
		t.Fatalf("unexpected target %q", h.target)
	}
}
