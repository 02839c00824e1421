package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

type handlerOptions struct {
	client   Doer
	endpoint string
	timeout  time.Duration
}

type Option func(*handlerOptions)

func WithClient(client Doer) Option {
	return func(o *handlerOptions) {
		o.client = client
	}
}

// WithEndpoint overrides DefaultEndpoint. The path is resolved against the base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *handlerOptions) {
		o.endpoint = endpoint
	}
}

// WithTimeout bounds every submission. Zero means wait for the transport.
func WithTimeout(timeout time.Duration) Option {
	return func(o *handlerOptions) {
		o.timeout = timeout
	}
}

// Handler posts a form to the results endpoint and renders the answer.
// Only one submission is active at a time: starting a new one cancels the
// one in flight, and the cancelled one never touches the page again.
type Handler struct {
	form    Form
	control SubmitControl
	area    RenderArea
	client  Doer
	target  string
	timeout time.Duration

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewHandler(baseURL string, form Form, control SubmitControl, area RenderArea, opts ...Option) (*Handler, error) {
	if form == nil || control == nil || area == nil {
		return nil, errors.New("form, submit control and render area are required")
	}
	options := handlerOptions{
		client:   http.DefaultClient,
		endpoint: DefaultEndpoint,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	endpoint, err := url.Parse(options.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	return &Handler{
		form:    form,
		control: control,
		area:    area,
		client:  options.client,
		target:  base.ResolveReference(endpoint).String(),
		timeout: options.timeout,
	}, nil
}

// HandleSubmit is the submit event listener. It always prevents the default
// navigation before submitting.
func (h *Handler) HandleSubmit(ctx context.Context, event SubmitEvent) error {
	if event != nil {
		event.PreventDefault()
	}
	return h.Submit(ctx)
}

func (h *Handler) Submit(ctx context.Context) error {
	f := h.start(ctx)
	defer f.close()

	body, contentType, err := encodeMultipart(h.form.FieldValues())
	if err != nil {
		f.done()
		f.render(TransportErrorMessage)
		return fmt.Errorf("failed to encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(f.ctx, http.MethodPost, h.target, body)
	if err != nil {
		f.done()
		f.render(TransportErrorMessage)
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	slog.Debug("Submitting form", "url", h.target, "seq", f.seq)
	resp, err := h.client.Do(req)
	f.done()
	if err != nil {
		if !f.current() {
			return ErrSuperseded
		}
		f.render(TransportErrorMessage)
		return fmt.Errorf("failed to post form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The body of a failed response is never parsed.
		if !f.render(reasonPhrase(resp)) {
			return ErrSuperseded
		}
		slog.Debug("Form rejected", "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if !f.current() {
			return ErrSuperseded
		}
		f.render(TransportErrorMessage)
		return fmt.Errorf("failed to read response: %w", err)
	}
	var payload struct {
		ServerResponse any `json:"server_response"`
	}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		if !f.render(InvalidResponseMessage) {
			return ErrSuperseded
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	text := FallbackMessage
	if truthy(payload.ServerResponse) {
		text = displayText(payload.ServerResponse)
	}
	if !f.render(text) {
		return ErrSuperseded
	}
	return nil
}

type flow struct {
	h      *Handler
	ctx    context.Context
	cancel context.CancelFunc
	seq    uint64
	once   sync.Once
}

func (h *Handler) start(parent context.Context) *flow {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, h.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.seq++
	f := &flow{h: h, ctx: ctx, cancel: cancel, seq: h.seq}
	h.cancel = cancel
	h.control.AddClass(LoadingClass)
	h.mu.Unlock()
	return f
}

func (f *flow) current() bool {
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return f.h.seq == f.seq
}

// done clears the loading marker unless a newer submission owns it.
func (f *flow) done() {
	f.once.Do(func() {
		f.h.mu.Lock()
		if f.h.seq == f.seq {
			f.h.control.RemoveClass(LoadingClass)
			f.h.cancel = nil
		}
		f.h.mu.Unlock()
	})
}

// render writes text unless the flow was superseded, and reports whether it did.
func (f *flow) render(text string) bool {
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	if f.h.seq != f.seq {
		return false
	}
	f.h.area.SetTextContent(text)
	return true
}

func (f *flow) close() {
	f.done()
	f.cancel()
}

func encodeMultipart(values url.Values) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range values[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// truthy reports whether a decoded JSON value counts as a present answer.
// Empty strings, zero, false and null do not.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

// displayText renders a decoded JSON value the way a browser stringifies it.
func displayText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = displayText(item)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func reasonPhrase(resp *http.Response) string {
	phrase := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}
