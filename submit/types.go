package submit

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"sync"
)

// Element ids and field names shared with the page served by the web package.
const (
	FormID         = "cgolForm"
	RenderAreaID   = "responseRenderArea"
	SubmitButtonID = "submit_button"
	UserInputField = "user_input"
)

const (
	DefaultEndpoint = "/results"
	LoadingClass    = "loading"

	FallbackMessage        = "Please enter a valid prompt"
	TransportErrorMessage  = "Unable to reach the server"
	InvalidResponseMessage = "Invalid response from server"
)

// ErrSuperseded is returned by a submission that was cancelled because a
// newer one started on the same handler.
var ErrSuperseded = errors.New("submission superseded by a newer one")

type Form interface {
	FieldValues() url.Values
}

type SubmitControl interface {
	AddClass(name string)
	RemoveClass(name string)
}

type RenderArea interface {
	SetTextContent(text string)
}

type SubmitEvent interface {
	PreventDefault()
}

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServerResponse is the JSON body of a successful /results call.
type ServerResponse struct {
	ServerResponse string `json:"server_response,omitempty"`
}

// FieldSet is a Form whose values can be edited between submissions.
type FieldSet struct {
	mu     sync.RWMutex
	values url.Values
}

func NewFieldSet() *FieldSet {
	return &FieldSet{values: url.Values{}}
}

func (f *FieldSet) Set(name, value string) {
	f.mu.Lock()
	f.values.Set(name, value)
	f.mu.Unlock()
}

func (f *FieldSet) Get(name string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values.Get(name)
}

func (f *FieldSet) FieldValues() url.Values {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(url.Values, len(f.values))
	for k, v := range f.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ClassList is a SubmitControl that only records its classes.
type ClassList struct {
	mu      sync.RWMutex
	classes map[string]struct{}
}

func NewClassList() *ClassList {
	return &ClassList{classes: map[string]struct{}{}}
}

func (c *ClassList) AddClass(name string) {
	c.mu.Lock()
	c.classes[name] = struct{}{}
	c.mu.Unlock()
}

func (c *ClassList) RemoveClass(name string) {
	c.mu.Lock()
	delete(c.classes, name)
	c.mu.Unlock()
}

func (c *ClassList) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.classes[name]
	return ok
}

func (c *ClassList) Classes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.classes))
	for name := range c.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type TextArea struct {
	mu   sync.RWMutex
	text string
}

func (a *TextArea) SetTextContent(text string) {
	a.mu.Lock()
	a.text = text
	a.mu.Unlock()
}

func (a *TextArea) TextContent() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}
