// Package fakeapi provides a scripted http.RoundTripper standing in for the
// Messages API in tests.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Request is one captured outgoing call.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Transport replays Responses in order and records every request.
// Once the script is exhausted, further calls fail.
type Transport struct {
	mu        sync.Mutex
	Status    int
	Responses []string
	Requests  []Request
	// Err, when set, is returned instead of any response.
	Err error
}

// New returns a transport answering with responses (JSON bodies) in order.
func New(responses ...string) *Transport {
	return &Transport{Status: http.StatusOK, Responses: responses}
}

func (f *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var b []byte
	if req.Body != nil {
		b, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	f.Requests = append(f.Requests, Request{Method: req.Method, URL: req.URL.String(), Body: b})

	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Responses) == 0 {
		return nil, errors.New("fakeapi: no scripted response left")
	}
	body := f.Responses[0]
	f.Responses = f.Responses[1:]

	resp := &http.Response{
		StatusCode: f.Status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

// Calls reports how many requests were made.
func (f *Transport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// Client returns an Anthropic client whose traffic goes through f.
// Retries are disabled so scripted failures surface immediately.
func (f *Transport) Client() *anthropic.Client {
	c := anthropic.NewClient(
		option.WithHTTPClient(&http.Client{Transport: f}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return &c
}

// Text builds a response body with a single assistant text block.
func Text(text string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"test","content":[{"type":"text","text":` + quote(text) + `}],"stop_reason":"end_turn"}`
}

// ToolUse builds a response body with a single tool_use block.
func ToolUse(id, name, inputJSON string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"test","content":[{"type":"tool_use","id":` + quote(id) + `,"name":` + quote(name) + `,"input":` + inputJSON + `}],"stop_reason":"tool_use"}`
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
