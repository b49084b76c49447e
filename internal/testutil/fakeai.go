package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeAI is an OpenAI-compatible chat completions endpoint with a scripted reply.
type FakeAI struct {
	server *httptest.Server

	mu       sync.Mutex
	reply    string
	status   int
	requests []map[string]interface{}
}

func NewFakeAI(t *testing.T) *FakeAI {
	t.Helper()

	f := &FakeAI{reply: "[]", status: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeAI) URL() string {
	return f.server.URL
}

// Reply makes every following completion answer with content.
func (f *FakeAI) Reply(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = content
	f.status = http.StatusOK
}

// Fail makes every following completion answer with status.
func (f *FakeAI) Fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Requests returns the decoded request bodies received so far.
func (f *FakeAI) Requests() []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]interface{}(nil), f.requests...)
}

func (f *FakeAI) handle(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, body)
	reply, status := f.reply, f.status
	f.mu.Unlock()

	if r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
		w.Write([]byte(`{"error":{"message":"scripted failure"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
	})
}
