package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"batchgen/internal/engine"
	"batchgen/internal/httpapi"
	"batchgen/internal/pipeline"
	"batchgen/internal/prompt"
)

// fakeVLLM is a minimal OpenAI-compatible completions server. Each prompt is
// answered with one token per word of the prompt, choices in reverse order.
type fakeVLLM struct {
	model    string
	hold     chan struct{} // when set, completions block until closed
	requests atomic.Int32
}

func (f *fakeVLLM) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"object":"list","data":[{"id":%q,"object":"model","created":0,"owned_by":"vllm"}]}`, f.model)
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if f.hold != nil {
			select {
			case <-f.hold:
			case <-r.Context().Done():
				return
			}
		}
		var body struct {
			Prompt []string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var choices []string
		for i := len(body.Prompt) - 1; i >= 0; i-- {
			words := strings.Fields(body.Prompt[i])
			toks, _ := json.Marshal(words)
			choices = append(choices, fmt.Sprintf(`{"index":%d,"text":%q,"finish_reason":"stop","logprobs":{"tokens":%s}}`,
				i, strings.Join(words, " "), toks))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cmpl","object":"text_completion","created":0,"model":%q,"choices":[%s]}`, f.model, strings.Join(choices, ","))
	})
	return mux
}

// newStack wires the engine, batch service and HTTP mux against fake.
func newStack(t *testing.T, fake *fakeVLLM, depth int, wait time.Duration) (*httptest.Server, *engine.Handle) {
	t.Helper()
	backend := httptest.NewServer(fake.handler())
	t.Cleanup(backend.Close)

	rt := engine.NewOpenAIRuntime(engine.OpenAIOptions{BaseURL: backend.URL + "/v1"})
	h, err := engine.Open(context.Background(), rt, fake.model, engine.LoadOptions{})
	if err != nil {
		t.Fatalf("open handle: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	svc := httpapi.NewBatchService(httpapi.BatchOptions{
		Formatter:     prompt.New(prompt.Raw, ""),
		Backend:       h,
		Sampling:      engine.DefaultSampling(),
		Observer:      pipeline.MetricsObserver{},
		MaxQueueDepth: depth,
		MaxWait:       wait,
	})
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv, h
}
