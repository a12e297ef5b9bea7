package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCompletionsServer mimics the subset of vLLM's OpenAI-compatible API used
// by the openai runtime. Choices come back in reverse prompt order.
func fakeCompletionsServer(t *testing.T, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"mistral-awq","object":"model","created":0,"owned_by":"vllm"}]}`))
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastBody))
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"This model's maximum context length is 4096 tokens","type":"BadRequestError","code":400}}`))
			return
		}
		prompts, _ := lastBody["prompt"].([]any)
		type logprobs struct {
			Tokens []string `json:"tokens"`
		}
		type choice struct {
			Index        int      `json:"index"`
			Text         string   `json:"text"`
			FinishReason string   `json:"finish_reason"`
			Logprobs     logprobs `json:"logprobs"`
		}
		choices := []choice{}
		total := 0
		for i := len(prompts) - 1; i >= 0; i-- {
			toks := make([]string, i+2)
			for k := range toks {
				toks[k] = "x"
			}
			total += len(toks)
			choices = append(choices, choice{Index: i, Text: "answer", FinishReason: "stop", Logprobs: logprobs{Tokens: toks}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1", "object": "text_completion", "created": 1, "model": "mistral-awq",
			"choices": choices,
			"usage":   map[string]int{"prompt_tokens": 10, "completion_tokens": total, "total_tokens": 10 + total},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastBody
}

func TestOpenAIRuntime_BatchRoundTrip(t *testing.T) {
	srv, body := fakeCompletionsServer(t, http.StatusOK)
	rt := NewOpenAIRuntime(OpenAIOptions{BaseURL: srv.URL + "/v1/"})
	h, err := Open(testCtx(t), rt, "/model", LoadOptions{Model: "mistral-awq"})
	require.NoError(t, err)
	defer h.Close()

	prompts := []string{"p0", "p1", "p2"}
	comps, err := h.Generate(testCtx(t), prompts, SamplingConfig{MaxTokens: 2000, TopP: ptr(0.9)})
	require.NoError(t, err)
	require.Len(t, comps, 3)
	for i, c := range comps {
		require.Equal(t, prompts[i], c.Prompt)
		require.Equal(t, i+2, c.Tokens)
		require.Equal(t, "stop", c.FinishReason)
	}
	require.Equal(t, "mistral-awq", (*body)["model"])
	require.EqualValues(t, 2000, (*body)["max_tokens"])
	require.EqualValues(t, 0, (*body)["logprobs"])
	require.EqualValues(t, 0.9, (*body)["top_p"])
	_, hasTemp := (*body)["temperature"]
	require.False(t, hasTemp, "unset temperature must not be sent")
	require.Len(t, (*body)["prompt"], 3)
}

func TestOpenAIRuntime_UnknownModelFailsLoad(t *testing.T) {
	srv, _ := fakeCompletionsServer(t, http.StatusOK)
	_, err := Open(testCtx(t), NewOpenAIRuntime(OpenAIOptions{BaseURL: srv.URL + "/v1/"}), "/model", LoadOptions{Model: "other"})
	require.True(t, IsEngineUnavailable(err))
}

func TestOpenAIRuntime_MissingBaseURL(t *testing.T) {
	_, err := Open(testCtx(t), NewOpenAIRuntime(OpenAIOptions{}), "/model", LoadOptions{})
	require.True(t, IsEngineUnavailable(err))
}

func TestOpenAIRuntime_ContextOverflowIsGenerationFailed(t *testing.T) {
	srv, _ := fakeCompletionsServer(t, http.StatusBadRequest)
	h, err := Open(testCtx(t), NewOpenAIRuntime(OpenAIOptions{BaseURL: srv.URL + "/v1/"}), "/model", LoadOptions{Model: "mistral-awq"})
	require.NoError(t, err)
	defer h.Close()
	comps, err := h.Generate(testCtx(t), []string{"very long"}, DefaultSampling())
	require.Nil(t, comps)
	require.True(t, IsGenerationFailed(err))
}

// rawCompletionsServer serves a fixed completions body for model mistral-awq.
func rawCompletionsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"mistral-awq","object":"model","created":0,"owned_by":"vllm"}]}`))
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIRuntime_TokenCounts(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		prompts []string
		want    []int
	}{
		{
			name: "batch without logprobs",
			body: `{"id":"c","object":"text_completion","created":0,"model":"mistral-awq","choices":[` +
				`{"index":0,"text":"one two","finish_reason":"stop","logprobs":null},` +
				`{"index":1,"text":"three four","finish_reason":"stop","logprobs":null}],` +
				`"usage":{"prompt_tokens":4,"completion_tokens":12,"total_tokens":16}}`,
			prompts: []string{"a", "b"},
		},
		{
			name: "sum disagrees with usage",
			body: `{"id":"c","object":"text_completion","created":0,"model":"mistral-awq","choices":[` +
				`{"index":0,"text":"one","finish_reason":"stop","logprobs":{"tokens":["one"]}},` +
				`{"index":1,"text":"two","finish_reason":"stop","logprobs":{"tokens":["two"]}}],` +
				`"usage":{"prompt_tokens":4,"completion_tokens":5,"total_tokens":9}}`,
			prompts: []string{"a", "b"},
		},
		{
			name: "single choice falls back to usage",
			body: `{"id":"c","object":"text_completion","created":0,"model":"mistral-awq","choices":[` +
				`{"index":0,"text":"one two three","finish_reason":"length","logprobs":null}],` +
				`"usage":{"prompt_tokens":4,"completion_tokens":3,"total_tokens":7}}`,
			prompts: []string{"a"},
			want:    []int{3},
		},
		{
			name: "single choice without usage",
			body: `{"id":"c","object":"text_completion","created":0,"model":"mistral-awq","choices":[` +
				`{"index":0,"text":"one two three","finish_reason":"length","logprobs":null}]}`,
			prompts: []string{"a"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := rawCompletionsServer(t, tc.body)
			h, err := Open(testCtx(t), NewOpenAIRuntime(OpenAIOptions{BaseURL: srv.URL + "/v1/"}), "/model", LoadOptions{Model: "mistral-awq"})
			require.NoError(t, err)
			defer h.Close()
			comps, err := h.Generate(testCtx(t), tc.prompts, DefaultSampling())
			if tc.want == nil {
				require.Nil(t, comps)
				require.True(t, IsGenerationFailed(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Len(t, comps, len(tc.want))
			for i, c := range comps {
				require.Equal(t, tc.want[i], c.Tokens)
			}
		})
	}
}
