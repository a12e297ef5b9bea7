package provision

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	files    map[string]string
	token    string
	flaky    int32 // number of 503s to serve before succeeding
	hits     atomic.Int32
	download atomic.Int32
}

func (h *fakeHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/", func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		if h.token != "" && r.Header.Get("Authorization") != "Bearer "+h.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/api/models/org/model/revision/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if atomic.AddInt32(&h.flaky, -1) >= 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var sib []string
		for name, body := range h.files {
			sib = append(sib, fmt.Sprintf(`{"rfilename":%q,"size":%d}`, name, len(body)))
		}
		fmt.Fprintf(w, `{"id":"org/model","sha":"abc123","siblings":[%s]}`, strings.Join(sib, ","))
	})
	mux.HandleFunc("/org/model/resolve/main/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/org/model/resolve/main/")
		body, ok := h.files[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.download.Add(1)
		_, _ = w.Write([]byte(body))
	})
	return mux
}

func newTestClient(t *testing.T, h *fakeHub) *Client {
	t.Helper()
	srv := httptest.NewServer(h.handler(t))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, zerolog.Nop())
	c.Delay = time.Millisecond
	c.MaxDelay = 5 * time.Millisecond
	return c
}

func testFiles() map[string]string {
	return map[string]string{
		"config.json":              `{"model_type":"mistral"}`,
		"model.safetensors":        "weights",
		"tokenizer.model":          "tok",
		"pytorch_model.bin":        "legacy",
		"original/consolidated.pt": "pt",
	}
}

func TestSnapshot_DownloadsSelected(t *testing.T) {
	hub := &fakeHub{files: testFiles(), token: "hf_secret"}
	c := newTestClient(t, hub)
	dir := t.TempDir()

	res, err := c.Snapshot(context.Background(), Request{
		Repo:   "org/model",
		Dir:    dir,
		Token:  "hf_secret",
		Ignore: []string{"*.bin", "**/*.pt"},
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"config.json", "model.safetensors", "tokenizer.model"}, res.Downloaded)
	require.Equal(t, int64(len("weights")+len("tok")+len(`{"model_type":"mistral"}`)), res.Bytes)

	b, err := os.ReadFile(filepath.Join(dir, "model.safetensors"))
	require.NoError(t, err)
	require.Equal(t, "weights", string(b))
	_, err = os.Stat(filepath.Join(dir, "pytorch_model.bin"))
	require.True(t, os.IsNotExist(err))

	// second run skips files already present with the expected size
	res, err = c.Snapshot(context.Background(), Request{Repo: "org/model", Dir: dir, Token: "hf_secret", Ignore: []string{"*.bin", "**/*.pt"}})
	require.NoError(t, err)
	require.Empty(t, res.Downloaded)
	require.Len(t, res.Skipped, 3)
	require.EqualValues(t, 3, hub.download.Load())
}

func TestSnapshot_BadTokenNotRetried(t *testing.T) {
	hub := &fakeHub{files: testFiles(), token: "right"}
	c := newTestClient(t, hub)
	_, err := c.Snapshot(context.Background(), Request{Repo: "org/model", Dir: t.TempDir(), Token: "wrong"})
	require.True(t, IsProvisioningFailed(err))
	require.Contains(t, err.Error(), "HTTP 401")
	require.EqualValues(t, 1, hub.hits.Load())
}

func TestSnapshot_UnknownRepo(t *testing.T) {
	c := newTestClient(t, &fakeHub{files: testFiles()})
	_, err := c.Snapshot(context.Background(), Request{Repo: "org/missing", Dir: t.TempDir()})
	require.True(t, IsProvisioningFailed(err))
	require.Contains(t, err.Error(), "HTTP 404")
}

func TestSnapshot_RetriesTransient(t *testing.T) {
	hub := &fakeHub{files: map[string]string{"a.gguf": "x"}, flaky: 2}
	c := newTestClient(t, hub)
	res, err := c.Snapshot(context.Background(), Request{Repo: "org/model", Dir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, []string{"a.gguf"}, res.Downloaded)
	require.EqualValues(t, 3, hub.hits.Load())
}

func TestSnapshot_Validation(t *testing.T) {
	c := NewClient("", zerolog.Nop())
	require.Equal(t, DefaultEndpoint, c.Endpoint)
	_, err := c.Snapshot(context.Background(), Request{})
	require.True(t, IsProvisioningFailed(err))
	_, err = c.Snapshot(context.Background(), Request{Repo: "org/model", Dir: t.TempDir(), Allow: []string{"[unterminated"}})
	require.True(t, IsProvisioningFailed(err))
}

func TestSelected(t *testing.T) {
	require.True(t, Selected("config.json", nil, nil))
	require.True(t, Selected("model.safetensors", []string{"*.safetensors", "*.json"}, nil))
	require.False(t, Selected("model.bin", []string{"*.safetensors"}, nil))
	require.False(t, Selected("model.bin", nil, []string{"*.bin"}))
	require.False(t, Selected("original/x.pt", nil, []string{"**/*.pt"}))
	require.True(t, Selected("original/x.json", []string{"**/*.json"}, []string{"*.bin"}))
}

func TestLocalPathRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	_, err := localPath(dir, "../evil")
	require.Error(t, err)
	p, err := localPath(dir, "sub/file.json")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "sub", "file.json"), p)
}
