package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"batchgen/internal/common/fsutil"
	"batchgen/internal/config"
	"batchgen/internal/engine"
	"batchgen/internal/provision"
	"batchgen/internal/registry"

	"github.com/rs/zerolog"
)

// openHandle loads the configured model once for the process lifetime.
func openHandle(ctx context.Context, cfg config.Config, log zerolog.Logger) (*engine.Handle, error) {
	rt, err := engine.NewRuntime(cfg.Runtime, cfg.Model.Threads, engine.OpenAIOptions{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
		Timeout: time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, engine.ErrEngineUnavailable("select runtime", err)
	}

	modelPath := cfg.Model.Dir
	if rt.Name() == "llama" {
		w, err := registry.Locate(cfg.Model.Dir)
		if err != nil {
			return nil, engine.ErrEngineUnavailable("locate weights in "+cfg.Model.Dir, err)
		}
		if w.Format != registry.FormatGGUF {
			return nil, engine.ErrEngineUnavailable(fmt.Sprintf("llama runtime needs gguf weights, found %s in %s", w.Format, w.Dir), nil)
		}
		modelPath = w.ModelPath()
		log.Info().Str("path", modelPath).Int64("bytes", w.Size()).Msg("weights located")
	}

	start := time.Now()
	h, err := engine.Open(ctx, rt, modelPath, cfg.LoadOptions())
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("runtime", h.Runtime()).
		Str("model", modelPath).
		Str("quantization", cfg.Model.Quantization).
		Dur("load", time.Since(start)).
		Msg("model loaded")
	return h, nil
}

// fetchWeights provisions the configured repository into the model dir.
func fetchWeights(ctx context.Context, cfg config.Config, log zerolog.Logger) (provision.Result, error) {
	c := provision.NewClient(cfg.Hub.Endpoint, log)
	return c.Snapshot(ctx, provision.Request{
		Repo:     cfg.Model.Repo,
		Revision: cfg.Model.Revision,
		Dir:      cfg.Model.Dir,
		Token:    cfg.Hub.Token,
		Allow:    cfg.Model.Allow,
		Ignore:   cfg.Model.Ignore,
	})
}

// needsFetch reports whether the model dir lacks weights the runtime can
// load: any weights for openai, gguf for llama.
func needsFetch(dir, runtime string) bool {
	abs, err := fsutil.AbsDir(dir)
	if err != nil || !fsutil.PathExists(abs) {
		return true
	}
	w, err := registry.Locate(abs)
	if err != nil {
		return errors.Is(err, registry.ErrNoWeights) || errors.Is(err, fs.ErrNotExist)
	}
	return runtime == "llama" && w.Format != registry.FormatGGUF
}
