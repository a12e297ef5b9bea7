package main

import (
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"batchgen/internal/engine"
	"batchgen/internal/pipeline"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		questions string
		fetch     bool
		maxTokens int
		system    string
		template  string
		runtime   string
		modelDir  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Answer a batch of questions once and report throughput",
		Example: "  batchgen run\n" +
			"  batchgen run --questions questions.txt --max-tokens 512\n" +
			"  batchgen run --fetch --model-dir /model\n" +
			"  batchgen run --runtime llama --model-dir ./models",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("questions") {
				cfg.QuestionsFile = questions
			}
			if flags.Changed("max-tokens") {
				cfg.Sampling.MaxTokens = maxTokens
			}
			if flags.Changed("system") {
				cfg.Prompt.System = system
			}
			if flags.Changed("template") {
				cfg.Prompt.Template = template
			}
			if flags.Changed("runtime") {
				cfg.Runtime = runtime
			}
			if flags.Changed("model-dir") {
				cfg.Model.Dir = modelDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			log := a.log

			qs, err := pipeline.LoadQuestions(cfg.QuestionsFile)
			if err != nil {
				return err
			}
			formatter, err := cfg.Formatter()
			if err != nil {
				return err
			}

			if fetch && needsFetch(cfg.Model.Dir, cfg.Runtime) {
				if _, err := fetchWeights(ctx, cfg, log); err != nil {
					return err
				}
			}
			h, err := openHandle(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer h.Close()

			runner := pipeline.Runner{
				Formatter: formatter,
				Generator: h,
				Sampling:  cfg.Sampling,
				Observer: pipeline.MultiObserver{
					pipeline.ConsoleObserver{W: a.stdout},
					pipeline.LogObserver{Log: log},
					pipeline.MetricsObserver{},
				},
			}
			log.Info().Int("questions", len(qs)).Str("sampling", cfg.Sampling.String()).Msg("submitting batch")
			if _, err := runner.Run(ctx, qs); err != nil {
				log.Error().Err(err).Msg("batch failed")
				return err
			}

			if cfg.PushgatewayURL != "" {
				p := push.New(cfg.PushgatewayURL, "batchgen")
				for _, c := range append(pipeline.Collectors(), engine.Collectors()...) {
					p = p.Collector(c)
				}
				if err := p.PushContext(ctx); err != nil {
					log.Warn().Err(err).Str("url", cfg.PushgatewayURL).Msg("push metrics failed")
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&questions, "questions", "q", "", "File with one question per line ('-' for stdin); built-in question when empty")
	f.BoolVar(&fetch, "fetch", false, "Download the weights first when the model dir has none")
	f.IntVar(&maxTokens, "max-tokens", engine.DefaultMaxTokens, "Maximum tokens generated per question")
	f.StringVar(&system, "system", "", "System text placed in the prompt template")
	f.StringVar(&template, "template", "mistral-instruct", "Prompt template: mistral-instruct|llama2-chat|raw")
	f.StringVar(&runtime, "runtime", "openai", "Inference runtime: openai|llama")
	f.StringVar(&modelDir, "model-dir", "/model", "Directory holding the model weights")
	return cmd
}
