package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		repo     string
		revision string
		dir      string
		allow    string
		ignore   string
	)
	cmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Download model weights from the hub into the model dir",
		Example: "  HF_TOKEN=hf_xxx batchgen fetch --repo TheBloke/Mistral-7B-Instruct-v0.1-GGUF --allow '*Q4_K_M.gguf'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("repo") {
				cfg.Model.Repo = repo
			}
			if flags.Changed("revision") {
				cfg.Model.Revision = revision
			}
			if flags.Changed("dir") {
				cfg.Model.Dir = dir
			}
			if flags.Changed("allow") {
				cfg.Model.Allow = splitCSV(allow)
			}
			if flags.Changed("ignore") {
				cfg.Model.Ignore = splitCSV(ignore)
			}
			res, err := fetchWeights(cmd.Context(), cfg, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s: %d downloaded, %d up to date, %d bytes -> %s\n",
				cfg.Model.Repo, len(res.Downloaded), len(res.Skipped), res.Bytes, res.Dir)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&repo, "repo", "", "Hub repository id (default from config)")
	f.StringVar(&revision, "revision", "main", "Branch, tag or commit")
	f.StringVar(&dir, "dir", "/model", "Destination directory")
	f.StringVar(&allow, "allow", "", "Comma-separated glob patterns to keep (all when empty)")
	f.StringVar(&ignore, "ignore", "*.pt,*.bin", "Comma-separated glob patterns to skip")
	return cmd
}
