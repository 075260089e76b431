package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"newsclf/client"
	"newsclf/config"
	"newsclf/inference"
)

const probeText = "नेपालमा आजको दिन धेरै राम्रो छ"

func NewCheckCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect the model directory and probe a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if url == "" {
				url = defaultURL(cfg)
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cfg.Models, client.New(url, timeout))
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Server base URL (defaults to the configured address)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, models config.ModelsConfig, c *client.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	failed := 0

	fmt.Fprintf(out, "Model directory: %s\n", models.Dir)
	transformer, classifier, decoder := models.ArtifactPaths()
	for _, a := range []struct{ name, path string }{
		{inference.ArtifactClassifier, classifier},
		{inference.ArtifactTransformer, transformer},
		{inference.ArtifactDecoder, decoder},
	} {
		info, err := os.Stat(a.path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "❌ %s: %s (%v)\n", a.name, a.path, err)
			continue
		}
		fmt.Fprintf(out, "✅ %s: %s (%d bytes)\n", a.name, a.path, info.Size())
	}

	root, err := c.Root(ctx)
	if err != nil {
		failed++
		fmt.Fprintf(out, "❌ GET /: %v\n", err)
	} else {
		fmt.Fprintf(out, "✅ GET /: %s (models_loaded=%t)\n", root.Message, root.ModelsLoaded)
	}

	health, err := c.Health(ctx)
	switch {
	case err != nil:
		failed++
		fmt.Fprintf(out, "❌ GET /health: %v\n", err)
	case health.Status != inference.StatusHealthy:
		failed++
		fmt.Fprintf(out, "❌ GET /health: %s (%v)\n", health.Message, health.Models)
	default:
		fmt.Fprintf(out, "✅ GET /health: %s\n", health.Message)
	}

	pred, err := c.Predict(ctx, probeText)
	if err != nil {
		failed++
		fmt.Fprintf(out, "❌ POST /predict: %v\n", err)
	} else {
		fmt.Fprintf(out, "✅ POST /predict: %s (confidence %.4f)\n", pred.Category, pred.Confidence)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
