package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"newsclf/client"
	"newsclf/inference"
)

var errSmokeFailed = errors.New("smoke test failed")

type probe struct {
	name string
	run  func(ctx context.Context, c *client.Client) (string, error)
}

var smokeProbes = []probe{
	{"root", func(ctx context.Context, c *client.Client) (string, error) {
		r, err := c.Root(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("status=%s models_loaded=%t", r.Status, r.ModelsLoaded), nil
	}},
	{"health", func(ctx context.Context, c *client.Client) (string, error) {
		h, err := c.Health(ctx)
		if err != nil {
			return "", err
		}
		if h.Status != inference.StatusHealthy {
			return "", fmt.Errorf("unhealthy: %v", h.Models)
		}
		return h.Message, nil
	}},
	{"predict", func(ctx context.Context, c *client.Client) (string, error) {
		p, err := c.Predict(ctx, probeText)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s (%.4f)", p.Category, p.Confidence), nil
	}},
	{"predict rejects empty text", func(ctx context.Context, c *client.Client) (string, error) {
		_, err := c.Predict(ctx, "")
		if !client.IsStatus(err, http.StatusBadRequest) {
			return "", fmt.Errorf("want 400, got %v", err)
		}
		return "400", nil
	}},
	{"reload", func(ctx context.Context, c *client.Client) (string, error) {
		r, err := c.Reload(ctx)
		if err != nil {
			return "", err
		}
		return r.Message, nil
	}},
}

func NewSmokeCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run end-to-end probes against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				url = defaultURL(cfg)
			}
			return runSmoke(cmd.Context(), cmd.OutOrStdout(), client.New(url, timeout))
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Server base URL (defaults to the configured address)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	return cmd
}

func runSmoke(ctx context.Context, out io.Writer, c *client.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	passed := 0
	for _, p := range smokeProbes {
		detail, err := p.run(ctx, c)
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", p.name, err)
			continue
		}
		passed++
		fmt.Fprintf(out, "✅ %s: %s\n", p.name, detail)
	}
	fmt.Fprintf(out, "%d/%d tests passed\n", passed, len(smokeProbes))
	if passed != len(smokeProbes) {
		return fmt.Errorf("%w: %d/%d passed", errSmokeFailed, passed, len(smokeProbes))
	}
	return nil
}
