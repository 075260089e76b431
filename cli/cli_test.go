package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"newsclf/client"
	"newsclf/config"
	qhttp "newsclf/http"
	"newsclf/inference"
	"newsclf/ml/mltest"
)

func startServer(t *testing.T, dir string) (string, *inference.Service) {
	t.Helper()
	models := config.Default().Models
	models.Dir = dir
	svc := inference.NewService(models, zap.NewNop())
	require.NoError(t, svc.LoadModels())

	cfg := qhttp.DefaultServerConfig()
	srv := httptest.NewServer(qhttp.NewHandler(cfg, svc, qhttp.NewEventHub(nil, zap.NewNop()), nil, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv.URL, svc
}

func writeConfig(t *testing.T, modelsDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "models:\n  dir: " + modelsDir + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunSmoke(t *testing.T) {
	t.Run("all probes pass", func(t *testing.T) {
		dir := t.TempDir()
		mltest.WriteBundle(t, dir)
		url, _ := startServer(t, dir)
		var out bytes.Buffer

		err := runSmoke(context.Background(), &out, client.New(url, 5*time.Second))

		require.NoError(t, err, out.String())
		assert.Contains(t, out.String(), "5/5 tests passed")
	})

	t.Run("degraded server fails", func(t *testing.T) {
		url, _ := startServer(t, t.TempDir())
		var out bytes.Buffer

		err := runSmoke(context.Background(), &out, client.New(url, 5*time.Second))

		require.ErrorIs(t, err, errSmokeFailed)
		assert.Contains(t, out.String(), "❌ health")
		assert.Contains(t, out.String(), "❌ predict:")
		assert.Contains(t, out.String(), "2/5 tests passed")
	})
}

func TestRunCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		dir := t.TempDir()
		mltest.WriteBundle(t, dir)
		url, _ := startServer(t, dir)
		models := config.Default().Models
		models.Dir = dir
		var out bytes.Buffer

		err := runCheck(context.Background(), &out, models, client.New(url, 5*time.Second))

		require.NoError(t, err, out.String())
		assert.Contains(t, out.String(), "✅ svm_model")
		assert.Contains(t, out.String(), "bytes")
		assert.Contains(t, out.String(), "✅ POST /predict")
	})

	t.Run("missing artifact", func(t *testing.T) {
		dir := t.TempDir()
		mltest.WriteBundle(t, dir)
		url, _ := startServer(t, dir)
		require.NoError(t, os.Remove(filepath.Join(dir, mltest.DecoderFile)))
		models := config.Default().Models
		models.Dir = dir
		var out bytes.Buffer

		err := runCheck(context.Background(), &out, models, client.New(url, 5*time.Second))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 check(s) failed")
		assert.Contains(t, out.String(), "❌ label_encoder")
	})
}

func TestRootCommand_Smoke(t *testing.T) {
	dir := t.TempDir()
	mltest.WriteBundle(t, dir)
	url, _ := startServer(t, dir)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"smoke", "--config", writeConfig(t, dir), "--url", url})

	require.NoError(t, cmd.Execute(), out.String())
	assert.Contains(t, out.String(), "tests passed")
}

func TestDefaultURL(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "http://localhost:8000", defaultURL(cfg))

	cfg.Http.Host = "10.0.0.5"
	cfg.Http.Port = 9000
	assert.Equal(t, "http://10.0.0.5:9000", defaultURL(cfg))
}
