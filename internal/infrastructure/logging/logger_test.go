package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown level", func(t *testing.T) {
		t.Parallel()

		_, err := logging.New(logging.Config{Level: "loud"}, "dealerdesk")
		require.Error(t, err)
	})

	t.Run("rejects unknown encoding", func(t *testing.T) {
		t.Parallel()

		_, err := logging.New(logging.Config{Encoding: "xml"}, "dealerdesk")
		require.Error(t, err)
	})

	t.Run("writes rotated file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		logger, err := logging.New(logging.Config{FilePath: dir, Level: "debug"}, "dealerdesk")
		require.NoError(t, err)

		logger.Infow("hello", logging.Fields(logging.General, logging.Startup, nil)...)
		_ = logger.Sync()

		data, err := os.ReadFile(filepath.Join(dir, "dealerdesk.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Category":"General"`)
		assert.Contains(t, string(data), `"AppName":"dealerdesk"`)
	})
}

func TestFields(t *testing.T) {
	t.Parallel()

	got := logging.Fields(logging.RequestResponse, logging.Api, map[logging.ExtraKey]any{
		logging.StatusCode: 200,
		logging.Method:     "GET",
	})

	assert.Equal(t, []any{
		logging.KeyCategory, logging.RequestResponse,
		logging.KeySubCategory, logging.Api,
		"Method", "GET",
		"StatusCode", 200,
	}, got)
}
