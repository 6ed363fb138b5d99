package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode returns development logger", func(t *testing.T) {
		logger, err := NewLogger(true)
		require.NoError(t, err)
		require.NotNil(t, logger)
		_ = logger.Sync()
	})

	t.Run("production mode returns production logger", func(t *testing.T) {
		logger, err := NewLogger(false)
		require.NoError(t, err)
		require.NotNil(t, logger)
		_ = logger.Sync()
	})
}
