package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/config"
	"github.com/iliyamo/live-show-lineup/internal/repository/memstore"
)

func TestNewWithMemoryStore(t *testing.T) {
	cfg := config.Config{StoreDriver: config.StoreMemory}
	cfg.Redis.Addr = "127.0.0.1:1"

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &memstore.Store{}, a.Store)
	assert.Nil(t, a.DB)
	assert.Nil(t, a.Redis)

	shows, err := a.Lineup.ListLiveShows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shows)
}
