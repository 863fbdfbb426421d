package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paydash/internal/config"
	"paydash/internal/core"
)

func TestFactory_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	defer res.Close()

	ds, err := res.Backend.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultDataset().Rows(), ds.Rows())
	assert.NoError(t, res.Backend.Ping(context.Background()))
}

func TestFactory_MemoryWithDataset(t *testing.T) {
	custom, err := core.NewDataset([]core.TimeSeriesRow{{Year: 2030, DigitalPayments: 1}}, nil)
	require.NoError(t, err)

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, Dataset: &custom})
	require.NoError(t, err)

	ds, err := res.Backend.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2030}, ds.Years())
}

func TestFactory_SQLite(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: "file:backend_factory_test?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	defer res.Close()

	ds, err := res.Backend.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
}

func TestFactory_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "sheets"}},
		{"sqlite without path", Config{Type: SQLiteBackend}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(nil).CreateBackend(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLiteDBPath)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)
}

func TestBackendResultCloseNil(t *testing.T) {
	var r *BackendResult
	assert.NoError(t, r.Close())
	assert.NoError(t, (&BackendResult{}).Close())
}
