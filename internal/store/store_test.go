package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"drawdown-service/internal/config"
	"drawdown-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries(n int, scale float64) model.DrawdownSeries {
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	out := make(model.DrawdownSeries, n)
	for i := range out {
		out[i] = model.DrawdownPoint{Date: base.AddDate(0, 0, i), Drawdown: -float64(i) * scale}
	}
	return out
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStoreGetPut(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, ok, err := st.Get(ctx, "nifty")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, got)

			want := testSeries(5, 0.01)
			require.NoError(t, st.Put(ctx, "nifty", want))

			got, ok, err = st.Get(ctx, "nifty")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, want, got)

			// Other categories are independent.
			_, ok, err = st.Get(ctx, "multi_asset")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Put(ctx, "multi_asset", testSeries(10, 0.1)))
			require.NoError(t, st.Put(ctx, "multi_asset", testSeries(3, 0.2)))

			got, ok, err := st.Get(ctx, "multi_asset")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, testSeries(3, 0.2), got)
		})
	}
}

func TestStoreEmptySeriesIsFound(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Put(ctx, "nifty", model.DrawdownSeries{}))

			got, ok, err := st.Get(ctx, "nifty")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	in := testSeries(3, 0.1)
	require.NoError(t, st.Put(ctx, "nifty", in))
	in[0].Drawdown = -99

	got, _, err := st.Get(ctx, "nifty")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0].Drawdown)

	got[1].Drawdown = -99
	again, _, err := st.Get(ctx, "nifty")
	require.NoError(t, err)
	assert.InDelta(t, -0.1, again[1].Drawdown, 1e-12)
}

func TestMemoryStoreConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = st.Put(ctx, "nifty", testSeries(n, 0.01))
			_, _, _ = st.Get(ctx, "nifty")
		}(i)
	}
	wg.Wait()

	got, ok, err := st.Get(ctx, "nifty")
	require.NoError(t, err)
	require.True(t, ok)
	// Some writer won; its series arrived whole.
	assert.Equal(t, testSeries(len(got), 0.01), got)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := NewMemoryStore()
	assert.Error(t, st.Put(ctx, "nifty", testSeries(1, 0)))
	_, _, err := st.Get(ctx, "nifty")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: config.StoreMemory, want: "*store.MemoryStore"},
		{driver: "", want: "*store.MemoryStore"},
		{driver: config.StoreSQLite, want: "*store.SQLiteStore"},
		{driver: "redis", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			st, err := New(config.StoreConfig{Driver: tt.driver, DSN: ":memory:"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer st.Close()
			assert.Equal(t, tt.want, fmt.Sprintf("%T", st))
		})
	}
}
