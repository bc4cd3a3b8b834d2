package detection

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSink_PublishAndLatest(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sink := NewRedisSink(rdb, time.Hour)
	ctx := context.Background()

	_, ok, err := sink.Latest(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)

	result := DefaultResult()
	require.NoError(t, sink.Publish(ctx, Snapshot{JobID: "j1", SessionID: "sess-1", State: StateRunning, Progress: 40, Stage: StageAnalyzing}))
	require.NoError(t, sink.Publish(ctx, Snapshot{JobID: "j1", SessionID: "sess-1", State: StateDone, Progress: 100, Stage: StageDone, Result: &result}))

	snap, ok, err := sink.Latest(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, "Leaf Blight", snap.Result.Label)

	assert.True(t, mr.Exists("detection:progress:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("detection:progress:sess-1"))
}

func TestRedisSink_CorruptSnapshotIsIgnored(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	require.NoError(t, mr.Set("detection:progress:sess-1", "{not json"))

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	_, ok, err := NewRedisSink(rdb, 0).Latest(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSink_StoreDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	err = NewRedisSink(rdb, 0).Publish(context.Background(), Snapshot{SessionID: "s"})
	assert.Error(t, err)
}
