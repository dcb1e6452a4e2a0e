package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientEnqueuesCacheWarmup(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	info, err := client.EnqueueCacheWarmup(context.Background(), CacheWarmupPayload{Reason: "startup"})
	require.NoError(t, err)
	assert.Equal(t, TaskCacheWarmup, info.Type)
	assert.Equal(t, QueueDefault, info.Queue)

	var payload CacheWarmupPayload
	require.NoError(t, json.Unmarshal(info.Payload, &payload))
	assert.Equal(t, "startup", payload.Reason)
}
