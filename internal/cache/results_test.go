package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/campaign-intel/internal/insight"
)

func newTestCache(t *testing.T) (*ResultsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(rdb, 15*time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestPutThenGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	bundle := &insight.ResultsBundle{
		Run: insight.ExperimentRun{
			RunID:             "r1",
			Status:            "completed",
			CampaignsAnalyzed: 5,
		},
		CampaignAnalyses: []insight.CampaignAnalysis{{CampaignID: "c1"}},
	}
	c.Put(ctx, "r1", bundle)

	got, ok := c.Get(ctx, "r1")
	require.True(t, ok)
	assert.Equal(t, "r1", got.Run.RunID)
	assert.Equal(t, 5, got.Run.CampaignsAnalyzed)
	assert.Len(t, got.CampaignAnalyses, 1)
}

func TestGetMissOnUnknownRun(t *testing.T) {
	c, _ := newTestCache(t)

	got, ok := c.Get(context.Background(), "nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGetNormalizesCachedBundle(t *testing.T) {
	c, mr := newTestCache(t)

	// Entry written by an older process can omit the collections entirely.
	mr.Set(keyPrefix+"r2", `{"experiment_run":{"run_id":"r2","status":"completed"}}`)

	got, ok := c.Get(context.Background(), "r2")
	require.True(t, ok)
	assert.NotNil(t, got.CampaignAnalyses)
	assert.NotNil(t, got.ImageAnalyses)
	assert.NotNil(t, got.Correlations)
	assert.NotNil(t, got.Run.CampaignIDs)
}

func TestCorruptEntryIsDroppedAndMisses(t *testing.T) {
	c, mr := newTestCache(t)

	mr.Set(keyPrefix+"r3", `{not json`)

	got, ok := c.Get(context.Background(), "r3")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(keyPrefix+"r3"), "corrupt entry should be deleted")
}

func TestPutReplacesPreviousEntry(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "r4", &insight.ResultsBundle{Run: insight.ExperimentRun{RunID: "r4", Status: "processing"}})
	c.Put(ctx, "r4", &insight.ResultsBundle{Run: insight.ExperimentRun{RunID: "r4", Status: "completed"}})

	got, ok := c.Get(ctx, "r4")
	require.True(t, ok)
	assert.Equal(t, "completed", got.Run.Status)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "r5", &insight.ResultsBundle{Run: insight.ExperimentRun{RunID: "r5"}})
	mr.FastForward(16 * time.Minute)

	_, ok := c.Get(ctx, "r5")
	assert.False(t, ok)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "r6", &insight.ResultsBundle{Run: insight.ExperimentRun{RunID: "r6"}})
	c.Invalidate(ctx, "r6")

	assert.False(t, mr.Exists(keyPrefix + "r6"))
	_, ok := c.Get(ctx, "r6")
	assert.False(t, ok)
}

func TestGetDegradesToMissWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, ok := c.Get(context.Background(), "r7")
	assert.False(t, ok)
}
