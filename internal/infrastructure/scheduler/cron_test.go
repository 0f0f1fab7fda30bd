package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronScheduler_AddValidatesSpec(t *testing.T) {
	s := NewCronScheduler(time.UTC)

	require.NoError(t, s.Add("*/15 * * * *", func(time.Time) {}))
	require.NoError(t, s.Add("0 8 * * *", func(time.Time) {}))
	assert.Error(t, s.Add("every now and then", func(time.Time) {}))
	require.NoError(t, s.Add("0 8 * * *", nil))

	assert.Equal(t, 2, s.Entries())
}

func TestCronScheduler_StartStop(t *testing.T) {
	s := NewCronScheduler(nil)
	require.NoError(t, s.Add("@every 1h", func(time.Time) {}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	assert.NoError(t, s.Stop(ctx))
}
