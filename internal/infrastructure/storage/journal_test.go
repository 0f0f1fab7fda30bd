package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

func TestSQLiteJournal_RecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := OpenJournal(path)
	require.NoError(t, err)

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	outcomes := []domain.Outcome{
		domain.OK("emissions", "https://example.com/a", "score 85"),
		domain.Skipped("emissions", "https://example.com/b", "duplicate"),
		domain.Failed("emissions", "https://example.com/c", errors.New("timeout")),
	}
	for i, o := range outcomes {
		require.NoError(t, j.Record(ctx, domain.NewJournalEntry("run-1", "scrape", o, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, j.Close())

	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/c", got[0].Key)
	assert.Equal(t, "failed", got[0].Kind)
	assert.Equal(t, "timeout", got[0].Reason)
	assert.True(t, got[0].RecordedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "https://example.com/b", got[1].Key)
	assert.Equal(t, "run-1", got[1].RunID)
	assert.Equal(t, "scrape", got[1].Command)
	assert.NotZero(t, got[1].ID)
}

func TestSQLiteJournal_EmptyAndDefaults(t *testing.T) {
	j, err := OpenJournal(":memory:")
	require.NoError(t, err)
	defer j.Close()

	got, err := j.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, j.Record(context.Background(), domain.JournalEntry{RunID: "r", Command: "tick", Kind: "ok", Key: "slug"}))
	got, err = j.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].RecordedAt.IsZero())
}
