package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mf4kit/mf4kit/errs"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	assert.Equal(t, 0, tracker.Count())
	assert.False(t, tracker.HasCollision())
	assert.Empty(t, tracker.Names())
}

func TestTrackDistinctNames(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("EngineStatus", 0x1234))
	require.NoError(t, tracker.Track("BrakeStatus", 0x5678))

	assert.Equal(t, 2, tracker.Count())
	assert.False(t, tracker.HasCollision())
	assert.Equal(t, []string{"EngineStatus", "BrakeStatus"}, tracker.Names())
}

func TestTrackCollisionDifferentNamesSameHash(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("EngineStatus", 0x1234))
	require.NoError(t, tracker.Track("BrakeStatus", 0x1234))

	assert.True(t, tracker.HasCollision())
	assert.Equal(t, 2, tracker.Count())
}

func TestTrackDuplicateNameSameHash(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("EngineStatus", 0x1234))

	err := tracker.Track("EngineStatus", 0x1234)
	require.ErrorIs(t, err, errs.ErrDuplicateMessageName)
	assert.False(t, tracker.HasCollision())
	assert.Equal(t, 1, tracker.Count())
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("EngineStatus", 0x1234))
	require.NoError(t, tracker.Track("BrakeStatus", 0x1234))
	require.True(t, tracker.HasCollision())

	tracker.Reset()

	assert.Equal(t, 0, tracker.Count())
	assert.False(t, tracker.HasCollision())
	assert.Empty(t, tracker.Names())
}
