package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func replaySnapshot(turn int, phase string) *SessionSnapshot {
	return &SessionSnapshot{
		ID:    "session-1",
		Turn:  turn,
		Phase: phase,
	}
}

func TestReplayPlayback(t *testing.T) {
	replay := NewReplay("session-1")
	replay.RecordState(replaySnapshot(1, "STRATEGY"))
	replay.RecordState(replaySnapshot(1, "COMBAT"))
	replay.RecordState(replaySnapshot(2, "STRATEGY"))

	require.Equal(t, 3, replay.Size())

	replay.Start()
	first := replay.Next()
	require.NotNil(t, first)
	assert.Equal(t, "STRATEGY", first.Phase)

	second := replay.Next()
	require.NotNil(t, second)
	assert.Equal(t, "COMBAT", second.Phase)

	back := replay.Previous()
	require.NotNil(t, back)
	assert.Equal(t, "COMBAT", back.Phase)

	replay.Start()
	assert.Nil(t, replay.Previous())

	for replay.Next() != nil {
	}
	assert.Nil(t, replay.Next())
}

func TestReplayGetStateAt(t *testing.T) {
	replay := NewReplay("session-1")
	replay.RecordState(replaySnapshot(1, "STRATEGY"))

	require.NotNil(t, replay.GetStateAt(0))
	assert.Nil(t, replay.GetStateAt(-1))
	assert.Nil(t, replay.GetStateAt(1))
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	replay := NewReplay("session-roundtrip")
	for turn := 1; turn <= 3; turn++ {
		snap := replaySnapshot(turn, "PREPARATION")
		snap.Events = []string{fmt.Sprintf("turn %d", turn)}
		replay.RecordState(snap)
	}
	require.NoError(t, replay.SaveToFile(dir))

	loaded, err := LoadReplayFromFile(dir, "session-roundtrip")
	require.NoError(t, err)

	assert.Equal(t, "session-roundtrip", loaded.SessionID)
	require.Equal(t, 3, loaded.Size())
	assert.Equal(t, 2, loaded.GetStateAt(1).Turn)
	assert.Equal(t, []string{"turn 3"}, loaded.GetStateAt(2).Events)
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(t.TempDir(), "no-such-session")
	assert.Error(t, err)
}

func TestRecorderLifecycle(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())

	recorder.StartRecording("s1")
	assert.True(t, recorder.IsRecording("s1"))

	recorder.RecordState("s1", replaySnapshot(1, "STRATEGY"))
	recorder.RecordState("s1", replaySnapshot(1, "COMBAT"))

	replay, ok := recorder.GetReplay("s1")
	require.True(t, ok)
	assert.Equal(t, 2, replay.Size())

	// Stopping keeps the replay but drops further states.
	recorder.StopRecording("s1")
	assert.False(t, recorder.IsRecording("s1"))
	recorder.RecordState("s1", replaySnapshot(2, "STRATEGY"))
	assert.Equal(t, 2, replay.Size())
}

func TestRecorderIgnoresUnknownSession(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())

	recorder.RecordState("never-started", replaySnapshot(1, "STRATEGY"))
	_, ok := recorder.GetReplay("never-started")
	assert.False(t, ok)
	assert.False(t, recorder.IsRecording("never-started"))
}

func TestRecorderSaveEvictsFromMemory(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)

	recorder.StartRecording("s1")
	recorder.RecordState("s1", replaySnapshot(1, "STRATEGY"))

	require.NoError(t, recorder.SaveReplay("s1"))

	_, ok := recorder.GetReplay("s1")
	assert.False(t, ok)

	loaded, err := recorder.LoadReplay("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Size())

	// Saving again fails: the replay is gone from memory.
	assert.Error(t, recorder.SaveReplay("s1"))
}

func TestRecorderClearReplay(t *testing.T) {
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())

	recorder.StartRecording("s1")
	recorder.RecordState("s1", replaySnapshot(1, "STRATEGY"))
	recorder.ClearReplay("s1")

	_, ok := recorder.GetReplay("s1")
	assert.False(t, ok)
	assert.False(t, recorder.IsRecording("s1"))
}
