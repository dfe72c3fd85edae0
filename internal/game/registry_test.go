package game

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stubDeckSource serves decks from memory.
type stubDeckSource struct {
	decks map[string]*Deck
}

func (s *stubDeckSource) FetchDeck(_ context.Context, playerID string) (*Deck, error) {
	deck, ok := s.decks[playerID]
	if !ok {
		return nil, ErrNoDeck
	}
	return deck, nil
}

// stubMatchRecorder captures recorded results.
type stubMatchRecorder struct {
	mu      sync.Mutex
	results []MatchResult
	err     error
}

func (s *stubMatchRecorder) RecordMatch(_ context.Context, result MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, result)
	return nil
}

func newTestRegistry(t *testing.T) (*Registry, *stubMatchRecorder) {
	t.Helper()
	decks := &stubDeckSource{decks: map[string]*Deck{
		"alice": testDeck("Dawn", 5),
		"bob":   testDeck("Dusk", 3),
		"carol": testDeck("Noon", 4),
	}}
	recorder := &stubMatchRecorder{}
	engine := newTestEngine(t, 1)
	registry := NewRegistry(decks, recorder, engine, zaptest.NewLogger(t))
	return registry, recorder
}

func TestStartGameRegistersBothPlayers(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	session, err := registry.StartGame(ctx,
		PlayerRef{ID: "alice", Name: "Alice"},
		PlayerRef{ID: "bob", Name: "Bob"},
	)
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.True(t, registry.IsPlayerInGame("alice"))
	assert.True(t, registry.IsPlayerInGame("bob"))
	assert.Equal(t, 1, registry.ActiveCount())

	got, ok := registry.GetGameForPlayer("alice")
	require.True(t, ok)
	assert.Same(t, session, got)

	// The opening Preparation already ran.
	assert.Equal(t, PhaseStrategy, session.Phase)
}

func TestStartGamePlayerAlreadyBattling(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := registry.StartGame(ctx, PlayerRef{ID: "alice"}, PlayerRef{ID: "bob"})
	require.NoError(t, err)

	_, err = registry.StartGame(ctx, PlayerRef{ID: "alice"}, PlayerRef{ID: "carol"})
	assert.ErrorIs(t, err, ErrPlayerInGame)
	assert.False(t, registry.IsPlayerInGame("carol"))
}

func TestStartGameMissingDeck(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.StartGame(context.Background(),
		PlayerRef{ID: "alice"}, PlayerRef{ID: "nodeck"})
	assert.ErrorIs(t, err, ErrNoDeck)

	// A failed start registers nobody.
	assert.False(t, registry.IsPlayerInGame("alice"))
	assert.Equal(t, 0, registry.ActiveCount())
}

func TestStartGameSelfMatch(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.StartGame(context.Background(),
		PlayerRef{ID: "alice"}, PlayerRef{ID: "alice"})
	assert.Error(t, err)
}

func TestForfeitMarksWinnerAndKeepsSession(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	session, err := registry.StartGame(ctx, PlayerRef{ID: "alice", Name: "Alice"}, PlayerRef{ID: "bob", Name: "Bob"})
	require.NoError(t, err)

	got, ok := registry.Forfeit("alice")
	require.True(t, ok)
	assert.Same(t, session, got)

	snap := got.Snapshot()
	assert.True(t, snap.Finished)
	assert.Equal(t, "bob", snap.WinnerID)

	// Still registered so the final state can be rendered once more.
	assert.True(t, registry.IsPlayerInGame("alice"))
}

func TestForfeitByStrangerDoesNotTouchMatch(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	session, err := registry.StartGame(ctx, PlayerRef{ID: "alice"}, PlayerRef{ID: "bob"})
	require.NoError(t, err)

	_, ok := registry.Forfeit("mallory")
	assert.False(t, ok)
	_, ok = registry.Forfeit("trent")
	assert.False(t, ok)

	snap := session.Snapshot()
	assert.False(t, snap.Finished)
	assert.Empty(t, snap.WinnerID)
}

func TestEndGameRecordsOutcome(t *testing.T) {
	registry, recorder := newTestRegistry(t)
	ctx := context.Background()

	session, err := registry.StartGame(ctx, PlayerRef{ID: "alice", Name: "Alice"}, PlayerRef{ID: "bob", Name: "Bob"})
	require.NoError(t, err)

	_, ok := registry.Forfeit("bob")
	require.True(t, ok)

	registry.EndGame(ctx, session)

	assert.False(t, registry.IsPlayerInGame("alice"))
	assert.False(t, registry.IsPlayerInGame("bob"))
	assert.Equal(t, 0, registry.ActiveCount())

	require.Len(t, recorder.results, 1)
	result := recorder.results[0]
	assert.Equal(t, session.ID, result.SessionID)
	assert.Equal(t, "alice", result.WinnerID)
	assert.Equal(t, "bob", result.LoserID)
	assert.Equal(t, session.Winner.CommanderHealth, result.WinnerCommanderHealth)
}

func TestEndGameUnfinishedRecordsNothing(t *testing.T) {
	registry, recorder := newTestRegistry(t)
	ctx := context.Background()

	session, err := registry.StartGame(ctx, PlayerRef{ID: "alice"}, PlayerRef{ID: "bob"})
	require.NoError(t, err)

	registry.EndGame(ctx, session)

	assert.Empty(t, recorder.results)
	assert.Equal(t, 0, registry.ActiveCount())
}

func TestEndGameSavesReplayToDisk(t *testing.T) {
	dir := t.TempDir()
	decks := &stubDeckSource{decks: map[string]*Deck{
		"alice": testDeck("Dawn", 5),
		"bob":   testDeck("Dusk", 3),
	}}
	engine := newTestEngine(t, 1)
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)
	engine.AttachRecorder(recorder)
	registry := NewRegistry(decks, &stubMatchRecorder{}, engine, zaptest.NewLogger(t))
	ctx := context.Background()

	session, err := registry.StartGame(ctx, PlayerRef{ID: "alice"}, PlayerRef{ID: "bob"})
	require.NoError(t, err)

	// Recording begins with registration.
	_, ok := recorder.GetReplay(session.ID)
	require.True(t, ok)

	_, ok = registry.Forfeit("alice")
	require.True(t, ok)
	registry.EndGame(ctx, session)

	// The replay left memory and landed on disk.
	_, ok = recorder.GetReplay(session.ID)
	assert.False(t, ok)

	loaded, err := LoadReplayFromFile(dir, session.ID)
	require.NoError(t, err)
	assert.Positive(t, loaded.Size())
}

// claimingDeckSource claims a player in the registry while their deck is being
// fetched, forcing StartGame's registration re-check to fail.
type claimingDeckSource struct {
	decks    map[string]*Deck
	registry *Registry
	claim    string
}

func (s *claimingDeckSource) FetchDeck(_ context.Context, playerID string) (*Deck, error) {
	if playerID == s.claim && s.registry != nil {
		s.registry.mu.Lock()
		s.registry.byPlayer[s.claim] = "another-session"
		s.registry.mu.Unlock()
	}
	deck, ok := s.decks[playerID]
	if !ok {
		return nil, ErrNoDeck
	}
	return deck, nil
}

func TestStartGameLostRegistrationLeavesNoRecording(t *testing.T) {
	decks := &claimingDeckSource{
		decks: map[string]*Deck{
			"alice": testDeck("Dawn", 5),
			"bob":   testDeck("Dusk", 3),
		},
		claim: "bob",
	}
	engine := newTestEngine(t, 1)
	recorder := NewReplayRecorder(zaptest.NewLogger(t), t.TempDir())
	engine.AttachRecorder(recorder)
	registry := NewRegistry(decks, &stubMatchRecorder{}, engine, zaptest.NewLogger(t))
	decks.registry = registry

	_, err := registry.StartGame(context.Background(), PlayerRef{ID: "alice"}, PlayerRef{ID: "bob"})
	require.ErrorIs(t, err, ErrPlayerInGame)

	// The discarded session never reached the recorder.
	assert.Empty(t, recorder.replays)
	assert.False(t, registry.IsPlayerInGame("alice"))
}

func TestConcurrentLookups(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := registry.StartGame(ctx, PlayerRef{ID: "alice"}, PlayerRef{ID: "bob"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			registry.IsPlayerInGame("alice")
			registry.GetGameForPlayer("bob")
			registry.IsPlayerInGame(fmt.Sprintf("ghost-%d", i))
		}(i)
	}
	wg.Wait()
}
