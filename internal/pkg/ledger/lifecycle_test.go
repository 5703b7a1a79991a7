package ledger_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/shinpan/internal/pkg/common"
	"github.com/vreid/shinpan/internal/pkg/ledger"
)

func newTestLedger(t *testing.T) (*ledger.LedgerService, *clockwork.FakeClock) {
	t.Helper()

	databaseService, err := common.OpenDatabaseService(t.TempDir())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = databaseService.Shutdown()
	})

	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))

	return &ledger.LedgerService{
		DatabaseService: databaseService,
		Clock:           clock,

		QueryPrice: ledger.DefaultQueryPrice,
	}, clock
}

func TestScheduleDuplicateMatch(t *testing.T) {
	t.Parallel()

	svc, clock := newTestLedger(t)

	_, err := svc.Schedule("alice", "m1", "tetris", "bob", clock.Now())
	require.NoError(t, err)

	_, err = svc.Schedule("alice", "m1", "tetris", "bob", clock.Now())
	assert.ErrorIs(t, err, ledger.ErrDuplicateMatch)

	registry, err := svc.RegistrySnapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), registry.MatchesScheduled)
}

func TestMatchLifecycle(t *testing.T) {
	t.Parallel()

	svc, clock := newTestLedger(t)

	scheduledAt := clock.Now().Add(10 * time.Second)

	match, err := svc.Schedule("alice", "m1", "tetris", "bob", scheduledAt)
	require.NoError(t, err)
	assert.False(t, match.Locked)
	assert.Equal(t, ledger.StateScheduled, match.State)

	// Nothing can happen before the scheduled time.
	_, err = svc.SubmitResult("alice", "m1", ledger.ResultSubmission{Winner: "alice"})
	assert.ErrorIs(t, err, ledger.ErrNotLocked)

	_, err = svc.Lock("alice", "m1")
	assert.ErrorIs(t, err, ledger.ErrNotStartable)

	clock.Advance(10 * time.Second)

	match, err = svc.Lock("alice", "m1")
	require.NoError(t, err)
	assert.True(t, match.Locked)

	_, err = svc.Lock("alice", "m1")
	assert.ErrorIs(t, err, ledger.ErrAlreadyLocked)

	_, err = svc.SubmitResult("mallory", "m1", ledger.ResultSubmission{Winner: "mallory"})
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)

	result, err := svc.SubmitResult("bob", "m1", ledger.ResultSubmission{
		Winner:    "bob",
		StatsA:    3,
		StatsB:    7,
		BlobID:    "blob-1",
		ProofHash: "hash-1",
	})
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "m1", result.MatchID)

	_, err = svc.SubmitResult("alice", "m1", ledger.ResultSubmission{Winner: "alice"})
	assert.ErrorIs(t, err, ledger.ErrAlreadyCompleted)

	report, err := svc.MatchReport("m1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StateCompleted, report.Match.State)
	require.NotNil(t, report.Result)
	assert.Equal(t, result.ID, report.Result.ID)

	verified, err := svc.Verify("validator", "m1", result.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Equal(t, "validator", verified.Verifier)

	_, err = svc.Verify("validator", "m1", result.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyVerified)

	report, err = svc.MatchReport("m1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StateVerified, report.Match.State)
	assert.True(t, report.Result.Verified)

	registry, err := svc.RegistrySnapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), registry.MatchesScheduled)
	assert.Equal(t, uint64(1), registry.MatchesCompleted)
}

func TestLockUnknownMatch(t *testing.T) {
	t.Parallel()

	svc, _ := newTestLedger(t)

	_, err := svc.Lock("alice", "missing")
	assert.ErrorIs(t, err, ledger.ErrMatchNotFound)
}

func TestVerifyResultMismatch(t *testing.T) {
	t.Parallel()

	svc, clock := newTestLedger(t)

	for _, matchID := range []string{"m1", "m2"} {
		_, err := svc.Schedule("alice", matchID, "tetris", "bob", clock.Now())
		require.NoError(t, err)

		_, err = svc.Lock("alice", matchID)
		require.NoError(t, err)
	}

	result, err := svc.SubmitResult("alice", "m1", ledger.ResultSubmission{Winner: "alice"})
	require.NoError(t, err)

	_, err = svc.Verify("validator", "m2", result.ID)
	assert.ErrorIs(t, err, ledger.ErrResultMismatch)

	// The rejected verify must leave the result untouched.
	report, err := svc.MatchReport("m1")
	require.NoError(t, err)
	assert.False(t, report.Result.Verified)
}

func TestVerifyAllowList(t *testing.T) {
	t.Parallel()

	svc, clock := newTestLedger(t)
	svc.Verifiers = []string{"validator"}

	_, err := svc.Schedule("alice", "m1", "tetris", "bob", clock.Now())
	require.NoError(t, err)

	_, err = svc.Lock("alice", "m1")
	require.NoError(t, err)

	result, err := svc.SubmitResult("alice", "m1", ledger.ResultSubmission{Winner: "alice"})
	require.NoError(t, err)

	_, err = svc.Verify("mallory", "m1", result.ID)
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)

	verified, err := svc.Verify("validator", "m1", result.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
}

func TestSubmitResultUpdatesProviderRecord(t *testing.T) {
	t.Parallel()

	svc, clock := newTestLedger(t)

	outcomes := []struct {
		matchID string
		winner  string
	}{
		{matchID: "m1", winner: "alice"},
		{matchID: "m2", winner: "bob"},
		{matchID: "m3", winner: ledger.DrawWinner},
	}

	for _, outcome := range outcomes {
		_, err := svc.Schedule("alice", outcome.matchID, "tetris", "bob", clock.Now())
		require.NoError(t, err)

		_, err = svc.Lock("alice", outcome.matchID)
		require.NoError(t, err)

		_, err = svc.SubmitResult("alice", outcome.matchID, ledger.ResultSubmission{Winner: outcome.winner})
		require.NoError(t, err)
	}

	report, err := svc.ProviderReport("alice")
	require.NoError(t, err)

	assert.Equal(t, uint64(3), report.MatchesSubmitted)
	assert.Equal(t, uint64(1), report.Wins)
	assert.Equal(t, uint64(1), report.Losses)
	assert.Equal(t, uint64(1), report.Draws)
	assert.Equal(t, uint64(33), report.WinRate)
}

func TestScheduleEmitsEvent(t *testing.T) {
	t.Parallel()

	svc, clock := newTestLedger(t)

	events := make(chan ledger.Event, 10)
	svc.EventSink = events

	_, err := svc.Schedule("alice", "m1", "tetris", "bob", clock.Now())
	require.NoError(t, err)

	event := <-events
	assert.Equal(t, ledger.EventMatchScheduled, event.Kind)
	assert.Equal(t, "m1", event.MatchID)
	assert.Equal(t, "alice", event.Actor)
}
