package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/vreid/shinpan/internal/pkg/common"
	"go.etcd.io/bbolt"
)

// Schedule registers a match before it is played. Registering ahead of the
// scheduled time is what makes a later result tamper-evident: the pairing is
// public before the outcome can be known.
func (s *LedgerService) Schedule(
	caller string,
	matchID string,
	gameID string,
	opponent string,
	scheduledAt time.Time) (*ScheduledMatch, error) {
	match := &ScheduledMatch{
		ID:      matchID,
		GameID:  gameID,
		PlayerA: caller,
		PlayerB: opponent,

		ScheduledAt: scheduledAt.Unix(),

		Locked: false,
		State:  StateScheduled,
	}

	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		matches, err := bucket(tx, common.LedgerMatchesBucket)
		if err != nil {
			return err
		}

		if matches.Get([]byte(matchID)) != nil {
			return ErrDuplicateMatch
		}

		err = putRecord(matches, matchID, match)
		if err != nil {
			return err
		}

		registry, err := loadRegistry(tx)
		if err != nil {
			return err
		}

		registry.MatchesScheduled++

		return storeRegistry(tx, registry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventMatchScheduled, MatchID: matchID, Actor: caller})

	return match, nil
}

// Lock is the one-way commit gate: once the scheduled time has arrived the
// match can no longer be rescheduled, and only a locked match accepts a
// result.
func (s *LedgerService) Lock(caller string, matchID string) (*ScheduledMatch, error) {
	var match *ScheduledMatch

	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		var err error

		match, err = loadMatch(tx, matchID)
		if err != nil {
			return err
		}

		if s.Clock.Now().Unix() < match.ScheduledAt {
			return ErrNotStartable
		}

		if match.Locked {
			return ErrAlreadyLocked
		}

		match.Locked = true

		return storeMatch(tx, match)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventMatchLocked, MatchID: matchID, Actor: caller})

	return match, nil
}

type ResultSubmission struct {
	Winner    string
	StatsA    int64
	StatsB    int64
	BlobID    string
	ProofHash string
}

// SubmitResult records the single result of a locked match. Only the two
// participants may submit, and only once.
func (s *LedgerService) SubmitResult(
	caller string,
	matchID string,
	submission ResultSubmission) (*MatchResult, error) {
	resultID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate result ID: %w", err)
	}

	result := &MatchResult{
		ID:      resultID.String(),
		MatchID: matchID,

		Submitter: caller,
		Winner:    submission.Winner,

		StatsA: submission.StatsA,
		StatsB: submission.StatsB,

		BlobID:    submission.BlobID,
		ProofHash: submission.ProofHash,

		Verified: false,
	}

	err = s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		match, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}

		if caller != match.PlayerA && caller != match.PlayerB {
			return ErrNotAuthorized
		}

		if !match.Locked {
			return ErrNotLocked
		}

		if match.State != StateScheduled {
			return ErrAlreadyCompleted
		}

		err = storeResult(tx, result)
		if err != nil {
			return err
		}

		index, err := bucket(tx, common.LedgerResultIndexBucket)
		if err != nil {
			return err
		}

		err = index.Put([]byte(matchID), []byte(result.ID))
		if err != nil {
			return fmt.Errorf("failed to index result for %s: %w", matchID, err)
		}

		match.State = StateCompleted

		err = storeMatch(tx, match)
		if err != nil {
			return err
		}

		registry, err := loadRegistry(tx)
		if err != nil {
			return err
		}

		registry.MatchesCompleted++

		err = storeRegistry(tx, registry)
		if err != nil {
			return err
		}

		stats, err := loadProviderStats(tx, caller)
		if err != nil {
			return err
		}

		stats.MatchesSubmitted++

		switch submission.Winner {
		case caller:
			stats.Wins++
		case DrawWinner:
			stats.Draws++
		default:
			stats.Losses++
		}

		return storeProviderStats(tx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventResultSubmitted, MatchID: matchID, Actor: caller})

	return result, nil
}

// Verify flips a result to verified exactly once. No cryptographic check
// happens here; authority comes from the configured allow-list, or from
// anyone when the list is empty.
func (s *LedgerService) Verify(caller string, matchID string, resultID string) (*MatchResult, error) {
	if len(s.Verifiers) > 0 && !slices.Contains(s.Verifiers, caller) {
		return nil, ErrNotAuthorized
	}

	var result *MatchResult

	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		match, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}

		result, err = loadResult(tx, resultID)
		if err != nil {
			return err
		}

		if result.Verified {
			return ErrAlreadyVerified
		}

		if result.MatchID != match.ID {
			return ErrResultMismatch
		}

		result.Verified = true
		result.Verifier = caller

		err = storeResult(tx, result)
		if err != nil {
			return err
		}

		match.State = StateVerified

		return storeMatch(tx, match)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventResultVerified, MatchID: matchID, Actor: caller})

	return result, nil
}
