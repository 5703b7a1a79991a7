package ledger

import (
	"github.com/vreid/shinpan/internal/pkg/common"
	"go.etcd.io/bbolt"
)

// The counters themselves are maintained inside the mutating transactions;
// this file is only the read side.

type ProviderReport struct {
	ProviderStats

	WinRate    uint64 `json:"win_rate"`
	AvgRevenue uint64 `json:"avg_revenue"`
}

func (s *LedgerService) ProviderReport(address string) (*ProviderReport, error) {
	var report ProviderReport

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		stats, err := loadProviderStats(tx, address)
		if err != nil {
			return err
		}

		report = ProviderReport{
			ProviderStats: *stats,

			WinRate:    stats.WinRate(),
			AvgRevenue: stats.AvgRevenue(),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

func (s *LedgerService) ConsumerReport(address string) (*ConsumerStats, error) {
	var report *ConsumerStats

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		var err error

		report, err = loadConsumerStats(tx, address)

		return err
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (s *LedgerService) RegistrySnapshot() (*Registry, error) {
	var registry *Registry

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		var err error

		registry, err = loadRegistry(tx)

		return err
	})
	if err != nil {
		return nil, err
	}

	return registry, nil
}

type MatchReport struct {
	Match  *ScheduledMatch `json:"match"`
	Result *MatchResult    `json:"result,omitempty"`
}

// MatchReport resolves a match and, when one exists, its result through the
// result index.
func (s *LedgerService) MatchReport(matchID string) (*MatchReport, error) {
	var report MatchReport

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		match, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}

		report.Match = match

		index, err := bucket(tx, common.LedgerResultIndexBucket)
		if err != nil {
			return err
		}

		resultID := index.Get([]byte(matchID))
		if resultID == nil {
			return nil
		}

		report.Result, err = loadResult(tx, string(resultID))

		return err
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

func (s *LedgerService) SubscriptionByID(subscriptionID string) (*Subscription, error) {
	var subscription *Subscription

	err := s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		var err error

		subscription, err = loadSubscription(tx, subscriptionID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return subscription, nil
}
