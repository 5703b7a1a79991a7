package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"
	"github.com/vreid/shinpan/internal/pkg/common"
	"go.etcd.io/bbolt"
)

// DefaultQueryPrice is the fixed per-query price in base currency units.
const DefaultQueryPrice uint64 = 10_000_000

// Payment split, in percent. The truncation remainder of the three shares is
// destroyed, never pooled.
const (
	ProviderSharePct  = 70
	ProtocolSharePct  = 20
	ValidatorSharePct = 10
)

const registryKey = "registry"

type LedgerService struct {
	DatabaseService *common.DatabaseService
	Clock           clockwork.Clock

	EventSink chan<- Event

	QueryPrice uint64

	// Verifiers is the verify allow-list; empty means anyone may verify.
	Verifiers []string
}

func NewLedgerService(i do.Injector) (*LedgerService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)
	clock := do.MustInvoke[clockwork.Clock](i)

	eventSink := do.MustInvokeNamed[chan<- Event](i, "event-sink")

	queryPrice := do.MustInvokeNamed[uint64](i, "query-price")
	verifiers := do.MustInvokeNamed[[]string](i, "verifiers")

	result := &LedgerService{
		DatabaseService: databaseService,
		Clock:           clock,

		EventSink: eventSink,

		QueryPrice: queryPrice,
		Verifiers:  verifiers,
	}

	return result, nil
}

func (s *LedgerService) emit(event Event) {
	event.Timestamp = s.Clock.Now().Unix()

	if s.EventSink != nil {
		s.EventSink <- event
	}
}

func bucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, name)
	}

	return b, nil
}

func putRecord(b *bbolt.Bucket, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	err = b.Put([]byte(key), data)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}

	return nil
}

func getRecord(b *bbolt.Bucket, key string, record any) (bool, error) {
	data := b.Get([]byte(key))
	if data == nil {
		return false, nil
	}

	err := json.Unmarshal(data, record)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}

func loadMatch(tx *bbolt.Tx, matchID string) (*ScheduledMatch, error) {
	matches, err := bucket(tx, common.LedgerMatchesBucket)
	if err != nil {
		return nil, err
	}

	var match ScheduledMatch

	found, err := getRecord(matches, matchID, &match)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrMatchNotFound
	}

	return &match, nil
}

func storeMatch(tx *bbolt.Tx, match *ScheduledMatch) error {
	matches, err := bucket(tx, common.LedgerMatchesBucket)
	if err != nil {
		return err
	}

	return putRecord(matches, match.ID, match)
}

func loadResult(tx *bbolt.Tx, resultID string) (*MatchResult, error) {
	results, err := bucket(tx, common.LedgerResultsBucket)
	if err != nil {
		return nil, err
	}

	var result MatchResult

	found, err := getRecord(results, resultID, &result)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrResultNotFound
	}

	return &result, nil
}

func storeResult(tx *bbolt.Tx, result *MatchResult) error {
	results, err := bucket(tx, common.LedgerResultsBucket)
	if err != nil {
		return err
	}

	return putRecord(results, result.ID, result)
}

func loadSubscription(tx *bbolt.Tx, subscriptionID string) (*Subscription, error) {
	subscriptions, err := bucket(tx, common.LedgerSubscriptionsBucket)
	if err != nil {
		return nil, err
	}

	var subscription Subscription

	found, err := getRecord(subscriptions, subscriptionID, &subscription)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrSubscriptionNotFound
	}

	return &subscription, nil
}

func storeSubscription(tx *bbolt.Tx, subscription *Subscription) error {
	subscriptions, err := bucket(tx, common.LedgerSubscriptionsBucket)
	if err != nil {
		return err
	}

	return putRecord(subscriptions, subscription.ID, subscription)
}

func loadRegistry(tx *bbolt.Tx) (*Registry, error) {
	b, err := bucket(tx, common.LedgerRegistryBucket)
	if err != nil {
		return nil, err
	}

	var registry Registry

	_, err = getRecord(b, registryKey, &registry)
	if err != nil {
		return nil, err
	}

	return &registry, nil
}

func storeRegistry(tx *bbolt.Tx, registry *Registry) error {
	b, err := bucket(tx, common.LedgerRegistryBucket)
	if err != nil {
		return err
	}

	return putRecord(b, registryKey, registry)
}

func loadProviderStats(tx *bbolt.Tx, address string) (*ProviderStats, error) {
	providers, err := bucket(tx, common.LedgerProvidersBucket)
	if err != nil {
		return nil, err
	}

	stats := ProviderStats{Address: address}

	_, err = getRecord(providers, address, &stats)
	if err != nil {
		return nil, err
	}

	stats.Address = address

	return &stats, nil
}

func storeProviderStats(tx *bbolt.Tx, stats *ProviderStats) error {
	providers, err := bucket(tx, common.LedgerProvidersBucket)
	if err != nil {
		return err
	}

	return putRecord(providers, stats.Address, stats)
}

func loadConsumerStats(tx *bbolt.Tx, address string) (*ConsumerStats, error) {
	consumers, err := bucket(tx, common.LedgerConsumersBucket)
	if err != nil {
		return nil, err
	}

	stats := ConsumerStats{Address: address}

	_, err = getRecord(consumers, address, &stats)
	if err != nil {
		return nil, err
	}

	stats.Address = address

	return &stats, nil
}

func storeConsumerStats(tx *bbolt.Tx, stats *ConsumerStats) error {
	consumers, err := bucket(tx, common.LedgerConsumersBucket)
	if err != nil {
		return err
	}

	return putRecord(consumers, stats.Address, stats)
}
