package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// SplitPayment cuts a payment into provider/protocol/validator shares by
// truncating integer division. Up to two units of remainder are destroyed.
func SplitPayment(payment uint64) (uint64, uint64, uint64) {
	providerShare := payment * ProviderSharePct / 100
	protocolShare := payment * ProtocolSharePct / 100
	validatorShare := payment * ValidatorSharePct / 100

	return providerShare, protocolShare, validatorShare
}

// QueryPaid charges the caller for one query against a verified result and
// distributes the payment. Everything below runs in one transaction: a
// failed debit or a failed precondition leaves no counter touched.
func (s *LedgerService) QueryPaid(
	caller string,
	resultID string,
	queryKind string,
	payment uint64) (*MatchResult, error) {
	var result *MatchResult

	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		var err error

		result, err = loadResult(tx, resultID)
		if err != nil {
			return err
		}

		if !result.Verified {
			return ErrNotVerified
		}

		if payment < s.QueryPrice {
			return ErrInsufficientPayment
		}

		err = debit(tx, caller, payment)
		if err != nil {
			return err
		}

		providerShare, protocolShare, validatorShare := SplitPayment(payment)

		err = credit(tx, result.Submitter, providerShare)
		if err != nil {
			return err
		}

		registry, err := loadRegistry(tx)
		if err != nil {
			return err
		}

		registry.ProtocolBalance += protocolShare
		registry.ValidatorPool += validatorShare
		registry.TotalQueries++

		err = storeRegistry(tx, registry)
		if err != nil {
			return err
		}

		result.QueryCount++
		result.RevenueEarned += providerShare

		err = storeResult(tx, result)
		if err != nil {
			return err
		}

		provider, err := loadProviderStats(tx, result.Submitter)
		if err != nil {
			return err
		}

		provider.QueriesServed++
		provider.RevenueEarned += providerShare

		err = storeProviderStats(tx, provider)
		if err != nil {
			return err
		}

		consumer, err := loadConsumerStats(tx, caller)
		if err != nil {
			return err
		}

		consumer.QueriesPaid++
		consumer.TotalSpent += payment

		return storeConsumerStats(tx, consumer)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventQueryServed, MatchID: result.MatchID, Actor: caller, QueryKind: queryKind})

	return result, nil
}

// QuerySubscribed consumes one query from a subscription. Subscription
// queries earn the provider nothing; only the usage counters move.
func (s *LedgerService) QuerySubscribed(
	caller string,
	resultID string,
	subscriptionID string,
	queryKind string) (*MatchResult, error) {
	var result *MatchResult

	err := s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		subscription, err := loadSubscription(tx, subscriptionID)
		if err != nil {
			return err
		}

		if caller != subscription.Subscriber {
			return ErrNotOwner
		}

		if subscription.QueriesRemaining == 0 {
			return ErrSubscriptionExhausted
		}

		if s.Clock.Now().Unix() > subscription.ValidUntil {
			return ErrSubscriptionExpired
		}

		result, err = loadResult(tx, resultID)
		if err != nil {
			return err
		}

		if !result.Verified {
			return ErrNotVerified
		}

		if subscription.QueriesRemaining != UnlimitedQueries {
			subscription.QueriesRemaining--
		}

		subscription.TotalQueriesUsed++

		err = storeSubscription(tx, subscription)
		if err != nil {
			return err
		}

		result.QueryCount++

		err = storeResult(tx, result)
		if err != nil {
			return err
		}

		registry, err := loadRegistry(tx)
		if err != nil {
			return err
		}

		registry.TotalQueries++

		err = storeRegistry(tx, registry)
		if err != nil {
			return err
		}

		consumer, err := loadConsumerStats(tx, caller)
		if err != nil {
			return err
		}

		consumer.QueriesSubscribed++

		return storeConsumerStats(tx, consumer)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventQueryServed, MatchID: result.MatchID, Actor: caller, QueryKind: queryKind})

	return result, nil
}

// Subscribe sells a tier subscription. The payment goes to the protocol
// treasury in full.
func (s *LedgerService) Subscribe(caller string, tier Tier, payment uint64) (*Subscription, error) {
	plan, err := PlanFor(tier)
	if err != nil {
		return nil, err
	}

	subscriptionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription ID: %w", err)
	}

	subscription := &Subscription{
		ID:         subscriptionID.String(),
		Subscriber: caller,
		Tier:       tier,

		QueriesRemaining: plan.Quota,
		ValidUntil:       s.Clock.Now().Add(plan.Validity).Unix(),
	}

	err = s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		if payment < plan.Price {
			return ErrInsufficientPayment
		}

		err := debit(tx, caller, payment)
		if err != nil {
			return err
		}

		registry, err := loadRegistry(tx)
		if err != nil {
			return err
		}

		registry.ProtocolBalance += payment

		err = storeRegistry(tx, registry)
		if err != nil {
			return err
		}

		return storeSubscription(tx, subscription)
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Kind: EventSubscribed, Actor: caller})

	return subscription, nil
}
