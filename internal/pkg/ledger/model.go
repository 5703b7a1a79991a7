package ledger

import (
	"math"
	"time"
)

type MatchState string

const (
	StateScheduled MatchState = "scheduled"
	StateCompleted MatchState = "completed"
	StateVerified  MatchState = "verified"

	// StateDisputed is reserved for a dispute flow; nothing transitions
	// into it yet.
	StateDisputed MatchState = "disputed"
)

// DrawWinner marks a result without a winner.
const DrawWinner = ""

type ScheduledMatch struct {
	ID      string `json:"id"`
	GameID  string `json:"game_id"`
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`

	ScheduledAt int64 `json:"scheduled_at"`

	Locked bool       `json:"locked"`
	State  MatchState `json:"state"`
}

type MatchResult struct {
	ID      string `json:"id"`
	MatchID string `json:"match_id"`

	Submitter string `json:"submitter"`
	Winner    string `json:"winner"`

	StatsA int64 `json:"stats_a"`
	StatsB int64 `json:"stats_b"`

	BlobID    string `json:"blob_id"`
	ProofHash string `json:"proof_hash"`

	Verified bool   `json:"verified"`
	Verifier string `json:"verifier"`

	QueryCount    uint64 `json:"query_count"`
	RevenueEarned uint64 `json:"revenue_earned"`
}

type Tier string

const (
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// UnlimitedQueries is the quota sentinel for tiers without a query cap.
const UnlimitedQueries = math.MaxUint64

type TierPlan struct {
	Price    uint64
	Quota    uint64
	Validity time.Duration
}

//nolint:mnd
var tierPlans = map[Tier]TierPlan{
	TierBasic:      {Price: 5_000_000_000, Quota: 200, Validity: 30 * 24 * time.Hour},
	TierPro:        {Price: 20_000_000_000, Quota: 1000, Validity: 30 * 24 * time.Hour},
	TierEnterprise: {Price: 100_000_000_000, Quota: UnlimitedQueries, Validity: 30 * 24 * time.Hour},
}

// PlanFor resolves a tier to its price/quota/validity table entry.
func PlanFor(tier Tier) (TierPlan, error) {
	plan, ok := tierPlans[tier]
	if !ok {
		return TierPlan{}, ErrUnknownTier
	}

	return plan, nil
}

type Subscription struct {
	ID         string `json:"id"`
	Subscriber string `json:"subscriber"`
	Tier       Tier   `json:"tier"`

	QueriesRemaining uint64 `json:"queries_remaining"`
	ValidUntil       int64  `json:"valid_until"`
	TotalQueriesUsed uint64 `json:"total_queries_used"`
}

// Registry is the process-wide singleton every operation touches: scheduling
// and query totals plus the two pooled balances.
type Registry struct {
	MatchesScheduled uint64 `json:"matches_scheduled"`
	MatchesCompleted uint64 `json:"matches_completed"`
	TotalQueries     uint64 `json:"total_queries"`

	ProtocolBalance uint64 `json:"protocol_balance"`
	ValidatorPool   uint64 `json:"validator_pool"`
}

type ProviderStats struct {
	Address string `json:"address"`

	MatchesSubmitted uint64 `json:"matches_submitted"`
	Wins             uint64 `json:"wins"`
	Losses           uint64 `json:"losses"`
	Draws            uint64 `json:"draws"`

	QueriesServed uint64 `json:"queries_served"`
	RevenueEarned uint64 `json:"revenue_earned"`
}

// WinRate is wins per hundred submitted matches, truncating. Zero when no
// matches have been submitted.
func (p ProviderStats) WinRate() uint64 {
	if p.MatchesSubmitted == 0 {
		return 0
	}

	return p.Wins * 100 / p.MatchesSubmitted
}

// AvgRevenue is recomputed on every read, never cached.
func (p ProviderStats) AvgRevenue() uint64 {
	if p.MatchesSubmitted == 0 {
		return 0
	}

	return p.RevenueEarned / p.MatchesSubmitted
}

type ConsumerStats struct {
	Address string `json:"address"`

	QueriesPaid       uint64 `json:"queries_paid"`
	QueriesSubscribed uint64 `json:"queries_subscribed"`
	TotalSpent        uint64 `json:"total_spent"`
}

type Event struct {
	Kind      string `json:"kind"`
	MatchID   string `json:"match_id,omitempty"`
	Actor     string `json:"actor,omitempty"`
	QueryKind string `json:"query_kind,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const (
	EventMatchScheduled  = "match_scheduled"
	EventMatchLocked     = "match_locked"
	EventResultSubmitted = "result_submitted"
	EventResultVerified  = "result_verified"
	EventQueryServed     = "query_served"
	EventSubscribed      = "subscribed"
)
