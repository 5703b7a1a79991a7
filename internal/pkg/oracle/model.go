package oracle

type ScheduleRequest struct {
	MatchID     string `json:"match_id"`
	GameID      string `json:"game_id"`
	Opponent    string `json:"opponent"`
	ScheduledAt int64  `json:"scheduled_at"`
}

type ResultRequest struct {
	Winner    string `json:"winner"`
	StatsA    int64  `json:"stats_a"`
	StatsB    int64  `json:"stats_b"`
	BlobID    string `json:"blob_id"`
	ProofHash string `json:"proof_hash"`
}

type VerifyRequest struct {
	ResultID string `json:"result_id"`
}

type QueryPaidRequest struct {
	ResultID string `json:"result_id"`
	Kind     string `json:"kind"`
	Payment  uint64 `json:"payment"`
}

type QuerySubscribedRequest struct {
	ResultID       string `json:"result_id"`
	SubscriptionID string `json:"subscription_id"`
	Kind           string `json:"kind"`
}

type SubscribeRequest struct {
	Tier    string `json:"tier"`
	Payment uint64 `json:"payment"`
}

type DepositRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}
