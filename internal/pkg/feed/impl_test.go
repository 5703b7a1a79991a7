package feed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vreid/shinpan/internal/pkg/feed"
	"github.com/vreid/shinpan/internal/pkg/ledger"
)

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()

	svc := &feed.FeedService{Limit: 10}

	svc.Append(ledger.Event{Kind: ledger.EventMatchScheduled, MatchID: "m1"})
	svc.Append(ledger.Event{Kind: ledger.EventMatchLocked, MatchID: "m1"})
	svc.Append(ledger.Event{Kind: ledger.EventResultSubmitted, MatchID: "m1"})

	recent := svc.Recent()

	assert.Len(t, recent, 3)
	assert.Equal(t, ledger.EventResultSubmitted, recent[0].Kind)
	assert.Equal(t, ledger.EventMatchScheduled, recent[2].Kind)
}

func TestAppendDropsOldest(t *testing.T) {
	t.Parallel()

	svc := &feed.FeedService{Limit: 2}

	svc.Append(ledger.Event{MatchID: "m1"})
	svc.Append(ledger.Event{MatchID: "m2"})
	svc.Append(ledger.Event{MatchID: "m3"})

	recent := svc.Recent()

	assert.Len(t, recent, 2)
	assert.Equal(t, "m3", recent[0].MatchID)
	assert.Equal(t, "m2", recent[1].MatchID)
}

func TestStartDrainsSource(t *testing.T) {
	t.Parallel()

	events := make(chan ledger.Event, 2)

	svc := &feed.FeedService{
		EventSource: events,

		Limit: 10,
	}

	events <- ledger.Event{MatchID: "m1"}
	events <- ledger.Event{MatchID: "m2"}
	close(events)

	svc.Start()

	assert.Eventually(t, func() bool {
		return len(svc.Recent()) == 2
	}, time.Second, 10*time.Millisecond)
}
