package feed

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/vreid/shinpan/internal/pkg/common"
	"github.com/vreid/shinpan/internal/pkg/ledger"
)

// FeedService drains ledger events into a bounded ring so external
// subscribers (a betting UI, a dashboard) can poll recent activity.
type FeedService struct {
	EventSource <-chan ledger.Event

	Limit int

	mu     sync.Mutex
	events []ledger.Event
}

func NewFeedService(i do.Injector) (*FeedService, error) {
	eventSource := do.MustInvokeNamed[<-chan ledger.Event](i, "event-source")
	limit := do.MustInvokeNamed[int](i, "feed-size")

	result := &FeedService{
		EventSource: eventSource,

		Limit: limit,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		apiGroup.GET("/feed", result.GetFeed)
	})

	return result, nil
}

func (s *FeedService) Start() {
	go s.processEvents()
}

func (s *FeedService) Append(event ledger.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)

	if s.Limit > 0 && len(s.events) > s.Limit {
		s.events = s.events[len(s.events)-s.Limit:]
	}
}

// Recent returns the retained events, newest first.
func (s *FeedService) Recent() []ledger.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]ledger.Event, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		result = append(result, s.events[i])
	}

	return result
}

func (s *FeedService) GetFeed(c echo.Context) error {
	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, s.Recent(), "  ")
}

func (s *FeedService) processEvents() {
	for event := range s.EventSource {
		s.Append(event)
	}
}
