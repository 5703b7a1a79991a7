package oracle

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/vreid/shinpan/internal/pkg/common"
	"github.com/vreid/shinpan/internal/pkg/ledger"
)

// CallerHeader carries the caller address, standing in for the host chain's
// implicit transaction sender. Nothing is signature-checked.
const CallerHeader = "X-Shinpan-Caller"

type OracleService struct {
	LedgerService *ledger.LedgerService
}

func NewOracleService(i do.Injector) (*OracleService, error) {
	ledgerService := do.MustInvoke[*ledger.LedgerService](i)

	result := &OracleService{
		LedgerService: ledgerService,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		oracleGroup := apiGroup.Group("/oracle")

		oracleGroup.POST("/matches", result.PostMatch)
		oracleGroup.POST("/matches/:id/lock", result.PostLock)
		oracleGroup.POST("/matches/:id/result", result.PostResult)
		oracleGroup.POST("/matches/:id/verify", result.PostVerify)
		oracleGroup.GET("/matches/:id", result.GetMatch)

		oracleGroup.POST("/queries/paid", result.PostQueryPaid)
		oracleGroup.POST("/queries/subscribed", result.PostQuerySubscribed)

		oracleGroup.POST("/subscriptions", result.PostSubscription)
		oracleGroup.GET("/subscriptions/:id", result.GetSubscription)

		oracleGroup.GET("/providers/:addr", result.GetProvider)
		oracleGroup.GET("/consumers/:addr", result.GetConsumer)
		oracleGroup.GET("/registry", result.GetRegistry)

		bankGroup := apiGroup.Group("/bank")

		bankGroup.POST("/deposit", result.PostDeposit)
		bankGroup.GET("/:addr", result.GetBalance)
	})

	return result, nil
}

func caller(c echo.Context) (string, error) {
	address := c.Request().Header.Get(CallerHeader)
	if address == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing caller header")
	}

	return address, nil
}

//nolint:cyclop
func abortStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrMatchNotFound),
		errors.Is(err, ledger.ErrResultNotFound),
		errors.Is(err, ledger.ErrSubscriptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrNotAuthorized),
		errors.Is(err, ledger.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientPayment),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrSubscriptionExhausted),
		errors.Is(err, ledger.ErrSubscriptionExpired):
		return http.StatusGone
	case errors.Is(err, ledger.ErrUnknownTier):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrDuplicateMatch),
		errors.Is(err, ledger.ErrNotStartable),
		errors.Is(err, ledger.ErrAlreadyLocked),
		errors.Is(err, ledger.ErrNotLocked),
		errors.Is(err, ledger.ErrAlreadyCompleted),
		errors.Is(err, ledger.ErrNotVerified),
		errors.Is(err, ledger.ErrAlreadyVerified),
		errors.Is(err, ledger.ErrResultMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abort(err error) error {
	return echo.NewHTTPError(abortStatus(err), err.Error())
}

func (s *OracleService) PostMatch(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	var request ScheduleRequest

	err = c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	match, err := s.LedgerService.Schedule(
		address,
		request.MatchID,
		request.GameID,
		request.Opponent,
		time.Unix(request.ScheduledAt, 0))
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusCreated, match)
}

func (s *OracleService) PostLock(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	match, err := s.LedgerService.Lock(address, c.Param("id"))
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, match)
}

func (s *OracleService) PostResult(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	var request ResultRequest

	err = c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.LedgerService.SubmitResult(address, c.Param("id"), ledger.ResultSubmission{
		Winner:    request.Winner,
		StatsA:    request.StatsA,
		StatsB:    request.StatsB,
		BlobID:    request.BlobID,
		ProofHash: request.ProofHash,
	})
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusCreated, result)
}

func (s *OracleService) PostVerify(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	var request VerifyRequest

	err = c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.LedgerService.Verify(address, c.Param("id"), request.ResultID)
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, result)
}

func (s *OracleService) GetMatch(c echo.Context) error {
	report, err := s.LedgerService.MatchReport(c.Param("id"))
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, report)
}

func (s *OracleService) PostQueryPaid(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	var request QueryPaidRequest

	err = c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.LedgerService.QueryPaid(address, request.ResultID, request.Kind, request.Payment)
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, result)
}

func (s *OracleService) PostQuerySubscribed(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	var request QuerySubscribedRequest

	err = c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.LedgerService.QuerySubscribed(
		address,
		request.ResultID,
		request.SubscriptionID,
		request.Kind)
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, result)
}

func (s *OracleService) PostSubscription(c echo.Context) error {
	address, err := caller(c)
	if err != nil {
		return err
	}

	var request SubscribeRequest

	err = c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	subscription, err := s.LedgerService.Subscribe(address, ledger.Tier(request.Tier), request.Payment)
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusCreated, subscription)
}

func (s *OracleService) GetSubscription(c echo.Context) error {
	subscription, err := s.LedgerService.SubscriptionByID(c.Param("id"))
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, subscription)
}

func (s *OracleService) GetProvider(c echo.Context) error {
	report, err := s.LedgerService.ProviderReport(c.Param("addr"))
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, report)
}

func (s *OracleService) GetConsumer(c echo.Context) error {
	report, err := s.LedgerService.ConsumerReport(c.Param("addr"))
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, report)
}

func (s *OracleService) GetRegistry(c echo.Context) error {
	registry, err := s.LedgerService.RegistrySnapshot()
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, registry)
}

func (s *OracleService) PostDeposit(c echo.Context) error {
	var request DepositRequest

	err := c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	balance, err := s.LedgerService.Deposit(request.Address, request.Amount)
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, BalanceResponse{Address: request.Address, Balance: balance})
}

func (s *OracleService) GetBalance(c echo.Context) error {
	address := c.Param("addr")

	balance, err := s.LedgerService.Balance(address)
	if err != nil {
		return abort(err)
	}

	//nolint:wrapcheck
	return c.JSON(http.StatusOK, BalanceResponse{Address: address, Balance: balance})
}
