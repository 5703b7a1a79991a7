package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samber/do/v2"
	"github.com/vreid/shinpan/internal/pkg/common"
	"github.com/vreid/shinpan/internal/pkg/feed"
	"github.com/vreid/shinpan/internal/pkg/ledger"
	"github.com/vreid/shinpan/internal/pkg/oracle"
	"github.com/vreid/shinpan/internal/pkg/vault"

	"github.com/urfave/cli/v3"
)

type ShinpanService struct {
	EchoService *common.EchoService `do:""`

	LedgerService *ledger.LedgerService `do:""`
	OracleService *oracle.OracleService `do:""`
	VaultService  *vault.VaultService   `do:""`
	FeedService   *feed.FeedService     `do:""`
}

func runServer(_ context.Context, cmd *cli.Command) error {
	i := do.New()

	do.ProvideNamedValue(i, "port", cmd.Int("port"))
	do.ProvideNamedValue(i, "data-dir", cmd.String("data-dir"))

	do.ProvideNamedValue(i, "query-price", cmd.Uint64("query-price"))
	do.ProvideNamedValue(i, "verifiers", cmd.StringSlice("verifier"))
	do.ProvideNamedValue(i, "feed-size", cmd.Int("feed-size"))

	eventChan := make(chan ledger.Event, 1000)
	var eventSource <-chan ledger.Event = eventChan
	var eventSink chan<- ledger.Event = eventChan

	do.ProvideNamedValue(i, "event-source", eventSource)
	do.ProvideNamedValue(i, "event-sink", eventSink)

	do.Provide(i, common.NewLogger)
	do.Provide(i, common.NewClock)
	do.Provide(i, common.NewDatabaseService)
	do.Provide(i, common.NewEchoService)

	do.Provide(i, ledger.NewLedgerService)
	do.Provide(i, oracle.NewOracleService)
	do.Provide(i, vault.NewVaultService)
	do.Provide(i, feed.NewFeedService)

	do.Provide(i, do.InvokeStruct[ShinpanService])

	shinpanService, err := do.Invoke[ShinpanService](i)
	if err != nil {
		return fmt.Errorf("failed to create shinpan service: %w", err)
	}

	shinpanService.FeedService.Start()

	//nolint:wrapcheck
	return shinpanService.EchoService.Start()
}

func main() {
	//nolint:exhaustruct
	cmd := &cli.Command{
		Name: "shinpan",
		Commands: []*cli.Command{
			{
				Name: "server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Value:   3000, //nolint:mnd
						Sources: cli.EnvVars("SHINPAN_PORT"),
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Value:   "./shinpan/data",
						Sources: cli.EnvVars("SHINPAN_DATA_DIR"),
					},
					&cli.Uint64Flag{
						Name:    "query-price",
						Value:   ledger.DefaultQueryPrice,
						Sources: cli.EnvVars("SHINPAN_QUERY_PRICE"),
					},
					&cli.StringSliceFlag{
						Name:    "verifier",
						Sources: cli.EnvVars("SHINPAN_VERIFIERS"),
					},
					&cli.IntFlag{
						Name:    "feed-size",
						Value:   256, //nolint:mnd
						Sources: cli.EnvVars("SHINPAN_FEED_SIZE"),
					},
				},
				Action: runServer,
			},
		},
		DefaultCommand: "server",
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
