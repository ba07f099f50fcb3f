package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/leagueledger/league-ledger/external/espnauth"
)

func main() {
	envFile := flag.String("env-file", ".env", "env file to rewrite with the fresh cookies")
	dryRun := flag.Bool("dry-run", false, "fetch the cookies without touching the env file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall login flow timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	refresher, err := espnauth.NewRefresher(espnauth.RefresherConfig{
		Email:    os.Getenv("ESPN_EMAIL"),
		Password: os.Getenv("ESPN_PASSWORD"),
		LeagueID: os.Getenv("LEAGUE_ID"),
		EnvFile:  *envFile,
		Timeout:  *timeout,
	}, logger)
	if err != nil {
		logger.Error("configure refresher", "error", err)
		os.Exit(1)
	}

	creds, err := refresher.Refresh(context.Background())
	if err != nil {
		logger.Error("refresh credentials", "error", err)
		os.Exit(1)
	}

	logger.Info("credentials refreshed",
		"swid_len", len(creds.SWID),
		"s2_len", len(creds.S2),
		"fetched_at", creds.FetchedAt.Format(time.RFC3339),
	)

	if *dryRun {
		return
	}

	if err := refresher.WriteEnvFile(creds); err != nil {
		logger.Error("write env file", "error", err)
		os.Exit(1)
	}
	logger.Info("env file updated", "path", *envFile)
}
