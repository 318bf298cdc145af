package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Brunogomez94/siciap-cloud/config"
	"github.com/Brunogomez94/siciap-cloud/logging"
	"github.com/Brunogomez94/siciap-cloud/store"
	"github.com/Brunogomez94/siciap-cloud/syncer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	verify := flag.Bool("verify", true, "Compare row counts after syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Cloud == nil {
		fmt.Fprintln(os.Stderr, "No cloud database configured, nothing to sync")
		os.Exit(1)
	}
	logger := logging.New("sync", cfg.Service.LogLevel)

	local, err := store.Open(cfg.Postgres, cfg.Ingest.BatchSize, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to local PostgreSQL")
	}
	defer local.Close()

	cloud, err := store.Open(*cfg.Cloud, cfg.Ingest.BatchSize, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to hosted PostgreSQL")
	}
	defer cloud.Close()

	s := syncer.New(local, cloud, cfg.Cloud.Schema, logger)
	ctx := context.Background()

	// A single positional argument limits the run to one table.
	tables := syncer.Tables()
	if flag.NArg() == 1 {
		tables = []string{cfg.Postgres.Schema + "." + flag.Arg(0)}
	}

	failed := false
	for _, table := range tables {
		res, err := s.SyncTable(ctx, table)
		switch {
		case err != nil:
			fmt.Printf("[ERROR] %s: %v\n", table, err)
			failed = true
		case res.Skipped:
			fmt.Printf("[SKIP]  %s: local table empty\n", table)
		default:
			fmt.Printf("[OK]    %s: %d rows\n", table, res.Rows)
		}
	}

	if *verify {
		fmt.Println("\nVerification:")
		for _, table := range tables {
			v, err := s.Verify(ctx, table)
			if err != nil {
				fmt.Printf("[SKIP]  %s: hosted database not reachable: %v\n", table, err)
				continue
			}
			mark := "[OK]   "
			if !v.Match {
				mark = "[ERROR]"
				failed = true
			}
			fmt.Printf("%s %s: local=%d cloud=%d\n", mark, table, v.LocalCount, v.CloudCount)
		}
	}

	if failed {
		os.Exit(1)
	}
}
