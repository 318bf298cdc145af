package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Brunogomez94/siciap-cloud/config"
	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/logging"
	"github.com/Brunogomez94/siciap-cloud/pipeline"
	"github.com/Brunogomez94/siciap-cloud/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	domainName, filePath := flag.Arg(0), flag.Arg(1)

	spec, ok := domain.ByName(domainName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown domain %q, expected one of: %s\n",
			domainName, strings.Join(domain.Names(), ", "))
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New("ingest", cfg.Service.LogLevel)

	data, err := os.ReadFile(filePath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", filePath).Msg("Failed to read input file")
	}

	st, err := store.Open(cfg.Postgres, cfg.Ingest.BatchSize, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer st.Close()

	proc := pipeline.New(spec, st, logger)
	res, err := proc.Process(context.Background(), data, filepath.Base(filePath))
	if err != nil {
		logger.Error().Err(err).Msg("Ingestion failed")
		if errors.Is(err, pipeline.ErrEmptyInput) {
			os.Exit(3)
		}
		os.Exit(1)
	}

	fmt.Printf("Loaded %d rows into %s (%d read, %d duplicates removed)\n",
		res.RowsInserted, res.Table, res.RowsRead, res.DuplicatesRemoved)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-config path] <domain> <file>\n\nDomains: %s\n",
		os.Args[0], strings.Join(domain.Names(), ", "))
	flag.PrintDefaults()
}
