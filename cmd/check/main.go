package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"lighter-relay/internal/config"
	"lighter-relay/internal/lighter/rest"
	"lighter-relay/internal/logging"
	"lighter-relay/internal/market"
	"lighter-relay/internal/relay"

	"github.com/joho/godotenv"
)

const checkTimeout = 15 * time.Second

// check is a preflight tool: it validates credentials, resolves a symbol
// against the venue's listing endpoints and initializes the signing
// client (which fetches a nonce). No order is placed.
func main() {
	configPath := flag.String("config", "", "optional config path for REST settings")
	symbol := flag.String("symbol", "", "symbol to resolve (optional)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	log := logging.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	creds := config.LoadCredentials(cfg.REST.BaseURL)
	fmt.Printf("base url: %s\n", creds.BaseURL)
	if missing := creds.Validate(); len(missing) > 0 {
		fmt.Printf("missing config: %s\n", strings.Join(missing, ", "))
		os.Exit(1)
	}
	fmt.Println("credentials: ok")

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	restClient := rest.New(creds.BaseURL, cfg.REST.Timeout, log)

	if *symbol != "" {
		resolver := market.NewResolver(restClient, log)
		entry, err := resolver.Resolve(ctx, *symbol)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("market %s: index %d, size decimals %d\n", market.NormalizeSymbol(*symbol), entry.Index, entry.SizeDecimals)
	}

	manager := relay.NewManager(restClient, *creds, nil, log)
	if _, _, err := manager.Clients(ctx); err != nil {
		fatal(err)
	}
	fmt.Println("signing client: ok")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
	os.Exit(1)
}
