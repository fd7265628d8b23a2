package config

import (
	"os"
	"path/filepath"
	"testing"

	_ "marketboard-api/pkg/market/exchanges/binance"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func Test_Load_hydratesMarketSection(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "market.yaml", `
default: binance
providers:
  binance:
    type: binance
    timeout: ${MB_TIMEOUT}
    max_retries: 2
`)
	appPath := writeFile(t, dir, "marketboard.yaml", `
Name: marketboard
Host: 0.0.0.0
Port: 8888
Env: dev
TTL:
  Short: 5
Board:
  Symbols: [btcusdt, ETHUSDT]
  BarInterval: 1m
  Period: 5m
Market:
  File: market.yaml
`)

	t.Setenv("MB_TIMEOUT", "7s")
	t.Setenv("NO_DOTENV", "1")

	cfg, err := Load(appPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("Env got %q", cfg.Env)
	}
	// Symbols are normalised to upper case.
	if cfg.Board.Symbols[0] != "BTCUSDT" || cfg.Board.Symbols[1] != "ETHUSDT" {
		t.Fatalf("symbols not normalised: %v", cfg.Board.Symbols)
	}
	if cfg.Board.RefreshSeconds != 60 {
		t.Fatalf("refreshSeconds default got %d", cfg.Board.RefreshSeconds)
	}
	if cfg.Market.Value == nil {
		t.Fatalf("market section not hydrated")
	}
	p := cfg.Market.Value.Providers["binance"]
	if p == nil {
		t.Fatalf("binance provider missing")
	}
	if p.Timeout.String() != "7s" {
		t.Fatalf("timeout not expanded, got %s", p.Timeout)
	}
	if cfg.BaseDir() != dir {
		t.Fatalf("BaseDir got %q want %q", cfg.BaseDir(), dir)
	}
}

func Test_Load_rejectsBadEnv(t *testing.T) {
	dir := t.TempDir()
	appPath := writeFile(t, dir, "marketboard.yaml", `
Name: marketboard
Host: 0.0.0.0
Port: 8888
Env: staging
`)
	t.Setenv("NO_DOTENV", "1")
	if _, err := Load(appPath); err == nil {
		t.Fatalf("expected error for env=staging")
	}
}

func Test_Load_rejectsBadBarInterval(t *testing.T) {
	dir := t.TempDir()
	appPath := writeFile(t, dir, "marketboard.yaml", `
Name: marketboard
Host: 0.0.0.0
Port: 8888
Board:
  BarInterval: 90x
`)
	t.Setenv("NO_DOTENV", "1")
	if _, err := Load(appPath); err == nil {
		t.Fatalf("expected error for barInterval=90x")
	}
}

func Test_Load_rejectsEmptySymbol(t *testing.T) {
	dir := t.TempDir()
	appPath := writeFile(t, dir, "marketboard.yaml", `
Name: marketboard
Host: 0.0.0.0
Port: 8888
Board:
  Symbols: ["BTCUSDT", "  "]
`)
	t.Setenv("NO_DOTENV", "1")
	if _, err := Load(appPath); err == nil {
		t.Fatalf("expected error for blank symbol")
	}
}
