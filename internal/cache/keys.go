package cache

import (
	"fmt"
	"strings"
	"time"

	"marketboard-api/internal/config"
)

// Namespace is the Redis key prefix for the marketboard application.
const Namespace = "marketboard"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

// Scaled applies a multiplier to a TTL class, useful for half/double TTL variants.
func (t TTLSet) Scaled(class TTLClass, factor float64) time.Duration {
	base := t.Duration(class)
	if base <= 0 || factor <= 0 {
		return base
	}
	return time.Duration(float64(base) * factor)
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Board Keys -------------------------------------------------------------

// BoardKey holds the full rendered board payload for a symbol.
func BoardKey(symbol string) string {
	return formatKey("board", strings.ToUpper(symbol))
}

// CandlesKey holds the candle window for a symbol at a given bar interval.
func CandlesKey(symbol, interval string) string {
	return formatKey("candles", strings.ToUpper(symbol), interval)
}

// AnalyticsKey holds the resampled analytics bundle for a symbol at a period.
func AnalyticsKey(symbol, period string) string {
	return formatKey("analytics", strings.ToUpper(symbol), period)
}

// SymbolsKey holds the list of tracked symbols.
func SymbolsKey() string {
	return formatKey("symbols")
}

// RefreshLockKey is a short-lived lock guarding concurrent refreshes of a symbol.
func RefreshLockKey(symbol string) string {
	return formatKey("lock", "refresh", strings.ToUpper(symbol))
}

// --- TTL Helpers ------------------------------------------------------------

// BoardTTL returns the TTL for rendered board payloads. Boards are replaced
// wholesale on every refresh, so a short TTL keeps stale fallbacks from
// lingering after the poller dies.
func BoardTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// CandlesTTL returns the TTL for candle windows.
func CandlesTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// AnalyticsTTL returns the TTL for analytics bundles.
func AnalyticsTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium)
}

// SymbolsTTL returns the TTL for the tracked symbol list.
func SymbolsTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// RefreshLockTTL returns the TTL for refresh locks.
func RefreshLockTTL(ttl TTLSet) time.Duration {
	return ttl.Scaled(TTLShort, 0.5) // target ~5s when short=10s
}

// FormatCacheKey is exported for dynamic key construction when patterns
// are not covered by helpers.
func FormatCacheKey(parts ...string) string {
	return formatKey(parts...)
}

// BuildKeyWithSuffix appends an arbitrary suffix to an existing key.
func BuildKeyWithSuffix(baseKey, suffix string) string {
	if strings.TrimSpace(suffix) == "" {
		return baseKey
	}
	return fmt.Sprintf("%s:%s", baseKey, strings.TrimSpace(suffix))
}
