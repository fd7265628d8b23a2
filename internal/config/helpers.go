package config

import (
	"marketboard-api/pkg/market"
)

// MustLoadMarket loads the default market configuration and panics on error.
// It isolates the market section so daemons can run without the full app
// config.
func MustLoadMarket() *market.Config {
	return market.MustLoad()
}
