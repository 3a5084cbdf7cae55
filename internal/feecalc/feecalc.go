// Package feecalc computes a unit's estimated monthly condo fee from its
// area and condo type. It is pure and stateless: callers supply whatever
// rates apply (typically read from the system_config table by the caller),
// and fall back to DefaultRates when none are configured.
package feecalc

import (
	"fmt"
	"math"

	"github.com/condocore/condo-manager/internal/domain"
)

// Rates maps a CondoType to its fee-per-square-unit multiplier.
type Rates map[domain.CondoType]float64

// DefaultRates are used when no system_config override exists.
var DefaultRates = Rates{
	domain.CondoResidential: 0.45,
	domain.CondoCommercial:  0.60,
	domain.CondoParking:     0.15,
	domain.CondoStorage:     0.25,
}

// Calculate returns the monthly fee for a unit of the given area and type,
// rounded to 2 decimal places, formatted as a plain decimal string — the
// repository layer stores it opaquely and never parses it back.
func Calculate(area float64, condoType domain.CondoType, rates Rates) string {
	rate, ok := rates[condoType]
	if !ok {
		rate = DefaultRates[condoType]
	}
	fee := math.Round(area*rate*100) / 100
	return fmt.Sprintf("%.2f", fee)
}

// WithDefaults overlays override on top of DefaultRates, so a partially
// configured system_config row doesn't blank out the other condo types.
func WithDefaults(override Rates) Rates {
	merged := make(Rates, len(DefaultRates))
	for k, v := range DefaultRates {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
