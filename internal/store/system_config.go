package store

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/feecalc"
)

var feeRateKeys = map[string]domain.CondoType{
	"fee_rate_residential": domain.CondoResidential,
	"fee_rate_commercial":  domain.CondoCommercial,
	"fee_rate_parking":     domain.CondoParking,
	"fee_rate_storage":     domain.CondoStorage,
}

// LoadFeeRates reads the fee_rate_* rows from system_config, falling back to
// feecalc.DefaultRates for any condo type the table doesn't configure.
func LoadFeeRates(ctx context.Context, db *sql.DB) (feecalc.Rates, error) {
	rows, err := db.QueryContext(ctx, `SELECT config_key, config_value FROM system_config WHERE config_key LIKE 'fee_rate_%'`)
	if err != nil {
		return feecalc.DefaultRates, err
	}
	defer rows.Close()

	override := feecalc.Rates{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return feecalc.DefaultRates, err
		}
		condoType, ok := feeRateKeys[key]
		if !ok {
			continue
		}
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		override[condoType] = rate
	}
	return feecalc.WithDefaults(override), rows.Err()
}
