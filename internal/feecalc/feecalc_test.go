package feecalc_test

import (
	"testing"

	"github.com/condocore/condo-manager/internal/domain"
	"github.com/condocore/condo-manager/internal/feecalc"
	"github.com/stretchr/testify/require"
)

func TestCalculate_DefaultRates(t *testing.T) {
	require.Equal(t, "45.00", feecalc.Calculate(100, domain.CondoResidential, feecalc.DefaultRates))
	require.Equal(t, "60.00", feecalc.Calculate(100, domain.CondoCommercial, feecalc.DefaultRates))
	require.Equal(t, "15.00", feecalc.Calculate(100, domain.CondoParking, feecalc.DefaultRates))
	require.Equal(t, "25.00", feecalc.Calculate(100, domain.CondoStorage, feecalc.DefaultRates))
}

func TestCalculate_RoundsToTwoDecimals(t *testing.T) {
	require.Equal(t, "33.34", feecalc.Calculate(74.09, domain.CondoResidential, feecalc.DefaultRates))
}

func TestWithDefaults_PartialOverridePreservesOthers(t *testing.T) {
	rates := feecalc.WithDefaults(feecalc.Rates{domain.CondoResidential: 1.0})
	require.Equal(t, "100.00", feecalc.Calculate(100, domain.CondoResidential, rates))
	require.Equal(t, "60.00", feecalc.Calculate(100, domain.CondoCommercial, rates))
}
