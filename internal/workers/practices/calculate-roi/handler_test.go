package calculateroi

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"khetmitra-workers/internal/common/errors"
	"khetmitra-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, logger.NewTestLogger(t))
}

func TestHandler_Execute_DefaultsScenario(t *testing.T) {
	output, err := createTestHandler(t).Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, 33000.0, output.ThreeYearROI)
	assert.Equal(t, 12, output.BreakEvenMonths)
	assert.Equal(t, 80.0, output.RiskScore)
	assert.Equal(t, 20.0, output.RiskBarFill)
	assert.Equal(t, "₹16,000", output.AnnualRevenueLabel)
	assert.Equal(t, "₹33,000", output.ThreeYearROILabel)
	assert.Equal(t, "₹1,333", output.MonthlyRevenueLabel)
	assert.Equal(t, 30000.0, output.Inputs.CurrentCost)
	assert.Equal(t, 12, output.Inputs.TimelineMonths)
}

func TestHandler_Execute_OverridesDefaults(t *testing.T) {
	output, err := createTestHandler(t).Execute(context.Background(), &Input{
		YieldPerAcre:            floatPtr(0),
		Investment:              floatPtr(50000),
		ExpectedIncreasePercent: floatPtr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, output.AnnualExtraRevenue)
	assert.Equal(t, 50000, output.BreakEvenMonths)
	assert.Equal(t, 80.0, output.RiskScore)
}

func TestHandler_Execute_RejectsInvalidInputs(t *testing.T) {
	h := createTestHandler(t)
	for name, input := range map[string]*Input{
		"negative yield":     {YieldPerAcre: floatPtr(-1)},
		"NaN price":          {PricePerUnit: floatPtr(math.NaN())},
		"zero timeline":      {TimelineMonths: intPtr(0)},
		"increase above 100": {ExpectedIncreasePercent: floatPtr(120)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), input)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidROIInput))
		})
	}
}

func TestOutput_FlattensProjection(t *testing.T) {
	output, err := createTestHandler(t).Execute(context.Background(), &Input{})
	require.NoError(t, err)

	raw, err := json.Marshal(output)
	require.NoError(t, err)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	assert.Equal(t, 33000.0, vars["threeYearROI"])
	assert.Equal(t, 12.0, vars["breakEvenMonths"])
	assert.Contains(t, vars, "roiInputs")
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputValidator.ValidateJSON([]byte(`{"yieldPerAcre":20,"timelineMonths":6}`)).Valid)
	assert.False(t, inputValidator.ValidateJSON([]byte(`{"timelineMonths":0}`)).Valid)
	assert.False(t, inputValidator.ValidateJSON([]byte(`{"expectedIncreasePercent":101}`)).Valid)
	assert.False(t, inputValidator.ValidateJSON([]byte(`{"investment":-1}`)).Valid)
}
