package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"

	"pos-system/internal/config"
	"pos-system/internal/models"
)

func testConfig() config.LoyaltyConfig {
	return config.LoyaltyConfig{
		SilverThreshold:   decimal.NewFromInt(100),
		GoldThreshold:     decimal.NewFromInt(350),
		PlatinumThreshold: decimal.NewFromInt(850),
	}
}

func TestApply_CrossesSilverThreshold(t *testing.T) {
	c := &models.Customer{
		Phone:       "07700900123",
		TotalOrders: 12,
		TotalSpent:  decimal.NewFromInt(95),
		LoyaltyTier: models.TierBronze,
	}

	accrual := Apply(c, decimal.NewFromInt(10), testConfig())

	if !accrual.TotalSpent.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("total spent = %s, want 105", accrual.TotalSpent)
	}
	if accrual.LoyaltyTier != models.TierSilver {
		t.Fatalf("tier = %s, want Silver", accrual.LoyaltyTier)
	}
	if accrual.TotalOrders != 13 {
		t.Fatalf("total orders = %d, want 13", accrual.TotalOrders)
	}
	// Bronze multiplier applies to the order that crosses the threshold.
	if accrual.LoyaltyPoints != 10 {
		t.Fatalf("points = %d, want 10", accrual.LoyaltyPoints)
	}
}

func TestPointsFor_Multipliers(t *testing.T) {
	total := decimal.NewFromFloat(10.99)
	tests := []struct {
		tier models.LoyaltyTier
		want int64
	}{
		{models.TierBronze, 10},
		{models.TierSilver, 16},
		{models.TierGold, 21},
		{models.TierPlatinum, 32},
	}
	for _, tt := range tests {
		if got := PointsFor(total, tt.tier); got != tt.want {
			t.Errorf("PointsFor(10.99, %s) = %d, want %d", tt.tier, got, tt.want)
		}
	}
}

func TestPointsFor_NegativeTotal(t *testing.T) {
	if got := PointsFor(decimal.NewFromInt(-5), models.TierGold); got != 0 {
		t.Fatalf("negative total accrued %d points", got)
	}
}

func TestTierFor(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		spent int64
		want  models.LoyaltyTier
	}{
		{0, models.TierBronze},
		{99, models.TierBronze},
		{100, models.TierSilver},
		{349, models.TierSilver},
		{350, models.TierGold},
		{850, models.TierPlatinum},
	}
	for _, tt := range tests {
		if got := TierFor(decimal.NewFromInt(tt.spent), cfg); got != tt.want {
			t.Errorf("TierFor(%d) = %s, want %s", tt.spent, got, tt.want)
		}
	}
}
