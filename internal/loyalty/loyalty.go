// Package loyalty implements the points accrual applied after an order is
// saved for a matching customer. Accrual is a side effect of persistence,
// never of pricing.
package loyalty

import (
	"github.com/shopspring/decimal"

	"pos-system/internal/config"
	"pos-system/internal/models"
)

// Accrual is the set of customer field updates produced by one saved order.
type Accrual struct {
	TotalOrders   int
	TotalSpent    decimal.Decimal
	LoyaltyPoints int64
	LoyaltyTier   models.LoyaltyTier
}

// Apply computes the updated loyalty fields for a customer after an order
// with the given total. Points use the multiplier of the tier held before
// the order; the tier is then recomputed from the new cumulative spend.
func Apply(c *models.Customer, orderTotal decimal.Decimal, cfg config.LoyaltyConfig) Accrual {
	points := PointsFor(orderTotal, c.LoyaltyTier)
	newSpent := c.TotalSpent.Add(orderTotal)

	return Accrual{
		TotalOrders:   c.TotalOrders + 1,
		TotalSpent:    newSpent,
		LoyaltyPoints: c.LoyaltyPoints + points,
		LoyaltyTier:   TierFor(newSpent, cfg),
	}
}

// PointsFor returns floor(total x tier multiplier). Negative totals accrue
// nothing.
func PointsFor(orderTotal decimal.Decimal, tier models.LoyaltyTier) int64 {
	if orderTotal.IsNegative() {
		return 0
	}
	return orderTotal.Mul(tier.Multiplier()).Floor().IntPart()
}

// TierFor maps cumulative spend onto a tier using the configured thresholds.
func TierFor(totalSpent decimal.Decimal, cfg config.LoyaltyConfig) models.LoyaltyTier {
	switch {
	case totalSpent.GreaterThanOrEqual(cfg.PlatinumThreshold):
		return models.TierPlatinum
	case totalSpent.GreaterThanOrEqual(cfg.GoldThreshold):
		return models.TierGold
	case totalSpent.GreaterThanOrEqual(cfg.SilverThreshold):
		return models.TierSilver
	default:
		return models.TierBronze
	}
}
