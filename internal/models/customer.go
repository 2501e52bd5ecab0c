package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoyaltyTier represents a customer's loyalty level
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "Bronze"
	TierSilver   LoyaltyTier = "Silver"
	TierGold     LoyaltyTier = "Gold"
	TierPlatinum LoyaltyTier = "Platinum"
)

// Multiplier returns the points-per-currency-unit factor for the tier.
func (t LoyaltyTier) Multiplier() decimal.Decimal {
	switch t {
	case TierSilver:
		return decimal.NewFromFloat(1.5)
	case TierGold:
		return decimal.NewFromInt(2)
	case TierPlatinum:
		return decimal.NewFromInt(3)
	default:
		return decimal.NewFromInt(1)
	}
}

// Customer is a loyalty-tracked customer profile. The loyalty fields are
// updated in place on every saved order that matches the phone number.
type Customer struct {
	ID            int             `json:"id,omitempty" db:"id"`
	Name          string          `json:"name" db:"name"`
	Phone         string          `json:"phone" db:"phone"`
	Email         string          `json:"email,omitempty" db:"email"`
	TotalOrders   int             `json:"total_orders" db:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent" db:"total_spent"`
	LoyaltyPoints int64           `json:"loyalty_points" db:"loyalty_points"`
	LoyaltyTier   LoyaltyTier     `json:"loyalty_tier" db:"loyalty_tier"`
	CreatedAt     time.Time       `json:"created_at,omitempty" db:"created_at"`
}
