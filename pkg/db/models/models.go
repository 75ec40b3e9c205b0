package models

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&RoomType{},
		&Rate{},
		&InventoryAdjustment{},
		&Booking{},
		&Coupon{},
		&CouponRedemption{},
		&CouponAttemptLog{},
	}
}
