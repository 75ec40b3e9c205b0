// Package dbtest opens throwaway SQLite databases and seeds booking fixtures for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/db"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
)

// Open returns an isolated in-memory database with every model migrated.
// The pool is pinned to one connection so concurrent transactions serialize
// instead of failing with SQLITE_LOCKED.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:harborstay_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// RoomType seeds a room type; mutate adjusts the defaults before insert.
func RoomType(t *testing.T, conn *gorm.DB, mutate func(*models.RoomType)) *models.RoomType {
	t.Helper()
	room := &models.RoomType{
		Name:           "Harbor Double",
		BasePrice:      decimal.NewFromInt(100),
		TotalUnits:     5,
		IncludedAdults: 2,
		MaxGuests:      3,
		ExtraAdultFee:  decimal.NewFromInt(40),
		Child6To11Fee:  decimal.NewFromInt(20),
		IsActive:       true,
	}
	if mutate != nil {
		mutate(room)
	}
	if err := conn.Create(room).Error; err != nil {
		t.Fatalf("create room type: %v", err)
	}
	return room
}

// Rate seeds a rate row with an explicit creation time.
func Rate(t *testing.T, conn *gorm.DB, roomTypeID uuid.UUID, start, end string, price string, createdAt time.Time, mutate func(*models.Rate)) *models.Rate {
	t.Helper()
	rate := &models.Rate{
		RoomTypeID: roomTypeID,
		StartDate:  start,
		EndDate:    end,
		Price:      decimal.RequireFromString(price),
		MinLOS:     1,
		CreatedAt:  createdAt.UTC(),
	}
	if mutate != nil {
		mutate(rate)
	}
	if err := conn.Create(rate).Error; err != nil {
		t.Fatalf("create rate: %v", err)
	}
	return rate
}

// PostgresDryRun returns a Postgres-dialect handle that builds statements
// without connecting. The returned func lists the query SQL built so far.
func PostgresDryRun(t *testing.T) (*gorm.DB, func() []string) {
	t.Helper()
	conn, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=harborstay dbname=harborstay sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open postgres dry run: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}

	var statements []string
	err = conn.Callback().Query().After("gorm:query").Register("dbtest:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	if err != nil {
		t.Fatalf("register capture callback: %v", err)
	}
	return conn, func() []string { return statements }
}

// Booking seeds a booking with the given status and creation time.
func Booking(t *testing.T, conn *gorm.DB, roomTypeID uuid.UUID, checkIn, checkOut string, status enums.BookingStatus, createdAt time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		RoomTypeID: roomTypeID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
		GuestEmail: "guest-" + uuid.NewString()[:8] + "@example.com",
		Adults:     2,
		Channel:    enums.SalesChannelWeb,
		TotalPrice: decimal.NewFromInt(200),
		CreatedAt:  createdAt.UTC(),
	}
	if err := conn.Create(booking).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}

// Adjustment seeds an inventory override for one day.
func Adjustment(t *testing.T, conn *gorm.DB, roomTypeID uuid.UUID, day string, units int) *models.InventoryAdjustment {
	t.Helper()
	adj := &models.InventoryAdjustment{RoomTypeID: roomTypeID, DayKey: day, TotalUnits: units}
	if err := conn.Create(adj).Error; err != nil {
		t.Fatalf("create adjustment: %v", err)
	}
	return adj
}
