package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborstay/booking-backend/pkg/db/dbtest"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
)

var fixedNow = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func TestActiveOverlappingHonorsHalfOpenRangeAndTTL(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), 30*time.Minute, func() time.Time { return fixedNow })
	require.NoError(t, err)

	room := dbtest.RoomType(t, conn, nil)
	other := dbtest.RoomType(t, conn, nil)

	// overlapping and active
	dbtest.Booking(t, conn, room.ID, "2026-07-09", "2026-07-11", enums.BookingStatusConfirmed, fixedNow.Add(-48*time.Hour))
	dbtest.Booking(t, conn, room.ID, "2026-07-11", "2026-07-12", enums.BookingStatusPending, fixedNow.Add(-5*time.Minute))
	// departs on arrival day: no overlap
	dbtest.Booking(t, conn, room.ID, "2026-07-08", "2026-07-10", enums.BookingStatusConfirmed, fixedNow)
	// arrives on departure day: no overlap
	dbtest.Booking(t, conn, room.ID, "2026-07-12", "2026-07-14", enums.BookingStatusConfirmed, fixedNow)
	// abandoned pending and inactive statuses
	dbtest.Booking(t, conn, room.ID, "2026-07-10", "2026-07-11", enums.BookingStatusPending, fixedNow.Add(-31*time.Minute))
	dbtest.Booking(t, conn, room.ID, "2026-07-10", "2026-07-11", enums.BookingStatusCancelled, fixedNow)
	dbtest.Booking(t, conn, room.ID, "2026-07-10", "2026-07-11", enums.BookingStatusRefunded, fixedNow)
	dbtest.Booking(t, conn, other.ID, "2026-07-10", "2026-07-11", enums.BookingStatusConfirmed, fixedNow)

	counts, err := svc.ActiveOverlapping(context.Background(), []uuid.UUID{room.ID, other.ID}, "2026-07-10", "2026-07-12")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[room.ID])
	assert.Equal(t, 1, counts[other.ID])
}

func TestActiveOnDay(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), 30*time.Minute, func() time.Time { return fixedNow })
	require.NoError(t, err)

	room := dbtest.RoomType(t, conn, nil)
	dbtest.Booking(t, conn, room.ID, "2026-07-09", "2026-07-11", enums.BookingStatusConfirmed, fixedNow)

	ctx := context.Background()
	for day, want := range map[string]int{
		"2026-07-08": 0,
		"2026-07-09": 1,
		"2026-07-10": 1,
		"2026-07-11": 0,
	} {
		got, err := svc.ActiveOnDay(ctx, nil, room.ID, day)
		require.NoError(t, err)
		assert.Equal(t, want, got, day)
	}
}

func TestExpireAbandoned(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), 30*time.Minute, func() time.Time { return fixedNow })
	require.NoError(t, err)

	room := dbtest.RoomType(t, conn, nil)
	stale := dbtest.Booking(t, conn, room.ID, "2026-07-09", "2026-07-11", enums.BookingStatusPending, fixedNow.Add(-2*time.Hour))
	fresh := dbtest.Booking(t, conn, room.ID, "2026-07-09", "2026-07-11", enums.BookingStatusPending, fixedNow.Add(-time.Minute))
	confirmed := dbtest.Booking(t, conn, room.ID, "2026-07-09", "2026-07-11", enums.BookingStatusConfirmed, fixedNow.Add(-2*time.Hour))

	n, err := svc.ExpireAbandoned(context.Background(), 100)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	statusOf := func(id uuid.UUID) enums.BookingStatus {
		var b models.Booking
		require.NoError(t, conn.First(&b, "id = ?", id).Error)
		return b.Status
	}
	assert.Equal(t, enums.BookingStatusExpired, statusOf(stale.ID))
	assert.Equal(t, enums.BookingStatusPending, statusOf(fresh.ID))
	assert.Equal(t, enums.BookingStatusConfirmed, statusOf(confirmed.ID))
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, time.Minute, nil)
	assert.Error(t, err)

	_, err = NewService(NewRepository(dbtest.Open(t)), 0, nil)
	assert.Error(t, err)
}
