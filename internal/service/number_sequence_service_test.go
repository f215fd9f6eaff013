package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/qes/quotation-api/internal/repository"
	"github.com/qes/quotation-api/internal/service"
	"github.com/qes/quotation-api/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatNumber(t *testing.T) {
	at := time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "QES/QT/OCT26/001", service.FormatNumber("QES/QT", at, 1))
	assert.Equal(t, "QES/QT/OCT26/042", service.FormatNumber("QES/QT", at, 42))
	assert.Equal(t, "QES/QT/OCT26/1000", service.FormatNumber("QES/QT", at, 1000))
	assert.Equal(t, "ACME/JAN27/007", service.FormatNumber("ACME", time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC), 7))
}

func TestMonthToken(t *testing.T) {
	tests := map[time.Month]string{
		time.January:   "JAN26",
		time.May:       "MAY26",
		time.September: "SEP26",
		time.December:  "DEC26",
	}
	for month, want := range tests {
		assert.Equal(t, want, service.MonthToken(time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC)))
	}
}

func TestMonthWindow(t *testing.T) {
	start, end := service.MonthWindow(time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2026-12", service.Period(start))
}

func TestNumberSequenceService_TimeZone(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	kolkata := time.FixedZone("IST", 5*60*60+30*60)

	numbers := service.NewNumberSequenceService(
		repository.NewNumberSequenceRepository(db),
		repository.NewQuotationRepository(db),
		"",
		kolkata,
		zap.NewNop(),
	)

	status, err := numbers.Status(ctx, time.Date(2026, time.October, 31, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, service.DefaultNumberPrefix, status.Prefix)
	assert.Equal(t, "2026-11", status.Period)

	// 20:00 UTC on 31 October is already 1 November in Kolkata
	number, err := numbers.Generate(ctx, nil, time.Date(2026, time.October, 31, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "QES/QT/NOV26/001", number)
}

func TestNumberSequenceService_Redis(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	numbers := service.NewNumberSequenceService(
		repository.NewRedisSequenceCounter(client),
		repository.NewQuotationRepository(db),
		"QES/QT",
		time.UTC,
		zap.NewNop(),
	)

	at := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	for _, want := range []string{"QES/QT/OCT26/001", "QES/QT/OCT26/002", "QES/QT/OCT26/003"} {
		number, err := numbers.Generate(ctx, nil, at)
		require.NoError(t, err)
		assert.Equal(t, want, number)
	}

	value, err := mr.Get("quotation:seq:2026-10")
	require.NoError(t, err)
	assert.Equal(t, "3", value)

	status, err := numbers.Status(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 3, status.LastIssued)
	assert.Equal(t, "QES/QT/OCT26/004", status.NextNumber)
}

func TestNumberSequenceService_Status(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	numbers := service.NewNumberSequenceService(
		repository.NewNumberSequenceRepository(db),
		repository.NewQuotationRepository(db),
		"QES/QT",
		time.UTC,
		zap.NewNop(),
	)
	at := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	status, err := numbers.Status(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, &service.NumberingStatus{
		Prefix:     "QES/QT",
		Period:     "2026-10",
		LastIssued: 0,
		NextNumber: "QES/QT/OCT26/001",
	}, status)

	_, err = numbers.Generate(ctx, nil, at)
	require.NoError(t, err)
	_, err = numbers.Generate(ctx, nil, at)
	require.NoError(t, err)

	status, err = numbers.Status(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 2, status.LastIssued)
	assert.Equal(t, "QES/QT/OCT26/003", status.NextNumber)

	again, err := numbers.Status(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, status, again, "reading does not advance the counter")
}
