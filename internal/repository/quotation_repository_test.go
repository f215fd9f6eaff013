package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/repository"
	"github.com/qes/quotation-api/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func createTestQuotation(t *testing.T, db *gorm.DB, owner uuid.UUID, number, customer string, createdAt time.Time) *domain.Quotation {
	t.Helper()

	q := &domain.Quotation{
		BaseModel:     domain.BaseModel{CreatedAt: createdAt, UpdatedAt: createdAt},
		Number:        number,
		CustomerName:  customer,
		CustomerEmail: "buyer@example.com",
		Terms:         domain.DefaultTermsAndConditions(),
		Items: []domain.QuotationItem{
			{Position: 1, ProductID: uuid.New(), ProductName: "Second", Quantity: 1, Rate: decimal.NewFromInt(10), Amount: decimal.NewFromInt(10)},
			{Position: 0, ProductID: uuid.New(), ProductName: "First", Quantity: 2, Rate: decimal.NewFromInt(5), Amount: decimal.NewFromInt(10)},
		},
		Subtotal:    decimal.NewFromInt(20),
		Total:       decimal.NewFromInt(20),
		Status:      domain.QuotationStatusInProcess,
		CreatedByID: owner,
	}
	require.NoError(t, repository.NewQuotationRepository(db).Create(context.Background(), q))
	return q
}

func TestQuotationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewQuotationRepository(db)
	user := testutil.CreateUser(t, db, "Alice", domain.RoleUser)

	q := createTestQuotation(t, db, user.ID, "QES/QT/OCT26/001", "Acme", time.Now())

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "First", got.Items[0].ProductName, "items ordered by position")
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "Alice", got.CreatedBy.Name)

	now := time.Now().UTC()
	require.NoError(t, repo.SetDeleted(ctx, q.ID, &now))

	_, err = repo.GetByID(ctx, q.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.GetForUpdate(ctx, q.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	deleted, err := repo.GetByIDIncludingDeleted(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	assert.ErrorIs(t, repo.SetDeleted(ctx, uuid.New(), nil), gorm.ErrRecordNotFound)
}

func TestQuotationRepository_UniqueNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "Alice", domain.RoleUser)
	createTestQuotation(t, db, user.ID, "QES/QT/OCT26/001", "Acme", time.Now())

	dup := &domain.Quotation{
		Number:        "QES/QT/OCT26/001",
		CustomerName:  "Other",
		CustomerEmail: "x@example.com",
		Status:        domain.QuotationStatusInProcess,
		CreatedByID:   user.ID,
	}
	err := repository.NewQuotationRepository(db).Create(context.Background(), dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	taken, err := repository.NewQuotationRepository(db).NumberTaken(context.Background(), "QES/QT/OCT26/001")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestQuotationRepository_ReplaceItems(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewQuotationRepository(db)
	user := testutil.CreateUser(t, db, "Alice", domain.RoleUser)
	q := createTestQuotation(t, db, user.ID, "QES/QT/OCT26/001", "Acme", time.Now())

	err := repo.ReplaceItems(ctx, q.ID, []domain.QuotationItem{
		{Position: 0, ProductID: uuid.New(), ProductName: "Only", Quantity: 3, Rate: decimal.NewFromInt(7), Amount: decimal.NewFromInt(21)},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Only", got.Items[0].ProductName)
}

func TestQuotationRepository_List(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewQuotationRepository(db)
	alice := testutil.CreateUser(t, db, "Alice", domain.RoleUser)
	bob := testutil.CreateUser(t, db, "Bob", domain.RoleUser)

	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		createTestQuotation(t, db, alice.ID, fmt.Sprintf("QES/QT/OCT26/%03d", i), "Acme Industries", base.Add(time.Duration(i)*time.Hour))
	}
	createTestQuotation(t, db, bob.ID, "QES/QT/OCT26/006", "Globex", base.Add(6*time.Hour))

	t.Run("newest first with paging", func(t *testing.T) {
		quotations, total, err := repo.List(ctx, domain.ListQuotationsFilter{Page: 1, Limit: 2}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		require.Len(t, quotations, 2)
		assert.Equal(t, "QES/QT/OCT26/006", quotations[0].Number)
		assert.Equal(t, "QES/QT/OCT26/005", quotations[1].Number)
	})

	t.Run("owner scope", func(t *testing.T) {
		_, total, err := repo.List(ctx, domain.ListQuotationsFilter{Page: 1, Limit: 10}, &bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		quotations, total, err := repo.List(ctx, domain.ListQuotationsFilter{Page: 1, Limit: 10, Search: "GLOBEX"}, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Globex", quotations[0].CustomerName)
	})

	t.Run("status filter", func(t *testing.T) {
		status := domain.QuotationStatusRevised
		_, total, err := repo.List(ctx, domain.ListQuotationsFilter{Page: 1, Limit: 10, Status: &status}, nil)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("month window counts", func(t *testing.T) {
		n, err := repo.CountCreatedBetween(ctx, base, base.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Equal(t, int64(6), n)

		n, err = repo.CountCreatedBetween(ctx, base.AddDate(0, 1, 0), base.AddDate(0, 2, 0))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestQuotationRepository_RecycleBin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewQuotationRepository(db)
	history := repository.NewQuotationHistoryRepository(db)
	user := testutil.CreateUser(t, db, "Alice", domain.RoleUser)

	old := createTestQuotation(t, db, user.ID, "QES/QT/OCT26/001", "Acme", time.Now())
	recent := createTestQuotation(t, db, user.ID, "QES/QT/OCT26/002", "Acme", time.Now())

	longAgo := time.Now().UTC().AddDate(0, 0, -100)
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	require.NoError(t, repo.SetDeleted(ctx, old.ID, &longAgo))
	require.NoError(t, repo.SetDeleted(ctx, recent.ID, &yesterday))

	deleted, err := repo.ListDeleted(ctx, nil)
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, recent.ID, deleted[0].ID, "most recently deleted first")

	ids, err := repo.ListDeletedBefore(ctx, time.Now().UTC().AddDate(0, 0, -90), 10)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{old.ID}, ids)

	require.NoError(t, history.Append(ctx, &domain.QuotationStatusHistory{
		QuotationID: old.ID, Status: domain.QuotationStatusInProcess, ActorID: user.ID, At: time.Now(),
	}))
	require.NoError(t, repo.DeletePermanently(ctx, old.ID))

	_, err = repo.GetByIDIncludingDeleted(ctx, old.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	records, err := history.ListFor(ctx, old.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
	var items int64
	require.NoError(t, db.Model(&domain.QuotationItem{}).Where("quotation_id = ?", old.ID).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, repo.DeletePermanently(ctx, old.ID), gorm.ErrRecordNotFound)
}

func TestQuotationHistoryRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewQuotationHistoryRepository(db)
	user := testutil.CreateUser(t, db, "Alice", domain.RoleUser)
	q := createTestQuotation(t, db, user.ID, "QES/QT/OCT26/001", "Acme", time.Now())

	statuses := []domain.QuotationStatus{
		domain.QuotationStatusInProcess,
		domain.QuotationStatusRevised,
		domain.QuotationStatusComplete,
	}
	for i, status := range statuses {
		record := &domain.QuotationStatusHistory{
			QuotationID:   q.ID,
			Status:        status,
			Revision:      i,
			ActorID:       user.ID,
			ActorName:     user.Name,
			Role:          user.Role,
			ChangedFields: datatypes.JSONSlice[string]{"notes"},
			At:            time.Now().UTC(),
		}
		if status == domain.QuotationStatusRevised {
			record.BeforeSnapshot = datatypes.JSON(`{"notes":"a"}`)
			record.AfterSnapshot = datatypes.JSON(`{"notes":"b"}`)
		}
		require.NoError(t, repo.Append(ctx, record))
		assert.Equal(t, i+1, record.Sequence)
	}

	records, err := repo.ListFor(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, statuses[i], rec.Status)
		assert.Equal(t, i+1, rec.Sequence)
		require.NotNil(t, rec.Actor)
		assert.Equal(t, "Alice", rec.Actor.Name)
	}
	assert.JSONEq(t, `{"notes":"b"}`, string(records[1].AfterSnapshot))
	assert.Empty(t, records[2].BeforeSnapshot)

	other, err := repo.ListFor(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func countingSeed(n int64, calls *int) repository.SeedFunc {
	return func(ctx context.Context, tx *gorm.DB) (int64, error) {
		*calls++
		return n, nil
	}
}

func TestNumberSequenceRepository_Next(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)

	calls := 0
	seed := countingSeed(4, &calls)

	first, err := repo.Next(ctx, nil, "2026-10", seed)
	require.NoError(t, err)
	assert.Equal(t, 5, first, "seeded from existing quotations")

	second, err := repo.Next(ctx, nil, "2026-10", seed)
	require.NoError(t, err)
	assert.Equal(t, 6, second)
	assert.Equal(t, 1, calls, "seed only on first use")

	other, err := repo.Next(ctx, nil, "2026-11", countingSeed(0, &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	current, err := repo.Current(ctx, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 6, current)
	current, err = repo.Current(ctx, "2027-01")
	require.NoError(t, err)
	assert.Zero(t, current)
}

func TestNumberSequenceRepository_RollbackUndoesIncrement(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	calls := 0

	_, err := repo.Next(ctx, nil, "2026-10", countingSeed(0, &calls))
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		seq, err := repo.Next(ctx, tx, "2026-10", countingSeed(0, &calls))
		require.NoError(t, err)
		assert.Equal(t, 2, seq)
		return fmt.Errorf("insert failed")
	})
	require.Error(t, err)

	current, err := repo.Current(ctx, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}

func TestRedisSequenceCounter_Next(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	counter := repository.NewRedisSequenceCounter(client)
	calls := 0

	first, err := counter.Next(ctx, nil, "2026-10", countingSeed(2, &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, first)

	second, err := counter.Next(ctx, nil, "2026-10", countingSeed(2, &calls))
	require.NoError(t, err)
	assert.Equal(t, 4, second)
	assert.Equal(t, 1, calls)

	current, err := counter.Current(ctx, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 4, current)

	current, err = counter.Current(ctx, "2026-12")
	require.NoError(t, err)
	assert.Zero(t, current)
}
