package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookease/bookease-backend/internal/migrations"
	"github.com/bookease/bookease-backend/internal/models"
	"github.com/bookease/bookease-backend/internal/storage"
)

func setupSQLite(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(ctx, s.DB, DriverSQLite))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testAccount(email string) models.Account {
	return models.Account{
		Name:             "Asha Rao",
		PhoneNumber:      "9876543210",
		Email:            email,
		PasswordHash:     "$2a$12$hash",
		OrganisationName: "Rao Events",
		Location:         "Pune",
	}
}

// storageSuite прогоняет одинаковые сценарии для обоих драйверов.
func storageSuite(t *testing.T, setup func(t *testing.T) *Storage) {
	t.Run("create and read account", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		id, err := s.CreateAccount(ctx, testAccount("asha@example.com"))
		require.NoError(t, err)
		require.NotEmpty(t, id)

		got, err := s.AccountByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Asha Rao", got.Name)
		assert.Equal(t, models.DefaultPhoneCountryCode, got.PhoneCountryCode)
		assert.Equal(t, "9876543210", got.PhoneNumber)
		assert.False(t, got.Subscribed)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

		full, err := s.Account(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, full.Subscriptions)

		exists, err := s.EmailExists(ctx, "asha@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = s.EmailExists(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		_, err := s.CreateAccount(ctx, testAccount("dup@example.com"))
		require.NoError(t, err)
		_, err = s.CreateAccount(ctx, testAccount("dup@example.com"))
		assert.ErrorIs(t, err, storage.ErrAccountExists)
	})

	t.Run("not found", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		_, err := s.AccountByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		_, err = s.Account(ctx, "missing-id")
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		_, err = s.UpdateAccount(ctx, "missing-id", func(*models.Account) (bool, error) { return true, nil })
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	})

	t.Run("append subscription and expire it", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		id, err := s.CreateAccount(ctx, testAccount("sub@example.com"))
		require.NoError(t, err)

		start := time.Now().Add(-31 * 24 * time.Hour)
		updated, err := s.UpdateAccount(ctx, id, func(a *models.Account) (bool, error) {
			sub, ok := models.NewSubscription(models.PackageGrowth, models.BillingMonthly, "order_1", "pay_1", start)
			require.True(t, ok)
			a.AddSubscription(sub)
			a.RecomputeSubscribed()
			return true, nil
		})
		require.NoError(t, err)
		require.Len(t, updated.Subscriptions, 1)
		assert.NotZero(t, updated.Subscriptions[0].ID)
		assert.True(t, updated.Subscribed)

		stored, err := s.Account(ctx, id)
		require.NoError(t, err)
		require.Len(t, stored.Subscriptions, 1)
		sub := stored.Subscriptions[0]
		assert.Equal(t, models.PackageGrowth, sub.PackageType)
		assert.Equal(t, int64(799), sub.PackagePrice)
		assert.Equal(t, models.BillingMonthly, sub.BillingCycle)
		assert.Equal(t, 30, sub.DurationDays)
		assert.True(t, updated.Subscriptions[0].StartDate.Equal(sub.StartDate))
		assert.True(t, updated.Subscriptions[0].EndDate.Equal(sub.EndDate))
		assert.Equal(t, models.StatusActive, sub.Status)
		assert.True(t, stored.Subscribed)

		_, err = s.UpdateAccount(ctx, id, func(a *models.Account) (bool, error) {
			expired := a.ExpireOverdue(time.Now())
			changed := a.RecomputeSubscribed()
			return len(expired) > 0 || changed, nil
		})
		require.NoError(t, err)

		stored, err = s.Account(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusExpired, stored.Subscriptions[0].Status)
		assert.False(t, stored.Subscribed)
	})

	t.Run("overdue accounts", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()
		now := time.Now()

		add := func(email string, starts ...time.Time) string {
			id, err := s.CreateAccount(ctx, testAccount(email))
			require.NoError(t, err)
			_, err = s.UpdateAccount(ctx, id, func(a *models.Account) (bool, error) {
				for i, start := range starts {
					sub, _ := models.NewSubscription(models.PackageStarter, models.BillingMonthly,
						email+"_order", string(rune('a'+i)), start)
					a.AddSubscription(sub)
				}
				a.RecomputeSubscribed()
				return true, nil
			})
			require.NoError(t, err)
			return id
		}
		overdue := add("late@example.com", now.Add(-45*24*time.Hour), now.Add(-31*24*time.Hour))
		add("fresh@example.com", now.Add(-time.Hour))

		ids, err := s.OverdueAccounts(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, []string{overdue}, ids)

		_, err = s.UpdateAccount(ctx, overdue, func(a *models.Account) (bool, error) {
			return len(a.ExpireOverdue(now)) > 0, nil
		})
		require.NoError(t, err)

		ids, err = s.OverdueAccounts(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("unchanged update is not persisted", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		id, err := s.CreateAccount(ctx, testAccount("noop@example.com"))
		require.NoError(t, err)

		_, err = s.UpdateAccount(ctx, id, func(a *models.Account) (bool, error) {
			a.Subscribed = true
			return false, nil
		})
		require.NoError(t, err)

		stored, err := s.Account(ctx, id)
		require.NoError(t, err)
		assert.False(t, stored.Subscribed)
	})

	t.Run("duplicate payment is rejected", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		id, err := s.CreateAccount(ctx, testAccount("twice@example.com"))
		require.NoError(t, err)

		add := func(a *models.Account) (bool, error) {
			sub, _ := models.NewSubscription(models.PackageStarter, models.BillingYearly, "order_x", "pay_x", time.Now())
			a.AddSubscription(sub)
			return true, nil
		}
		_, err = s.UpdateAccount(ctx, id, add)
		require.NoError(t, err)
		_, err = s.UpdateAccount(ctx, id, add)
		assert.ErrorIs(t, err, storage.ErrSubscriptionExists)

		stored, err := s.Account(ctx, id)
		require.NoError(t, err)
		assert.Len(t, stored.Subscriptions, 1)
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		s := setup(t)
		ctx := context.Background()

		id, err := s.CreateAccount(ctx, testAccount("race@example.com"))
		require.NoError(t, err)

		const workers = 5
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.UpdateAccount(ctx, id, func(a *models.Account) (bool, error) {
					if a.FindPayment("order_r", "pay_r") != nil {
						return false, nil
					}
					sub, _ := models.NewSubscription(models.PackageScale, models.BillingMonthly, "order_r", "pay_r", time.Now())
					a.AddSubscription(sub)
					a.RecomputeSubscribed()
					return true, nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		stored, err := s.Account(ctx, id)
		require.NoError(t, err)
		assert.Len(t, stored.Subscriptions, 1)
	})
}

func TestStorage_SQLite(t *testing.T) {
	storageSuite(t, setupSQLite)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}

func TestStorage_Rebind(t *testing.T) {
	pg := &Storage{driver: DriverPostgres}
	lite := &Storage{driver: DriverSQLite}

	q := `UPDATE accounts SET subscribed = ?, updated_at = ? WHERE id = ?`
	assert.Equal(t, `UPDATE accounts SET subscribed = $1, updated_at = $2 WHERE id = $3`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestDBTime_Scan(t *testing.T) {
	want := time.Date(2025, 1, 2, 3, 4, 5, 6000, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{name: "time value", src: want.In(time.FixedZone("IST", 19800))},
		{name: "rfc3339 string", src: want.Format(time.RFC3339Nano)},
		{name: "bytes", src: []byte(want.Format(time.RFC3339Nano))},
		{name: "sqlite default layout", src: want.Format("2006-01-02 15:04:05.999999999-07:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got time.Time
			require.NoError(t, dbTime{&got}.Scan(tt.src))
			assert.True(t, want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	var got time.Time
	assert.Error(t, dbTime{&got}.Scan("yesterday"))
	assert.Error(t, dbTime{&got}.Scan(42))
}
