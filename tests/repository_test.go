package tests

import (
	"sync"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewLinkRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("ByCodeFindsShortCode", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			found, err := repo.ByCode(ctx, link.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link.ID, found.ID)
		})

		t.Run("ByCodeFindsCustomAlias", func(t *testing.T) {
			link, err := fixtures.CreateTestAliasLink(customer.ID, "promo2026")
			require.NoError(t, err)

			found, err := repo.ByCode(ctx, "promo2026")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, link.ID, found.ID)
		})

		t.Run("ByCodeUnknownReturnsNil", func(t *testing.T) {
			found, err := repo.ByCode(ctx, "doesnotexist")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("CodeInUse", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			inUse, err := repo.CodeInUse(ctx, link.ShortCode)
			require.NoError(t, err)
			assert.True(t, inUse)

			inUse, err = repo.CodeInUse(ctx, "neverallocated")
			require.NoError(t, err)
			assert.False(t, inUse)
		})

		t.Run("ResolveAndTouchIncrementsClicks", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			resolved, err := repo.ResolveAndTouch(ctx, link.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, link.LongURL, resolved.LongURL)
			assert.Equal(t, int64(1), resolved.Clicks)
			require.NotNil(t, resolved.LastAccessedAt)
			assert.WithinDuration(t, utils.UTCNow(), *resolved.LastAccessedAt, 5*time.Second)

			resolved, err = repo.ResolveAndTouch(ctx, link.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, int64(2), resolved.Clicks)
		})

		t.Run("ResolveAndTouchByAlias", func(t *testing.T) {
			_, err := fixtures.CreateTestAliasLink(customer.ID, "blackfriday")
			require.NoError(t, err)

			resolved, err := repo.ResolveAndTouch(ctx, "blackfriday")
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, int64(1), resolved.Clicks)
		})

		t.Run("ResolveAndTouchUnknownReturnsNil", func(t *testing.T) {
			resolved, err := repo.ResolveAndTouch(ctx, "doesnotexist")
			require.NoError(t, err)
			assert.Nil(t, resolved)
		})

		t.Run("ConcurrentResolvesLoseNoClicks", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			const visitors = 20
			var wg sync.WaitGroup
			errs := make(chan error, visitors)

			for i := 0; i < visitors; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.ResolveAndTouch(ctx, link.ShortCode)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}

			final, err := repo.ByCode(ctx, link.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, final)
			assert.Equal(t, int64(visitors), final.Clicks)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLinkRepositoryListing(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewLinkRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		owner, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		other, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		_, err = fixtures.CreateTestLink(owner.ID, models.TopicAcquisition)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLink(owner.ID, models.TopicAcquisition)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLink(owner.ID, models.TopicRetention)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLink(other.ID, models.TopicAcquisition)
		require.NoError(t, err)

		t.Run("ListByCustomer", func(t *testing.T) {
			links, err := repo.ListByCustomer(ctx, owner.ID)
			require.NoError(t, err)
			assert.Len(t, links, 3)
			for _, link := range links {
				assert.Equal(t, owner.ID, link.CustomerID)
			}
		})

		t.Run("ListByCustomerAndTopic", func(t *testing.T) {
			links, err := repo.ListByCustomerAndTopic(ctx, owner.ID, models.TopicAcquisition)
			require.NoError(t, err)
			assert.Len(t, links, 2)
			for _, link := range links {
				assert.Equal(t, models.TopicAcquisition, link.Topic)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVisitRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewVisitRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
		require.NoError(t, err)

		now := utils.UTCNow()
		_, err = fixtures.CreateTestVisit(link.ID, "10.0.0.1", "agent-a", now.Add(-48*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(link.ID, "10.0.0.2", "agent-b", now.Add(-1*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(link.ID, "10.0.0.3", "agent-c", now.Add(-10*24*time.Hour))
		require.NoError(t, err)

		t.Run("ListSinceFiltersWindow", func(t *testing.T) {
			visits, err := repo.ListSince(ctx, []uint{link.ID}, now.Add(-utils.AnalyticsWindow))
			require.NoError(t, err)
			assert.Len(t, visits, 2)
		})

		t.Run("ListSinceNewestFirst", func(t *testing.T) {
			visits, err := repo.ListSince(ctx, []uint{link.ID}, now.Add(-30*24*time.Hour))
			require.NoError(t, err)
			require.Len(t, visits, 3)
			for i := 1; i < len(visits); i++ {
				assert.False(t, visits[i].Timestamp.After(visits[i-1].Timestamp))
			}
		})

		t.Run("ListSinceEmptyLinkSet", func(t *testing.T) {
			visits, err := repo.ListSince(ctx, nil, now.Add(-utils.AnalyticsWindow))
			require.NoError(t, err)
			assert.Empty(t, visits)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCustomerRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewCustomerRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("ByExternalID", func(t *testing.T) {
			found, err := repo.ByExternalID(ctx, customer.ExternalID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, customer.ID, found.ID)
		})

		t.Run("ByExternalIDUnknownReturnsNil", func(t *testing.T) {
			found, err := repo.ByExternalID(ctx, "provider|missing")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			at := utils.UTCNow().Add(-time.Minute).Truncate(time.Second)
			err := repo.UpdateLastLogin(ctx, customer.ID, at)
			require.NoError(t, err)

			found, err := repo.ByID(ctx, customer.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			require.NotNil(t, found.LastLoginAt)
			assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
		})

		return nil
	})
	require.NoError(t, err)
}
