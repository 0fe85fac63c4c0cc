package tests

import (
	"sync"
	"testing"

	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingSink records enqueued visits in memory for assertions
type capturingSink struct {
	mu      sync.Mutex
	linkIDs []uint
}

func (s *capturingSink) Enqueue(linkID uint, meta *businessflow.ClientMetadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkIDs = append(s.linkIDs, linkID)
	return true
}

func (s *capturingSink) captured() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.linkIDs...)
}

func TestVisitShortLink(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		linkRepo := repository.NewLinkRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("ResolvesAndCountsClick", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			sink := &capturingSink{}
			flow := businessflow.NewShortLinkVisitFlow(linkRepo, sink, nil)

			longURL, err := flow.Visit(ctx, link.ShortCode, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, link.LongURL, longURL)

			updated, err := linkRepo.ByCode(ctx, link.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, int64(1), updated.Clicks)
			assert.NotNil(t, updated.LastAccessedAt)

			assert.Equal(t, []uint{link.ID}, sink.captured())
		})

		t.Run("ResolvesByCustomAlias", func(t *testing.T) {
			link, err := fixtures.CreateTestAliasLink(customer.ID, "springsale")
			require.NoError(t, err)

			flow := businessflow.NewShortLinkVisitFlow(linkRepo, nil, nil)
			longURL, err := flow.Visit(ctx, "springsale", testMetadata())
			require.NoError(t, err)
			assert.Equal(t, link.LongURL, longURL)
		})

		t.Run("UnknownCode", func(t *testing.T) {
			flow := businessflow.NewShortLinkVisitFlow(linkRepo, nil, nil)
			_, err := flow.Visit(ctx, "doesnotexist", testMetadata())
			assert.True(t, businessflow.IsShortLinkNotFound(err))
		})

		t.Run("EmptyCode", func(t *testing.T) {
			flow := businessflow.NewShortLinkVisitFlow(linkRepo, nil, nil)
			_, err := flow.Visit(ctx, "", testMetadata())
			assert.True(t, businessflow.IsShortLinkNotFound(err))
		})

		t.Run("NilMetadataSkipsSink", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			sink := &capturingSink{}
			flow := businessflow.NewShortLinkVisitFlow(linkRepo, sink, nil)

			_, err = flow.Visit(ctx, link.ShortCode, nil)
			require.NoError(t, err)
			assert.Empty(t, sink.captured())
		})

		t.Run("ConcurrentVisitsLoseNoClicks", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(customer.ID, models.TopicNone)
			require.NoError(t, err)

			sink := &capturingSink{}
			flow := businessflow.NewShortLinkVisitFlow(linkRepo, sink, nil)

			const visitors = 25
			var wg sync.WaitGroup
			errs := make(chan error, visitors)

			for i := 0; i < visitors; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := flow.Visit(ctx, link.ShortCode, testMetadata())
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}

			final, err := linkRepo.ByCode(ctx, link.ShortCode)
			require.NoError(t, err)
			require.NotNil(t, final)
			assert.Equal(t, int64(visitors), final.Clicks)
			assert.Len(t, sink.captured(), visitors)
		})

		return nil
	})
	require.NoError(t, err)
}
