package tests

import (
	"testing"
	"time"

	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyticsFlow(testDB *testingutil.TestDB) businessflow.AnalyticsFlow {
	linkRepo := repository.NewLinkRepository(testDB.DB)
	visitRepo := repository.NewVisitRepository(testDB.DB)
	return businessflow.NewAnalyticsFlow(linkRepo, visitRepo, testBaseURL)
}

func TestLinkAnalytics(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		owner, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		stranger, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("UnknownCode", func(t *testing.T) {
			_, err := flow.GetLinkAnalytics(ctx, "doesnotexist", owner.ID)
			assert.True(t, businessflow.IsShortLinkNotFound(err))
		})

		t.Run("OwnershipEnforced", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
			require.NoError(t, err)

			_, err = flow.GetLinkAnalytics(ctx, link.ShortCode, stranger.ID)
			assert.True(t, businessflow.IsAnalyticsAccessDenied(err))
		})

		t.Run("EmptyLink", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
			require.NoError(t, err)

			resp, err := flow.GetLinkAnalytics(ctx, link.ShortCode, owner.ID)
			require.NoError(t, err)
			assert.Zero(t, resp.TotalClicks)
			assert.Zero(t, resp.UniqueVisitors)
			assert.Empty(t, resp.ClicksByDate)
			assert.Empty(t, resp.RecentVisits)
		})

		t.Run("UniqueVisitorDedup", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
			require.NoError(t, err)

			now := utils.UTCNow()
			// Same IP and user agent twice, one distinct visitor
			_, err = fixtures.CreateTestVisit(link.ID, "10.0.0.1", "agent-a", now.Add(-time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestVisit(link.ID, "10.0.0.1", "agent-a", now.Add(-2*time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestVisit(link.ID, "10.0.0.2", "agent-b", now.Add(-3*time.Hour))
			require.NoError(t, err)

			resp, err := flow.GetLinkAnalytics(ctx, link.ShortCode, owner.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.TotalClicks)
			assert.Equal(t, int64(2), resp.UniqueVisitors)
		})

		t.Run("ClicksByDateWindowedAndSorted", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
			require.NoError(t, err)

			now := utils.UTCNow()
			// One visit per day for the last 10 days; only the trailing 7 count
			for day := 0; day < 10; day++ {
				_, err := fixtures.CreateTestVisit(link.ID, "10.0.0.1", "agent-a",
					now.Add(-time.Duration(day)*24*time.Hour).Add(-time.Minute))
				require.NoError(t, err)
			}

			resp, err := flow.GetLinkAnalytics(ctx, link.ShortCode, owner.ID)
			require.NoError(t, err)

			assert.Equal(t, int64(7), resp.TotalClicks)
			require.NotEmpty(t, resp.ClicksByDate)
			assert.LessOrEqual(t, len(resp.ClicksByDate), utils.ClicksByDateLimit)
			for i := 1; i < len(resp.ClicksByDate); i++ {
				assert.Greater(t, resp.ClicksByDate[i-1].Date, resp.ClicksByDate[i].Date)
			}
			for _, entry := range resp.ClicksByDate {
				assert.Positive(t, entry.Clicks)
			}
		})

		t.Run("OSAndDeviceBreakdown", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
			require.NoError(t, err)

			now := utils.UTCNow()
			_, err = fixtures.CreateTestVisitWithDevice(link.ID, "10.0.0.1", "agent-a", "Windows", models.DeviceDesktop, now.Add(-time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestVisitWithDevice(link.ID, "10.0.0.1", "agent-a", "Windows", models.DeviceDesktop, now.Add(-2*time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestVisitWithDevice(link.ID, "10.0.0.2", "agent-b", "iOS", models.DeviceMobile, now.Add(-3*time.Hour))
			require.NoError(t, err)

			resp, err := flow.GetLinkAnalytics(ctx, link.ShortCode, owner.ID)
			require.NoError(t, err)

			require.Len(t, resp.OSType, 2)
			// Sorted by OS name ascending, unique visitors not raw clicks
			assert.Equal(t, "Windows", resp.OSType[0].OSName)
			assert.Equal(t, int64(1), resp.OSType[0].UniqueVisitors)
			assert.Equal(t, "iOS", resp.OSType[1].OSName)
			assert.Equal(t, int64(1), resp.OSType[1].UniqueVisitors)

			require.Len(t, resp.DeviceType, 2)
			assert.Equal(t, models.DeviceDesktop, resp.DeviceType[0].DeviceName)
			assert.Equal(t, models.DeviceMobile, resp.DeviceType[1].DeviceName)
		})

		t.Run("RecentVisitsCapped", func(t *testing.T) {
			link, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
			require.NoError(t, err)

			now := utils.UTCNow()
			for i := 0; i < utils.RecentVisitsLimit+5; i++ {
				_, err := fixtures.CreateTestVisit(link.ID, "10.0.0.1", "agent-a",
					now.Add(-time.Duration(i)*time.Minute))
				require.NoError(t, err)
			}

			resp, err := flow.GetLinkAnalytics(ctx, link.ShortCode, owner.ID)
			require.NoError(t, err)
			assert.Len(t, resp.RecentVisits, utils.RecentVisitsLimit)
			for i := 1; i < len(resp.RecentVisits); i++ {
				assert.GreaterOrEqual(t, resp.RecentVisits[i-1].Timestamp, resp.RecentVisits[i].Timestamp)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTopicAnalytics(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		owner, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("InvalidTopic", func(t *testing.T) {
			_, err := flow.GetTopicAnalytics(ctx, "growth", owner.ID)
			assert.True(t, businessflow.IsTopicInvalid(err))
		})

		t.Run("EmptyTopicInvalid", func(t *testing.T) {
			_, err := flow.GetTopicAnalytics(ctx, "", owner.ID)
			assert.True(t, businessflow.IsTopicInvalid(err))
		})

		t.Run("PerLinkBreakdown", func(t *testing.T) {
			linkA, err := fixtures.CreateTestLink(owner.ID, models.TopicRetention)
			require.NoError(t, err)
			linkB, err := fixtures.CreateTestLink(owner.ID, models.TopicRetention)
			require.NoError(t, err)
			// A link on another topic must not leak in
			_, err = fixtures.CreateTestLink(owner.ID, models.TopicActivation)
			require.NoError(t, err)

			now := utils.UTCNow()
			_, err = fixtures.CreateTestVisit(linkA.ID, "10.0.0.1", "agent-a", now.Add(-time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestVisit(linkA.ID, "10.0.0.2", "agent-b", now.Add(-time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestVisit(linkB.ID, "10.0.0.1", "agent-a", now.Add(-time.Hour))
			require.NoError(t, err)

			resp, err := flow.GetTopicAnalytics(ctx, "retention", owner.ID)
			require.NoError(t, err)

			assert.Equal(t, "retention", resp.Topic)
			assert.Equal(t, int64(3), resp.TotalClicks)
			assert.Equal(t, int64(2), resp.UniqueVisitors)
			require.Len(t, resp.URLs, 2)

			perCode := make(map[string]int64)
			for _, u := range resp.URLs {
				perCode[u.ShortCode] = u.TotalClicks
				assert.Equal(t, testBaseURL+"/s/"+u.ShortCode, u.ShortURL)
			}
			assert.Equal(t, int64(2), perCode[linkA.ShortCode])
			assert.Equal(t, int64(1), perCode[linkB.ShortCode])
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOverallAnalytics(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAnalyticsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		owner, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		other, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		linkA, err := fixtures.CreateTestLink(owner.ID, models.TopicAcquisition)
		require.NoError(t, err)
		linkB, err := fixtures.CreateTestLink(owner.ID, models.TopicNone)
		require.NoError(t, err)
		foreign, err := fixtures.CreateTestLink(other.ID, models.TopicNone)
		require.NoError(t, err)

		now := utils.UTCNow()
		_, err = fixtures.CreateTestVisit(linkA.ID, "10.0.0.1", "agent-a", now.Add(-time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(linkB.ID, "10.0.0.1", "agent-a", now.Add(-time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(foreign.ID, "10.0.0.9", "agent-z", now.Add(-time.Hour))
		require.NoError(t, err)
		// Outside the trailing window, must not count
		_, err = fixtures.CreateTestVisit(linkA.ID, "10.0.0.1", "agent-a", now.Add(-9*24*time.Hour))
		require.NoError(t, err)

		resp, err := flow.GetOverallAnalytics(ctx, owner.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(2), resp.TotalLinks)
		assert.Equal(t, int64(2), resp.TotalClicks)
		assert.Equal(t, int64(1), resp.UniqueVisitors)
		require.Len(t, resp.ClicksByDate, 1)
		assert.Equal(t, int64(2), resp.ClicksByDate[0].Clicks)

		return nil
	})
	require.NoError(t, err)
}
