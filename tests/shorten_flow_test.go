package tests

import (
	"strings"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://kusanagi.sh"

func newShortLinkFlow(testDB *testingutil.TestDB) businessflow.ShortLinkFlow {
	linkRepo := repository.NewLinkRepository(testDB.DB)
	customerRepo := repository.NewCustomerRepository(testDB.DB)
	return businessflow.NewShortLinkFlow(linkRepo, customerRepo, nil, testBaseURL)
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("203.0.113.7", "test-agent/1.0")
}

func TestCreateShortLink(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newShortLinkFlow(testDB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("GeneratedCode", func(t *testing.T) {
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL: "https://example.com/articles/42",
			}, customer.ID, testMetadata())
			require.NoError(t, err)

			assert.Len(t, resp.ShortCode, utils.ShortCodeLength)
			for _, r := range resp.ShortCode {
				assert.True(t, strings.ContainsRune(utils.ShortCodeAlphabet, r))
			}
			assert.Equal(t, testBaseURL+"/s/"+resp.ShortCode, resp.ShortURL)
			assert.Equal(t, "https://example.com/articles/42", resp.LongURL)
			assert.Empty(t, resp.Topic)
			assert.NotEmpty(t, resp.CreatedAt)
		})

		t.Run("GeneratedCodesAreUnique", func(t *testing.T) {
			seen := make(map[string]struct{})
			for i := 0; i < 10; i++ {
				resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
					LongURL: "https://example.com/articles/unique",
				}, customer.ID, testMetadata())
				require.NoError(t, err)

				_, dup := seen[resp.ShortCode]
				assert.False(t, dup, "short code %s allocated twice", resp.ShortCode)
				seen[resp.ShortCode] = struct{}{}
			}
		})

		t.Run("WithTopic", func(t *testing.T) {
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL: "https://example.com/campaign",
				Topic:   "activation",
			}, customer.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "activation", resp.Topic)
		})

		t.Run("WithCustomAlias", func(t *testing.T) {
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL:     "https://example.com/landing",
				CustomAlias: utils.ToPtr("summersale"),
			}, customer.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "summersale", resp.ShortCode)
			assert.Equal(t, testBaseURL+"/s/summersale", resp.ShortURL)
		})

		t.Run("AliasAlreadyTaken", func(t *testing.T) {
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL:     "https://example.com/first",
				CustomAlias: utils.ToPtr("exclusive"),
			}, customer.ID, testMetadata())
			require.NoError(t, err)

			_, err = flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL:     "https://example.com/second",
				CustomAlias: utils.ToPtr("exclusive"),
			}, customer.ID, testMetadata())
			assert.True(t, businessflow.IsAliasTaken(err))
		})

		t.Run("AliasCollidesWithGeneratedCode", func(t *testing.T) {
			resp, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL: "https://example.com/generated",
			}, customer.ID, testMetadata())
			require.NoError(t, err)

			_, err = flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL:     "https://example.com/alias",
				CustomAlias: &resp.ShortCode,
			}, customer.ID, testMetadata())
			assert.True(t, businessflow.IsAliasTaken(err))
		})

		t.Run("InvalidURL", func(t *testing.T) {
			for _, raw := range []string{"", "notaurl", "ftp://example.com/file", "https://"} {
				_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
					LongURL: raw,
				}, customer.ID, testMetadata())
				assert.True(t, businessflow.IsInvalidURL(err), "expected invalid url for %q", raw)
			}
		})

		t.Run("InvalidTopic", func(t *testing.T) {
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL: "https://example.com/topic",
				Topic:   "growth",
			}, customer.ID, testMetadata())
			assert.True(t, businessflow.IsTopicInvalid(err))
		})

		t.Run("UnknownCustomer", func(t *testing.T) {
			_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL: "https://example.com/orphan",
			}, 999999, testMetadata())
			assert.True(t, businessflow.IsCustomerNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListCustomerLinks(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newShortLinkFlow(testDB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("EmptyListing", func(t *testing.T) {
			resp, err := flow.ListCustomerLinks(ctx, customer.ID)
			require.NoError(t, err)
			assert.Zero(t, resp.Total)
			assert.Empty(t, resp.Links)
		})

		t.Run("ListsOwnLinksOnly", func(t *testing.T) {
			other, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err := flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
					LongURL: "https://example.com/mine",
				}, customer.ID, testMetadata())
				require.NoError(t, err)
			}
			_, err = flow.CreateShortLink(ctx, &dto.CreateShortLinkRequest{
				LongURL: "https://example.com/theirs",
			}, other.ID, testMetadata())
			require.NoError(t, err)

			resp, err := flow.ListCustomerLinks(ctx, customer.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, resp.Total)
			for _, link := range resp.Links {
				assert.Equal(t, "https://example.com/mine", link.LongURL)
				assert.Zero(t, link.Clicks)
			}
		})

		return nil
	})
	require.NoError(t, err)
}
