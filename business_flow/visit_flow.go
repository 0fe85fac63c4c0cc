package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/repository"
	"github.com/redis/go-redis/v9"
)

const missCacheTTL = time.Minute

// ShortLinkVisitFlow resolves a short link, counts the click and hands the
// visit off for background recording
// Public flow, no authentication required
type ShortLinkVisitFlow interface {
	Visit(ctx context.Context, code string, metadata *ClientMetadata) (string, error)
}

type ShortLinkVisitFlowImpl struct {
	linkRepo repository.LinkRepository
	sink     VisitSink
	cache    *redis.Client
}

func NewShortLinkVisitFlow(linkRepo repository.LinkRepository, sink VisitSink, cache *redis.Client) ShortLinkVisitFlow {
	return &ShortLinkVisitFlowImpl{
		linkRepo: linkRepo,
		sink:     sink,
		cache:    cache,
	}
}

func (f *ShortLinkVisitFlowImpl) Visit(ctx context.Context, code string, metadata *ClientMetadata) (string, error) {
	if code == "" {
		return "", ErrShortLinkNotFound
	}

	if f.knownMissing(ctx, code) {
		return "", ErrShortLinkNotFound
	}

	// Single atomic update, concurrent visits never lose a click
	row, err := f.linkRepo.ResolveAndTouch(ctx, code)
	if err != nil {
		return "", NewBusinessError("SHORT_LINK_RESOLVE_FAILED", "Failed to resolve short link", err)
	}
	if row == nil {
		f.rememberMissing(ctx, code)
		return "", ErrShortLinkNotFound
	}

	// Fire and forget, a dropped record never fails the redirect
	if f.sink != nil && metadata != nil {
		f.sink.Enqueue(row.ID, metadata)
	}

	return row.LongURL, nil
}

// knownMissing consults the negative cache so bot storms on dead codes
// don't reach the database
func (f *ShortLinkVisitFlowImpl) knownMissing(ctx context.Context, code string) bool {
	if f.cache == nil {
		return false
	}
	n, err := f.cache.Exists(ctx, missCacheKey(code)).Result()
	return err == nil && n > 0
}

func (f *ShortLinkVisitFlowImpl) rememberMissing(ctx context.Context, code string) {
	if f.cache == nil {
		return
	}
	_ = f.cache.Set(ctx, missCacheKey(code), "1", missCacheTTL).Err()
}

func missCacheKey(code string) string {
	return "shortlink:miss:" + code
}
