package businessflow

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
)

// AnalyticsFlow computes click analytics over the trailing window.
// Every summary is recomputed from raw visit rows at query time so the
// visit log stays the single source of truth.
type AnalyticsFlow interface {
	GetLinkAnalytics(ctx context.Context, code string, customerID uint) (*dto.LinkAnalyticsResponse, error)
	GetTopicAnalytics(ctx context.Context, topic string, customerID uint) (*dto.TopicAnalyticsResponse, error)
	GetOverallAnalytics(ctx context.Context, customerID uint) (*dto.OverallAnalyticsResponse, error)
}

type AnalyticsFlowImpl struct {
	linkRepo  repository.LinkRepository
	visitRepo repository.VisitRepository
	baseURL   string
}

func NewAnalyticsFlow(linkRepo repository.LinkRepository, visitRepo repository.VisitRepository, baseURL string) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		linkRepo:  linkRepo,
		visitRepo: visitRepo,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

func (f *AnalyticsFlowImpl) GetLinkAnalytics(ctx context.Context, code string, customerID uint) (*dto.LinkAnalyticsResponse, error) {
	link, err := f.linkRepo.ByCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		return nil, ErrShortLinkNotFound
	}
	if link.CustomerID != customerID {
		return nil, ErrAnalyticsAccessDenied
	}

	visits, err := f.visitRepo.ListSince(ctx, []uint{link.ID}, windowStart())
	if err != nil {
		return nil, NewBusinessError("FETCH_VISITS_FAILED", "Failed to fetch visits", err)
	}

	return &dto.LinkAnalyticsResponse{
		TotalClicks:    int64(len(visits)),
		UniqueVisitors: distinctFingerprints(visits),
		ClicksByDate:   clicksByDate(visits),
		OSType:         osBreakdown(visits),
		DeviceType:     deviceBreakdown(visits),
		RecentVisits:   recentVisits(visits, utils.RecentVisitsLimit),
	}, nil
}

func (f *AnalyticsFlowImpl) GetTopicAnalytics(ctx context.Context, topic string, customerID uint) (*dto.TopicAnalyticsResponse, error) {
	parsed, err := models.ParseTopic(topic)
	if err != nil || parsed.IsNone() {
		return nil, ErrTopicInvalid
	}

	links, err := f.linkRepo.ListByCustomerAndTopic(ctx, customerID, parsed)
	if err != nil {
		return nil, NewBusinessError("FETCH_LINKS_FAILED", "Failed to fetch topic links", err)
	}

	visits, err := f.visitRepo.ListSince(ctx, linkIDs(links), windowStart())
	if err != nil {
		return nil, NewBusinessError("FETCH_VISITS_FAILED", "Failed to fetch visits", err)
	}

	visitsByLink := make(map[uint][]*models.Visit, len(links))
	for _, v := range visits {
		visitsByLink[v.LinkID] = append(visitsByLink[v.LinkID], v)
	}

	urls := make([]dto.TopicLinkStatsDTO, 0, len(links))
	for _, link := range links {
		linkVisits := visitsByLink[link.ID]
		urls = append(urls, dto.TopicLinkStatsDTO{
			ShortURL:       ShortURL(f.baseURL, link.ShortCode),
			ShortCode:      link.ShortCode,
			LongURL:        link.LongURL,
			TotalClicks:    int64(len(linkVisits)),
			UniqueVisitors: distinctFingerprints(linkVisits),
			CreatedAt:      link.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.TopicAnalyticsResponse{
		Topic:          string(parsed),
		TotalClicks:    int64(len(visits)),
		UniqueVisitors: distinctFingerprints(visits),
		ClicksByDate:   clicksByDate(visits),
		URLs:           urls,
	}, nil
}

func (f *AnalyticsFlowImpl) GetOverallAnalytics(ctx context.Context, customerID uint) (*dto.OverallAnalyticsResponse, error) {
	links, err := f.linkRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("FETCH_LINKS_FAILED", "Failed to fetch customer links", err)
	}

	visits, err := f.visitRepo.ListSince(ctx, linkIDs(links), windowStart())
	if err != nil {
		return nil, NewBusinessError("FETCH_VISITS_FAILED", "Failed to fetch visits", err)
	}

	return &dto.OverallAnalyticsResponse{
		TotalLinks:     int64(len(links)),
		TotalClicks:    int64(len(visits)),
		UniqueVisitors: distinctFingerprints(visits),
		ClicksByDate:   clicksByDate(visits),
		OSType:         osBreakdown(visits),
		DeviceType:     deviceBreakdown(visits),
	}, nil
}

func windowStart() time.Time {
	return utils.UTCNowAdd(-utils.AnalyticsWindow)
}

func linkIDs(links []*models.Link) []uint {
	ids := make([]uint, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ID)
	}
	return ids
}

func distinctFingerprints(visits []*models.Visit) int64 {
	seen := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		seen[v.Fingerprint] = struct{}{}
	}
	return int64(len(seen))
}

// clicksByDate buckets visits per UTC day, sparse, newest day first
func clicksByDate(visits []*models.Visit) []dto.ClicksByDateEntry {
	counts := make(map[string]int64)
	for _, v := range visits {
		counts[utils.DayUTC(v.Timestamp)]++
	}

	entries := make([]dto.ClicksByDateEntry, 0, len(counts))
	for date, clicks := range counts {
		entries = append(entries, dto.ClicksByDateEntry{Date: date, Clicks: clicks})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })

	if len(entries) > utils.ClicksByDateLimit {
		entries = entries[:utils.ClicksByDateLimit]
	}
	return entries
}

func osBreakdown(visits []*models.Visit) []dto.OSStatDTO {
	buckets := make(map[string]map[string]struct{})
	for _, v := range visits {
		name := utils.Deref(v.OS)
		if name == "" {
			name = "Unknown"
		}
		if buckets[name] == nil {
			buckets[name] = make(map[string]struct{})
		}
		buckets[name][v.Fingerprint] = struct{}{}
	}

	out := make([]dto.OSStatDTO, 0, len(buckets))
	for name, fingerprints := range buckets {
		out = append(out, dto.OSStatDTO{OSName: name, UniqueVisitors: int64(len(fingerprints))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OSName < out[j].OSName })
	return out
}

func deviceBreakdown(visits []*models.Visit) []dto.DeviceStatDTO {
	buckets := make(map[string]map[string]struct{})
	for _, v := range visits {
		name := v.DeviceType
		if name == "" {
			name = models.DeviceDesktop
		}
		if buckets[name] == nil {
			buckets[name] = make(map[string]struct{})
		}
		buckets[name][v.Fingerprint] = struct{}{}
	}

	out := make([]dto.DeviceStatDTO, 0, len(buckets))
	for name, fingerprints := range buckets {
		out = append(out, dto.DeviceStatDTO{DeviceName: name, UniqueVisitors: int64(len(fingerprints))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceName < out[j].DeviceName })
	return out
}

// recentVisits relies on visits arriving newest first from the repository
func recentVisits(visits []*models.Visit, limit int) []dto.RecentVisitDTO {
	if len(visits) > limit {
		visits = visits[:limit]
	}
	out := make([]dto.RecentVisitDTO, 0, len(visits))
	for _, v := range visits {
		out = append(out, dto.RecentVisitDTO{
			Timestamp:  v.Timestamp.UTC().Format(time.RFC3339),
			Browser:    utils.Deref(v.Browser),
			OS:         utils.Deref(v.OS),
			DeviceType: v.DeviceType,
			Country:    utils.Deref(v.Country),
			City:       utils.Deref(v.City),
			Referrer:   utils.Deref(v.Referrer),
		})
	}
	return out
}
