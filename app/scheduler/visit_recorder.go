package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/amirphl/Kusanagi/app/services"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	visitRecordsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visit_records_enqueued_total",
		Help: "Total number of visit records accepted into the queue",
	})
	visitRecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visit_records_dropped_total",
		Help: "Total number of visit records dropped because the queue was full",
	})
	visitRecordsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visit_records_persisted_total",
		Help: "Total number of visit records written to the database",
	})
	visitRecordFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visit_record_failures_total",
		Help: "Total number of visit records that failed to persist",
	})
	visitQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "visit_queue_depth",
		Help: "Current number of visit records waiting in the queue",
	})
)

// VisitRecorder persists click records off the redirect path. Records are
// enqueued without blocking and workers enrich them with user-agent and geo
// data before writing. Persistence failures are logged and swallowed; a
// redirect never waits on, or fails because of, visit recording.
type VisitRecorder struct {
	visitRepo repository.VisitRepository
	geo       services.GeoService
	uaService services.UserAgentService
	queue     chan visitRecord
	workers   int
	logger    *log.Logger
	wg        sync.WaitGroup
}

type visitRecord struct {
	linkID uint
	meta   *businessflow.ClientMetadata
	at     time.Time
}

func NewVisitRecorder(
	visitRepo repository.VisitRepository,
	geo services.GeoService,
	uaService services.UserAgentService,
	queueSize int,
	workers int,
	logPath string,
) *VisitRecorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 4
	}

	var out io.Writer = os.Stdout
	if logPath != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	return &VisitRecorder{
		visitRepo: visitRepo,
		geo:       geo,
		uaService: uaService,
		queue:     make(chan visitRecord, queueSize),
		workers:   workers,
		logger:    log.New(out, "visit-recorder ", log.LstdFlags|log.Lmicroseconds|log.LUTC),
	}
}

// Enqueue hands a visit off for background persistence. It never blocks;
// when the queue is full the record is dropped and counted.
func (r *VisitRecorder) Enqueue(linkID uint, meta *businessflow.ClientMetadata) bool {
	rec := visitRecord{
		linkID: linkID,
		meta:   meta,
		at:     utils.UTCNow(),
	}

	select {
	case r.queue <- rec:
		visitRecordsEnqueued.Inc()
		visitQueueDepth.Set(float64(len(r.queue)))
		return true
	default:
		visitRecordsDropped.Inc()
		r.logger.Printf("queue full, dropped visit for link %d", linkID)
		return false
	}
}

// Start launches the worker pool and returns a stop function. Stopping
// cancels the workers and waits for them to drain the queue.
func (r *VisitRecorder) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}

	return func() {
		cancel()
		r.wg.Wait()
	}
}

func (r *VisitRecorder) worker(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case rec := <-r.queue:
			r.persist(rec)
			visitQueueDepth.Set(float64(len(r.queue)))
		}
	}
}

// drain flushes whatever is still queued at shutdown
func (r *VisitRecorder) drain() {
	for {
		select {
		case rec := <-r.queue:
			r.persist(rec)
		default:
			return
		}
	}
}

func (r *VisitRecorder) persist(rec visitRecord) {
	// Workers outlive request contexts, so persistence runs on its own context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info := r.uaService.Classify(rec.meta.UserAgent)

	var country, city string
	if loc, err := r.geo.Lookup(rec.meta.IPAddress); err == nil {
		country = loc.Country
		city = loc.City
	}

	visit := &models.Visit{
		LinkID:      rec.linkID,
		Timestamp:   rec.at,
		UserAgent:   rec.meta.UserAgent,
		IPAddress:   rec.meta.IPAddress,
		Country:     optional(country),
		City:        optional(city),
		Browser:     optional(info.Browser),
		OS:          optional(info.OS),
		DeviceType:  info.DeviceType,
		Referrer:    optional(rec.meta.Referrer),
		Language:    optional(rec.meta.Language),
		Fingerprint: rec.meta.Fingerprint(),
	}

	if err := r.visitRepo.Save(ctx, visit); err != nil {
		visitRecordFailures.Inc()
		r.logger.Printf("failed to persist visit for link %d: %v", rec.linkID, err)
		return
	}
	visitRecordsPersisted.Inc()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
