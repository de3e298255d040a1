package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
	"github.com/companyos/portal-api/internal/pkg/metrics"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	deliveryTimeout = 30 * time.Second
)

// Dispatcher routes email delivery jobs to a fixed set of workers using
// consistent hashing on the recipient address, guaranteeing per-recipient
// delivery ordering.
type Dispatcher struct {
	workers []chan ports.EmailJob
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.EmailJob, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.EmailJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its recipient.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.EmailJob) {
	d.workers[d.shardIndex(job.Recipient.Email)] <- job
}

// shardIndex maps a recipient address deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.EmailJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, job)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, job ports.EmailJob) {
	deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	start := time.Now()
	msgID, err := d.mailer.Deliver(deliverCtx, job.Recipient.Email, job.Subject, job.Body)
	metrics.EmailDeliveryDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())

	result := domain.DeliveryResult{Recipient: job.Recipient.Email}
	if err != nil {
		d.log.Error().Err(err).
			Str("recipient", job.Recipient.Email).
			Int("worker_id", workerID).
			Msg("email delivery failed")
		result.Error = err.Error()
	} else {
		result.Success = true
		result.MessageID = msgID
	}
	metrics.EmailsDeliveredTotal.WithLabelValues(outcome(err)).Inc()

	if job.Results != nil {
		job.Results <- result
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
