package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/careline/homecare-portal/internal/core/domain"
	"github.com/careline/homecare-portal/internal/core/ports"
	"github.com/careline/homecare-portal/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Dispatcher delivers notifications to a sink from a fixed set of workers,
// sharding on the user id so each user's notifications arrive in order.
type Dispatcher struct {
	workers []chan domain.Notification
	sink    ports.NotificationSink
	log     zerolog.Logger
}

var _ ports.NotificationPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.NotificationSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Notification, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish queues n for its user's worker. It never blocks: when the worker
// queue is full the notification is dropped.
func (d *Dispatcher) Publish(n domain.Notification) {
	idx := d.shardIndex(n.UserID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsDeliveredTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("user_id", n.UserID).Int("worker_id", idx).Msg("notification queue full, dropping")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.sink.Deliver(ctx, n); err != nil {
				metrics.NotificationsDeliveredTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("user_id", n.UserID).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsDeliveredTotal.WithLabelValues("delivered").Inc()
		}
	}
}
