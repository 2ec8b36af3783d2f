package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/api/metrics"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	deliveryTimeout = 5 * time.Second
)

// Message is a queued outbound notification.
type Message struct {
	Phone string
	Body  string
}

// Dispatcher routes outbound notifications to a fixed set of workers using
// consistent hashing on the destination phone, guaranteeing per-recipient
// delivery ordering. Deliveries are fire-and-forget: failures are logged,
// never retried here, and nothing correctness-critical rides on them.
type Dispatcher struct {
	workers  []chan Message
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan Message, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a message to the worker responsible for its phone. When the
// worker's buffer is full the message is dropped with a warning rather than
// blocking the caller.
func (d *Dispatcher) Enqueue(phone, body string) {
	idx := d.shardIndex(phone)
	select {
	case d.workers[idx] <- Message{Phone: phone, Body: body}:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("phone", phone).Int("worker_id", idx).Msg("notification queue full, message dropped")
	}
}

// shardIndex maps a phone deterministically to a worker index.
func (d *Dispatcher) shardIndex(phone string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Message) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
			if err := d.notifier.Deliver(deliverCtx, msg.Phone, msg.Body); err != nil {
				d.log.Error().Err(err).
					Str("phone", msg.Phone).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
			cancel()
		}
	}
}
