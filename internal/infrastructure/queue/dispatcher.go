package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/reel2bits/accounts-api/internal/core/domain"
	"github.com/reel2bits/accounts-api/internal/core/ports"
	"github.com/reel2bits/accounts-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Enqueue when the target worker has no room left.
var ErrQueueFull = errors.New("confirmation queue full")

var _ ports.ConfirmationQueue = (*Dispatcher)(nil)

// Dispatcher delivers confirmation instructions on a fixed set of workers.
// Users are sharded by id so repeated requests for one user stay ordered.
type Dispatcher struct {
	workers []chan domain.User
	sender  ports.ConfirmationSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.ConfirmationSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.User, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.User, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands user to its worker without blocking. A full worker buffer
// drops the request and returns ErrQueueFull.
func (d *Dispatcher) Enqueue(user domain.User) error {
	idx := d.shardIndex(user.ID)
	select {
	case d.workers[idx] <- user:
		metrics.ConfirmationsQueued.Inc()
		metrics.ConfirmationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.ConfirmationsDropped.Inc()
		return ErrQueueFull
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.User) {
	depth := metrics.ConfirmationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case user, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.sender.Deliver(ctx, user); err != nil {
				metrics.ConfirmationsDelivered.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("user_id", user.ID).
					Int("worker_id", id).
					Msg("confirmation delivery failed")
				continue
			}
			metrics.ConfirmationsDelivered.WithLabelValues("ok").Inc()
		}
	}
}
