// Package export publishes snapshots of the popular films ranking to object storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/filmorate/backend/internal/metrics"
	"github.com/filmorate/backend/internal/models"
)

// Storage persists a named object and returns where it ended up.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Ranker produces the popular films list.
type Ranker interface {
	TopFilms(ctx context.Context, n int) ([]models.Film, error)
}

// Snapshot is the document written for each publication.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Count       int           `json:"count"`
	Films       []models.Film `json:"films"`
}

// Config controls the worker pool and snapshot size.
type Config struct {
	QueueSize int
	Workers   int
	TopN      int
	Timeout   time.Duration
}

// Publisher renders and uploads snapshots, either synchronously through
// Publish or in the background through Enqueue.
type Publisher struct {
	ranker  Ranker
	storage Storage
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	jobs      chan int
	closed    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ErrPublisherClosed is returned by Enqueue after Shutdown.
var ErrPublisherClosed = errors.New("snapshot publisher closed")

// NewPublisher starts cfg.Workers background workers.
func NewPublisher(ranker Ranker, storage Storage, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		ranker:  ranker,
		storage: storage,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		jobs:    make(chan int, cfg.QueueSize),
		closed:  make(chan struct{}),
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}
	return p
}

// Publish ranks the top n films (the configured default when n <= 0), writes
// a timestamped snapshot and refreshes popular/latest.json.
func (p *Publisher) Publish(ctx context.Context, n int) (string, error) {
	if n <= 0 {
		n = p.cfg.TopN
	}
	location, err := p.publish(ctx, n)
	metrics.SnapshotsPublished.WithLabelValues(metrics.Result(err)).Inc()
	return location, err
}

func (p *Publisher) publish(ctx context.Context, n int) (string, error) {
	films, err := p.ranker.TopFilms(ctx, n)
	if err != nil {
		return "", fmt.Errorf("rank films: %w", err)
	}

	generated := p.now().UTC()
	payload, err := json.Marshal(Snapshot{GeneratedAt: generated, Count: len(films), Films: films})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	name := fmt.Sprintf("popular/%s.json", generated.Format("20060102T150405Z"))
	location, err := p.storage.Save(ctx, name, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	if _, err := p.storage.Save(ctx, "popular/latest.json", bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("save latest snapshot: %w", err)
	}
	return location, nil
}

// Enqueue schedules a background publication of the top n films.
func (p *Publisher) Enqueue(ctx context.Context, n int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrPublisherClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrPublisherClosed
	case p.jobs <- n:
		return nil
	}
}

// Schedule enqueues a publication every interval until ctx is done.
func (p *Publisher) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Enqueue(ctx, p.cfg.TopN); err != nil {
				if !errors.Is(err, context.Canceled) {
					p.logger.Warn("schedule snapshot", slog.Any("error", err))
				}
				if errors.Is(err, ErrPublisherClosed) {
					return
				}
			}
		}
	}
}

// Shutdown stops accepting work and waits for queued publications to finish.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.closed) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (p *Publisher) worker() {
	defer p.wg.Done()

	for {
		select {
		case n := <-p.jobs:
			p.handle(n)
		case <-p.closed:
			// Drain what was queued before shutdown.
			for {
				select {
				case n := <-p.jobs:
					p.handle(n)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) handle(n int) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	location, err := p.Publish(ctx, n)
	if err != nil {
		p.logger.Error("snapshot publication failed", slog.Int("count", n), slog.Any("error", err))
		return
	}
	p.logger.Info("snapshot published", slog.Int("count", n), slog.String("location", location))
}
