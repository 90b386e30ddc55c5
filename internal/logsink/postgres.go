package logsink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres batches invocation records in memory and flushes them on a timer
// or once the batch fills, mirroring the asynchronous batching discipline
// used elsewhere in this codebase for high-volume telemetry writes.
type Postgres struct {
	pool *pgxpool.Pool

	mu        sync.Mutex
	buf       []Record
	batchSize int

	flushInterval time.Duration
	stop          chan struct{}
	stopped       chan struct{}
}

// NewPostgres connects to dsn, ensures the schema exists, and starts the
// background flush loop.
func NewPostgres(ctx context.Context, dsn string, batchSize int, flushInterval time.Duration) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("logsink: empty dsn")
	}
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("logsink: connect: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("logsink: ping: %w", err)
	}
	if err := ensureSchema(ctx, p); err != nil {
		p.Close()
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	sink := &Postgres{
		pool:          p,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go sink.flushLoop()
	return sink, nil
}

func ensureSchema(ctx context.Context, p *pgxpool.Pool) error {
	_, err := p.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS invocation_log (
			id           TEXT PRIMARY KEY,
			function_id  TEXT NOT NULL,
			container_id TEXT NOT NULL,
			strategy     TEXT NOT NULL,
			cold_start   BOOLEAN NOT NULL,
			success      BOOLEAN NOT NULL,
			duration_ms  BIGINT NOT NULL,
			occurred_at  TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("logsink: ensure schema: %w", err)
	}
	return nil
}

// Save buffers r, flushing immediately if the batch is now full.
func (p *Postgres) Save(ctx context.Context, r Record) error {
	p.mu.Lock()
	p.buf = append(p.buf, r)
	full := len(p.buf) >= p.batchSize
	p.mu.Unlock()
	if full {
		return p.flush(ctx)
	}
	return nil
}

// SaveBatch writes rs immediately, bypassing the buffer.
func (p *Postgres) SaveBatch(ctx context.Context, rs []Record) error {
	return p.writeRows(ctx, rs)
}

func (p *Postgres) flushLoop() {
	defer close(p.stopped)
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			_ = p.flush(context.Background())
			return
		case <-ticker.C:
			_ = p.flush(context.Background())
		}
	}
}

func (p *Postgres) flush(ctx context.Context) error {
	p.mu.Lock()
	if len(p.buf) == 0 {
		p.mu.Unlock()
		return nil
	}
	batch := p.buf
	p.buf = nil
	p.mu.Unlock()
	return p.writeRows(ctx, batch)
}

func (p *Postgres) writeRows(ctx context.Context, rs []Record) error {
	if len(rs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range rs {
		batch.Queue(
			`INSERT INTO invocation_log (id, function_id, container_id, strategy, cold_start, success, duration_ms, occurred_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (id) DO NOTHING`,
			r.ID, r.FunctionID, r.ContainerID, r.Strategy, r.ColdStart, r.Success, r.DurationMs, r.At,
		)
	}
	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("logsink: write batch: %w", err)
		}
	}
	return nil
}

// Close flushes any buffered records, stops the background loop, and closes the pool.
func (p *Postgres) Close(ctx context.Context) error {
	close(p.stop)
	<-p.stopped
	p.pool.Close()
	return nil
}
