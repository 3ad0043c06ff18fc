// Package poller periodically reads the now-playing source and republishes
// the normalized playback state when it changes.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"karolbroda.com/kraken/internal/playback"
	"karolbroda.com/kraken/internal/session"
	"karolbroda.com/kraken/internal/source"
)

const DefaultInterval = 3 * time.Second

type PublishPolicy string

const (
	// PublishOnChange publishes only when the item identifier or status changes.
	PublishOnChange PublishPolicy = "on_change"
	// PublishAlways publishes after every successful read.
	PublishAlways PublishPolicy = "always"
)

func (p PublishPolicy) Valid() bool {
	return p == PublishOnChange || p == PublishAlways
}

type Options struct {
	Interval time.Duration
	Policy   PublishPolicy
	// Initial is the item known before the first tick, if any.
	Initial playback.Item
}

// Update is one published change.
type Update struct {
	Seq     uint64
	State   playback.State
	Status  playback.Status
	Message string
}

type Poller struct {
	logger   *zap.Logger
	source   source.Source
	session  session.Session
	interval time.Duration
	policy   PublishPolicy
	runID    string

	mu      sync.Mutex
	state   playback.State
	status  playback.Status
	seq     uint64
	applied uint64
	started bool
	stopped bool
	cancel  context.CancelFunc
	updates chan Update

	// closed once every in-flight tick has returned and updates is closed
	drained chan struct{}

	wg sync.WaitGroup
}

func New(logger *zap.Logger, src source.Source, sess session.Session, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Policy == "" {
		opts.Policy = PublishOnChange
	}
	if sess == nil {
		sess = session.Static(true)
	}

	p := &Poller{
		logger:   logger,
		source:   src,
		session:  sess,
		interval: opts.Interval,
		policy:   opts.Policy,
		runID:    uuid.NewString(),
		status:   playback.StatusIdle,
		updates:  make(chan Update, 1),
		drained:  make(chan struct{}),
	}

	if opts.Initial != nil {
		p.state = playback.Playing(opts.Initial)
		p.status = playback.StatusPlaying
	}

	p.logger = logger.With(zap.String("run_id", p.runID))
	return p
}

// Start launches the polling loop. The first read happens immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return errors.New("poller already stopped")
	}
	if p.started {
		return nil
	}
	p.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	// publish what is already known so consumers render before the first read
	p.publishLocked()

	p.wg.Add(1)
	go p.loop(loopCtx)

	p.logger.Info("poller started", zap.Duration("interval", p.interval), zap.String("policy", string(p.policy)))
	return nil
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.spawnTick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawnTick(ctx)
		}
	}
}

// spawnTick does not wait for earlier reads to finish.
func (p *Poller) spawnTick(ctx context.Context) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.Tick(ctx)
	}()
}

// Tick performs one read and applies its result.
func (p *Poller) Tick(ctx context.Context) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	log := p.logger.With(zap.Uint64("seq", seq))

	if !p.session.Authenticated(ctx) {
		p.apply(seq, playback.State{}, playback.StatusUnauthenticated, false)
		return
	}

	item, err := p.source.Current(ctx)
	switch {
	case err == nil && item == nil:
		p.apply(seq, playback.State{}, playback.StatusIdle, false)

	case err == nil:
		p.apply(seq, playback.Playing(item), playback.StatusPlaying, p.policy == PublishAlways)

	case source.IsUnauthenticated(err):
		log.Info("now playing source rejected session", zap.Error(err))
		p.apply(seq, playback.State{}, playback.StatusUnauthenticated, false)

	default:
		if ctx.Err() != nil {
			return
		}
		log.Warn("now playing read failed", zap.Error(err))
		p.fail(seq)
	}
}

// apply replaces the held state. It is a no-op once the poller is stopped or
// when a newer tick has already been applied.
func (p *Poller) apply(seq uint64, next playback.State, status playback.Status, force bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	if seq <= p.applied {
		p.logger.Debug("discarding stale tick", zap.Uint64("seq", seq), zap.Uint64("applied", p.applied))
		return
	}
	p.applied = seq

	changed := !p.state.SameItem(next) || p.status != status
	if !changed && !force {
		return
	}

	if changed {
		p.logger.Info("now playing changed",
			zap.String("kind", next.Kind().String()),
			zap.String("id", next.ID()),
			zap.String("status", status.String()))
	}

	p.state = next
	p.status = status
	p.publishLocked()
}

// fail keeps the held state and only surfaces the failure status.
func (p *Poller) fail(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || seq <= p.applied {
		return
	}
	p.applied = seq

	if p.status == playback.StatusFetchFailed {
		return
	}
	p.status = playback.StatusFetchFailed
	p.publishLocked()
}

// publishLocked replaces any unread update with the newest one.
func (p *Poller) publishLocked() {
	u := Update{
		Seq:     p.applied,
		State:   p.state,
		Status:  p.status,
		Message: p.status.Message(),
	}

	select {
	case p.updates <- u:
		return
	default:
	}

	select {
	case <-p.updates:
	default:
	}
	p.updates <- u
}

// Updates is closed by Stop.
func (p *Poller) Updates() <-chan Update {
	return p.updates
}

func (p *Poller) State() playback.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) Status() playback.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) RunID() string {
	return p.runID
}

// Stop cancels in-flight reads and waits for them. Once Stop returns the
// poller never mutates its state or publishes again.
func (p *Poller) Stop() {
	_ = p.Shutdown(context.Background())
}

// Shutdown is Stop bounded by ctx. A read that ignores cancellation is left to
// finish in the background; its result is dropped since the poller is already
// stopped. Updates is closed once that read returns.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.cancel != nil {
			p.cancel()
		}
		go func() {
			p.wg.Wait()
			close(p.updates)
			close(p.drained)
		}()
	}
	p.mu.Unlock()

	select {
	case <-p.drained:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("poller stop timed out waiting for in-flight reads", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
