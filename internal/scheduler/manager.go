package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/dispatch"
	"postpilot/internal/logging"
	"postpilot/internal/poststore"
)

// Manager coordinates the poll-claim-dispatch loop.
type Manager struct {
	cfg        *config.Config
	store      *poststore.Store
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	clock      Clock

	pollInterval  time.Duration
	maxConcurrent int
	staleTimeout  time.Duration

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastPoll time.Time
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithClock substitutes the wall clock, used in tests.
func WithClock(clock Clock) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager constructs a scheduler manager.
func NewManager(cfg *config.Config, store *poststore.Store, dispatcher *dispatch.Dispatcher, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := time.Duration(cfg.Scheduler.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	maxConcurrent := cfg.Scheduler.MaxConcurrentDispatches
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	staleTimeout := time.Duration(cfg.Scheduler.StaleDispatchTimeout) * time.Second
	if staleTimeout <= 0 {
		staleTimeout = 5 * time.Minute
	}

	m := &Manager{
		cfg:           cfg,
		store:         store,
		dispatcher:    dispatcher,
		logger:        logging.NewComponentLogger(logger, "scheduler"),
		clock:         SystemClock(),
		pollInterval:  pollInterval,
		maxConcurrent: maxConcurrent,
		staleTimeout:  staleTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins background processing. Posts orphaned in dispatching by a
// previous crash are reclaimed before the first poll.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if reclaimed, err := m.store.ReclaimStaleDispatching(runCtx, m.clock.Now().Add(-m.staleTimeout)); err != nil {
		m.logger.Warn("reclaim stale dispatching failed; stuck posts may remain",
			logging.Error(err),
			logging.String(logging.FieldEventType, "stale_reclaim_failed"),
			logging.String(logging.FieldErrorHint, "check post database access"),
		)
	} else if reclaimed > 0 {
		m.logger.Info("reclaimed stale dispatching posts", logging.Int64("count", reclaimed))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		m.pollOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(m.pollInterval):
		}
	}
}

// pollOnce claims everything currently due and dispatches it with bounded
// concurrency, waiting for all workers before returning so a shutdown never
// strands a claimed post.
func (m *Manager) pollOnce(ctx context.Context) {
	now := m.clock.Now()
	m.setLastPoll(now)

	posts, err := m.store.ClaimDue(ctx, now, m.maxConcurrent)
	if err != nil {
		m.setLastError(err)
		m.logger.Error("failed to claim due posts",
			logging.Error(err),
			logging.String(logging.FieldEventType, "claim_failed"),
			logging.String(logging.FieldErrorHint, "check post database access"),
		)
		return
	}
	if len(posts) == 0 {
		return
	}
	m.logger.Debug("claimed due posts", logging.Int("count", len(posts)))

	var workers sync.WaitGroup
	for _, post := range posts {
		workers.Add(1)
		go func(post *poststore.Post) {
			defer workers.Done()
			if err := m.dispatcher.Dispatch(ctx, post); err != nil {
				m.setLastError(err)
				m.logger.Error("dispatch settle failed",
					logging.Int64(logging.FieldPostID, post.ID),
					logging.Error(err),
				)
			}
		}(post)
	}
	workers.Wait()
}

// Status reports the loop's last observed poll and error.
type Status struct {
	Running  bool
	LastPoll time.Time
	LastErr  string
}

// Status returns a snapshot of the loop state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := Status{
		Running:  m.running,
		LastPoll: m.lastPoll,
	}
	if m.lastErr != nil {
		status.LastErr = m.lastErr.Error()
	}
	return status
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastPoll(at time.Time) {
	m.mu.Lock()
	m.lastPoll = at
	m.mu.Unlock()
}
