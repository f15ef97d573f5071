// ABOUTME: Scheduler runs one independent polling loop per enabled feed at the feed's own interval
// ABOUTME: Loops re-read their feed every cycle and restart with backoff after a crash

package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"aiml-digests/core/domain"
	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	"aiml-digests/pkg/retry"
)

// ErrSchedulerRunning is returned by Start when the scheduler is already running
var ErrSchedulerRunning = errors.New("scheduler already running")

// FeedPoller polls a single feed
type FeedPoller interface {
	PollOne(ctx context.Context, feed *domain.Feed) (int, error)
}

type task struct {
	cancel context.CancelFunc
}

// Scheduler owns the per-feed polling loops
type Scheduler struct {
	poller FeedPoller
	store  interfaces.FeedStore
	deps   interfaces.Dependencies
	sleep  retry.SleepFunc

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	tasks  map[int64]*task
	wg     sync.WaitGroup
}

// NewScheduler creates a stopped scheduler
func NewScheduler(poller FeedPoller, store interfaces.FeedStore, deps interfaces.Dependencies) *Scheduler {
	return &Scheduler{
		poller: poller,
		store:  store,
		deps:   deps.WithDefaults(),
		sleep:  retry.Sleep,
		tasks:  make(map[int64]*task),
	}
}

// SetSleep overrides the wait between polls
func (s *Scheduler) SetSleep(sleep retry.SleepFunc) {
	if sleep != nil {
		s.sleep = sleep
	}
}

// Start schedules every enabled feed. Loops live until Stop or until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return ErrSchedulerRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	feeds, err := s.store.ListFeeds(ctx, true)
	if err != nil {
		s.Stop()
		return fmt.Errorf("list feeds: %w", err)
	}

	for _, feed := range feeds {
		s.schedule(feed)
	}
	s.deps.Logger.Info("Feed scheduler started", map[string]interface{}{"feeds": len(feeds)})
	return nil
}

// Stop cancels every loop and waits for them to return; calling it again is a no-op
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.ctx == nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.ctx, s.cancel = nil, nil
	s.tasks = make(map[int64]*task)
	s.mu.Unlock()

	s.wg.Wait()
	s.deps.Logger.Info("Feed polling stopped", nil)
}

// Reschedule restarts the loop of one feed after an edit. A disabled or deleted
// feed just loses its loop. Nothing happens while the scheduler is stopped.
func (s *Scheduler) Reschedule(ctx context.Context, feedID int64) error {
	s.mu.Lock()
	running := s.ctx != nil
	if t, ok := s.tasks[feedID]; ok {
		t.cancel()
		delete(s.tasks, feedID)
	}
	s.mu.Unlock()

	if !running {
		return nil
	}

	feed, err := s.store.GetFeed(ctx, feedID)
	if coreerrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if feed.Enabled {
		s.schedule(feed)
	}
	return nil
}

// Running returns the IDs of feeds with a live loop, ascending
func (s *Scheduler) Running() []int64 {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Scheduler) schedule(feed *domain.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return
	}
	if old, ok := s.tasks[feed.ID]; ok {
		old.cancel()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{cancel: cancel}
	s.tasks[feed.ID] = t

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(feed.ID, t)
		s.loop(ctx, feed)
	}()

	s.deps.Logger.Info("Scheduled feed", map[string]interface{}{
		"feed":             feed.DisplayName(),
		"interval_minutes": int(feed.Interval().Minutes()),
	})
}

// release drops the registry entry unless a newer loop already replaced it
func (s *Scheduler) release(feedID int64, t *task) {
	t.cancel()
	s.mu.Lock()
	if s.tasks[feedID] == t {
		delete(s.tasks, feedID)
	}
	s.mu.Unlock()
}

func (s *Scheduler) loop(ctx context.Context, feed *domain.Feed) {
	for {
		wait := feed.Interval()
		if s.pollSafely(ctx, feed) {
			wait = feed.RestartBackoff()
			s.deps.Logger.Warn("Rescheduling feed with backoff", map[string]interface{}{
				"feed":            feed.DisplayName(),
				"backoff_minutes": int(wait.Minutes()),
			})
		} else {
			s.deps.Logger.Debug("Feed next poll scheduled", map[string]interface{}{
				"feed":             feed.DisplayName(),
				"interval_minutes": int(wait.Minutes()),
			})
		}

		if err := s.sleep(ctx, wait); err != nil {
			return
		}

		latest, err := s.store.GetFeed(ctx, feed.ID)
		switch {
		case ctx.Err() != nil:
			return
		case coreerrors.IsNotFound(err):
			s.deps.Logger.Info("Feed was deleted, stopping polling", map[string]interface{}{"feed": feed.DisplayName()})
			return
		case err != nil:
			s.deps.Logger.Error("Error getting updated feed config", map[string]interface{}{
				"feed":  feed.DisplayName(),
				"error": err.Error(),
			})
		case !latest.Enabled:
			s.deps.Logger.Info("Feed was disabled, stopping polling", map[string]interface{}{"feed": feed.DisplayName()})
			return
		default:
			if latest.PollingInterval != feed.PollingInterval {
				s.deps.Logger.Info("Feed polling interval changed", map[string]interface{}{
					"feed": latest.DisplayName(),
					"from": feed.PollingInterval,
					"to":   latest.PollingInterval,
				})
			}
			feed = latest
		}
	}
}

// pollSafely polls once and reports whether the poll panicked
func (s *Scheduler) pollSafely(ctx context.Context, feed *domain.Feed) (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.deps.Logger.Error("Error in periodic polling for feed", map[string]interface{}{
				"feed":  feed.DisplayName(),
				"panic": fmt.Sprint(r),
			})
			crashed = true
		}
	}()

	if _, err := s.poller.PollOne(ctx, feed); err != nil && ctx.Err() == nil {
		s.deps.Logger.Warn("Feed poll failed", map[string]interface{}{
			"feed":  feed.DisplayName(),
			"error": err.Error(),
		})
	}
	return false
}
