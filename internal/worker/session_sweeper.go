package worker

import (
	"time"

	"github.com/pokemon-tcg/pkg/logger"
)

// Sweeper is a session store that can drop its expired entries
type Sweeper interface {
	Sweep() int
}

// SessionSweeper periodically removes expired sessions from an in-process store.
// Redis expires keys on its own and doesn't need one.
type SessionSweeper struct {
	store    Sweeper
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(store Sweeper, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called
func (w *SessionSweeper) Start() {
	defer close(w.doneChan)

	logger.Info("Session sweeper started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := w.store.Sweep(); n > 0 {
				logger.Debug("Session sweeper: removed %d expired sessions", n)
			}
		case <-w.stopChan:
			logger.Info("Session sweeper stopped")
			return
		}
	}
}

// Stop stops the loop and waits for it to exit
func (w *SessionSweeper) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
