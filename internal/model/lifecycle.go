// Package model provides the shared lifecycle handle for trainable
// sub-models. State is caller-owned and mutex-guarded; there is no
// ambient global model state.
package model

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinrisk-ensemble-engine/internal/domain"
)

// Lifecycle guards the Untrained/Training/Trained/Error state machine
// of one trainable model. After a run finishes, model weights are
// read-only and safe to share across concurrent predictions; the
// lifecycle only serializes training itself.
type Lifecycle struct {
	mu     sync.Mutex
	name   string
	state  domain.TrainingState
	done   chan struct{}
	logger *logrus.Logger
}

// NewLifecycle creates a lifecycle handle in the untrained state.
func NewLifecycle(name string, logger *logrus.Logger) *Lifecycle {
	return &Lifecycle{
		name:   name,
		state:  domain.STATE_UNTRAINED,
		logger: logger,
	}
}

// State returns the current training state.
func (l *Lifecycle) State() domain.TrainingState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// IsTraining reports whether a run is in flight.
func (l *Lifecycle) IsTraining() bool {
	return l.State() == domain.STATE_TRAINING
}

// IsTrained reports whether the model finished a run successfully.
func (l *Lifecycle) IsTrained() bool {
	return l.State() == domain.STATE_TRAINED
}

// Begin transitions to Training and returns the completion callback for
// the run. A second Begin while a run is in flight fails fast with
// ErrTrainingInProgress rather than queueing a concurrent job.
func (l *Lifecycle) Begin() (func(error), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == domain.STATE_TRAINING {
		return nil, domain.NewModelError(domain.ErrCodeTrainingInProgress, l.name,
			"a training run is already in flight", domain.ErrTrainingInProgress)
	}

	l.state = domain.STATE_TRAINING
	done := make(chan struct{})
	l.done = done
	l.logger.WithField("model", l.name).Info("Training started")

	return func(err error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.state = domain.STATE_ERROR
			l.logger.WithError(err).WithField("model", l.name).Error("Training failed")
		} else {
			l.state = domain.STATE_TRAINED
			l.logger.WithField("model", l.name).Info("Training completed")
		}
		close(done)
	}, nil
}

// WaitUntilTrained blocks until the in-flight run completes, the
// context is cancelled, or the timeout expires. Timeout is surfaced as
// ErrTrainingTimeout, distinct from a run that finished without
// reaching the trained state (ErrTrainingFailed).
func (l *Lifecycle) WaitUntilTrained(ctx context.Context, timeout time.Duration) error {
	l.mu.Lock()
	state := l.state
	done := l.done
	l.mu.Unlock()

	switch state {
	case domain.STATE_TRAINED:
		return nil
	case domain.STATE_UNTRAINED:
		return domain.NewModelError(domain.ErrCodeTrainingFailed, l.name,
			"no training run has been started", domain.ErrTrainingFailed)
	case domain.STATE_ERROR:
		return domain.NewModelError(domain.ErrCodeTrainingFailed, l.name,
			"the last training run failed", domain.ErrTrainingFailed)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		if l.IsTrained() {
			return nil
		}
		return domain.NewModelError(domain.ErrCodeTrainingFailed, l.name,
			"training completed without converging", domain.ErrTrainingFailed)
	case <-timer.C:
		return domain.NewModelError(domain.ErrCodeTrainingTimeout, l.name,
			"training still in flight when the wait deadline expired", domain.ErrTrainingTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
