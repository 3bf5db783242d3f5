// Package saga runs a sequence of steps that cannot share one database
// transaction, undoing the completed ones when a later step fails.
package saga

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ActionFn performs or undoes one step
type ActionFn func(ctx context.Context) error

type step struct {
	name       string
	do         ActionFn
	compensate ActionFn
}

// Saga is an ordered list of steps with compensating actions
type Saga struct {
	name   string
	logger zerolog.Logger
	steps  []step
}

// New creates an empty saga. name is attached to every log line.
func New(name string, logger zerolog.Logger) *Saga {
	return &Saga{
		name:   name,
		logger: logger.With().Str("saga", name).Logger(),
	}
}

// AddStep appends a step. compensate may be nil for steps with nothing to undo.
func (s *Saga) AddStep(name string, do, compensate ActionFn) *Saga {
	s.steps = append(s.steps, step{name: name, do: do, compensate: compensate})
	return s
}

// Execute runs the steps in order. When one fails, the compensations of the
// steps that already succeeded run in reverse order and the original error is
// returned. Compensations run on a context detached from ctx cancellation so a
// client disconnect cannot interrupt the rollback.
func (s *Saga) Execute(ctx context.Context) error {
	for i, st := range s.steps {
		if err := ctx.Err(); err != nil {
			s.rollback(ctx, i)
			return err
		}

		if err := st.do(ctx); err != nil {
			s.logger.Debug().Err(err).Str("step", st.name).Msg("Saga step failed, compensating")
			s.rollback(ctx, i)
			return err
		}
	}
	return nil
}

// rollback compensates steps [0, failed) in reverse order
func (s *Saga) rollback(ctx context.Context, failed int) {
	cleanupCtx := context.WithoutCancel(ctx)

	for i := failed - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.compensate == nil {
			continue
		}
		if err := runCompensation(cleanupCtx, st.compensate); err != nil {
			s.logger.Error().Err(err).
				Str("step", st.name).
				Msg("Saga compensation failed")
		}
	}
}

func runCompensation(ctx context.Context, fn ActionFn) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("compensation panicked: %v", r)
		}
	}()
	return fn(ctx)
}
