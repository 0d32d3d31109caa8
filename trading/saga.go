package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradejournal/position"
)

// step is one forward action of a saga and the action that undoes it.
// Compensations must be idempotent: they may run against state where the
// forward action never landed or was already undone.
type step struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

type saga struct {
	name  string
	log   zerolog.Logger
	steps []step
}

func newSaga(name string, log zerolog.Logger, steps ...step) *saga {
	return &saga{name: name, log: log.With().Str("saga", name).Logger(), steps: steps}
}

// run executes the steps in order. When one fails, the steps that completed
// are compensated in reverse and the original error is returned. If a
// compensation fails too the result is a *position.RollbackError.
func (sg *saga) run(ctx context.Context) error {
	for i, st := range sg.steps {
		err := st.run(ctx)
		if err == nil {
			continue
		}

		sg.log.Warn().Err(err).Str("step", st.name).Msg("step failed, compensating")
		// rollback must finish even when the caller gave up
		if cerr := sg.compensate(context.WithoutCancel(ctx), i-1); cerr != nil {
			sg.log.Error().Err(cerr).AnErr("original", err).Msg("compensation failed, manual repair needed")
			return &position.RollbackError{Original: err, Compensation: cerr}
		}
		sg.log.Info().Str("step", st.name).Msg("rolled back")
		return err
	}
	return nil
}

func (sg *saga) compensate(ctx context.Context, last int) error {
	var errs []error
	for j := last; j >= 0; j-- {
		st := sg.steps[j]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("compensate %s: %w", st.name, err))
		}
	}
	return errors.Join(errs...)
}
