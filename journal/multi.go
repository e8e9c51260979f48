package journal

import (
	"context"
	"errors"

	"github.com/rustyeddy/papertrader/internal/logger"
)

// Multi fans each record out to a primary sink and any number of mirrors.
// Only the primary decides whether an append succeeded: a primary failure
// aborts before any mirror is written, and mirror failures are logged and
// otherwise ignored.
type Multi struct {
	primary Journal
	mirrors []Journal
}

// NewMulti uses the first sink as the primary and the rest as mirrors.
func NewMulti(primary Journal, mirrors ...Journal) *Multi {
	return &Multi{primary: primary, mirrors: mirrors}
}

func (m *Multi) Append(r Record) error {
	if err := m.primary.Append(r); err != nil {
		return err
	}
	for i, s := range m.mirrors {
		if err := s.Append(r); err != nil {
			logger.ErrorWithErr(context.Background(), "Journal mirror append failed", err,
				"mirror", i, "record_id", r.ID, "kind", string(r.Kind), "asset", r.Asset)
		}
	}
	return nil
}

// RecordEquity forwards to every sink that keeps an equity curve. As with
// Append, only a primary failure is returned.
func (m *Multi) RecordEquity(e EquitySnapshot) error {
	if er, ok := m.primary.(EquityRecorder); ok {
		if err := er.RecordEquity(e); err != nil {
			return err
		}
	}
	for i, s := range m.mirrors {
		er, ok := s.(EquityRecorder)
		if !ok {
			continue
		}
		if err := er.RecordEquity(e); err != nil {
			logger.ErrorWithErr(context.Background(), "Journal mirror equity failed", err, "mirror", i)
		}
	}
	return nil
}

func (m *Multi) Close() error {
	errs := []error{m.primary.Close()}
	for _, s := range m.mirrors {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

var (
	_ Journal        = (*Multi)(nil)
	_ EquityRecorder = (*Multi)(nil)
)
