package approvals

import (
	"context"
	"fmt"
	"log/slog"

	"maestro/internal/logging"
	"maestro/internal/services"
)

// SubmitFunc performs the backend submission for one item.
type SubmitFunc func(ctx context.Context, item Item) error

// Submitter drives submit-all across the content kinds. Each kind has
// its own submission mutation; items of a kind without one are skipped.
type Submitter struct {
	funcs  map[Kind]SubmitFunc
	logger *slog.Logger
}

// NewSubmitter wires the per-kind submission functions.
func NewSubmitter(funcs map[Kind]SubmitFunc, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Submitter{
		funcs:  funcs,
		logger: logger.With(logging.String(logging.FieldComponent, "approvals")),
	}
}

// SubmitAll submits every not-yet-submitted item, strictly in order:
// the concept first, then the email sequences, then media. The fanout
// is sequential; the first failure aborts everything after it and is
// returned alongside the items already submitted.
func (s *Submitter) SubmitAll(ctx context.Context, items []Item) ([]Item, error) {
	var submitted []Item
	for _, item := range ordered(items) {
		if item.Submitted() {
			continue
		}
		submit, ok := s.funcs[item.Kind]
		if !ok {
			continue
		}
		if err := submit(ctx, item); err != nil {
			s.logger.Warn("submit-all aborted",
				logging.String("kind", string(item.Kind)),
				logging.String("item", item.Key),
				logging.Error(err))
			return submitted, services.Wrap(err, "approvals", "submit-all",
				fmt.Sprintf("submitting %s %q failed, %d of %d items were submitted",
					item.Kind, item.Key, len(submitted), len(items)), nil)
		}
		s.logger.Info("item submitted for review",
			logging.String("kind", string(item.Kind)),
			logging.String("item", item.Key))
		submitted = append(submitted, item)
	}
	return submitted, nil
}

// ordered returns the items grouped concept, sequences, media while
// preserving relative order inside each kind.
func ordered(items []Item) []Item {
	result := make([]Item, 0, len(items))
	for _, kind := range []Kind{KindConcept, KindSequence, KindMedia} {
		for _, item := range items {
			if item.Kind == kind {
				result = append(result, item)
			}
		}
	}
	return result
}
