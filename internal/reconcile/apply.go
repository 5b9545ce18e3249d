package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dionysia/internal/logging"
)

// Mode selects whether Apply writes to the target.
type Mode int

const (
	// ModeStage logs the planned changes without writing.
	ModeStage Mode = iota
	// ModeApply issues the add and remove calls.
	ModeApply
)

func (m Mode) String() string {
	if m == ModeApply {
		return "apply"
	}
	return "stage"
}

// ModeFor maps a --stage flag to a Mode.
func ModeFor(stage bool) Mode {
	if stage {
		return ModeStage
	}
	return ModeApply
}

// Target receives the writes computed by Diff.
type Target[T any] interface {
	Add(ctx context.Context, items []T) error
	Remove(ctx context.Context, items []T) error
}

// Summary records the outcome of one Apply call.
type Summary struct {
	Name      string
	Mode      Mode
	Added     int
	Removed   int
	Unchanged int
	Err       error
}

// Apply stages or applies result against target. In ModeApply the add and
// remove calls are made only for non-empty sets and their errors are joined.
func Apply[T any](ctx context.Context, logger *slog.Logger, mode Mode, name string, result Result[T], target Target[T]) (Summary, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	summary := Summary{
		Name:      name,
		Mode:      mode,
		Added:     len(result.ToAdd),
		Removed:   len(result.ToRemove),
		Unchanged: len(result.Unchanged),
	}

	if mode == ModeStage {
		logStaged(logger, name, "will REMOVE", result.ToRemove)
		logStaged(logger, name, "will ADD", result.ToAdd)
		logStaged(logger, name, "will NOT CHANGE", result.Unchanged)
		return summary, nil
	}

	var addErr, removeErr error
	if len(result.ToAdd) > 0 {
		if addErr = target.Add(ctx, result.ToAdd); addErr != nil {
			addErr = fmt.Errorf("%s: add %d: %w", name, len(result.ToAdd), addErr)
			summary.Added = 0
		}
	}
	if len(result.ToRemove) > 0 {
		if removeErr = target.Remove(ctx, result.ToRemove); removeErr != nil {
			removeErr = fmt.Errorf("%s: remove %d: %w", name, len(result.ToRemove), removeErr)
			summary.Removed = 0
		}
	}
	summary.Err = errors.Join(addErr, removeErr)
	logger.Info("reconciled",
		logging.String("target", name),
		logging.Int("added", summary.Added),
		logging.Int("removed", summary.Removed),
		logging.Int("unchanged", summary.Unchanged),
	)
	return summary, summary.Err
}

func logStaged[T any](logger *slog.Logger, name, action string, items []T) {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, fmt.Sprint(item))
	}
	logger.Info("STAGING: "+action,
		logging.String("target", name),
		logging.Int("count", len(items)),
		logging.Any("items", labels),
	)
}
