package reconcile

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"dionysia/internal/logging"
)

type recordingTarget struct {
	added     []string
	removed   []string
	addErr    error
	removeErr error
}

func (r *recordingTarget) Add(_ context.Context, items []string) error {
	r.added = append(r.added, items...)
	return r.addErr
}

func (r *recordingTarget) Remove(_ context.Context, items []string) error {
	r.removed = append(r.removed, items...)
	return r.removeErr
}

func TestApplyStageDoesNotWrite(t *testing.T) {
	target := &recordingTarget{}
	result := Diff([]string{"a", "b"}, []string{"b", "c"})

	summary, err := Apply(context.Background(), logging.NewNop(), ModeStage, "list", result, target)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(target.added) != 0 || len(target.removed) != 0 {
		t.Fatalf("stage mode wrote to target: %+v", target)
	}
	if summary.Added != 1 || summary.Removed != 1 || summary.Unchanged != 1 || summary.Mode != ModeStage {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestApplyWritesBothSides(t *testing.T) {
	target := &recordingTarget{}
	result := Diff([]string{"a", "b"}, []string{"b", "c"})

	if _, err := Apply(context.Background(), nil, ModeApply, "list", result, target); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !slices.Equal(target.added, []string{"a"}) || !slices.Equal(target.removed, []string{"c"}) {
		t.Fatalf("unexpected writes %+v", target)
	}
}

func TestApplySkipsEmptySets(t *testing.T) {
	target := &recordingTarget{addErr: errors.New("should not be called"), removeErr: errors.New("nor this")}
	result := Diff([]string{"a"}, []string{"a"})
	if _, err := Apply(context.Background(), nil, ModeApply, "list", result, target); err != nil {
		t.Fatalf("expected no calls for empty sets, got %v", err)
	}
}

func TestApplyFailedAddStillRemoves(t *testing.T) {
	addErr := errors.New("add failed")
	removeErr := errors.New("remove failed")
	target := &recordingTarget{addErr: addErr, removeErr: removeErr}
	result := Diff([]string{"a"}, []string{"c"})

	summary, err := Apply(context.Background(), nil, ModeApply, "christmas", result, target)
	if !errors.Is(err, addErr) || !errors.Is(err, removeErr) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
	if !slices.Equal(target.removed, []string{"c"}) {
		t.Fatalf("expected remove after failed add, got %+v", target.removed)
	}
	if !strings.Contains(err.Error(), "christmas") {
		t.Fatalf("expected target name in error, got %q", err.Error())
	}

	table := RenderSummaries([]Summary{summary})
	if !strings.Contains(table, "christmas") || !strings.Contains(table, "failed") {
		t.Fatalf("unexpected summary table:\n%s", table)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(true) != ModeStage || ModeFor(false) != ModeApply {
		t.Fatal("unexpected mode mapping")
	}
	if RenderSummaries(nil) != "" {
		t.Fatal("expected empty table for no rows")
	}
}
