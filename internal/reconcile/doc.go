// Package reconcile computes membership differences between a desired list
// and the current state of a target, and applies them.
//
// Diff and DiffBy are pure: ToAdd and Unchanged follow the order of the
// desired input, ToRemove follows the order of the current input, and
// duplicate identities collapse to their first occurrence. Apply either logs
// the planned changes (ModeStage) or calls the Target (ModeApply). There is
// no rollback; a failed add does not prevent the remove.
package reconcile
