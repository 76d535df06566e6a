package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to TaskStatus
	}{
		{StatusPending, StatusClaimed},
		{StatusClaimed, StatusInProgress},
		{StatusInProgress, StatusCompleted},
		{StatusCompleted, StatusApproved},
		{StatusCompleted, StatusRejected},
		{StatusRejected, StatusInProgress},
		{StatusRejected, StatusClaimed},
	}
	set := make(map[[2]TaskStatus]bool, len(allowed))
	for _, p := range allowed {
		set[[2]TaskStatus{p.from, p.to}] = true
	}

	statuses := []TaskStatus{
		StatusPending, StatusClaimed, StatusInProgress,
		StatusCompleted, StatusApproved, StatusRejected,
	}
	// Exhaustive: every pair succeeds iff it appears in the lifecycle table.
	for _, from := range statuses {
		for _, to := range statuses {
			want := set[[2]TaskStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range []TaskStatus{
		StatusPending, StatusClaimed, StatusInProgress,
		StatusCompleted, StatusApproved, StatusRejected,
	} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if TaskStatus("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	if !StatusApproved.Terminal() {
		t.Error("approved must be terminal")
	}
	if StatusRejected.Terminal() {
		t.Error("rejected must allow rework")
	}
}
