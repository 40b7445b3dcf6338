package domain

import "testing"

func TestParseOrderStatus_Aliases(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":     OrderPending,
		"in_progress": OrderInProgress,
		"in-progress": OrderInProgress,
		" Ready ":     OrderCompleted,
		"completed":   OrderCompleted,
		"picked-up":   OrderPickedUp,
		"picked_up":   OrderPickedUp,
	}
	for in, want := range cases {
		got, ok := ParseOrderStatus(in)
		if !ok || got != want {
			t.Fatalf("ParseOrderStatus(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseOrderStatus("shipped"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestIsCompletion(t *testing.T) {
	if OrderPending.IsCompletion() || OrderInProgress.IsCompletion() {
		t.Fatalf("open statuses must not be completion")
	}
	if !OrderCompleted.IsCompletion() || !OrderPickedUp.IsCompletion() {
		t.Fatalf("completed and picked_up are completion statuses")
	}
}

func TestTransitionPolicy(t *testing.T) {
	if !TransitionPermissive.Allows(OrderCompleted, OrderPending) {
		t.Fatalf("permissive policy should allow moving back")
	}
	if TransitionForward.Allows(OrderCompleted, OrderPending) {
		t.Fatalf("forward policy should reject moving back")
	}
	if !TransitionForward.Allows(OrderPending, OrderCompleted) {
		t.Fatalf("forward policy should allow skipping ahead")
	}
	if !TransitionForward.Allows(OrderInProgress, OrderInProgress) {
		t.Fatalf("forward policy should allow staying put")
	}
	if ParseTransitionPolicy("FORWARD") != TransitionForward || ParseTransitionPolicy("nope") != TransitionPermissive {
		t.Fatalf("unexpected policy parsing")
	}
}
