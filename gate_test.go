package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/plannerhub/authflow/session"
)

func newTestGate(t *testing.T) (*Gate, *session.Store, *recordingNavigator) {
	t.Helper()
	store := session.NewStore(session.NewMemoryTier(), session.NewMemoryTier(), "planner")
	nav := newRecordingNavigator()
	return NewGate(store, nav), store, nav
}

func TestGateDeniesWithoutSession(t *testing.T) {
	gate, _, nav := newTestGate(t)

	if gate.Authorize(context.Background()) {
		t.Fatal("gate admitted an empty store")
	}
	nav.wait(t, RouteLogin)
}

func TestGateAdmitsWithSession(t *testing.T) {
	gate, store, nav := newTestGate(t)
	ctx := context.Background()

	sess := &session.Session{AccessToken: "tok", Identifier: "demo@planner.com", EstablishedAt: time.Now()}
	if err := store.Save(ctx, sess, false); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !gate.Authorize(ctx) {
		t.Fatal("gate denied a stored session")
	}
	nav.expectNone(t)
}

func TestGateRedirectIfAuthenticated(t *testing.T) {
	gate, store, nav := newTestGate(t)
	ctx := context.Background()

	if gate.RedirectIfAuthenticated(ctx) {
		t.Fatal("redirected with no session")
	}
	nav.expectNone(t)

	sess := &session.Session{AccessToken: "tok", Identifier: "demo@planner.com", EstablishedAt: time.Now()}
	if err := store.Save(ctx, sess, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !gate.RedirectIfAuthenticated(ctx) {
		t.Fatal("no redirect with a session present")
	}
	nav.wait(t, RouteDashboard)
}

func TestGateAdmitsDurableOnlySession(t *testing.T) {
	// A restart wipes the ephemeral tier; a remembered session must still
	// pass the gate.
	eph := session.NewMemoryTier()
	dur := session.NewMemoryTier()
	store := session.NewStore(eph, dur, "planner")
	ctx := context.Background()

	sess := &session.Session{AccessToken: "tok", Identifier: "demo@planner.com", EstablishedAt: time.Now()}
	if err := store.Save(ctx, sess, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := eph.Delete(ctx, "planner:access_token", "planner:refresh_token", "planner:session"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	nav := newRecordingNavigator()
	if !NewGate(store, nav).Authorize(ctx) {
		t.Fatal("gate denied a durable-only session")
	}
}
