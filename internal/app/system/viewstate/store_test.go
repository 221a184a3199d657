package viewstate_test

import (
	"testing"

	"github.com/enidea/slack-clone/internal/app/system/viewstate"
)

func TestStore_DispatchNotifies(t *testing.T) {
	store := viewstate.New()

	var seen []viewstate.State
	unsub := store.Subscribe(func(s viewstate.State) { seen = append(seen, s) })

	store.Dispatch(viewstate.Login{UserID: "u1"})
	store.Dispatch(viewstate.SelectWorkspace{ID: "w1", Name: "Eng"})

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if seen[1].Workspace.CurrentWorkspaceID != "w1" || seen[1].User.UserID != "u1" {
		t.Errorf("unexpected state: %+v", seen[1])
	}

	unsub()
	store.Dispatch(viewstate.Logout{})
	if len(seen) != 2 {
		t.Error("observer called after unsubscribe")
	}
	if store.State().SignedIn() {
		t.Error("expected signed out")
	}
}

func TestStore_InstancesAreIndependent(t *testing.T) {
	a, b := viewstate.New(), viewstate.New()
	a.Dispatch(viewstate.Login{UserID: "u1"})
	if b.State().SignedIn() {
		t.Error("stores share state")
	}
}
