package ws

import "testing"

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient("s1|t1", nil, ConnInfo{UserID: "s1"})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected room to be created")
	}

	info, ok := hub.getConnInfo("s1|t1", nil)
	if !ok || info.UserID != "s1" {
		t.Fatalf("expected conn info to be stored")
	}

	hub.RemoveClient("s1|t1", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be removed")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info to be removed")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub()

	hub.RemoveClient("missing", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected hub to stay empty")
	}
}

func TestHubRoomsAreIndependent(t *testing.T) {
	hub := NewHub()

	hub.AddClient("g1", nil, ConnInfo{})
	hub.AddClient("g2", nil, ConnInfo{})
	if len(hub.rooms) != 2 {
		t.Fatalf("expected two rooms, got %d", len(hub.rooms))
	}

	hub.RemoveClient("g1", nil)
	if len(hub.rooms) != 1 {
		t.Fatalf("expected one room left, got %d", len(hub.rooms))
	}
}
