package keystore

import (
	"testing"
	"time"
)

func TestIssueAndLookup(t *testing.T) {
	store, err := New()
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}

	requestKey, refreshKey, expiresAt, err := store.Issue("O-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}
	if requestKey == "" || refreshKey == "" || requestKey == refreshKey {
		t.Fatalf("unexpected key pair (%q, %q)", requestKey, refreshKey)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Errorf("unexpected expiry %v", expiresAt)
	}

	grant, err := store.GetByRequestKey(requestKey)
	if err != nil {
		t.Fatalf("GetByRequestKey failed: %s", err)
	}
	if grant == nil {
		t.Fatal("expected the grant to be found by its raw request key")
	}
	if grant.OfficeID != "O-1" {
		t.Errorf("unexpected office %q", grant.OfficeID)
	}
	// Only hashes are stored
	if grant.RequestKeyHash == requestKey || grant.RefreshKeyHash == refreshKey {
		t.Error("expected the raw keys to never be stored")
	}

	unknown, err := store.GetByRequestKey("bogus")
	if err != nil {
		t.Fatalf("GetByRequestKey failed: %s", err)
	}
	if unknown != nil {
		t.Errorf("expected no grant for an unknown key, got %+v", unknown)
	}
}

func TestRedeem(t *testing.T) {
	store, err := New()
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}

	oldRequestKey, refreshKey, _, err := store.Issue("O-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}

	newRequestKey, newRefreshKey, _, err := store.Redeem(refreshKey, time.Hour)
	if err != nil {
		t.Fatalf("Redeem failed: %s", err)
	}
	if newRequestKey == "" || newRefreshKey == "" {
		t.Fatal("expected a fresh key pair")
	}
	if newRequestKey == oldRequestKey || newRefreshKey == refreshKey {
		t.Error("expected the fresh key pair to differ from the redeemed one")
	}

	// The old grant is revoked
	old, err := store.GetByRequestKey(oldRequestKey)
	if err != nil {
		t.Fatalf("GetByRequestKey failed: %s", err)
	}
	if old != nil {
		t.Errorf("expected the old grant to be revoked, got %+v", old)
	}

	// The fresh grant keeps the office
	fresh, err := store.GetByRequestKey(newRequestKey)
	if err != nil {
		t.Fatalf("GetByRequestKey failed: %s", err)
	}
	if fresh == nil || fresh.OfficeID != "O-1" {
		t.Errorf("unexpected fresh grant: %+v", fresh)
	}

	// Redeeming the same refresh key twice mints nothing
	again, _, _, err := store.Redeem(refreshKey, time.Hour)
	if err != nil {
		t.Fatalf("Redeem failed: %s", err)
	}
	if again != "" {
		t.Error("expected the revoked refresh key to be rejected")
	}
}

func TestSweepExpired(t *testing.T) {
	store, err := New()
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}

	expiredKey, _, _, err := store.Issue("O-1", -time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}
	aliveKey, _, _, err := store.Issue("O-2", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}

	swept, err := store.SweepExpired()
	if err != nil {
		t.Fatalf("SweepExpired failed: %s", err)
	}
	if swept != 1 {
		t.Errorf("expected 1 swept grant, got %d", swept)
	}

	expired, err := store.GetByRequestKey(expiredKey)
	if err != nil {
		t.Fatalf("GetByRequestKey failed: %s", err)
	}
	if expired != nil {
		t.Error("expected the expired grant to be gone")
	}
	alive, err := store.GetByRequestKey(aliveKey)
	if err != nil {
		t.Fatalf("GetByRequestKey failed: %s", err)
	}
	if alive == nil {
		t.Error("expected the alive grant to survive the sweep")
	}
}
