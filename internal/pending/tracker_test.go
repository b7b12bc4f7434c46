package pending

import "testing"

func TestIssueAndResolve(t *testing.T) {
	tracker := NewTracker()

	id := tracker.Issue(3)
	if id == "" {
		t.Fatal("Issue returned empty id")
	}

	channelID, ok := tracker.Resolve(id)
	if !ok {
		t.Fatal("Resolve failed for outstanding request")
	}
	if channelID != 3 {
		t.Errorf("channel = %d, want 3", channelID)
	}
}

// Resolve does not consume the request: a second receiver confirming the
// same standby must still find it.
func TestResolveIsRepeatable(t *testing.T) {
	tracker := NewTracker()
	id := tracker.Issue(1)

	tracker.Resolve(id)
	if _, ok := tracker.Resolve(id); !ok {
		t.Error("request consumed by first Resolve")
	}
}

func TestResolveUnknownID(t *testing.T) {
	tracker := NewTracker()
	if _, ok := tracker.Resolve("never-issued"); ok {
		t.Error("unknown id resolved")
	}
}

func TestIssuedIDsAreUnique(t *testing.T) {
	tracker := NewTracker()
	a := tracker.Issue(1)
	b := tracker.Issue(1)
	if a == b {
		t.Error("two issued ids collide")
	}
	if tracker.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tracker.Len())
	}
}

func TestRevokeForChannel(t *testing.T) {
	tracker := NewTracker()
	revoked := tracker.Issue(2)
	alsoRevoked := tracker.Issue(2)
	kept := tracker.Issue(5)

	tracker.RevokeForChannel(2)

	if _, ok := tracker.Resolve(revoked); ok {
		t.Error("revoked request still resolves")
	}
	if _, ok := tracker.Resolve(alsoRevoked); ok {
		t.Error("second revoked request still resolves")
	}
	if channelID, ok := tracker.Resolve(kept); !ok || channelID != 5 {
		t.Error("revocation touched an unrelated channel's request")
	}
	if tracker.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tracker.Len())
	}
}
