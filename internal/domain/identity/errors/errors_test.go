package errors

import "testing"

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	if !IsInvalidArgument(err) {
		t.Fatal("expected invalid argument")
	}

	wrapped := WrapInternal(err, "ctx")
	if !IsInternal(wrapped) {
		t.Fatal("expected internal")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if IsSessionExpired(ErrInvalidToken) {
		t.Fatal("invalid token must not match session expired")
	}
	if IsRefreshFailed(ErrSessionExpired) {
		t.Fatal("session expired must not match refresh failed")
	}
	if IsMissingCredential(ErrUnauthenticated) {
		t.Fatal("unauthenticated must not match missing credential")
	}
}
