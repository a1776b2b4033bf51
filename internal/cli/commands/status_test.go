package commands

import (
	"testing"

	"github.com/seedline-dev/seedline/internal/session"
)

func TestStatusCommand(t *testing.T) {
	// Status reads only local state; any network call fails the test
	opts, store := testOptions(t, guardBackend(t))
	seedSession(t, store, session.RoleInvestor)

	if err := execute(NewStatusCmd(opts...)); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
}

func TestStatusCommand_NotSignedIn(t *testing.T) {
	opts, _ := testOptions(t, guardBackend(t))

	if err := execute(NewStatusCmd(opts...)); err != nil {
		t.Fatalf("status command failed: %v", err)
	}
}
