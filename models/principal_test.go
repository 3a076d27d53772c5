package models

import "testing"

func TestPrincipalScope(t *testing.T) {
	admin := Principal{ID: "1", Email: "coach@x.com", IsAdmin: true}
	user := Principal{ID: "2", Email: "a@x.com"}

	if !admin.Scope().Unrestricted() {
		t.Fatal("expected admin scope to be unrestricted")
	}
	if _, restricted := admin.Scope().OwnerEmail(); restricted {
		t.Fatal("admin scope must not carry an owner filter")
	}

	email, restricted := user.Scope().OwnerEmail()
	if !restricted || email != "a@x.com" {
		t.Fatalf("expected owner filter a@x.com, got %q (restricted=%v)", email, restricted)
	}
}

func TestScopeAllows(t *testing.T) {
	tests := []struct {
		name  string
		scope Scope
		owner string
		want  bool
	}{
		{"admin sees other owner", UnrestrictedScope(), "b@y.com", true},
		{"owner sees own row", OwnerScope("a@x.com"), "a@x.com", true},
		{"owner cannot see other row", OwnerScope("a@x.com"), "b@y.com", false},
		{"empty owner denies everything", OwnerScope(""), "", false},
		{"case is significant", OwnerScope("a@x.com"), "A@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Allows(tt.owner); got != tt.want {
				t.Fatalf("Allows(%q) = %v, want %v", tt.owner, got, tt.want)
			}
		})
	}
}

func TestScopeDeniesAll(t *testing.T) {
	if !OwnerScope("").DeniesAll() {
		t.Fatal("expected empty owner scope to deny all")
	}
	if OwnerScope("a@x.com").DeniesAll() || UnrestrictedScope().DeniesAll() {
		t.Fatal("unexpected deny-all scope")
	}
}

func TestPrincipalTableAccess(t *testing.T) {
	admin := Principal{Email: "coach@x.com", IsAdmin: true}
	user := Principal{Email: "a@x.com"}

	if !user.CanRead(TableSessions) || !user.CanRead(TablePlayers) {
		t.Fatal("users must be able to read their own players and sessions")
	}
	if user.CanRead(TableDebugLogs) {
		t.Fatal("users must not read debug logs")
	}
	if !user.CanWrite(TableDebugLogs) {
		t.Fatal("every principal appends debug logs")
	}
	if !admin.CanRead(TableDebugLogs) || !admin.CanRead(TableProfiles) {
		t.Fatal("admins read every table")
	}
	if (Principal{}).CanRead(TableSessions) {
		t.Fatal("anonymous principal must not read sessions")
	}
}
