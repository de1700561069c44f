package authdomain

import (
	"testing"
	"time"
)

func TestClaims_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "not expired (future)",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "expired (past)",
			expiresAt: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{
				ExpiresAt: tt.expiresAt,
			}
			if got := c.IsExpired(); got != tt.want {
				t.Errorf("Claims.IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClaims_CanAccessGuild(t *testing.T) {
	c := &Claims{GuildID: "g1"}
	if !c.CanAccessGuild("g1") {
		t.Errorf("expected access to own guild")
	}
	if c.CanAccessGuild("g2") {
		t.Errorf("expected no access to other guild")
	}
	if (&Claims{}).CanAccessGuild("") {
		t.Errorf("empty guild claim must not match empty guild")
	}
}

func TestRole_AtLeast(t *testing.T) {
	tests := []struct {
		have, min Role
		want      bool
	}{
		{RoleAdmin, RoleEditor, true},
		{RoleEditor, RoleEditor, true},
		{RolePlayer, RoleEditor, false},
		{RoleViewer, RolePlayer, false},
		{Role("root"), RoleViewer, false},
	}
	for _, tt := range tests {
		if got := tt.have.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.have, tt.min, got, tt.want)
		}
	}
	if _, err := ParseRole("nope"); err == nil {
		t.Errorf("expected error for unknown role")
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name string
		in   TierInput
		want Role
	}{
		{"administrator permission", TierInput{IsGuildAdministrator: true}, RoleAdmin},
		{"admin role held", TierInput{HeldRoleIDs: []string{"a"}, AdminRoleID: "a", EditorRoleID: "e"}, RoleAdmin},
		{"editor role held", TierInput{HeldRoleIDs: []string{"x", "e"}, AdminRoleID: "a", EditorRoleID: "e"}, RoleEditor},
		{"unconfigured roles", TierInput{HeldRoleIDs: []string{""}}, RolePlayer},
		{"plain member", TierInput{HeldRoleIDs: []string{"x"}, AdminRoleID: "a"}, RolePlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFor(tt.in); got != tt.want {
				t.Errorf("TierFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
