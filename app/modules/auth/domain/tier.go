package authdomain

// TierInput is what is known about a guild member when resolving their tier.
type TierInput struct {
	// HeldRoleIDs are the platform role ids the member holds.
	HeldRoleIDs []string
	// IsGuildAdministrator is true for the guild owner or anyone holding the platform's administrator permission.
	IsGuildAdministrator bool
	// AdminRoleID and EditorRoleID come from the guild configuration and may be empty.
	AdminRoleID  string
	EditorRoleID string
}

// TierFor resolves a member's permission tier. Every member is at least a player.
func TierFor(in TierInput) Role {
	if in.IsGuildAdministrator {
		return RoleAdmin
	}
	held := make(map[string]struct{}, len(in.HeldRoleIDs))
	for _, id := range in.HeldRoleIDs {
		held[id] = struct{}{}
	}
	if in.AdminRoleID != "" {
		if _, ok := held[in.AdminRoleID]; ok {
			return RoleAdmin
		}
	}
	if in.EditorRoleID != "" {
		if _, ok := held[in.EditorRoleID]; ok {
			return RoleEditor
		}
	}
	return RolePlayer
}
