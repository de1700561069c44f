package levelingdomain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// ErrInvalidLadder wraps every ladder validation failure.
var ErrInvalidLadder = errors.New("invalid level ladder")

// RoleBinding grants RoleID to members at or above LevelThreshold.
type RoleBinding struct {
	LevelThreshold int
	RoleID         sharedtypes.RoleID
	RoleName       string
}

// Ladder is a guild's validated set of bindings, ordered by threshold.
type Ladder struct {
	bindings []RoleBinding
}

// NewLadder validates bindings: thresholds must be unique and non-negative,
// and role ids non-empty and unique.
func NewLadder(bindings []RoleBinding) (Ladder, error) {
	sorted := slices.Clone(bindings)
	slices.SortFunc(sorted, func(a, b RoleBinding) int { return cmp.Compare(a.LevelThreshold, b.LevelThreshold) })

	roles := make(map[sharedtypes.RoleID]struct{}, len(sorted))
	for i, b := range sorted {
		if b.LevelThreshold < 0 {
			return Ladder{}, fmt.Errorf("%w: threshold %d is negative", ErrInvalidLadder, b.LevelThreshold)
		}
		if b.RoleID == "" {
			return Ladder{}, fmt.Errorf("%w: level %d has no role", ErrInvalidLadder, b.LevelThreshold)
		}
		if i > 0 && sorted[i-1].LevelThreshold == b.LevelThreshold {
			return Ladder{}, fmt.Errorf("%w: level %d is bound twice", ErrInvalidLadder, b.LevelThreshold)
		}
		if _, dup := roles[b.RoleID]; dup {
			return Ladder{}, fmt.Errorf("%w: role %s is bound twice", ErrInvalidLadder, b.RoleID)
		}
		roles[b.RoleID] = struct{}{}
	}
	return Ladder{bindings: sorted}, nil
}

// Bindings returns the bindings in ascending threshold order.
func (l Ladder) Bindings() []RoleBinding { return slices.Clone(l.bindings) }

// IsEmpty reports whether no roles are configured.
func (l Ladder) IsEmpty() bool { return len(l.bindings) == 0 }

// RoleFor returns the binding with the highest threshold not above level.
func (l Ladder) RoleFor(level int) (RoleBinding, bool) {
	for i := len(l.bindings) - 1; i >= 0; i-- {
		if l.bindings[i].LevelThreshold <= level {
			return l.bindings[i], true
		}
	}
	return RoleBinding{}, false
}

// Contains reports whether roleID is one of the ladder's roles.
func (l Ladder) Contains(roleID sharedtypes.RoleID) bool {
	return slices.ContainsFunc(l.bindings, func(b RoleBinding) bool { return b.RoleID == roleID })
}

// Retired returns the roles of l that next no longer binds.
func (l Ladder) Retired(next Ladder) []sharedtypes.RoleID {
	var out []sharedtypes.RoleID
	for _, b := range l.bindings {
		if !next.Contains(b.RoleID) {
			out = append(out, b.RoleID)
		}
	}
	return out
}

// RoleSyncPlan is the set of platform calls that brings a member to exactly
// the ladder role for their level.
type RoleSyncPlan struct {
	Target *RoleBinding
	Revoke []sharedtypes.RoleID
	Grant  []sharedtypes.RoleID
}

// IsNoop reports whether the member already holds the right roles.
func (p RoleSyncPlan) IsNoop() bool { return len(p.Revoke) == 0 && len(p.Grant) == 0 }

// PlanRoleSync compares the member's held roles to the ladder and plans the
// minimal revoke and grant calls.
func PlanRoleSync(l Ladder, level int, held []sharedtypes.RoleID) RoleSyncPlan {
	var plan RoleSyncPlan
	if b, ok := l.RoleFor(level); ok {
		plan.Target = &b
	}
	hasTarget := false
	for _, r := range held {
		if plan.Target != nil && r == plan.Target.RoleID {
			hasTarget = true
			continue
		}
		if l.Contains(r) && !slices.Contains(plan.Revoke, r) {
			plan.Revoke = append(plan.Revoke, r)
		}
	}
	if plan.Target != nil && !hasTarget {
		plan.Grant = []sharedtypes.RoleID{plan.Target.RoleID}
	}
	return plan
}

// PlanBlindRoleSync is used when the member's held roles are unknown: revoke
// every other ladder role and grant the target.
func PlanBlindRoleSync(l Ladder, level int) RoleSyncPlan {
	var plan RoleSyncPlan
	if b, ok := l.RoleFor(level); ok {
		plan.Target = &b
		plan.Grant = []sharedtypes.RoleID{b.RoleID}
	}
	for _, b := range l.bindings {
		if plan.Target == nil || b.RoleID != plan.Target.RoleID {
			plan.Revoke = append(plan.Revoke, b.RoleID)
		}
	}
	return plan
}
