package levelingdomain

import (
	"testing"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLadder(t *testing.T) Ladder {
	t.Helper()
	l, err := NewLadder([]RoleBinding{
		{LevelThreshold: 10, RoleID: "r10", RoleName: "Regular"},
		{LevelThreshold: 5, RoleID: "r5", RoleName: "Member"},
		{LevelThreshold: 20, RoleID: "r20", RoleName: "Veteran"},
	})
	require.NoError(t, err)
	return l
}

func TestNewLadder_Validation(t *testing.T) {
	tests := []struct {
		name     string
		bindings []RoleBinding
	}{
		{"duplicate threshold", []RoleBinding{{LevelThreshold: 5, RoleID: "a"}, {LevelThreshold: 5, RoleID: "b"}}},
		{"duplicate role", []RoleBinding{{LevelThreshold: 5, RoleID: "a"}, {LevelThreshold: 6, RoleID: "a"}}},
		{"negative threshold", []RoleBinding{{LevelThreshold: -1, RoleID: "a"}}},
		{"empty role", []RoleBinding{{LevelThreshold: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLadder(tt.bindings)
			assert.ErrorIs(t, err, ErrInvalidLadder)
		})
	}
}

func TestLadder_RoleFor(t *testing.T) {
	l := testLadder(t)
	tests := []struct {
		level int
		want  sharedtypes.RoleID
		ok    bool
	}{
		{0, "", false},
		{4, "", false},
		{5, "r5", true},
		{7, "r5", true},
		{10, "r10", true},
		{19, "r10", true},
		{250, "r20", true},
	}
	for _, tt := range tests {
		b, ok := l.RoleFor(tt.level)
		assert.Equal(t, tt.ok, ok, "level %d", tt.level)
		assert.Equal(t, tt.want, b.RoleID, "level %d", tt.level)
	}
}

func TestPlanRoleSync(t *testing.T) {
	l := testLadder(t)
	tests := []struct {
		name   string
		level  int
		held   []sharedtypes.RoleID
		grant  []sharedtypes.RoleID
		revoke []sharedtypes.RoleID
	}{
		{"fresh member reaches first role", 5, []sharedtypes.RoleID{"everyone"}, []sharedtypes.RoleID{"r5"}, nil},
		{"skip over intermediate role", 12, []sharedtypes.RoleID{"r5"}, []sharedtypes.RoleID{"r10"}, []sharedtypes.RoleID{"r5"}},
		{"already correct", 12, []sharedtypes.RoleID{"r10", "other"}, nil, nil},
		{"removes every stale ladder role", 25, []sharedtypes.RoleID{"r5", "r10"}, []sharedtypes.RoleID{"r20"}, []sharedtypes.RoleID{"r5", "r10"}},
		{"below ladder strips roles", 2, []sharedtypes.RoleID{"r10"}, nil, []sharedtypes.RoleID{"r10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanRoleSync(l, tt.level, tt.held)
			if diff := cmp.Diff(tt.grant, plan.Grant); diff != "" {
				t.Errorf("grant mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.revoke, plan.Revoke); diff != "" {
				t.Errorf("revoke mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanRoleSync_Idempotent(t *testing.T) {
	l := testLadder(t)
	held := []sharedtypes.RoleID{"r5", "x"}

	first := PlanRoleSync(l, 21, held)
	after := []sharedtypes.RoleID{"x"}
	after = append(after, first.Grant...)

	second := PlanRoleSync(l, 21, after)
	assert.True(t, second.IsNoop(), "second sync must change nothing, got %+v", second)
}

func TestPlanBlindRoleSync(t *testing.T) {
	plan := PlanBlindRoleSync(testLadder(t), 10)
	assert.Equal(t, []sharedtypes.RoleID{"r10"}, plan.Grant)
	assert.Equal(t, []sharedtypes.RoleID{"r5", "r20"}, plan.Revoke)
}

func TestLadder_Retired(t *testing.T) {
	old := testLadder(t)
	next, err := NewLadder([]RoleBinding{
		{LevelThreshold: 5, RoleID: "r5"},
		{LevelThreshold: 15, RoleID: "r15"},
	})
	require.NoError(t, err)

	assert.Equal(t, []sharedtypes.RoleID{"r10", "r20"}, old.Retired(next))
	assert.Empty(t, old.Retired(old))
	assert.Empty(t, Ladder{}.Retired(next))
}
