package chatwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRoster() Roster {
	return Roster{
		{ID: "1", DisplayName: "owner", Role: RoleAdmin},
		{ID: "2", DisplayName: "alice", Role: RoleMember},
		{ID: "3", DisplayName: "bob", Role: RoleMember},
		{ID: "4", DisplayName: "carol", Role: RoleReadonly},
	}
}

func TestRoster_FindAndIsAdmin(t *testing.T) {
	r := testRoster()
	m, ok := r.Find("2")
	assert.True(t, ok)
	assert.Equal(t, "alice", m.DisplayName)
	_, ok = r.Find("9")
	assert.False(t, ok)

	assert.True(t, r.IsAdmin("1"))
	assert.False(t, r.IsAdmin("2"))
	assert.False(t, r.IsAdmin("9"))
}

func TestPartitionOf(t *testing.T) {
	p := PartitionOf(testRoster())
	assert.Equal(t, []string{"1"}, p.Admin)
	assert.Equal(t, []string{"2", "3"}, p.Member)
	assert.Equal(t, []string{"4"}, p.Readonly)
}

func TestPartition_Move(t *testing.T) {
	p := PartitionOf(testRoster())

	moved := p.Move("2", RoleReadonly)
	assert.Equal(t, []string{"1"}, moved.Admin)
	assert.Equal(t, []string{"3"}, moved.Member)
	assert.Equal(t, []string{"4", "2"}, moved.Readonly)

	role, ok := moved.RoleOf("2")
	assert.True(t, ok)
	assert.Equal(t, RoleReadonly, role)

	// original is untouched
	assert.Equal(t, []string{"2", "3"}, p.Member)

	// admins can be demoted too, and unknown ids are inserted
	moved = p.Move("1", RoleMember).Move("99", RoleReadonly)
	assert.Empty(t, moved.Admin)
	assert.Equal(t, []string{"2", "3", "1"}, moved.Member)
	assert.Equal(t, []string{"4", "99"}, moved.Readonly)
}

func TestPartition_MoveIsIdempotent(t *testing.T) {
	p := PartitionOf(testRoster()).Move("4", RoleReadonly)
	assert.Equal(t, []string{"4"}, p.Readonly)
}

func TestRole_Label(t *testing.T) {
	assert.Equal(t, "閲覧のみ", RoleReadonly.Label())
	assert.Equal(t, "管理者", RoleAdmin.Label())
	assert.False(t, Role("owner").Valid())
}
