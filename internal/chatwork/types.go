package chatwork

import "slices"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMember   Role = "member"
	RoleReadonly Role = "readonly"
)

// Label is the display name of a role used in announcements.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "管理者"
	case RoleMember:
		return "メンバー"
	case RoleReadonly:
		return "閲覧のみ"
	default:
		return string(r)
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember || r == RoleReadonly
}

type Member struct {
	ID          string `json:"account_id"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
}

// Roster is the member list of one room in platform order.
// An empty roster is how the platform presents a direct chat.
type Roster []Member

func (r Roster) Find(id string) (Member, bool) {
	for _, m := range r {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

func (r Roster) IsAdmin(id string) bool {
	m, ok := r.Find(id)
	return ok && m.Role == RoleAdmin
}

// Partition is the full three-tier role assignment the platform expects on every update.
// Buckets are disjoint and keep roster order.
type Partition struct {
	Admin    []string
	Member   []string
	Readonly []string
}

// PartitionOf splits a roster into role buckets. Members with an unknown role are dropped.
func PartitionOf(r Roster) Partition {
	var p Partition
	for _, m := range r {
		switch m.Role {
		case RoleAdmin:
			p.Admin = append(p.Admin, m.ID)
		case RoleMember:
			p.Member = append(p.Member, m.ID)
		case RoleReadonly:
			p.Readonly = append(p.Readonly, m.ID)
		}
	}
	return p
}

// Move returns a copy of p with id removed from every bucket and appended to the bucket of role.
func (p Partition) Move(id string, role Role) Partition {
	drop := func(ids []string) []string {
		out := make([]string, 0, len(ids)+1)
		for _, x := range ids {
			if x != id {
				out = append(out, x)
			}
		}
		return out
	}
	out := Partition{Admin: drop(p.Admin), Member: drop(p.Member), Readonly: drop(p.Readonly)}
	switch role {
	case RoleAdmin:
		out.Admin = append(out.Admin, id)
	case RoleMember:
		out.Member = append(out.Member, id)
	case RoleReadonly:
		out.Readonly = append(out.Readonly, id)
	}
	return out
}

// RoleOf reports which bucket holds id.
func (p Partition) RoleOf(id string) (Role, bool) {
	switch {
	case slices.Contains(p.Admin, id):
		return RoleAdmin, true
	case slices.Contains(p.Member, id):
		return RoleMember, true
	case slices.Contains(p.Readonly, id):
		return RoleReadonly, true
	}
	return "", false
}
