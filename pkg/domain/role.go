package domain

// Role partitions principals into staff and applicants. There is no finer
// grained permission model; every authorization decision in the portal is a
// role check plus, for applicants, an ownership check.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RolePeserta Role = "PESERTA"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePeserta
}
