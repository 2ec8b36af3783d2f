package domain

// Role identifies an actor's position in the custody chain.
type Role string

const (
	RoleFarmer      Role = "farmer"
	RoleDistributor Role = "distributor"
	RoleRetailer    Role = "retailer"
)

// roleSuccessor defines the fixed custody chain. A transfer is legal only to
// the immediate successor role; there is no skipping and no reversal.
var roleSuccessor = map[Role]Role{
	RoleFarmer:      RoleDistributor,
	RoleDistributor: RoleRetailer,
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFarmer, RoleDistributor, RoleRetailer:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// Successor returns the next role in the custody chain and whether one exists.
// Retailer is terminal.
func (r Role) Successor() (Role, bool) {
	next, ok := roleSuccessor[r]
	return next, ok
}

// CanTransferTo reports whether a holder with role r may hand custody to an
// identity with role next.
func (r Role) CanTransferTo(next Role) bool {
	succ, ok := roleSuccessor[r]
	return ok && succ == next
}

func (r Role) String() string { return string(r) }
