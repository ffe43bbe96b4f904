package enum

// ActorRole identifies who is requesting a mutation. Authentication happens
// upstream; the core only checks role-appropriateness of the request.
type ActorRole string

const (
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleMerchant ActorRole = "merchant"
	ActorRoleAdmin    ActorRole = "admin"
)

func (r ActorRole) String() string {
	return string(r)
}
