package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
// Provider roles earn payments and own a provider-scoped ledger; admin
// roles operate the marketplace side (release payments, issue invoices).
const (
	RoleDoctor     = "doctor"
	RoleClinic     = "clinic"
	RoleLaboratory = "laboratory"
	RolePharmacy   = "pharmacy"
	RoleFinance    = "finance"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsAdmin(role string) bool { return role == RoleAdmin || role == RoleSuperAdmin }

func IsProviderRole(role string) bool {
	switch role {
	case RoleDoctor, RoleClinic, RoleLaboratory, RolePharmacy:
		return true
	default:
		return false
	}
}

// ProviderRoles lists the roles allowed on provider-scoped endpoints.
func ProviderRoles() []string {
	return []string{RoleDoctor, RoleClinic, RoleLaboratory, RolePharmacy}
}
