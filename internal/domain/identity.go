package domain

// Role is the caller's platform-level role.
type Role string

const (
	RoleAnonymous     Role = "anonymous"
	RoleAuthenticated Role = "authenticated"
	RoleTenantStaff   Role = "tenant_staff"
	RolePlatformAdmin Role = "platform_admin"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   string   `json:"userId,omitempty"`
	Email    string   `json:"email,omitempty"`
	Role     Role     `json:"role"`
	StoreIDs []string `json:"storeIds"`
}

// Anonymous is the identity of a request without credentials.
var Anonymous = Identity{Role: RoleAnonymous}

// IsAuthenticated reports whether the caller presented a valid session.
func (i Identity) IsAuthenticated() bool {
	return i.Role != RoleAnonymous && i.Role != ""
}

// IsPlatformAdmin reports whether the caller holds the platform_admin role.
func (i Identity) IsPlatformAdmin() bool {
	return i.Role == RolePlatformAdmin
}

// OwnsStore reports whether storeID is one of the caller's stores.
func (i Identity) OwnsStore(storeID string) bool {
	for _, id := range i.StoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// Action names an operation checked by the authorizer.
type Action string

const (
	ActionReadOrders         Action = "orders:read"
	ActionWriteOrders        Action = "orders:write"
	ActionReadCustomers      Action = "customers:read"
	ActionSubmitApplication  Action = "applications:submit"
	ActionReviewApplications Action = "applications:review"
	ActionManageStores       Action = "stores:manage"
)

// AdminOnly reports whether the action is reserved to platform admins.
func (a Action) AdminOnly() bool {
	return a == ActionReviewApplications || a == ActionManageStores
}
