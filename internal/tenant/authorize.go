package tenant

import (
	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
)

// Action names one protected operation. Checks are explicit {role, action}
// lookups evaluated after the identity is resolved.
type Action string

const (
	ActionOrderCreate      Action = "order:create"
	ActionOrderRead        Action = "order:read"
	ActionProductWrite     Action = "product:write"
	ActionProductRead      Action = "product:read"
	ActionCustomerWrite    Action = "customer:write"
	ActionCustomerRead     Action = "customer:read"
	ActionInventoryRead    Action = "inventory:read"
	ActionInventoryStockIn Action = "inventory:stock_in"
	ActionInventoryAdjust  Action = "inventory:adjust"
	ActionDebtRead         Action = "debt:read"
	ActionDebtPay          Action = "debt:pay"
	ActionUserWrite        Action = "user:write"
	ActionUserRead         Action = "user:read"
)

// permissions is the allow-table per role. ADMIN is handled separately and
// allows everything. Employees sell and look things up; stock mutations,
// debt settlement and account management stay with the owner.
var permissions = map[model.UserRole]map[Action]bool{
	model.RoleOwner: {
		ActionOrderCreate:      true,
		ActionOrderRead:        true,
		ActionProductWrite:     true,
		ActionProductRead:      true,
		ActionCustomerWrite:    true,
		ActionCustomerRead:     true,
		ActionInventoryRead:    true,
		ActionInventoryStockIn: true,
		ActionInventoryAdjust:  true,
		ActionDebtRead:         true,
		ActionDebtPay:          true,
		ActionUserWrite:        true,
		ActionUserRead:         true,
	},
	model.RoleEmployee: {
		ActionOrderCreate:   true,
		ActionOrderRead:     true,
		ActionProductRead:   true,
		ActionCustomerWrite: true,
		ActionCustomerRead:  true,
		ActionInventoryRead: true,
		ActionDebtRead:      true,
	},
}

// Authorize returns nil when the role may perform the action, otherwise a
// Forbidden error with a fixed message.
func Authorize(role model.UserRole, action Action) error {
	if role == model.RoleAdmin {
		return nil
	}
	if allowed, ok := permissions[role]; ok && allowed[action] {
		return nil
	}
	return apperr.Forbidden("permission denied")
}

// Can reports the authorization decision without constructing an error
func Can(role model.UserRole, action Action) bool {
	return Authorize(role, action) == nil
}
