package authority

import "aquaflow/domain"

const (
	ActionGetUsers    = "GET_USERS"
	ActionDeleteUsers = "DELETE_USERS"

	ActionGetRoles   = "GET_ROLES"
	ActionGetActions = "GET_ACTIONS"
	ActionCreateRole = "CREATE_ROLE"
	ActionEditRole   = "EDIT_ROLE"
	ActionDeleteRole = "DELETE_ROLE"
	ActionActiveRole = "ACTIVE_ROLE"

	ActionCreateOrder        = "CREATE_ORDER"
	ActionCancelOrder        = "CANCEL_ORDER"
	ActionConfirmOrder       = "CONFIRM_ORDER"
	ActionAssignOrder        = "ASSIGN_ORDER"
	ActionChangeStatusOrders = "CHANGE_STATUS_ORDERS"
	ActionGetOrders          = "GET_ORDERS"
	ActionGetOrdersUser      = "GET_ORDERS_USER"
	ActionGetOrdersDelivery  = "GET_ORDERS_DELIVERY"
	ActionGetDeliveries      = "GET_DELIVERIES"
	ActionSearchOrders       = "SEARCH_ORDERS"

	ActionCreateAddress = "CREATE_ADDRESS"
	ActionEditAddress   = "EDIT_ADDRESS"
	ActionGetAddress    = "GET_ADDRESS"

	ActionCreateRoute = "CREATE_ROUTE"
)

const (
	ActionTypeUsers     = "users"
	ActionTypeRoles     = "roles"
	ActionTypeOrders    = "orders"
	ActionTypeAddresses = "addresses"
	ActionTypeRoutes    = "routes"
)

// ActionVocabulary is the closed set of permission units, seeded at bootstrap.
var ActionVocabulary = []domain.Action{
	{Name: ActionGetUsers, Description: "List and inspect users", Type: ActionTypeUsers},
	{Name: ActionDeleteUsers, Description: "Deactivate users", Type: ActionTypeUsers},

	{Name: ActionGetRoles, Description: "List roles", Type: ActionTypeRoles},
	{Name: ActionGetActions, Description: "List actions", Type: ActionTypeRoles},
	{Name: ActionCreateRole, Description: "Create roles", Type: ActionTypeRoles},
	{Name: ActionEditRole, Description: "Edit roles and their grants", Type: ActionTypeRoles},
	{Name: ActionDeleteRole, Description: "Deactivate roles", Type: ActionTypeRoles},
	{Name: ActionActiveRole, Description: "Reactivate roles", Type: ActionTypeRoles},

	{Name: ActionCreateOrder, Description: "Place orders", Type: ActionTypeOrders},
	{Name: ActionCancelOrder, Description: "Cancel pending orders", Type: ActionTypeOrders},
	{Name: ActionConfirmOrder, Description: "Confirm pending orders", Type: ActionTypeOrders},
	{Name: ActionAssignOrder, Description: "Assign orders to delivery users", Type: ActionTypeOrders},
	{Name: ActionChangeStatusOrders, Description: "Bulk override order status", Type: ActionTypeOrders},
	{Name: ActionGetOrders, Description: "List all orders", Type: ActionTypeOrders},
	{Name: ActionGetOrdersUser, Description: "List orders of a user", Type: ActionTypeOrders},
	{Name: ActionGetOrdersDelivery, Description: "List orders of a delivery user", Type: ActionTypeOrders},
	{Name: ActionGetDeliveries, Description: "List delivery users", Type: ActionTypeOrders},
	{Name: ActionSearchOrders, Description: "Search the order index", Type: ActionTypeOrders},

	{Name: ActionCreateAddress, Description: "Register addresses", Type: ActionTypeAddresses},
	{Name: ActionEditAddress, Description: "Edit and delete addresses", Type: ActionTypeAddresses},
	{Name: ActionGetAddress, Description: "List addresses", Type: ActionTypeAddresses},

	{Name: ActionCreateRoute, Description: "Generate delivery routes", Type: ActionTypeRoutes},
}
