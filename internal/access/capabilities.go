package access

import "github.com/comptoir-lab/salesboard/internal/models"

// Operation names a role-gated action.
type Operation string

// Gated operations.
const (
	OpGeneratePaymentLink Operation = "payment_link.generate"
	OpViewTransactions    Operation = "transactions.view"
	OpViewDashboardStats  Operation = "stats.view"
	OpManageUsers         Operation = "users.manage"
	OpManageCredentials   Operation = "credentials.manage"
	OpViewAdminDashboard  Operation = "admin_dashboard.view"
	OpViewTeamPerformance Operation = "team_performance.view"
)

// capabilities is the authorization matrix: one row per operation listing the
// roles allowed to perform it.
var capabilities = map[Operation][]string{
	OpGeneratePaymentLink: {models.RoleAdmin, models.RoleModerator, models.RoleUser},
	OpViewTransactions:    {models.RoleAdmin, models.RoleModerator, models.RoleUser},
	OpViewDashboardStats:  {models.RoleAdmin, models.RoleModerator, models.RoleUser},
	OpManageUsers:         {models.RoleAdmin},
	OpManageCredentials:   {models.RoleAdmin},
	OpViewAdminDashboard:  {models.RoleAdmin},
	OpViewTeamPerformance: {models.RoleAdmin},
}

// Allowed reports whether a role may perform an operation.
func Allowed(role string, op Operation) bool {
	for _, allowed := range capabilities[op] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Operations returns every known operation, for audit tooling and tests.
func Operations() []Operation {
	out := make([]Operation, 0, len(capabilities))
	for op := range capabilities {
		out = append(out, op)
	}
	return out
}
