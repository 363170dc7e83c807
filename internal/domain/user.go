package domain

// Role enumerates the business roles an operator can hold. The ticket
// workflow only distinguishes Admin and Employee; the remaining roles are
// carried for display and routing elsewhere in the console.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
	RoleSales    Role = "Sales"
	RoleHR       Role = "HR"
	RoleClient   Role = "Client"
)

// User is an operator account. The workflow reads users to resolve
// assignees and admin notification targets; the current actor is a User.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Email string `json:"email,omitempty"`
}
