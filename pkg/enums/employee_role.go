package enums

import "fmt"

// EmployeeRole represents a business-level permissions role.
type EmployeeRole string

const (
	EmployeeRoleOwner    EmployeeRole = "owner"
	EmployeeRoleManager  EmployeeRole = "manager"
	EmployeeRoleEmployee EmployeeRole = "employee"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleOwner,
	EmployeeRoleManager,
	EmployeeRoleEmployee,
}

// String implements fmt.Stringer.
func (r EmployeeRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known EmployeeRole.
func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseEmployeeRole converts raw input into an EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
