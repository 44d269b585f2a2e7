package constants

import "fmt"

// User roles
const (
	RoleTrainee     = "trainee"
	RoleFaculty     = "faculty"
	RoleAdmin       = "admin"
	RoleLeadership  = "leadership"
	RoleSystemAdmin = "system-admin"
)

// Role error message templates
const (
	ErrOnlyLeadershipCanAccess = "Only leadership or admin may access %s."
	ErrOnlyAdminsCanAccess     = "Only admins may access %s."
	ErrOnlyFacultyCanAccess    = "Only faculty or leadership may access %s."
)

func RoleErrorLeadership(feature string) string {
	return fmt.Sprintf(ErrOnlyLeadershipCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorFaculty(feature string) string {
	return fmt.Sprintf(ErrOnlyFacultyCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleTrainee,
		RoleFaculty,
		RoleAdmin,
		RoleLeadership,
		RoleSystemAdmin,
	}

	// Mailbox + dashboards + exports
	LeadershipAndAbove = []string{
		RoleLeadership,
		RoleAdmin,
		RoleSystemAdmin,
	}

	// Program-scoped leadership (mailbox default scope)
	ProgramLeadership = []string{
		RoleLeadership,
		RoleAdmin,
	}

	// May author assessments
	EvaluatorRoles = []string{
		RoleFaculty,
		RoleLeadership,
		RoleAdmin,
		RoleSystemAdmin,
	}

	AdminOnly = []string{
		RoleAdmin,
		RoleSystemAdmin,
	}
)

func IsValidRole(r string) bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}
