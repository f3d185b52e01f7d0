// Package routes maps resolved roles to dashboard destinations. It is a pure
// lookup table, but its totality is part of the registration flow's contract:
// an unknown or absent role must still navigate somewhere.
package routes

import "evidgate/internal/registration/models"

// Destination is a client-side route.
type Destination string

// DefaultDestination is where unknown or absent roles land. It never blocks
// navigation.
const DefaultDestination Destination = "/dashboard"

var destinations = map[models.Role]Destination{
	models.RolePublicViewer:      "/dashboards/public",
	models.RoleInvestigator:      "/dashboards/investigator",
	models.RoleForensicAnalyst:   "/dashboards/analyst",
	models.RoleLegalProfessional: "/dashboards/legal",
	models.RoleCourtOfficial:     "/dashboards/court",
	models.RoleEvidenceManager:   "/dashboards/manager",
	models.RoleAuditor:           "/dashboards/auditor",
	models.RoleAdmin:             "/admin",
}

// ForRole returns the dashboard destination for a role. Total: every defined
// role maps to exactly one destination and anything else maps to the default.
func ForRole(role models.Role) Destination {
	if dest, ok := destinations[role]; ok {
		return dest
	}
	return DefaultDestination
}
