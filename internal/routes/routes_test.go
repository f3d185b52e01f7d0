package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"evidgate/internal/registration/models"
)

func TestForRole(t *testing.T) {
	t.Run("every supported role has a destination", func(t *testing.T) {
		expected := map[models.Role]Destination{
			models.RolePublicViewer:      "/dashboards/public",
			models.RoleInvestigator:      "/dashboards/investigator",
			models.RoleForensicAnalyst:   "/dashboards/analyst",
			models.RoleLegalProfessional: "/dashboards/legal",
			models.RoleCourtOfficial:     "/dashboards/court",
			models.RoleEvidenceManager:   "/dashboards/manager",
			models.RoleAuditor:           "/dashboards/auditor",
			models.RoleAdmin:             "/admin",
		}
		for role, want := range expected {
			assert.Equal(t, want, ForRole(role), role)
		}
	})

	t.Run("unknown roles still navigate somewhere", func(t *testing.T) {
		assert.Equal(t, DefaultDestination, ForRole(""))
		assert.Equal(t, DefaultDestination, ForRole(models.Role("wizard")))
		assert.Equal(t, DefaultDestination, ForRole(models.Role("8")))
	})
}
