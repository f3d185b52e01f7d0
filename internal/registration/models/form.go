package models

import (
	"strings"
	"time"

	dErrors "evidgate/pkg/domain-errors"
)

// RegistrationForm is the self-registration submission. Role accepts both the
// canonical string and the numeric ID the original registration form posts.
type RegistrationForm struct {
	FullName     string   `json:"full_name"`
	Role         RoleCode `json:"role"`
	Department   string   `json:"department"`
	Jurisdiction string   `json:"jurisdiction"`
	BadgeNumber  string   `json:"badge_number"`
}

// Validate checks the submission and resolves the role.
//
// Policy: fullName and role are always required. Every role except the public
// viewer is a professional role and additionally requires department,
// jurisdiction and badge number. A failed validation implies no state change
// and no partial write.
//
// Errors: CodeInvalidInput for missing or malformed fields;
// CodePolicyViolation when the submission asks for the admin role, which can
// only be granted out of band by an existing administrator.
func (f *RegistrationForm) Validate() (Role, error) {
	if strings.TrimSpace(f.FullName) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	role, err := f.Role.Role()
	if err != nil {
		return "", err
	}
	if role.IsAdmin() {
		return "", dErrors.New(dErrors.CodePolicyViolation,
			"administrator role cannot be self-registered; contact an existing administrator")
	}
	if role != RolePublicViewer {
		if strings.TrimSpace(f.Department) == "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "department is required for professional roles")
		}
		if strings.TrimSpace(f.Jurisdiction) == "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction is required for professional roles")
		}
		if strings.TrimSpace(f.BadgeNumber) == "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "badge number is required for professional roles")
		}
	}
	return role, nil
}

// ToRecord builds the user record a valid submission persists. Public viewers
// get fixed placeholder credentials; professional fields pass through trimmed.
func (f *RegistrationForm) ToRecord(address string, role Role, now time.Time) UserRecord {
	record := UserRecord{
		WalletAddress:    address,
		FullName:         strings.TrimSpace(f.FullName),
		Role:             role,
		Department:       strings.TrimSpace(f.Department),
		Jurisdiction:     strings.TrimSpace(f.Jurisdiction),
		BadgeNumber:      strings.TrimSpace(f.BadgeNumber),
		IsActive:         true,
		RegistrationDate: now,
	}
	if role == RolePublicViewer {
		record.Department = "Public"
		record.Jurisdiction = "Public"
		record.BadgeNumber = ""
	}
	return record
}
