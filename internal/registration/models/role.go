package models

import (
	"encoding/json"
	"strconv"

	dErrors "evidgate/pkg/domain-errors"
)

// Role is the domain value identifying what a registered user may do.
// Invariant: the value must be one of the eight supported roles.
//
// Usage: construct via ParseRole or RoleFromID at trust boundaries to enforce
// the allowlist; direct casting bypasses validation.
type Role string

// Supported roles. The numeric IDs are the stable wire encoding used by the
// registration form and by legacy local-store records.
const (
	RolePublicViewer      Role = "public_viewer"
	RoleInvestigator      Role = "investigator"
	RoleForensicAnalyst   Role = "forensic_analyst"
	RoleLegalProfessional Role = "legal_professional"
	RoleCourtOfficial     Role = "court_official"
	RoleEvidenceManager   Role = "evidence_manager"
	RoleAuditor           Role = "auditor"
	RoleAdmin             Role = "admin"
)

// roleIDs is the single source of truth for the numeric encoding.
var roleIDs = map[int]Role{
	1: RolePublicViewer,
	2: RoleInvestigator,
	3: RoleForensicAnalyst,
	4: RoleLegalProfessional,
	5: RoleCourtOfficial,
	6: RoleEvidenceManager,
	7: RoleAuditor,
	8: RoleAdmin,
}

var roleNames = map[Role]string{
	RolePublicViewer:      "Public Viewer",
	RoleInvestigator:      "Investigator",
	RoleForensicAnalyst:   "Forensic Analyst",
	RoleLegalProfessional: "Legal Professional",
	RoleCourtOfficial:     "Court Official",
	RoleEvidenceManager:   "Evidence Manager",
	RoleAuditor:           "Auditor",
	RoleAdmin:             "Administrator",
}

// ParseRole constructs a Role from an external string value.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// RoleFromID resolves the numeric wire encoding (1-8) to a Role.
func RoleFromID(id int) (Role, error) {
	if r, ok := roleIDs[id]; ok {
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role id")
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsAdmin reports whether the role is the administrator role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// String returns the string representation of the role.
func (r Role) String() string { return string(r) }

// DisplayName returns the human-readable role name, or "" for unknown roles.
func (r Role) DisplayName() string { return roleNames[r] }

// ID returns the numeric wire encoding of the role, or 0 for unknown roles.
func (r Role) ID() int {
	for id, role := range roleIDs {
		if role == r {
			return id
		}
	}
	return 0
}

// RoleCode accepts both encodings of a role on the wire: the canonical string
// ("investigator") and the legacy numeric ID (2). Stored records always carry
// the canonical string; the numeric form only survives at trust boundaries.
type RoleCode struct {
	role Role
	set  bool
}

// NewRoleCode wraps an already validated role.
func NewRoleCode(r Role) RoleCode { return RoleCode{role: r, set: r != ""} }

// Role resolves the decoded value.
//
// Errors: CodeInvalidInput when the field was absent or unsupported.
func (c RoleCode) Role() (Role, error) {
	if !c.set {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role is required")
	}
	if !c.role.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return c.role, nil
}

// IsZero reports whether the field was absent from the payload.
func (c RoleCode) IsZero() bool { return !c.set }

func (c RoleCode) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(string(c.role))
}

func (c *RoleCode) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*c = RoleCode{}
		return nil
	}
	if id, err := strconv.Atoi(s); err == nil {
		role, ok := roleIDs[id]
		if !ok {
			// Keep the invalid marker so Role() reports it at validation time.
			*c = RoleCode{role: Role(s), set: true}
			return nil
		}
		*c = RoleCode{role: role, set: true}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	// A quoted numeric ID ("8") is treated like the bare number; HTML forms
	// deliver role IDs as strings.
	if id, err := strconv.Atoi(str); err == nil {
		if role, ok := roleIDs[id]; ok {
			*c = RoleCode{role: role, set: true}
			return nil
		}
	}
	*c = RoleCode{role: Role(str), set: str != ""}
	return nil
}
