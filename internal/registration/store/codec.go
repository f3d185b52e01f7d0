package store

import (
	"encoding/json"
	"fmt"
	"time"

	"evidgate/internal/registration/models"
)

// recordJSON is the wire form of a user record. Role goes through RoleCode so
// legacy documents carrying the numeric encoding (role 8 instead of "admin")
// decode to the same logical role as current ones.
type recordJSON struct {
	WalletAddress    string          `json:"wallet_address"`
	FullName         string          `json:"full_name"`
	Role             models.RoleCode `json:"role"`
	Department       string          `json:"department"`
	Jurisdiction     string          `json:"jurisdiction"`
	BadgeNumber      string          `json:"badge_number"`
	IsActive         bool            `json:"is_active"`
	RegistrationDate time.Time       `json:"registration_date"`
}

func encodeRecord(record *models.UserRecord) ([]byte, error) {
	data, err := json.Marshal(recordJSON{
		WalletAddress:    record.WalletAddress,
		FullName:         record.FullName,
		Role:             models.NewRoleCode(record.Role),
		Department:       record.Department,
		Jurisdiction:     record.Jurisdiction,
		BadgeNumber:      record.BadgeNumber,
		IsActive:         record.IsActive,
		RegistrationDate: record.RegistrationDate,
	})
	if err != nil {
		return nil, fmt.Errorf("encode user record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*models.UserRecord, error) {
	var wire recordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	role, err := wire.Role.Role()
	if err != nil {
		return nil, fmt.Errorf("decode user record role: %w", err)
	}
	return &models.UserRecord{
		WalletAddress:    wire.WalletAddress,
		FullName:         wire.FullName,
		Role:             role,
		Department:       wire.Department,
		Jurisdiction:     wire.Jurisdiction,
		BadgeNumber:      wire.BadgeNumber,
		IsActive:         wire.IsActive,
		RegistrationDate: wire.RegistrationDate,
	}, nil
}
