package adapters

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"purchase_backend/internal/feature/auth/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Name         string `gorm:"size:255"`
	Phone        string `gorm:"size:32"`
	Address      string `gorm:"size:512"`
	Preferences  datatypes.JSON
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	u := &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Profile: entity.Profile{
			Phone:   m.Phone,
			Address: m.Address,
		},
		CreatedAt: m.CreatedAt,
	}
	if len(m.Preferences) > 0 {
		// broken JSON leaves Preferences empty rather than failing the lookup
		_ = json.Unmarshal(m.Preferences, &u.Profile.Preferences)
	}
	return u
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) (*UserModel, error) {
	m := &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Phone:        u.Profile.Phone,
		Address:      u.Profile.Address,
		CreatedAt:    u.CreatedAt,
	}
	if len(u.Profile.Preferences) > 0 {
		b, err := json.Marshal(u.Profile.Preferences)
		if err != nil {
			return nil, err
		}
		m.Preferences = datatypes.JSON(b)
	}
	return m, nil
}
