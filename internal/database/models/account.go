package models

import "github.com/hugh/orgbook/internal/roles"

type Account struct {
	Base
	Handle       string     `gorm:"size:20;uniqueIndex;not null" json:"handle"`
	Email        string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         roles.Role `gorm:"type:varchar(16);not null" json:"role"` // USER, ADMIN, SUPERADMIN

	// Relationships
	Attachment    *Attachment    `gorm:"polymorphic:Owner;polymorphicValue:accounts" json:"attachment,omitempty"`
	Organizations []Organization `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}
