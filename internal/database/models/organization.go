package models

type Organization struct {
	Base
	Title   string `gorm:"size:50;uniqueIndex;not null" json:"title"`
	Service string `gorm:"size:30;not null" json:"service"`
	Address string `gorm:"not null" json:"address"`
	Capital int    `gorm:"not null" json:"capital"`

	// Owning account, must have role USER
	AccountID uint     `gorm:"index;not null" json:"accountId"`
	Account   *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`

	Attachment *Attachment `gorm:"polymorphic:Owner;polymorphicValue:organizations" json:"attachment,omitempty"`
}

func (Organization) TableName() string {
	return "organizations"
}
