package models

import "time"

// Owner discriminator values for Attachment.OwnerType.
const (
	OwnerAccounts      = "accounts"
	OwnerOrganizations = "organizations"
)

// Attachment is a binary payload exclusively linked to one account or one
// organization. Attachments are never tombstoned: rows are hard-deleted the
// moment their owner stops referencing them.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Data     []byte `gorm:"not null" json:"-"`
	MimeType string `gorm:"size:120;not null" json:"mimeType"`

	// Exclusive owner back-reference, set after upload.
	OwnerType string `gorm:"size:20;index:idx_attachments_owner" json:"-"`
	OwnerID   uint   `gorm:"index:idx_attachments_owner" json:"-"`
}

func (Attachment) TableName() string {
	return "attachments"
}
