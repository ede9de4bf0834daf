// Package attachments manages the binary payloads linked to accounts and
// organizations. An attachment belongs to at most one owner; rows are
// hard-deleted when the owner clears or loses them.
package attachments

import (
	"context"
	"errors"

	"github.com/hugh/orgbook/internal/apperrors"
	"github.com/hugh/orgbook/internal/database/models"
	"gorm.io/gorm"
)

// Upload is a raw payload handed in by the transport layer.
type Upload struct {
	Data     []byte
	MimeType string
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a store bound to tx so attachment changes join the caller's
// transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Upload creates a new attachment row. No owner is set; the caller links one
// afterwards.
func (s *Store) Upload(ctx context.Context, data []byte, mimeType string) (*models.Attachment, error) {
	attachment := models.Attachment{
		Data:     data,
		MimeType: mimeType,
	}
	if err := s.db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Replace overwrites payload and MIME type in place. Identity and owner link
// are unchanged.
func (s *Store) Replace(ctx context.Context, id uint, data []byte, mimeType string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := s.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("attachment not found")
		}
		return nil, err
	}

	attachment.Data = data
	attachment.MimeType = mimeType
	if err := s.db.WithContext(ctx).Save(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// LinkOwner sets the exclusive owner back-reference.
func (s *Store) LinkOwner(ctx context.Context, id uint, ownerType string, ownerID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"owner_type": ownerType, "owner_id": ownerID}).Error
}

// Get loads an attachment by id.
func (s *Store) Get(ctx context.Context, id uint) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := s.db.WithContext(ctx).First(&attachment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("attachment not found")
		}
		return nil, err
	}
	return &attachment, nil
}

// Remove hard-deletes an attachment row. Callers check existence through the
// owning entity's attachment reference first.
func (s *Store) Remove(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Attachment{}, id).Error
}
