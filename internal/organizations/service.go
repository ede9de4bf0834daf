// Package organizations is the registry of organization entities. Visibility
// and mutation are ownership-gated: a plain USER only ever sees and touches
// organizations they own.
package organizations

import (
	"context"
	"errors"

	"github.com/hugh/orgbook/internal/apperrors"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/database/models"
	"github.com/hugh/orgbook/internal/query"
	"github.com/hugh/orgbook/internal/roles"
	"gorm.io/gorm"
)

// AccountDirectory is the narrow slice of the account registry this package
// needs: plain lookups for actor resolution and owner-role validation.
type AccountDirectory interface {
	Get(ctx context.Context, id uint) (*models.Account, error)
}

type Service struct {
	db          *gorm.DB
	accounts    AccountDirectory
	attachments *attachments.Store
}

func NewService(db *gorm.DB, accounts AccountDirectory, store *attachments.Store) *Service {
	return &Service{db: db, accounts: accounts, attachments: store}
}

type CreateInput struct {
	Title   string
	Service string
	Address string
	Capital int
	// OwnerID is ignored for USER actors; required for elevated roles.
	OwnerID uint
}

type UpdateInput struct {
	Title   *string
	Service *string
	Address *string
	Capital *int
	// OwnerID re-owns the organization; elevated roles only.
	OwnerID         *uint
	ClearAttachment bool
}

type Filter struct {
	OwnerID      uint   // elevated roles only; ignored for USER actors
	CreatedAt    string // date prefix, YYYY-MM-DD
	CapitalMin   int
	CapitalMax   int
	Search       string // contains, title
	TitleOrder   string // ASC or DESC
	ServiceOrder string // ASC or DESC
	Limit        int
	Page         int
}

type List struct {
	List        []models.Organization `json:"list"`
	TotalAmount int64                 `json:"totalAmount"`
	Limit       int                   `json:"limit"`
	Page        int                   `json:"page"`
}

// Create registers a new organization. A USER actor always becomes the owner
// regardless of the supplied owner id; elevated roles must name an owner with
// role USER.
func (s *Service) Create(ctx context.Context, input CreateInput, actingID uint, upload *attachments.Upload) (*models.Organization, error) {
	acting, err := s.accounts.Get(ctx, actingID)
	if err != nil {
		return nil, err
	}

	if taken, err := s.isTitleTaken(ctx, input.Title); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Conflict("title is already in use")
	}

	owner := acting
	if acting.Role != roles.User {
		if input.OwnerID == 0 {
			return nil, apperrors.BadRequest("owner id is required")
		}
		owner, err = s.accounts.Get(ctx, input.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner.Role != roles.User {
			return nil, apperrors.Forbidden("only a USER may own organizations")
		}
	}

	org := models.Organization{
		Title:     input.Title,
		Service:   input.Service,
		Address:   input.Address,
		Capital:   input.Capital,
		AccountID: owner.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("title is already in use")
			}
			return err
		}
		if upload != nil {
			store := s.attachments.WithTx(tx)
			created, err := store.Upload(ctx, upload.Data, upload.MimeType)
			if err != nil {
				return err
			}
			return store.LinkOwner(ctx, created.ID, models.OwnerOrganizations, org.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.get(ctx, org.ID)
}

// FindAll lists organizations. USER actors are restricted to their own
// organizations and their owner filter is ignored.
func (s *Service) FindAll(ctx context.Context, filter Filter, actingID uint) (*List, error) {
	acting, err := s.accounts.Get(ctx, actingID)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Organization{}).
		Preload("Account").
		Preload("Account.Attachment").
		Preload("Attachment")

	if acting.Role == roles.User {
		q = q.Where("account_id = ?", acting.ID)
	} else if filter.OwnerID != 0 {
		q = q.Where("account_id = ?", filter.OwnerID)
	}

	q = query.DatePrefix(q, "organizations.created_at", filter.CreatedAt)
	q = query.MinInt(q, "capital", filter.CapitalMin)
	q = query.MaxInt(q, "capital", filter.CapitalMax)
	q = query.ContainsFold(q, filter.Search, "title")

	var sorts []query.Sort
	if dir, ok := query.ParseDirection(filter.TitleOrder); ok {
		sorts = append(sorts, query.Sort{Column: "title", Direction: dir})
	}
	if dir, ok := query.ParseDirection(filter.ServiceOrder); ok {
		sorts = append(sorts, query.Sort{Column: "service", Direction: dir})
	}
	q = query.OrderBy(q, sorts)

	var orgs []models.Organization
	total, err := query.Paginate(q, query.Pagination{Limit: filter.Limit, Page: filter.Page}, &orgs)
	if err != nil {
		return nil, err
	}

	return &List{
		List:        orgs,
		TotalAmount: total,
		Limit:       filter.Limit,
		Page:        filter.Page,
	}, nil
}

// FindOne loads a live organization. A USER actor retrieving an organization
// they do not own gets NotFound, never Forbidden. actingID zero skips the
// ownership check (internal use).
func (s *Service) FindOne(ctx context.Context, id, actingID uint) (*models.Organization, error) {
	org, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actingID != 0 && actingID != org.AccountID {
		acting, err := s.accounts.Get(ctx, actingID)
		if err != nil {
			return nil, err
		}
		if acting.Role == roles.User {
			return nil, apperrors.NotFound("organization not found")
		}
	}

	return org, nil
}

// Update mutates an organization. Re-owning is permitted for elevated roles
// and revalidates that the new owner has role USER.
func (s *Service) Update(ctx context.Context, id uint, input UpdateInput, actingID uint, upload *attachments.Upload) (*models.Organization, error) {
	org, err := s.FindOne(ctx, id, actingID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil && *input.Title != org.Title {
		if taken, err := s.isTitleTaken(ctx, *input.Title); err != nil {
			return nil, err
		} else if taken {
			return nil, apperrors.Conflict("title is already in use")
		}
		updates["title"] = *input.Title
	}
	if input.Service != nil {
		updates["service"] = *input.Service
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Capital != nil {
		updates["capital"] = *input.Capital
	}

	if input.OwnerID != nil {
		owner, err := s.accounts.Get(ctx, *input.OwnerID)
		if err != nil {
			return nil, err
		}
		if owner.Role != roles.User {
			return nil, apperrors.Forbidden("only a USER may own organizations")
		}
		updates["account_id"] = owner.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.attachments.WithTx(tx)

		switch {
		case upload != nil:
			if org.Attachment != nil {
				if _, err := store.Replace(ctx, org.Attachment.ID, upload.Data, upload.MimeType); err != nil {
					return err
				}
			} else {
				created, err := store.Upload(ctx, upload.Data, upload.MimeType)
				if err != nil {
					return err
				}
				if err := store.LinkOwner(ctx, created.ID, models.OwnerOrganizations, org.ID); err != nil {
					return err
				}
			}
		case input.ClearAttachment && org.Attachment != nil:
			if err := store.Remove(ctx, org.Attachment.ID); err != nil {
				return err
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Organization{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("title is already in use")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.get(ctx, id)
}

// Remove hard-deletes the linked attachment, then tombstones the
// organization, in one transaction.
func (s *Service) Remove(ctx context.Context, id, actingID uint) error {
	org, err := s.FindOne(ctx, id, actingID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if org.Attachment != nil {
			if err := s.attachments.WithTx(tx).Remove(ctx, org.Attachment.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Organization{}, id).Error
	})
}

// RemoveAllForAccount tombstones every live organization owned by the account
// and hard-deletes their attachments. Invoked only from the account removal
// cascade; runs on the caller's transaction.
func (s *Service) RemoveAllForAccount(ctx context.Context, tx *gorm.DB, accountID uint) error {
	var orgs []models.Organization
	if err := tx.WithContext(ctx).
		Preload("Attachment").
		Where("account_id = ?", accountID).
		Find(&orgs).Error; err != nil {
		return err
	}

	store := s.attachments.WithTx(tx)
	for _, org := range orgs {
		if org.Attachment != nil {
			if err := store.Remove(ctx, org.Attachment.ID); err != nil {
				return err
			}
		}
	}

	return tx.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.Organization{}).Error
}

// get loads a live organization with its joins, without visibility checks.
func (s *Service) get(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := s.db.WithContext(ctx).
		Preload("Account").
		Preload("Account.Attachment").
		Preload("Attachment").
		First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("organization not found")
		}
		return nil, err
	}
	return &org, nil
}

// isTitleTaken probes title uniqueness including tombstoned rows.
func (s *Service) isTitleTaken(ctx context.Context, title string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().
		Model(&models.Organization{}).
		Where("title = ?", title).
		Count(&count).Error
	return count > 0, err
}
