// Package accounts is the registry of account entities. Every read and write
// is gated by the role hierarchy; removal cascades to owned organizations and
// the account's attachment.
package accounts

import (
	"context"
	"errors"

	"github.com/hugh/orgbook/internal/apperrors"
	"github.com/hugh/orgbook/internal/attachments"
	"github.com/hugh/orgbook/internal/auth"
	"github.com/hugh/orgbook/internal/database/models"
	"github.com/hugh/orgbook/internal/query"
	"github.com/hugh/orgbook/internal/roles"
	"gorm.io/gorm"
)

// OrganizationSweeper is the narrow slice of the organization registry the
// account cascade needs. Bound after construction to break the construction
// cycle between the two registries.
type OrganizationSweeper interface {
	RemoveAllForAccount(ctx context.Context, tx *gorm.DB, accountID uint) error
}

type Service struct {
	db          *gorm.DB
	hasher      auth.PasswordHasher
	attachments *attachments.Store
	orgs        OrganizationSweeper
}

func NewService(db *gorm.DB, hasher auth.PasswordHasher, store *attachments.Store) *Service {
	return &Service{db: db, hasher: hasher, attachments: store}
}

// BindOrganizations wires the organization cascade. Must be called before the
// service handles requests.
func (s *Service) BindOrganizations(sweeper OrganizationSweeper) {
	s.orgs = sweeper
}

type CreateInput struct {
	Handle   string
	Email    string
	Password string
	Role     roles.Role
}

type UpdateInput struct {
	Handle      *string
	Email       *string
	Password    *string
	OldPassword *string
	// Role present in an update payload is always rejected.
	Role            *roles.Role
	ClearAttachment bool
}

type Filter struct {
	Role      roles.Role // exact match
	CreatedAt string     // date prefix, YYYY-MM-DD
	Search    string     // contains, handle or email
	Limit     int
	Page      int
}

type List struct {
	List        []models.Account `json:"list"`
	TotalAmount int64            `json:"totalAmount"`
	Limit       int              `json:"limit"`
	Page        int              `json:"page"`
}

// Create registers a new account. actingID is zero for unauthenticated signup;
// when set, the actor's current role is re-fetched and the hierarchy check
// hides the operation behind NotFound rather than Forbidden.
func (s *Service) Create(ctx context.Context, input CreateInput, actingID uint) (*models.Account, error) {
	if !input.Role.Valid() {
		return nil, apperrors.BadRequest("invalid role")
	}

	if actingID != 0 {
		acting, err := s.Get(ctx, actingID)
		if err != nil {
			return nil, err
		}
		if roles.IsManagementForbidden(acting.Role, input.Role) {
			return nil, apperrors.NotFound("account not found")
		}
	}

	if taken, err := s.isTaken(ctx, "email", input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Conflict("email is already in use")
	}
	if taken, err := s.isTaken(ctx, "handle", input.Handle); err != nil {
		return nil, err
	} else if taken {
		return nil, apperrors.Conflict("handle is already in use")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	account := models.Account{
		Handle:       input.Handle,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("handle or email is already in use")
		}
		return nil, err
	}

	return s.Get(ctx, account.ID)
}

// FindAll lists accounts for an ADMIN or SUPERADMIN actor. Admins see only
// plain users; superadmins see everyone except other superadmins.
func (s *Service) FindAll(ctx context.Context, filter Filter, actingID uint) (*List, error) {
	acting, err := s.Get(ctx, actingID)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Account{}).Preload("Attachment")

	switch acting.Role {
	case roles.Admin:
		q = q.Where("role = ?", roles.User)
	case roles.SuperAdmin:
		q = q.Where("role <> ?", roles.SuperAdmin)
	default:
		return nil, apperrors.Forbidden("access denied")
	}

	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	q = query.DatePrefix(q, "accounts.created_at", filter.CreatedAt)
	q = query.ContainsFold(q, filter.Search, "handle", "email")

	var accounts []models.Account
	total, err := query.Paginate(q, query.Pagination{Limit: filter.Limit, Page: filter.Page}, &accounts)
	if err != nil {
		return nil, err
	}

	return &List{
		List:        accounts,
		TotalAmount: total,
		Limit:       filter.Limit,
		Page:        filter.Page,
	}, nil
}

// FindOne loads a live account. When actingID names a different account, the
// hierarchy check applies and a denied target is indistinguishable from an
// absent one.
func (s *Service) FindOne(ctx context.Context, id, actingID uint) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actingID != 0 && actingID != id {
		acting, err := s.Get(ctx, actingID)
		if err != nil {
			return nil, err
		}
		if roles.IsManagementForbidden(acting.Role, account.Role) {
			return nil, apperrors.NotFound("account not found")
		}
	}

	return account, nil
}

// Get loads a live account with its attachment, without any visibility check.
// Used internally and by the organization registry for owner resolution.
func (s *Service) Get(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).
		Preload("Attachment").
		First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("account not found")
		}
		return nil, err
	}
	return &account, nil
}

// Update mutates an account. Self password changes must present the current
// password; hierarchy-permitted administrators may reset without it. The role
// field is immutable.
func (s *Service) Update(ctx context.Context, id uint, input UpdateInput, actingID uint, upload *attachments.Upload) (*models.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if id != actingID {
		acting, err := s.Get(ctx, actingID)
		if err != nil {
			return nil, err
		}
		if roles.IsManagementForbidden(acting.Role, account.Role) {
			return nil, apperrors.NotFound("account not found")
		}
	}

	if input.Role != nil {
		return nil, apperrors.Conflict("role is immutable")
	}

	updates := map[string]interface{}{}

	if input.Email != nil && *input.Email != account.Email {
		if taken, err := s.isTaken(ctx, "email", *input.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, apperrors.Conflict("email is already in use")
		}
		updates["email"] = *input.Email
	}
	if input.Handle != nil && *input.Handle != account.Handle {
		if taken, err := s.isTaken(ctx, "handle", *input.Handle); err != nil {
			return nil, err
		} else if taken {
			return nil, apperrors.Conflict("handle is already in use")
		}
		updates["handle"] = *input.Handle
	}

	if input.Password != nil {
		if actingID == id {
			old := ""
			if input.OldPassword != nil {
				old = *input.OldPassword
			}
			if !s.hasher.Compare(old, account.PasswordHash) {
				return nil, apperrors.BadRequest("invalid password")
			}
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.attachments.WithTx(tx)

		switch {
		case upload != nil:
			if account.Attachment != nil {
				if _, err := store.Replace(ctx, account.Attachment.ID, upload.Data, upload.MimeType); err != nil {
					return err
				}
			} else {
				created, err := store.Upload(ctx, upload.Data, upload.MimeType)
				if err != nil {
					return err
				}
				if err := store.LinkOwner(ctx, created.ID, models.OwnerAccounts, account.ID); err != nil {
					return err
				}
			}
		case input.ClearAttachment && account.Attachment != nil:
			if err := store.Remove(ctx, account.Attachment.ID); err != nil {
				return err
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("handle or email is already in use")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Remove tombstones an account after hard-deleting its attachment and
// tombstoning every organization it owns. The whole cascade runs in one
// transaction so a partial failure leaves nothing orphaned.
func (s *Service) Remove(ctx context.Context, id, actingID uint) error {
	account, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if id != actingID {
		acting, err := s.Get(ctx, actingID)
		if err != nil {
			return err
		}
		if roles.IsManagementForbidden(acting.Role, account.Role) {
			return apperrors.NotFound("account not found")
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orgs.RemoveAllForAccount(ctx, tx, id); err != nil {
			return err
		}
		if account.Attachment != nil {
			if err := s.attachments.WithTx(tx).Remove(ctx, account.Attachment.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Account{}, id).Error
	})
}

// isTaken probes uniqueness including tombstoned rows, so values of deleted
// accounts cannot be reclaimed.
func (s *Service) isTaken(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().
		Model(&models.Account{}).
		Where(column+" = ?", value).
		Count(&count).Error
	return count > 0, err
}
