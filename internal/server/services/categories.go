package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/server/repositories/repomanager"
)

const maxCategoryNameLen = 100

type CategoryService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewCategoryService(m repomanager.RepositoryManager, log logging.Logger) *CategoryService {
	return &CategoryService{repomanager: m, log: log.With("module", "categories"), now: utcNow}
}

func categoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.Invalid("name", "name is required")
	}
	if len(name) > maxCategoryNameLen {
		return "", common.Invalid("name", "longer than %d bytes", maxCategoryNameLen)
	}
	return name, nil
}

// Create adds a category. Names are trimmed; a name the owner already uses
// is common.ErrConflict.
func (s *CategoryService) Create(ctx context.Context, ownerID, name string) (*models.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Categories().Create(ctx, &models.Category{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "category created", "owner", ownerID, "id", c.ID, "name", c.Name)
	return c, nil
}

// List returns the owner's categories sorted by name.
func (s *CategoryService) List(ctx context.Context, ownerID string) ([]models.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.Categories().FindByOwner(ctx, ownerID)
}

// Rename gives a category a new trimmed name under the same rules as Create.
func (s *CategoryService) Rename(ctx context.Context, ownerID, id, name string) (*models.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}

	c, err := s.repomanager.Categories().Rename(ctx, ownerID, id, name)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "category renamed", "owner", ownerID, "id", id, "name", c.Name)
	return c, nil
}

// Delete removes a category. Its transactions and budget limits stay and
// are reported under common.UnknownCategoryName from then on.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if err := s.repomanager.Categories().Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.log.Info(ctx, "category deleted", "owner", ownerID, "id", id)
	return nil
}
