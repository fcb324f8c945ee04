package contacts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
	"boothbook/internal/ports"
)

type Service struct {
	repo   ports.ContactRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.Contacts = (*Service)(nil)

func New(repo ports.ContactRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("contacts"), now: time.Now}
}

func (s *Service) Create(ctx context.Context, in domain.ContactInput) (*domain.Contact, error) {
	c, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = c.UpdatedAt
	if err := s.repo.CreateContact(ctx, c); err != nil {
		s.logger.Error("Failed to create contact", zap.String("name", c.Name), zap.Error(err))
		return nil, err
	}
	return s.repo.GetContact(ctx, c.ID)
}

func (s *Service) Update(ctx context.Context, id string, in domain.ContactInput) (*domain.Contact, error) {
	c, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.repo.UpdateContact(ctx, c); err != nil {
		s.logger.Error("Failed to update contact", zap.String("contact_id", id), zap.Error(err))
		return nil, err
	}
	return s.repo.GetContact(ctx, id)
}

// Delete removes the contact and, with it, its meeting participations.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteContact(ctx, id); err != nil {
		s.logger.Error("Failed to delete contact", zap.String("contact_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Contact, error) {
	return s.repo.GetContact(ctx, id)
}

func (s *Service) List(ctx context.Context, f filter.ContactFilter) ([]domain.Contact, error) {
	out, err := s.repo.ListContacts(ctx, filter.BuildContactFilter(f))
	if err != nil {
		s.logger.Error("Failed to list contacts",
			zap.String("search", f.Search),
			zap.String("company_id", f.CompanyID),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *Service) fromInput(in domain.ContactInput) (*domain.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("contact name is required")
	}
	var companyID *string
	if in.CompanyID != nil {
		if id := strings.TrimSpace(*in.CompanyID); id != "" {
			companyID = &id
		}
	}
	return &domain.Contact{
		Name:      name,
		CompanyID: companyID,
		Email:     in.Email,
		Phone:     in.Phone,
		Position:  in.Position,
		Notes:     in.Notes,
		UpdatedAt: s.now().UTC(),
	}, nil
}
