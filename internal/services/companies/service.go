package companies

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"boothbook/internal/apperrors"
	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
	"boothbook/internal/ports"
)

// Service manages companies. Reads are decorated with the registrable domain
// of the company website.
type Service struct {
	repo   ports.CompanyRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.Companies = (*Service)(nil)

func New(repo ports.CompanyRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("companies"), now: time.Now}
}

func (s *Service) Create(ctx context.Context, in domain.CompanyInput) (*domain.Company, error) {
	c, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = c.UpdatedAt
	if err := s.repo.CreateCompany(ctx, c); err != nil {
		s.logger.Error("Failed to create company", zap.String("name", c.Name), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, c.ID)
}

func (s *Service) Update(ctx context.Context, id string, in domain.CompanyInput) (*domain.Company, error) {
	c, err := s.fromInput(in)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.repo.UpdateCompany(ctx, c); err != nil {
		s.logger.Error("Failed to update company", zap.String("company_id", id), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		s.logger.Error("Failed to delete company", zap.String("company_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Company, error) {
	c, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	c.WebsiteDomain = websiteDomain(c.Website)
	return c, nil
}

// List returns companies matching the search term, ordered by name.
func (s *Service) List(ctx context.Context, f filter.CompanyFilter) ([]domain.Company, error) {
	out, err := s.repo.ListCompanies(ctx, filter.BuildCompanyFilter(f))
	if err != nil {
		s.logger.Error("Failed to list companies", zap.String("search", f.Search), zap.Error(err))
		return nil, err
	}
	for i := range out {
		out[i].WebsiteDomain = websiteDomain(out[i].Website)
	}
	return out, nil
}

func (s *Service) fromInput(in domain.CompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("company name is required")
	}
	return &domain.Company{
		Name:         name,
		Industry:     in.Industry,
		Description:  in.Description,
		Website:      in.Website,
		Headquarters: in.Headquarters,
		Projects:     arrayfield.Normalize(in.Projects),
		KeyPersonnel: arrayfield.Normalize(in.KeyPersonnel),
		UpdatedAt:    s.now().UTC(),
	}, nil
}

// websiteDomain returns the registrable domain (eTLD+1) of a website such as
// "https://www.acme.com.pe/about", or nil when there is none.
func websiteDomain(website *string) *string {
	if website == nil {
		return nil
	}
	raw := strings.TrimSpace(*website)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return nil
	}
	return &d
}
