package memory

import (
	"context"

	"boothbook/internal/apperrors"
	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

func (s *Store) CreateCompany(ctx context.Context, c *domain.Company) error {
	row, err := companyRowFrom(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[row.id] = row
	return nil
}

func (s *Store) UpdateCompany(ctx context.Context, c *domain.Company) error {
	row, err := companyRowFrom(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.companies[c.ID]
	if !ok {
		return apperrors.NotFound("company", c.ID)
	}
	row.createdAt = old.createdAt
	c.CreatedAt = old.createdAt
	s.companies[c.ID] = row
	return nil
}

// DeleteCompany detaches contacts first; they are never removed with the company.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return apperrors.NotFound("company", id)
	}
	for _, ct := range s.contacts {
		if ct.companyID != nil && *ct.companyID == id {
			ct.companyID = nil
		}
	}
	delete(s.companies, id)
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.companies[id]
	if !ok {
		return nil, apperrors.NotFound("company", id)
	}
	c, err := s.companyWithContacts(r)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCompanies(ctx context.Context, p filter.Predicate) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*companyRow
	for _, r := range s.companies {
		if p.Match(companyRecord{r}) {
			rows = append(rows, r)
		}
	}
	sortRecords(rows, p, func(r *companyRow) filter.Record { return companyRecord{r} }, func(r *companyRow) string { return r.id })

	out := make([]domain.Company, 0, len(rows))
	for _, r := range rows {
		c, err := s.companyWithContacts(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CountCompanies(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.companies), nil
}

func (s *Store) companyWithContacts(r *companyRow) (domain.Company, error) {
	c, err := s.decodeCompany(r)
	if err != nil {
		return domain.Company{}, err
	}
	byName := filter.Predicate{Order: filter.Order{Field: filter.ContactName}}
	var rows []*contactRow
	for _, ct := range s.contacts {
		if ct.companyID != nil && *ct.companyID == r.id {
			rows = append(rows, ct)
		}
	}
	sortRecords(rows, byName, func(r *contactRow) filter.Record { return contactRecord{r} }, func(r *contactRow) string { return r.id })
	c.Contacts = make([]domain.Contact, 0, len(rows))
	for _, ct := range rows {
		contact, err := s.contact(ct, false)
		if err != nil {
			return domain.Company{}, err
		}
		c.Contacts = append(c.Contacts, contact)
	}
	c.Count.Contacts = len(rows)
	return c, nil
}

func companyRowFrom(c *domain.Company) (*companyRow, error) {
	projects, err := arrayfield.Encode(c.Projects)
	if err != nil {
		return nil, err
	}
	people, err := arrayfield.Encode(c.KeyPersonnel)
	if err != nil {
		return nil, err
	}
	return &companyRow{
		id:           c.ID,
		name:         c.Name,
		industry:     clone(c.Industry),
		description:  clone(c.Description),
		website:      clone(c.Website),
		headquarters: clone(c.Headquarters),
		projects:     projects,
		keyPersonnel: people,
		createdAt:    c.CreatedAt,
		updatedAt:    c.UpdatedAt,
	}, nil
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
