package memory

import (
	"context"

	"boothbook/internal/apperrors"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

func (s *Store) CreateContact(ctx context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCompanyRef(c.CompanyID); err != nil {
		return err
	}
	s.contacts[c.ID] = contactRowFrom(c)
	return nil
}

func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.contacts[c.ID]
	if !ok {
		return apperrors.NotFound("contact", c.ID)
	}
	if err := s.checkCompanyRef(c.CompanyID); err != nil {
		return err
	}
	row := contactRowFrom(c)
	row.createdAt = old.createdAt
	c.CreatedAt = old.createdAt
	s.contacts[c.ID] = row
	return nil
}

// DeleteContact also drops the contact's participant rows, like the
// ON DELETE CASCADE on participants.contact_id.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return apperrors.NotFound("contact", id)
	}
	kept := s.participants[:0]
	for _, p := range s.participants {
		if p.contactID != id {
			kept = append(kept, p)
		}
	}
	s.participants = kept
	delete(s.contacts, id)
	return nil
}

func (s *Store) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.contacts[id]
	if !ok {
		return nil, apperrors.NotFound("contact", id)
	}
	c, err := s.contact(r, true)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListContacts(ctx context.Context, p filter.Predicate) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []*contactRow
	for _, r := range s.contacts {
		if p.Match(contactRecord{r}) {
			rows = append(rows, r)
		}
	}
	sortRecords(rows, p, func(r *contactRow) filter.Record { return contactRecord{r} }, func(r *contactRow) string { return r.id })
	out := make([]domain.Contact, 0, len(rows))
	for _, r := range rows {
		c, err := s.contact(r, true)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CountContacts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts), nil
}

func (s *Store) checkCompanyRef(id *string) error {
	if id == nil {
		return nil
	}
	if _, ok := s.companies[*id]; !ok {
		return apperrors.MissingReference("company", *id)
	}
	return nil
}

func contactRowFrom(c *domain.Contact) *contactRow {
	return &contactRow{
		id:        c.ID,
		name:      c.Name,
		companyID: clone(c.CompanyID),
		email:     clone(c.Email),
		phone:     clone(c.Phone),
		position:  clone(c.Position),
		notes:     clone(c.Notes),
		createdAt: c.CreatedAt,
		updatedAt: c.UpdatedAt,
	}
}
