package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"boothbook/internal/apperrors"
	"boothbook/internal/arrayfield"
	"boothbook/internal/domain"
	"boothbook/internal/filter"
)

const companyColumns = `co.id, co.name, co.industry, co.description, co.website, co.headquarters,
	co.projects, co.key_personnel, co.created_at, co.updated_at`

const contactColumns = `ct.id, ct.name, ct.company_id, ct.email, ct.phone, ct.position, ct.notes,
	ct.created_at, ct.updated_at`

// Company columns through a LEFT JOIN, so every one is nullable.
const companySummaryColumns = `co.id, co.name, co.industry, co.description, co.website, co.headquarters,
	co.projects, co.key_personnel`

// CompanyRepository

func (db *DB) CreateCompany(ctx context.Context, c *domain.Company) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	projects, people, err := encodeCompanyArrays(c)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO companies (id, name, industry, description, website, headquarters,
			projects, key_personnel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Name, c.Industry, c.Description, c.Website, c.Headquarters, projects, people, c.CreatedAt, c.UpdatedAt)
	return classify("create company", err)
}

// UpdateCompany overwrites every mutable column; absent optionals become NULL.
func (db *DB) UpdateCompany(ctx context.Context, c *domain.Company) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	projects, people, err := encodeCompanyArrays(c)
	if err != nil {
		return err
	}
	err = db.Pool.QueryRow(ctx, `
		UPDATE companies
		SET name = $2, industry = $3, description = $4, website = $5, headquarters = $6,
			projects = $7, key_personnel = $8, updated_at = $9
		WHERE id = $1
		RETURNING created_at
	`, c.ID, c.Name, c.Industry, c.Description, c.Website, c.Headquarters, projects, people, c.UpdatedAt).Scan(&c.CreatedAt)
	return notFoundOr("update company", "company", c.ID, err)
}

// DeleteCompany nulls the company reference on its contacts and deletes the
// company in one transaction. The FK's ON DELETE SET NULL agrees, but the
// detach is done here so it does not depend on the schema.
func (db *DB) DeleteCompany(ctx context.Context, id string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	err := db.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE contacts SET company_id = NULL, updated_at = now() WHERE company_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("company", id)
		}
		return nil
	})
	return classify("delete company", err)
}

func (db *DB) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	c, err := scanCompany(db.Pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies co WHERE co.id = $1`, id))
	if err != nil {
		return nil, notFoundOr("get company", "company", id, err)
	}
	list := []domain.Company{c}
	if err := attachContacts(ctx, db.Pool, list); err != nil {
		return nil, classify("get company contacts", err)
	}
	return &list[0], nil
}

func (db *DB) ListCompanies(ctx context.Context, p filter.Predicate) ([]domain.Company, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	q, err := render(p, "co.id")
	if err != nil {
		return nil, err
	}
	rows, err := db.Pool.Query(ctx, `SELECT `+companyColumns+` FROM companies co`+q.where+q.order, q.args...)
	if err != nil {
		return nil, classify("list companies", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Company, error) { return scanCompany(row) })
	if err != nil {
		return nil, classify("list companies", err)
	}
	if err := attachContacts(ctx, db.Pool, out); err != nil {
		return nil, classify("list company contacts", err)
	}
	return out, nil
}

func scanCompany(row pgx.Row) (domain.Company, error) {
	var (
		c                domain.Company
		projects, people *string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.Description, &c.Website, &c.Headquarters,
		&projects, &people, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	var err error
	if c.Projects, err = arrayfield.Decode(projects); err != nil {
		return c, err
	}
	if c.KeyPersonnel, err = arrayfield.Decode(people); err != nil {
		return c, err
	}
	return c, nil
}

// attachContacts loads the contacts of every company in one query.
func attachContacts(ctx context.Context, q querier, companies []domain.Company) error {
	if len(companies) == 0 {
		return nil
	}
	ids := make([]string, len(companies))
	index := make(map[string]int, len(companies))
	for i := range companies {
		ids[i] = companies[i].ID
		index[companies[i].ID] = i
		companies[i].Contacts = []domain.Contact{}
	}
	rows, err := q.Query(ctx, `SELECT `+contactColumns+` FROM contacts ct
		WHERE ct.company_id = ANY($1) ORDER BY ct.name, ct.id`, ids)
	if err != nil {
		return err
	}
	contacts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Contact, error) {
		var c domain.Contact
		err := row.Scan(&c.ID, &c.Name, &c.CompanyID, &c.Email, &c.Phone, &c.Position, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return err
	}
	for _, c := range contacts {
		i := index[*c.CompanyID]
		companies[i].Contacts = append(companies[i].Contacts, c)
	}
	for i := range companies {
		companies[i].Count.Contacts = len(companies[i].Contacts)
	}
	return nil
}

func encodeCompanyArrays(c *domain.Company) (projects, people *string, err error) {
	if projects, err = arrayfield.Encode(c.Projects); err != nil {
		return nil, nil, err
	}
	if people, err = arrayfield.Encode(c.KeyPersonnel); err != nil {
		return nil, nil, err
	}
	return projects, people, nil
}

// ContactRepository

func (db *DB) CreateContact(ctx context.Context, c *domain.Contact) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO contacts (id, name, company_id, email, phone, position, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID, c.Name, c.CompanyID, c.Email, c.Phone, c.Position, c.Notes, c.CreatedAt, c.UpdatedAt)
	return classify("create contact", err)
}

func (db *DB) UpdateContact(ctx context.Context, c *domain.Contact) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	err := db.Pool.QueryRow(ctx, `
		UPDATE contacts
		SET name = $2, company_id = $3, email = $4, phone = $5, position = $6, notes = $7, updated_at = $8
		WHERE id = $1
		RETURNING created_at
	`, c.ID, c.Name, c.CompanyID, c.Email, c.Phone, c.Position, c.Notes, c.UpdatedAt).Scan(&c.CreatedAt)
	return notFoundOr("update contact", "contact", c.ID, err)
}

func (db *DB) DeleteContact(ctx context.Context, id string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	tag, err := db.Pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return classify("delete contact", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("contact", id)
	}
	return nil
}

func (db *DB) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	var s contactScan
	err := db.Pool.QueryRow(ctx, `SELECT `+contactColumns+`, `+companySummaryColumns+`
		FROM contacts ct LEFT JOIN companies co ON co.id = ct.company_id
		WHERE ct.id = $1`, id).Scan(s.targets()...)
	if err != nil {
		return nil, notFoundOr("get contact", "contact", id, err)
	}
	c, err := s.contact()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) ListContacts(ctx context.Context, p filter.Predicate) ([]domain.Contact, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	q, err := render(p, "ct.id")
	if err != nil {
		return nil, err
	}
	rows, err := db.Pool.Query(ctx, `SELECT `+contactColumns+`, `+companySummaryColumns+`
		FROM contacts ct LEFT JOIN companies co ON co.id = ct.company_id`+q.where+q.order, q.args...)
	if err != nil {
		return nil, classify("list contacts", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Contact, error) {
		var s contactScan
		if err := row.Scan(s.targets()...); err != nil {
			return domain.Contact{}, err
		}
		return s.contact()
	})
	if err != nil {
		return nil, classify("list contacts", err)
	}
	return out, nil
}

// contactScan receives contactColumns followed by companySummaryColumns.
type contactScan struct {
	c              domain.Contact
	coID, coName   *string
	coIndustry     *string
	coDescription  *string
	coWebsite      *string
	coHeadquarters *string
	coProjects     *string
	coKeyPersonnel *string
}

func (s *contactScan) targets() []any {
	return []any{
		&s.c.ID, &s.c.Name, &s.c.CompanyID, &s.c.Email, &s.c.Phone, &s.c.Position, &s.c.Notes,
		&s.c.CreatedAt, &s.c.UpdatedAt,
		&s.coID, &s.coName, &s.coIndustry, &s.coDescription, &s.coWebsite, &s.coHeadquarters,
		&s.coProjects, &s.coKeyPersonnel,
	}
}

func (s *contactScan) contact() (domain.Contact, error) {
	c := s.c
	if s.coID == nil {
		return c, nil
	}
	projects, err := arrayfield.Decode(s.coProjects)
	if err != nil {
		return domain.Contact{}, err
	}
	people, err := arrayfield.Decode(s.coKeyPersonnel)
	if err != nil {
		return domain.Contact{}, err
	}
	c.Company = &domain.CompanySummary{
		ID:           *s.coID,
		Name:         *s.coName,
		Industry:     s.coIndustry,
		Description:  s.coDescription,
		Website:      s.coWebsite,
		Headquarters: s.coHeadquarters,
		Projects:     projects,
		KeyPersonnel: people,
	}
	return c, nil
}

func (r reader) CountCompanies(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM companies`).Scan(&n)
	return n, classify("count companies", err)
}

func (r reader) CountContacts(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&n)
	return n, classify("count contacts", err)
}
