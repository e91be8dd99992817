package postgres

import (
	"context"
	"strings"

	"github.com/camguard/camguard"
)

const companyCols = `company.id, company.name, company.description, company.logo, company.created_at, company.updated_at`

var companyFields = map[string]string{
	"id":          "company.id",
	"name":        "company.name",
	"description": "company.description",
	"created_at":  "company.created_at",
	"updated_at":  "company.updated_at",
}

func scanCompany(sc scanner) (*camguard.Company, error) {
	var c camguard.Company
	err := sc.Scan(&c.ID, &c.Name, &c.Description, &c.Logo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) CreateCompany(ctx context.Context, in camguard.CompanyInput) (*camguard.Company, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO company (name, description, logo) VALUES ($1, $2, $3) RETURNING `+companyCols,
		text(in.Name), text(in.Description), text(in.Logo),
	)
	c, err := scanCompany(row)
	if err != nil {
		return nil, storeErr("insert company", err)
	}
	return c, nil
}

func (s *PGStore) GetCompany(ctx context.Context, id int64) (*camguard.Company, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+companyCols+` FROM company WHERE id = $1 AND deleted = FALSE`, id)
	c, err := scanCompany(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get company", err)
	}
	return c, nil
}

func (s *PGStore) UpdateCompany(ctx context.Context, id int64, in camguard.CompanyInput) (*camguard.Company, error) {
	b := &builder{}
	var sets []string
	if in.Name != nil {
		sets = append(sets, "name = "+b.bind(*in.Name))
	}
	if in.Description != nil {
		sets = append(sets, "description = "+b.bind(*in.Description))
	}
	if in.Logo != nil {
		sets = append(sets, "logo = "+b.bind(*in.Logo))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE company SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+companyCols,
		b.args...)
	c, err := scanCompany(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update company", err)
	}
	return c, nil
}

func (s *PGStore) RemoveCompany(ctx context.Context, id int64) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE company SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return storeErr("remove company", err)
	}
	if ct.RowsAffected() == 0 {
		return camguard.ErrNotFound
	}
	return nil
}

func (s *PGStore) ListCompanies(ctx context.Context, q camguard.ListQuery) ([]*camguard.Company, error) {
	b := &builder{}
	conds, err := b.where("company", q, companyFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("company", q, companyFields)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+companyCols+` FROM company`+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list companies", err)
	}
	defer rows.Close()

	out := []*camguard.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, storeErr("scan company", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows companies", err)
	}
	return out, nil
}
