package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bizportal/internal/domain"
	"bizportal/internal/sqlinline"
)

// Shared row loaders. Responses are assembled by joining in memory after
// separate queries; there are no cross-entity transactions.

func (a *App) loadUser(ctx context.Context, id string) (*domain.User, error) {
	row := a.SQL.QueryRow(ctx, sqlinline.QSelectUserByID, id)

	var u domain.User
	var membershipID sql.NullString
	var validTill sql.NullTime
	var progress []byte
	err := row.Scan(
		&u.ID, &u.BusinessName, &u.OwnerName, &u.Industry, &u.ContactInfo,
		&u.GstOrPan, &u.City, &u.Website, &u.Email, &u.Role, &u.IsVerified,
		&membershipID, &validTill, &progress, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if membershipID.Valid {
		u.MembershipID = &membershipID.String
	}
	if validTill.Valid {
		t := validTill.Time
		u.ValidTill = &t
	}
	if len(progress) > 0 {
		if err := json.Unmarshal(progress, &u.Progress); err != nil {
			return nil, fmt.Errorf("decode progress ledger: %w", err)
		}
	}
	return &u, nil
}

func (a *App) saveProgress(ctx context.Context, userID string, ledger domain.ProgressLedger) error {
	if ledger == nil {
		ledger = domain.ProgressLedger{}
	}
	encoded, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode progress ledger: %w", err)
	}
	row := a.SQL.QueryRow(ctx, sqlinline.QUpdateUserProgress, userID, encoded)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (a *App) loadMembership(ctx context.Context, id string) (*domain.Membership, error) {
	row := a.SQL.QueryRow(ctx, sqlinline.QSelectMembershipByID, id)
	return scanMembership(row)
}

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	var allowed []byte
	if err := row.Scan(&m.ID, &m.PlanName, &m.Price, &m.Description, &m.ValidityDays, &allowed, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if len(allowed) > 0 {
		if err := json.Unmarshal(allowed, &m.AllowedServiceIDs); err != nil {
			return nil, fmt.Errorf("decode allowed services: %w", err)
		}
	}
	return &m, nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	var contents []byte
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &contents, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load service: %w", err)
	}
	if len(contents) > 0 {
		if err := json.Unmarshal(contents, &s.PlanContents); err != nil {
			return nil, fmt.Errorf("decode plan contents: %w", err)
		}
	}
	return &s, nil
}

func (a *App) loadService(ctx context.Context, id string) (*domain.Service, error) {
	return scanService(a.SQL.QueryRow(ctx, sqlinline.QSelectServiceByID, id))
}

func (a *App) loadServiceByName(ctx context.Context, name string) (*domain.Service, error) {
	return scanService(a.SQL.QueryRow(ctx, sqlinline.QSelectServiceByName, name))
}

func (a *App) loadServices(ctx context.Context, query string, args ...any) ([]domain.Service, error) {
	rows, err := a.SQL.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}
	return services, rows.Err()
}

func (a *App) loadAllServices(ctx context.Context) ([]domain.Service, error) {
	return a.loadServices(ctx, sqlinline.QListServices)
}

func (a *App) loadServicesByIDs(ctx context.Context, ids []string) ([]domain.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return a.loadServices(ctx, sqlinline.QListServicesByIDs, ids)
}

// scanUserWithMembership reads one row of the admin user listing, where the
// membership columns come from a left join and may be null.
func scanUserWithMembership(rows pgx.Rows) (*domain.User, *domain.Membership, error) {
	var u domain.User
	var membershipID sql.NullString
	var validTill sql.NullTime
	var progress []byte
	var planName sql.NullString
	var price sql.NullFloat64
	var validityDays sql.NullInt64
	var allowed []byte

	err := rows.Scan(
		&u.ID, &u.BusinessName, &u.OwnerName, &u.Industry, &u.ContactInfo,
		&u.Email, &u.Role, &membershipID, &validTill, &progress, &u.CreatedAt,
		&planName, &price, &validityDays, &allowed,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("scan user row: %w", err)
	}
	if membershipID.Valid {
		u.MembershipID = &membershipID.String
	}
	if validTill.Valid {
		t := validTill.Time
		u.ValidTill = &t
	}
	if len(progress) > 0 {
		if err := json.Unmarshal(progress, &u.Progress); err != nil {
			return nil, nil, fmt.Errorf("decode progress ledger: %w", err)
		}
	}

	if !planName.Valid {
		return &u, nil, nil
	}
	m := &domain.Membership{
		ID:           membershipID.String,
		PlanName:     domain.PlanTier(planName.String),
		Price:        price.Float64,
		ValidityDays: int(validityDays.Int64),
	}
	if len(allowed) > 0 {
		if err := json.Unmarshal(allowed, &m.AllowedServiceIDs); err != nil {
			return nil, nil, fmt.Errorf("decode allowed services: %w", err)
		}
	}
	return &u, m, nil
}

func (a *App) listMemberships(ctx context.Context) ([]domain.Membership, error) {
	rows, err := a.SQL.Query(ctx, sqlinline.QListMemberships)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, *m)
	}
	return memberships, rows.Err()
}

func scanBenefitMatrix(row pgx.Row) (*domain.BenefitMatrix, error) {
	var plans, benefits []byte
	var matrix domain.BenefitMatrix
	if err := row.Scan(&plans, &benefits, &matrix.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load benefit matrix: %w", err)
	}
	if len(plans) > 0 {
		if err := json.Unmarshal(plans, &matrix.Plans); err != nil {
			return nil, fmt.Errorf("decode benefit plans: %w", err)
		}
	}
	if len(benefits) > 0 {
		if err := json.Unmarshal(benefits, &matrix.Benefits); err != nil {
			return nil, fmt.Errorf("decode benefit rows: %w", err)
		}
	}
	return &matrix, nil
}

func membershipOut(m domain.Membership) map[string]any {
	return map[string]any{
		"id":              m.ID,
		"planName":        m.PlanName,
		"price":           m.Price,
		"description":     m.Description,
		"validityDays":    m.ValidityDays,
		"allowedServices": m.AllowedServiceIDs,
		"createdAt":       m.CreatedAt,
	}
}

func membershipsOut(memberships []domain.Membership) []map[string]any {
	out := make([]map[string]any, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, membershipOut(m))
	}
	return out
}
