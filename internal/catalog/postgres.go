package catalog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/nearbite/nearbite/internal/benefit"
	"github.com/nearbite/nearbite/internal/model"
)

// Pool is the subset of pgxpool.Pool the catalog uses; pgxmock satisfies it.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// The catalog serves point lookups on a hot path, so every query is prepared
// on each new connection and executed by name.
var preparedStatements = map[string]string{
	"find_brand":  `SELECT brand_id, name FROM catalog.brands WHERE name = $1`,
	"find_branch": `SELECT branch_id, brand_id, name FROM catalog.branches WHERE brand_id = $1 AND name = $2`,
	"find_discounts": `
		SELECT discount_id, discount_name, provider_type, provider_name,
		       shape_kind, amount, max_amount, unit_amount, per_unit_value, max_discount_amount,
		       valid_from, valid_to, dow_mask, time_from, time_to,
		       channel_limit, required_level, qualification, application_menu,
		       min_order_amount, max_order_amount, is_discount
		FROM catalog.discounts
		WHERE brand_id = $1
		  AND (branch_id IS NULL OR branch_id = $2)
		  AND is_active
		  AND (valid_from IS NULL OR valid_from <= $3)
		  AND (valid_to IS NULL OR valid_to >= $3)
		  AND (dow_mask IS NULL OR (dow_mask & $4) > 0)
		  AND (time_from IS NULL OR time_from <= $5)
		  AND (time_to IS NULL OR time_to >= $5)
		ORDER BY provider_type, discount_name`,
	"cond_telcos":       `SELECT telco_name, COALESCE(required_level, '') FROM catalog.discount_telcos WHERE discount_id = $1 ORDER BY telco_name`,
	"cond_payments":     `SELECT payment_name FROM catalog.discount_payments WHERE discount_id = $1 ORDER BY payment_name`,
	"cond_memberships":  `SELECT membership_name, COALESCE(required_level, '') FROM catalog.discount_memberships WHERE discount_id = $1 ORDER BY membership_name`,
	"cond_affiliations": `SELECT organization_name FROM catalog.discount_affiliations WHERE discount_id = $1 ORDER BY organization_name`,
}

// PostgresCatalog implements Catalog over pgxpool.
type PostgresCatalog struct {
	pool Pool
}

// NewPostgres connects a catalog pool. The pool is capped at maxConns
// connections; values above 5 are clamped since catalog traffic is point
// lookups only.
func NewPostgres(ctx context.Context, connString string, maxConns int32) (*PostgresCatalog, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: parse config")
	}

	if maxConns <= 0 || maxConns > 5 {
		maxConns = 5
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "catalog: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "catalog: ping")
	}
	return &PostgresCatalog{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

func (c *PostgresCatalog) Close() {
	c.pool.Close()
}

func (c *PostgresCatalog) FindBrand(ctx context.Context, name string) (*Brand, error) {
	var b Brand
	err := c.pool.QueryRow(ctx, "find_brand", name).Scan(&b.BrandID, &b.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "catalog: find brand")
	}
	return &b, nil
}

func (c *PostgresCatalog) FindBranch(ctx context.Context, brandID, branchName string) (*Branch, error) {
	var b Branch
	err := c.pool.QueryRow(ctx, "find_branch", brandID, branchName).Scan(&b.BranchID, &b.BrandID, &b.Name)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "catalog: find branch")
	}
	return &b, nil
}

func (c *PostgresCatalog) FindApplicableDiscounts(ctx context.Context, brandID string, branchID *string, now time.Time) ([]model.DiscountProgram, error) {
	dayBit := int16(benefit.DayBit(now.Weekday()))
	hhmm := now.Format("15:04")

	rows, err := c.pool.Query(ctx, "find_discounts", brandID, branchID, now, dayBit, hhmm)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: find discounts")
	}
	defer rows.Close()

	var programs []model.DiscountProgram
	for rows.Next() {
		p, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "catalog: iterate discounts")
	}
	return programs, nil
}

func scanDiscount(rows pgx.Rows) (model.DiscountProgram, error) {
	var (
		p        model.DiscountProgram
		provider string
		kind     string
		dowMask  *int16
		timeFrom *string
		timeTo   *string
		channel  *string
		level    *string
		qual     *string
		menu     *string
	)
	err := rows.Scan(
		&p.DiscountID, &p.DiscountName, &provider, &p.ProviderName,
		&kind, &p.Shape.Amount, &p.Shape.MaxAmount, &p.Shape.UnitAmount,
		&p.Shape.PerUnitValue, &p.Shape.MaxDiscountAmount,
		&p.Constraints.ValidFrom, &p.Constraints.ValidTo, &dowMask,
		&timeFrom, &timeTo, &channel, &level, &qual, &menu,
		&p.Constraints.MinOrderAmount, &p.Constraints.MaxOrderAmount,
		&p.IsDiscount,
	)
	if err != nil {
		return model.DiscountProgram{}, eris.Wrap(err, "catalog: scan discount")
	}

	p.ProviderType = model.ProviderType(provider)
	p.Shape.Kind = model.ShapeKind(kind)
	if dowMask != nil {
		mask := uint8(*dowMask)
		p.Constraints.DayOfWeekMask = &mask
	}
	p.Constraints.TimeFrom = deref(timeFrom)
	p.Constraints.TimeTo = deref(timeTo)
	p.Constraints.ChannelLimit = deref(channel)
	p.Constraints.RequiredLevel = deref(level)
	p.Constraints.Qualification = deref(qual)
	p.Constraints.ApplicationMenu = deref(menu)
	return p, nil
}

func (c *PostgresCatalog) LoadRequiredConditions(ctx context.Context, discountID string) (model.RequiredConditions, error) {
	var rc model.RequiredConditions

	rows, err := c.pool.Query(ctx, "cond_telcos", discountID)
	if err != nil {
		return rc, eris.Wrap(err, "catalog: load telco conditions")
	}
	for rows.Next() {
		var t model.TelcoCondition
		if err := rows.Scan(&t.TelcoName, &t.RequiredLevel); err != nil {
			rows.Close()
			return rc, eris.Wrap(err, "catalog: scan telco condition")
		}
		rc.Telcos = append(rc.Telcos, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rc, eris.Wrap(err, "catalog: iterate telco conditions")
	}

	rows, err = c.pool.Query(ctx, "cond_payments", discountID)
	if err != nil {
		return rc, eris.Wrap(err, "catalog: load payment conditions")
	}
	for rows.Next() {
		var p model.PaymentCondition
		if err := rows.Scan(&p.PaymentName); err != nil {
			rows.Close()
			return rc, eris.Wrap(err, "catalog: scan payment condition")
		}
		rc.Payments = append(rc.Payments, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rc, eris.Wrap(err, "catalog: iterate payment conditions")
	}

	rows, err = c.pool.Query(ctx, "cond_memberships", discountID)
	if err != nil {
		return rc, eris.Wrap(err, "catalog: load membership conditions")
	}
	for rows.Next() {
		var m model.MembershipCondition
		if err := rows.Scan(&m.MembershipName, &m.RequiredLevel); err != nil {
			rows.Close()
			return rc, eris.Wrap(err, "catalog: scan membership condition")
		}
		rc.Memberships = append(rc.Memberships, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rc, eris.Wrap(err, "catalog: iterate membership conditions")
	}

	rows, err = c.pool.Query(ctx, "cond_affiliations", discountID)
	if err != nil {
		return rc, eris.Wrap(err, "catalog: load affiliation conditions")
	}
	for rows.Next() {
		var a model.AffiliationCondition
		if err := rows.Scan(&a.OrganizationName); err != nil {
			rows.Close()
			return rc, eris.Wrap(err, "catalog: scan affiliation condition")
		}
		rc.Affiliations = append(rc.Affiliations, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rc, eris.Wrap(err, "catalog: iterate affiliation conditions")
	}

	return rc, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
