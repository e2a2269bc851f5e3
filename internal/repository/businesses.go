package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leads-enricher/internal/dto"
	"github.com/octobees/leads-enricher/internal/entity"
)

// BusinessesRepository describes persistence operations for business records
// and their enrichments.
type BusinessesRepository interface {
	Upsert(ctx context.Context, business *entity.Business) (bool, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Business, error)
	UpsertEnrichment(ctx context.Context, enrichment *entity.Enrichment) error
	GetEnrichment(ctx context.Context, businessID uuid.UUID) (*entity.Enrichment, error)
}

// ErrEnrichmentNotFound indicates there is no enrichment row for the given business.
var ErrEnrichmentNotFound = errors.New("enrichment not found")

// pgxPool is the subset of pgxpool.Pool the repository uses, extracted so
// tests can stub query execution.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGXBusinessesRepository implements BusinessesRepository using pgx.
type PGXBusinessesRepository struct {
	pool pgxPool
}

// NewPGXBusinessesRepository wires a pgx backed repository.
func NewPGXBusinessesRepository(pool *pgxpool.Pool) *PGXBusinessesRepository {
	return &PGXBusinessesRepository{pool: pool}
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const upsertBusinessSQL = `
        INSERT INTO businesses (
            id,
            place_id,
            lookup_run_id,
            name,
            category,
            area,
            address,
            city,
            country,
            website,
            phone,
            rating,
            reviews,
            longitude,
            latitude,
            raw,
            scraped_at,
            updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16::jsonb,$17,NOW())
        ON CONFLICT (place_id) DO UPDATE SET
            lookup_run_id = EXCLUDED.lookup_run_id,
            name = EXCLUDED.name,
            category = EXCLUDED.category,
            area = EXCLUDED.area,
            address = EXCLUDED.address,
            city = EXCLUDED.city,
            country = EXCLUDED.country,
            website = EXCLUDED.website,
            phone = EXCLUDED.phone,
            rating = EXCLUDED.rating,
            reviews = EXCLUDED.reviews,
            longitude = EXCLUDED.longitude,
            latitude = EXCLUDED.latitude,
            raw = EXCLUDED.raw,
            scraped_at = COALESCE(EXCLUDED.scraped_at, businesses.scraped_at),
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// Upsert inserts or updates a business keyed by place_id and reports whether
// a new row was created.
func (r *PGXBusinessesRepository) Upsert(ctx context.Context, business *entity.Business) (bool, error) {
	if business == nil {
		return false, fmt.Errorf("business payload is nil")
	}

	raw := business.Raw
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	id := business.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, err := r.pool.Query(ctx, upsertBusinessSQL,
		id,
		business.PlaceID,
		business.LookupRunID,
		business.Name,
		business.Category,
		business.Area,
		business.Address,
		business.City,
		business.Country,
		business.Website,
		business.Phone,
		business.Rating,
		business.Reviews,
		business.Longitude,
		business.Latitude,
		string(raw),
		business.ScrapedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert business %q: %w", business.Name, err)
	}
	defer rows.Close()

	var inserted bool
	if rows.Next() {
		if scanErr := rows.Scan(&inserted); scanErr != nil {
			return false, fmt.Errorf("scan upsert result: %w", scanErr)
		}
	} else if err := rows.Err(); err != nil {
		return false, fmt.Errorf("upsert business %q: %w", business.Name, err)
	}

	return inserted, nil
}

const listBusinessColumns = `
        SELECT
            id,
            place_id,
            lookup_run_id,
            name,
            category,
            area,
            address,
            city,
            country,
            website,
            phone,
            rating,
            reviews,
            longitude,
            latitude,
            raw,
            scraped_at,
            created_at,
            updated_at
        FROM businesses
    `

// List retrieves businesses matching the provided filter, sorted by rating
// then review count.
func (r *PGXBusinessesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Business, error) {
	query := strings.Builder{}
	query.WriteString(listBusinessColumns)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(category) = LOWER($%d)", idx))
		args = append(args, filter.Category)
		idx++
	}
	if filter.Area != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(area) = LOWER($%d)", idx))
		args = append(args, filter.Area)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(city) = LOWER($%d)", idx))
		args = append(args, filter.City)
		idx++
	}
	if filter.Country != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(country) = LOWER($%d)", idx))
		args = append(args, filter.Country)
		idx++
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}
	switch strings.ToLower(filter.WebsiteStatus) {
	case "missing":
		clauses = append(clauses, "website IS NULL")
	case "available":
		clauses = append(clauses, "website IS NOT NULL")
	}
	if filter.LookupRunID != nil {
		clauses = append(clauses, fmt.Sprintf("lookup_run_id = $%d", idx))
		args = append(args, *filter.LookupRunID)
		idx++
	}
	if filter.UpdatedSince != nil {
		clauses = append(clauses, fmt.Sprintf("updated_at >= $%d", idx))
		args = append(args, *filter.UpdatedSince)
		idx++
	}

	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	orderClause := "rating DESC NULLS LAST, reviews DESC NULLS LAST, name ASC"
	if strings.EqualFold(filter.Sort, "recent") {
		orderClause = "updated_at DESC, rating DESC NULLS LAST, name ASC"
	}
	query.WriteString(" ORDER BY ")
	query.WriteString(orderClause)

	if filter.Limit > 0 {
		query.WriteString(fmt.Sprintf(" LIMIT %d", filter.Limit))
	} else {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		perPage := filter.PerPage
		if perPage <= 0 {
			perPage = 20
		}
		if perPage > 100 {
			perPage = 100
		}
		offset := (page - 1) * perPage
		query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
		args = append(args, perPage, offset)
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

// ListByIDs fetches the given business records, skipping unknown ids.
func (r *PGXBusinessesRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Business, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, listBusinessColumns+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("list businesses by ids: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

const upsertEnrichmentSQL = `
		INSERT INTO enrichments (
			business_id,
			website,
			emails,
			phones,
			socials,
			contact_form_url,
			pages_crawled,
			updated_at
		) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, NOW())
		ON CONFLICT (business_id) DO UPDATE SET
			website = EXCLUDED.website,
			emails = EXCLUDED.emails,
			phones = EXCLUDED.phones,
			socials = EXCLUDED.socials,
			contact_form_url = EXCLUDED.contact_form_url,
			pages_crawled = EXCLUDED.pages_crawled,
			updated_at = NOW();
	`

// UpsertEnrichment stores or updates the contact details for a business.
func (r *PGXBusinessesRepository) UpsertEnrichment(ctx context.Context, enrichment *entity.Enrichment) error {
	if enrichment == nil {
		return fmt.Errorf("enrichment payload is nil")
	}

	socials := enrichment.Socials
	if socials == nil {
		socials = map[string]string{}
	}
	socialsJSON, err := json.Marshal(socials)
	if err != nil {
		return fmt.Errorf("marshal socials: %w", err)
	}

	_, err = r.pool.Exec(ctx, upsertEnrichmentSQL,
		enrichment.BusinessID,
		enrichment.Website,
		stringSliceOrEmpty(enrichment.Emails),
		stringSliceOrEmpty(enrichment.Phones),
		string(socialsJSON),
		enrichment.ContactFormURL,
		enrichment.PagesCrawled,
	)
	if err != nil {
		return fmt.Errorf("upsert enrichment: %w", err)
	}

	return nil
}

// GetEnrichment returns the enrichment row for a given business.
func (r *PGXBusinessesRepository) GetEnrichment(ctx context.Context, businessID uuid.UUID) (*entity.Enrichment, error) {
	query := `
		SELECT
			business_id,
			website,
			emails,
			phones,
			socials,
			contact_form_url,
			pages_crawled,
			created_at,
			updated_at
		FROM enrichments
		WHERE business_id = $1
	`

	var (
		record      entity.Enrichment
		emails      []string
		phones      []string
		socialsJSON []byte
		contactForm sql.NullString
	)

	err := r.pool.QueryRow(ctx, query, businessID).Scan(
		&record.BusinessID,
		&record.Website,
		&emails,
		&phones,
		&socialsJSON,
		&contactForm,
		&record.PagesCrawled,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEnrichmentNotFound
		}
		return nil, fmt.Errorf("fetch enrichment: %w", err)
	}

	if len(emails) > 0 {
		record.Emails = append([]string(nil), emails...)
	}
	if len(phones) > 0 {
		record.Phones = append([]string(nil), phones...)
	}
	if len(socialsJSON) > 0 {
		if err := json.Unmarshal(socialsJSON, &record.Socials); err != nil {
			return nil, fmt.Errorf("unmarshal socials: %w", err)
		}
	}
	record.ContactFormURL = nullStringToPtr(contactForm)

	return &record, nil
}

func scanBusinesses(rows pgx.Rows) ([]entity.Business, error) {
	var businesses []entity.Business
	for rows.Next() {
		var (
			b           entity.Business
			placeID     sql.NullString
			lookupRunID sql.NullString
			category    sql.NullString
			area        sql.NullString
			address     sql.NullString
			city        sql.NullString
			country     sql.NullString
			website     sql.NullString
			phone       sql.NullString
			rating      sql.NullFloat64
			reviews     sql.NullInt64
			longitude   sql.NullFloat64
			latitude    sql.NullFloat64
			raw         []byte
			scrapedAt   sql.NullTime
		)

		err := rows.Scan(
			&b.ID,
			&placeID,
			&lookupRunID,
			&b.Name,
			&category,
			&area,
			&address,
			&city,
			&country,
			&website,
			&phone,
			&rating,
			&reviews,
			&longitude,
			&latitude,
			&raw,
			&scrapedAt,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan business row: %w", err)
		}

		b.PlaceID = nullStringToPtr(placeID)
		if lookupRunID.Valid {
			parsed, parseErr := uuid.Parse(lookupRunID.String)
			if parseErr != nil {
				return nil, fmt.Errorf("parse lookup run id: %w", parseErr)
			}
			b.LookupRunID = &parsed
		}
		b.Category = nullStringToPtr(category)
		b.Area = nullStringToPtr(area)
		b.Address = nullStringToPtr(address)
		b.City = nullStringToPtr(city)
		b.Country = nullStringToPtr(country)
		b.Website = nullStringToPtr(website)
		b.Phone = nullStringToPtr(phone)
		if rating.Valid {
			v := rating.Float64
			b.Rating = &v
		}
		if reviews.Valid {
			v := int(reviews.Int64)
			b.Reviews = &v
		}
		if longitude.Valid {
			v := longitude.Float64
			b.Longitude = &v
		}
		if latitude.Valid {
			v := latitude.Float64
			b.Latitude = &v
		}
		if scrapedAt.Valid {
			ts := scrapedAt.Time
			b.ScrapedAt = &ts
		}
		if len(raw) > 0 {
			b.Raw = json.RawMessage(raw)
		} else {
			b.Raw = json.RawMessage("{}")
		}

		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business rows: %w", err)
	}

	return businesses, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
