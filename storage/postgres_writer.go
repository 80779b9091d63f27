package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/landomo-com/landomo-norway-finn/models"
)

// PostgresWriter persists normalized listings to PostgreSQL and serves them
// back out for the read API.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id               SERIAL PRIMARY KEY,
			finn_id          VARCHAR(64)  NOT NULL,
			source           VARCHAR(50)  NOT NULL,
			url              TEXT         UNIQUE NOT NULL,
			title            TEXT         NOT NULL,
			price            BIGINT,
			price_unit       VARCHAR(16)  NOT NULL,
			property_type    VARCHAR(32)  NOT NULL,
			transaction_type VARCHAR(16)  NOT NULL,
			address          TEXT         NOT NULL DEFAULT '',
			city             TEXT         NOT NULL DEFAULT '',
			county           TEXT         NOT NULL DEFAULT '',
			country          TEXT         NOT NULL DEFAULT '',
			postal_code      VARCHAR(16)  NOT NULL DEFAULT '',
			latitude         DOUBLE PRECISION,
			longitude        DOUBLE PRECISION,
			sqm              INT,
			rooms            INT,
			bedrooms         INT,
			bathrooms        INT,
			year_built       INT,
			features         TEXT[]       NOT NULL DEFAULT '{}',
			images           TEXT[]       NOT NULL DEFAULT '{}',
			scraped_at       TIMESTAMPTZ  NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type);
		CREATE INDEX IF NOT EXISTS idx_listings_city          ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_transaction   ON listings(transaction_type);
		CREATE INDEX IF NOT EXISTS idx_listings_price         ON listings(price);
	`)
	return err
}

// Write upserts all listings, keyed on url. Fallback-generated ids are not
// stable across runs, so url is the deduplication key.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO listings (
			finn_id, source, url, title, price, price_unit, property_type,
			transaction_type, address, city, county, country, postal_code,
			latitude, longitude, sqm, rooms, bedrooms, bathrooms, year_built,
			features, images, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			price_unit = EXCLUDED.price_unit,
			property_type = EXCLUDED.property_type,
			scraped_at = EXCLUDED.scraped_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("postgres: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		_, err := stmt.Exec(
			l.ID, l.Source, l.URL, l.Title, intValue(l.Price),
			string(l.PriceUnit), string(l.PropertyType), string(l.TransactionType),
			l.Location.Address, l.Location.City, l.Location.County,
			l.Location.Country, l.Location.PostalCode,
			floatValue(l.Location.Latitude), floatValue(l.Location.Longitude),
			intValue(l.Details.Sqm), intValue(l.Details.Rooms),
			intValue(l.Details.Bedrooms), intValue(l.Details.Bathrooms),
			intValue(l.Details.YearBuilt),
			pq.Array(l.Features), pq.Array(l.Images), l.ScrapedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: insert %s: %w", l.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Fetch retrieves listings matching the filter, newest first.
func (pw *PostgresWriter) Fetch(filter ListingFilter) ([]*models.Listing, error) {
	query := selectColumns + " FROM listings"
	var clauses []string
	var args []interface{}

	if filter.PropertyType != "" {
		args = append(args, filter.PropertyType)
		clauses = append(clauses, "property_type = $"+strconv.Itoa(len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		clauses = append(clauses, "city = $"+strconv.Itoa(len(args)))
	}
	if filter.TransactionType != "" {
		args = append(args, filter.TransactionType)
		clauses = append(clauses, "transaction_type = $"+strconv.Itoa(len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY scraped_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	rows, err := pw.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// FetchByID retrieves a single listing by its source id (finnkode).
func (pw *PostgresWriter) FetchByID(id string) (*models.Listing, error) {
	rows, err := pw.db.Query(selectColumns+" FROM listings WHERE finn_id = $1 LIMIT 1", id)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanListing(rows)
}

// FetchAll retrieves every stored listing — used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	return pw.Fetch(ListingFilter{})
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

const selectColumns = `SELECT finn_id, source, url, title, price, price_unit,
	property_type, transaction_type, address, city, county, country,
	postal_code, latitude, longitude, sqm, rooms, bedrooms, bathrooms,
	year_built, features, images, scraped_at`

func scanListing(rows *sql.Rows) (*models.Listing, error) {
	l := &models.Listing{}
	var price, sqm, rooms, bedrooms, bathrooms, yearBuilt sql.NullInt64
	var lat, lon sql.NullFloat64
	var priceUnit, propertyType, transactionType string

	err := rows.Scan(
		&l.ID, &l.Source, &l.URL, &l.Title, &price, &priceUnit,
		&propertyType, &transactionType, &l.Location.Address,
		&l.Location.City, &l.Location.County, &l.Location.Country,
		&l.Location.PostalCode, &lat, &lon, &sqm, &rooms, &bedrooms,
		&bathrooms, &yearBuilt,
		pq.Array(&l.Features), pq.Array(&l.Images), &l.ScrapedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan row: %w", err)
	}

	l.PriceUnit = models.PriceUnit(priceUnit)
	l.PropertyType = models.PropertyType(propertyType)
	l.TransactionType = models.TransactionType(transactionType)
	l.Price = nullInt(price)
	l.Details.Sqm = nullInt(sqm)
	l.Details.Rooms = nullInt(rooms)
	l.Details.Bedrooms = nullInt(bedrooms)
	l.Details.Bathrooms = nullInt(bathrooms)
	l.Details.YearBuilt = nullInt(yearBuilt)
	l.Location.Latitude = nullFloat(lat)
	l.Location.Longitude = nullFloat(lon)

	return l, nil
}

func intValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
