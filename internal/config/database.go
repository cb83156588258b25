package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS breeding_events (
			id VARCHAR(36) PRIMARY KEY,
			male_animal_id VARCHAR(36) NOT NULL,
			female_animal_id VARCHAR(36) NOT NULL,
			method VARCHAR(20) NOT NULL,
			breeding_date TIMESTAMP NOT NULL,
			expected_kidding_date TIMESTAMP,
			actual_kidding_date TIMESTAMP,
			stud_fee_cents BIGINT,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS animals (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			species VARCHAR(50) NOT NULL,
			breed VARCHAR(100) NOT NULL,
			sex VARCHAR(10) NOT NULL,
			ear_tag VARCHAR(50) UNIQUE,
			birth_date TIMESTAMP,
			weight_kg DOUBLE PRECISION,
			markings TEXT NOT NULL DEFAULT '',
			breeding_event_id VARCHAR(36) REFERENCES breeding_events(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS animal_photos (
			id VARCHAR(36) PRIMARY KEY,
			animal_id VARCHAR(36) NOT NULL REFERENCES animals(id) ON DELETE CASCADE,
			original_name VARCHAR(255) NOT NULL,
			storage_path TEXT NOT NULL,
			content_type VARCHAR(100) NOT NULL,
			size_bytes BIGINT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fractional_assets (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			animal_id VARCHAR(36) REFERENCES animals(id),
			total_shares BIGINT NOT NULL,
			sold_shares BIGINT NOT NULL DEFAULT 0,
			share_price_cents BIGINT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS buyer_profiles (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) UNIQUE NOT NULL REFERENCES users(id),
			farm_name VARCHAR(255) NOT NULL,
			business_name VARCHAR(255) NOT NULL DEFAULT '',
			country_code VARCHAR(2) NOT NULL,
			phone VARCHAR(50) NOT NULL DEFAULT '',
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			rejection_reason TEXT,
			fractional_asset_id VARCHAR(36) REFERENCES fractional_assets(id),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS seller_profiles (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) UNIQUE NOT NULL REFERENCES users(id),
			farm_name VARCHAR(255) NOT NULL,
			business_name VARCHAR(255) NOT NULL DEFAULT '',
			country_code VARCHAR(2) NOT NULL,
			phone VARCHAR(50) NOT NULL DEFAULT '',
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			rejection_reason TEXT,
			fractional_asset_id VARCHAR(36) REFERENCES fractional_assets(id),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tag_sequences (
			country_code VARCHAR(2) PRIMARY KEY,
			current_sequence BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS pre_generated_tags (
			id VARCHAR(36) PRIMARY KEY,
			tag_number VARCHAR(20) UNIQUE NOT NULL,
			country_code VARCHAR(2) NOT NULL,
			sequence_number BIGINT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			animal_id VARCHAR(36) REFERENCES animals(id),
			fractional_asset_id VARCHAR(36) REFERENCES fractional_assets(id),
			generated_at TIMESTAMP NOT NULL,
			UNIQUE (country_code, sequence_number)
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id VARCHAR(36) PRIMARY KEY,
			animal_id VARCHAR(36) NOT NULL REFERENCES animals(id),
			seller_profile_id VARCHAR(36) NOT NULL REFERENCES seller_profiles(id),
			price_cents BIGINT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payouts (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			amount_cents BIGINT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			payee_details TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			approved_by VARCHAR(36) REFERENCES users(id),
			approved_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS compliance_applications (
			id VARCHAR(36) PRIMARY KEY,
			organization_name VARCHAR(255) NOT NULL,
			contact_email VARCHAR(255) NOT NULL,
			assistance_types TEXT NOT NULL,
			payment_status VARCHAR(20) NOT NULL DEFAULT 'unpaid',
			review_status VARCHAR(20) NOT NULL DEFAULT 'submitted',
			rejection_reason TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS compliance_attachments (
			id VARCHAR(36) PRIMARY KEY,
			application_id VARCHAR(36) NOT NULL REFERENCES compliance_applications(id) ON DELETE CASCADE,
			original_name VARCHAR(255) NOT NULL,
			storage_path TEXT NOT NULL,
			content_type VARCHAR(100) NOT NULL,
			size_bytes BIGINT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_animals_breeding_event ON animals(breeding_event_id)",
		"CREATE INDEX IF NOT EXISTS idx_tags_country_status ON pre_generated_tags(country_code, status)",
		"CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)",
		"CREATE INDEX IF NOT EXISTS idx_payouts_status ON payouts(status)",
		"CREATE INDEX IF NOT EXISTS idx_compliance_org ON compliance_applications(organization_name)",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}
