package migrations

import "jobbots/common/database/schema"

var CreateJobListingsTable = schema.Migration{
	Version:     1,
	Description: "Create job_listings table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_listings (
			id UUID,
			job_id String,
			title String,
			company String,
			location String,
			salary_text String,
			salary_min Nullable(Float64),
			salary_max Nullable(Float64),
			salary_period LowCardinality(String),
			experience String,
			experience_min_years Nullable(Int32),
			education LowCardinality(String),
			company_type String,
			company_size String,
			tags Array(String),
			description String,
			url String,
			source LowCardinality(String),
			scraped_at DateTime,
			created_at DateTime,
			raw_data String
		) ENGINE = ReplacingMergeTree(created_at)
		PARTITION BY toYYYYMM(scraped_at)
		ORDER BY (source, job_id)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS job_listings`,
}
