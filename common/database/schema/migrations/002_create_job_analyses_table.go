package migrations

import "jobbots/common/database/schema"

var CreateJobAnalysesTable = schema.Migration{
	Version:     2,
	Description: "Create job_analyses table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_analyses (
			source LowCardinality(String),
			job_id String,
			model String,
			analysis String,
			created_at DateTime
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY (source, job_id)
	`,
	Down: `DROP TABLE IF EXISTS job_analyses`,
}

// All lists every migration in version order.
var All = []schema.Migration{
	CreateJobListingsTable,
	CreateJobAnalysesTable,
}
