package processor

import (
	"context"
	"fmt"

	"jobbots/services/processing/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Store persists processed rows.
type Store interface {
	InsertListings(ctx context.Context, listings []models.JobListing) error
	InsertAnalysis(ctx context.Context, analysis *models.JobAnalysis) error
}

const insertListingsQuery = `
	INSERT INTO job_listings (
		id, job_id, title, company, location,
		salary_text, salary_min, salary_max, salary_period,
		experience, experience_min_years, education,
		company_type, company_size, tags, description,
		url, source, scraped_at, created_at, raw_data
	)
`

const insertAnalysisQuery = `
	INSERT INTO job_analyses (
		source, job_id, model, analysis, created_at
	) VALUES (
		?, ?, ?, ?, ?
	)
`

type ClickHouseStore struct {
	conn clickhouse.Conn
}

func NewClickHouseStore(conn clickhouse.Conn) *ClickHouseStore {
	return &ClickHouseStore{conn: conn}
}

func (s *ClickHouseStore) InsertListings(ctx context.Context, listings []models.JobListing) error {
	batch, err := s.conn.PrepareBatch(ctx, insertListingsQuery)
	if err != nil {
		return fmt.Errorf("prepare job listings batch: %w", err)
	}

	for i := range listings {
		l := &listings[i]
		if err := batch.Append(
			l.ID,
			l.JobID,
			l.Title,
			l.Company,
			l.Location,
			l.SalaryText,
			l.SalaryMin,
			l.SalaryMax,
			l.SalaryPeriod,
			l.Experience,
			l.ExperienceMinYears,
			l.Education,
			l.CompanyType,
			l.CompanySize,
			l.Tags,
			l.Description,
			l.URL,
			l.Source,
			l.ScrapedAt,
			l.CreatedAt,
			l.RawData,
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append job listing %s: %w", l.JobID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send job listings batch: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) InsertAnalysis(ctx context.Context, analysis *models.JobAnalysis) error {
	if err := s.conn.Exec(ctx, insertAnalysisQuery,
		analysis.Source,
		analysis.JobID,
		analysis.Model,
		analysis.Analysis,
		analysis.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert job analysis: %w", err)
	}
	return nil
}
