package models

import (
	"time"

	"github.com/google/uuid"
)

// ScrapedJob is a job as published by the ingestion service on jobs.scraped.
type ScrapedJob struct {
	JobID       string   `json:"job_id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Salary      string   `json:"salary"`
	SalaryRaw   string   `json:"salary_raw"`
	Location    string   `json:"location"`
	Experience  *string  `json:"experience"`
	Education   *string  `json:"education"`
	CompanyType *string  `json:"company_type"`
	CompanySize *string  `json:"company_size"`
	Tags        []string `json:"tags"`
	Description *string  `json:"description"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	UpdateTime  string   `json:"update_time"`
}

// JobListing is one row of job_listings.
type JobListing struct {
	ID                 uuid.UUID
	JobID              string
	Title              string
	Company            string
	Location           string
	SalaryText         string
	SalaryMin          *float64
	SalaryMax          *float64
	SalaryPeriod       string
	Experience         string
	ExperienceMinYears *int32
	Education          string
	CompanyType        string
	CompanySize        string
	Tags               []string
	Description        string
	URL                string
	Source             string
	ScrapedAt          time.Time
	CreatedAt          time.Time
	RawData            string
}

// JobAnalysis is one row of job_analyses.
type JobAnalysis struct {
	Source    string    `json:"source"`
	JobID     string    `json:"job_id"`
	Model     string    `json:"model"`
	Analysis  string    `json:"analysis"`
	CreatedAt time.Time `json:"created_at"`
}
