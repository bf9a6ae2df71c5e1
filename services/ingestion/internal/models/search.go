package models

import "fmt"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchOptions are the filters of a keyword search. Experience, Education
// and SalaryRange are accepted but ignored: no current site applies them,
// and the search URLs carry only keyword, city and page.
type SearchOptions struct {
	Keyword     string `json:"keyword"`
	City        string `json:"city,omitempty"`
	Experience  string `json:"experience,omitempty"`
	Education   string `json:"education,omitempty"`
	SalaryRange string `json:"salary_range,omitempty"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

func (o SearchOptions) WithDefaults() SearchOptions {
	if o.Page == 0 {
		o.Page = DefaultPage
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	return o
}

func (o SearchOptions) Validate() error {
	return validatePaging(o.Page, o.PageSize)
}

type CompanyJobsOptions struct {
	CompanyID string `json:"company_id"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

func (o CompanyJobsOptions) WithDefaults() CompanyJobsOptions {
	if o.Page == 0 {
		o.Page = DefaultPage
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	return o
}

func (o CompanyJobsOptions) Validate() error {
	if o.CompanyID == "" {
		return fmt.Errorf("company_id is required")
	}
	return validatePaging(o.Page, o.PageSize)
}

func validatePaging(page, pageSize int) error {
	if page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d, got %d", MaxPageSize, pageSize)
	}
	return nil
}

// Analysis is the model's reading of a job's requirements.
type Analysis struct {
	JobID    string `json:"job_id"`
	Source   string `json:"source"`
	Model    string `json:"model"`
	Analysis string `json:"analysis"`
}
