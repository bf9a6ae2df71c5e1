package models

import (
	"encoding/json"
	"time"
)

// UpdateTimeLayout is the format of JobInfo.UpdateTime.
const UpdateTimeLayout = "2006-01-02 15:04:05"

// JobInfo is one scraped job posting.
type JobInfo struct {
	JobID   string `json:"job_id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Salary  string `json:"salary"`
	// SalaryRaw is the salary text as the site shows it, before Salary's
	// unit rewriting.
	SalaryRaw   string   `json:"salary_raw,omitempty"`
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

func (j JobInfo) MarshalBinary() ([]byte, error) {
	return json.Marshal(j)
}

func (j *JobInfo) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, j)
}

// StringPtr returns nil for "" so optional fields stay absent.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" for a nil optional field.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FormatUpdateTime(t time.Time) string {
	return t.Format(UpdateTimeLayout)
}

// JobList is a cacheable slice of jobs.
type JobList []JobInfo

func (l JobList) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *JobList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}
