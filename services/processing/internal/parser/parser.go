package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobbots/services/processing/internal/models"

	"github.com/google/uuid"
)

const (
	PeriodHour  = "hour"
	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// scrapedAtLayout matches the update_time the bots stamp, in local time.
const scrapedAtLayout = "2006-01-02 15:04:05"

var listingNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

var (
	salaryRangePattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([kK千wW万元]?)\s*[-~～至到]\s*(\d+(?:\.\d+)?)\s*([kK千wW万元]?)`)
	salarySinglePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([kK千wW万元]?)`)

	experienceRangePattern = regexp.MustCompile(`(\d+)\s*[-~～至到]\s*\d+\s*年`)
	experienceAtLeast      = regexp.MustCompile(`(\d+)\s*年以上`)
	experienceNone         = regexp.MustCompile(`应届|在校|实习|不限|无经验|\d+\s*年以[下内]`)
)

// Salary is a parsed pay range in yuan per Period.
type Salary struct {
	Min    *float64
	Max    *float64
	Period string
}

// ListingID is stable per source and job id, so re-scrapes replace rows.
func ListingID(source, jobID string) uuid.UUID {
	return uuid.NewSHA1(listingNamespace, []byte(source+":"+jobID))
}

func ParseJob(data []byte, now time.Time) (*models.JobListing, error) {
	var job models.ScrapedJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode scraped job: %w", err)
	}
	if job.JobID == "" || job.Source == "" {
		return nil, fmt.Errorf("scraped job is missing job_id or source")
	}

	// Salary has its units rewritten by the bots ("1.2万" becomes "1.20k"),
	// so figures come from the site's own text when it is present.
	salaryText := job.SalaryRaw
	if strings.TrimSpace(salaryText) == "" {
		salaryText = job.Salary
	}
	salary := ParseSalary(salaryText)
	experience := deref(job.Experience)

	scrapedAt := now
	if t, err := time.ParseInLocation(scrapedAtLayout, job.UpdateTime, time.Local); err == nil {
		scrapedAt = t
	}

	tags := job.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.JobListing{
		ID:                 ListingID(job.Source, job.JobID),
		JobID:              job.JobID,
		Title:              strings.TrimSpace(job.Title),
		Company:            strings.TrimSpace(job.Company),
		Location:           strings.TrimSpace(job.Location),
		SalaryText:         job.Salary,
		SalaryMin:          salary.Min,
		SalaryMax:          salary.Max,
		SalaryPeriod:       salary.Period,
		Experience:         experience,
		ExperienceMinYears: ParseExperienceYears(experience),
		Education:          deref(job.Education),
		CompanyType:        deref(job.CompanyType),
		CompanySize:        deref(job.CompanySize),
		Tags:               tags,
		Description:        deref(job.Description),
		URL:                job.URL,
		Source:             job.Source,
		ScrapedAt:          scrapedAt,
		CreatedAt:          now,
		RawData:            string(data),
	}, nil
}

func ParseAnalysis(data []byte, now time.Time) (*models.JobAnalysis, error) {
	var analysis models.JobAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("decode job analysis: %w", err)
	}
	if analysis.JobID == "" || analysis.Source == "" {
		return nil, fmt.Errorf("job analysis is missing job_id or source")
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = now
	}
	return &analysis, nil
}

// ParseSalary reads texts like "10-20k/月", "8千-1.2万/月" or "15-25w/年".
// A lone figure sets both ends; text without figures ("面议") yields an
// empty Salary.
func ParseSalary(text string) Salary {
	text = strings.TrimSpace(text)

	var lo, hi float64
	if m := salaryRangePattern.FindStringSubmatch(text); m != nil {
		loUnit, hiUnit := m[2], m[4]
		if loUnit == "" {
			loUnit = hiUnit
		}
		lo = amount(m[1], loUnit)
		hi = amount(m[3], hiUnit)
	} else if m := salarySinglePattern.FindStringSubmatch(text); m != nil {
		lo = amount(m[1], m[2])
		hi = lo
	} else {
		return Salary{}
	}

	if lo > hi {
		lo, hi = hi, lo
	}
	return Salary{Min: &lo, Max: &hi, Period: salaryPeriod(text)}
}

func amount(number, unit string) float64 {
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0
	}
	switch unit {
	case "k", "K", "千":
		v *= 1000
	case "w", "W", "万":
		v *= 10000
	}
	return math.Round(v*100) / 100
}

func salaryPeriod(text string) string {
	switch {
	case strings.Contains(text, "年"):
		return PeriodYear
	case strings.Contains(text, "天") || strings.Contains(text, "日"):
		return PeriodDay
	case strings.Contains(text, "时"):
		return PeriodHour
	default:
		return PeriodMonth
	}
}

// ParseExperienceYears returns the minimum years asked for, 0 for entry
// level postings and nil when the text says nothing usable.
func ParseExperienceYears(text string) *int32 {
	if m := experienceRangePattern.FindStringSubmatch(text); m != nil {
		return years(m[1])
	}
	if m := experienceAtLeast.FindStringSubmatch(text); m != nil {
		return years(m[1])
	}
	if experienceNone.MatchString(text) {
		zero := int32(0)
		return &zero
	}
	return nil
}

func years(s string) *int32 {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil
	}
	v := int32(n)
	return &v
}

// Fingerprint changes whenever a listing's scraped content does. Scrape and
// insert times are left out.
func Fingerprint(l *models.JobListing) string {
	h := sha256.New()
	for _, field := range []string{
		l.Title, l.Company, l.Location, l.SalaryText, l.Experience, l.Education,
		l.CompanyType, l.CompanySize, strings.Join(l.Tags, ","), l.Description, l.URL,
	} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
