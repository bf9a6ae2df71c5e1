package bots

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"jobbots/common/telemetry"
	"jobbots/services/ingestion/internal/models"
	"jobbots/services/ingestion/internal/page"

	"go.uber.org/zap"
)

const (
	PlatformGanji = "ganji"
	GanjiBaseURL  = "https://www.ganji.com"
	GanjiSource   = "赶集网"
)

var (
	ganjiJobID = regexp.MustCompile(`/job/(\d+)/`)

	ganjiVocabulary = siteVocabulary{
		source: GanjiSource,
		workYears: []*regexp.Regexp{
			yearsWithSuffix,
			yearsWithPrefix,
			freshGraduate,
			regexp.MustCompile(`不限经验`),
		},
		education:       []string{"博士", "硕士", "本科", "大专", "高中", "中专", "初中及以下", "不限学历"},
		normalizeSalary: normalizeGanjiSalary,
	}
)

// normalizeGanjiSalary rewrites the unit: 千/月 to k/月, 万/月 to 0k/月,
// 万/年 to w/年. Only the first unit found is rewritten.
func normalizeGanjiSalary(salary string) string {
	s := strings.TrimSpace(whitespace.ReplaceAllString(salary, " "))
	switch {
	case strings.Contains(s, "千/月"):
		return strings.ReplaceAll(s, "千/月", "k/月")
	case strings.Contains(s, "万/月"):
		return strings.ReplaceAll(s, "万/月", "0k/月")
	case strings.Contains(s, "万/年"):
		return strings.ReplaceAll(s, "万/年", "w/年")
	}
	return s
}

type GanjiBot struct {
	*baseBot
}

func NewGanjiBot(p page.Page, opts Options, logger *zap.Logger) *GanjiBot {
	return &GanjiBot{
		baseBot: newBaseBot(PlatformGanji, p, opts.withDefaults(GanjiBaseURL), ganjiVocabulary, logger),
	}
}

func (b *GanjiBot) searchURL(opts models.SearchOptions) string {
	city := strings.ToLower(strings.TrimSpace(opts.City))
	if city == "" {
		city = "beijing"
	}
	return fmt.Sprintf("%s/jobs/%s/zhaopin/?query=%s&page=%d",
		b.opts.BaseURL, url.PathEscape(city), url.QueryEscape(opts.Keyword), opts.Page)
}

func (b *GanjiBot) SearchJobs(ctx context.Context, opts models.SearchOptions) ([]models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "ganji.SearchJobs")
	defer span.End()

	opts = opts.WithDefaults()
	span.SetAttributes(
		telemetry.String("search.keyword", opts.Keyword),
		telemetry.String("search.city", opts.City),
		telemetry.Int("search.page", opts.Page))

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.open(ctx, b.searchURL(opts), ".job-list", "job list"); err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("search", err, zap.String("keyword", opts.Keyword))
	}
	jobs, err := b.extractList(".job-list .job-item", opts.PageSize, b.listItem)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("search", err, zap.String("keyword", opts.Keyword))
	}

	span.SetAttributes(telemetry.Int("search.results", len(jobs)))
	return jobs, nil
}

func (b *GanjiBot) listItem(item page.Locator) (models.JobInfo, error) {
	var job models.JobInfo
	var err error

	if job.Title, err = text(item.Locator(".job-title")); err != nil {
		return job, err
	}
	if job.Company, err = text(item.Locator(".company-name")); err != nil {
		return job, err
	}
	salary, err := text(item.Locator(".salary"))
	if err != nil {
		return job, err
	}
	job.SalaryRaw = salary
	job.Salary = b.vocab.normalizeSalary(salary)
	if job.Location, err = text(item.Locator(".location")); err != nil {
		return job, err
	}

	if job.URL, err = item.Locator(".job-title a").GetAttribute("href"); err != nil {
		return job, err
	}
	if job.JobID, err = submatch(ganjiJobID, job.URL); err != nil {
		return job, err
	}
	if job.Tags, err = texts(item.Locator(".job-tags .tag")); err != nil {
		return job, err
	}

	b.stamp(&job)
	return job, nil
}

func (b *GanjiBot) GetJobDetail(ctx context.Context, jobID string) (*models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "ganji.GetJobDetail")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", jobID))

	b.mu.Lock()
	defer b.mu.Unlock()

	detailURL := fmt.Sprintf("%s/job/%s/", b.opts.BaseURL, url.PathEscape(jobID))
	if err := b.open(ctx, detailURL, ".job-detail", "job detail"); err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("detail", err, zap.String("job_id", jobID))
	}

	job, err := b.detail(jobID, detailURL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("detail", err, zap.String("job_id", jobID))
	}
	return job, nil
}

func (b *GanjiBot) detail(jobID, detailURL string) (*models.JobInfo, error) {
	job := &models.JobInfo{JobID: jobID, URL: detailURL}
	var err error

	if job.Title, err = text(b.page.Locator(".job-title")); err != nil {
		return nil, err
	}
	if job.Company, err = text(b.page.Locator(".company-name")); err != nil {
		return nil, err
	}
	salary, err := text(b.page.Locator(".salary"))
	if err != nil {
		return nil, err
	}
	job.SalaryRaw = salary
	job.Salary = b.vocab.normalizeSalary(salary)
	if job.Location, err = text(b.page.Locator(".location")); err != nil {
		return nil, err
	}
	if job.Description, err = optionalText(b.page.Locator(".job-description")); err != nil {
		return nil, err
	}
	if job.CompanyType, err = optionalText(b.page.Locator(".company-type")); err != nil {
		return nil, err
	}
	if job.CompanySize, err = optionalText(b.page.Locator(".company-size")); err != nil {
		return nil, err
	}

	requirements, err := optionalText(b.page.Locator(".job-requirements"))
	if err != nil {
		return nil, err
	}
	job.Experience = b.vocab.extractWorkYears(models.Deref(requirements))
	job.Education = b.vocab.extractEducation(models.Deref(requirements))

	if job.Tags, err = texts(b.page.Locator(".job-tags .tag")); err != nil {
		return nil, err
	}

	b.stamp(job)
	return job, nil
}

func (b *GanjiBot) GetCompanyJobs(ctx context.Context, opts models.CompanyJobsOptions) ([]models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "ganji.GetCompanyJobs")
	defer span.End()

	opts = opts.WithDefaults()
	span.SetAttributes(
		telemetry.String("company.id", opts.CompanyID),
		telemetry.Int("search.page", opts.Page))

	b.mu.Lock()
	defer b.mu.Unlock()

	companyURL := fmt.Sprintf("%s/company/%s/jobs/?page=%d", b.opts.BaseURL, url.PathEscape(opts.CompanyID), opts.Page)
	if err := b.open(ctx, companyURL, ".job-list", "company job list"); err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("company", err, zap.String("company_id", opts.CompanyID))
	}
	jobs, err := b.extractList(".job-list .job-item", opts.PageSize, b.listItem)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("company", err, zap.String("company_id", opts.CompanyID))
	}
	return jobs, nil
}
