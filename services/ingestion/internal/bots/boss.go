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
	PlatformBoss = "boss"
	BossBaseURL  = "https://www.zhipin.com"
	BossSource   = "BOSS直聘"
)

var (
	bossJobID = regexp.MustCompile(`/job_detail/([^?]+)`)

	bossCityCodes = map[string]string{
		"beijing":   "101010100",
		"shanghai":  "101020100",
		"guangzhou": "101280100",
		"shenzhen":  "101280600",
	}

	bossVocabulary = siteVocabulary{
		source: BossSource,
		workYears: []*regexp.Regexp{
			yearsWithSuffix,
			yearsWithPrefix,
			freshGraduate,
			regexp.MustCompile(`经验不限`),
		},
		education:       []string{"博士", "硕士", "本科", "大专", "高中", "中专", "初中及以下", "学历不限"},
		normalizeSalary: normalizeBossSalary,
	}
)

// bossCityCode maps a city name to the site's code, defaulting to Beijing.
func bossCityCode(city string) string {
	if code, ok := bossCityCodes[strings.ToLower(strings.TrimSpace(city))]; ok {
		return code
	}
	return bossCityCodes["beijing"]
}

// normalizeBossSalary turns "15 - 30K·13薪" into "15-30K/月".
func normalizeBossSalary(salary string) string {
	s := whitespace.ReplaceAllString(salary, "")
	s, _, _ = strings.Cut(s, "·")
	if !strings.HasSuffix(s, "/月") {
		s += "/月"
	}
	return s
}

type BossBot struct {
	*baseBot
}

func NewBossBot(p page.Page, opts Options, logger *zap.Logger) *BossBot {
	return &BossBot{
		baseBot: newBaseBot(PlatformBoss, p, opts.withDefaults(BossBaseURL), bossVocabulary, logger),
	}
}

func (b *BossBot) searchURL(opts models.SearchOptions) string {
	return fmt.Sprintf("%s/web/geek/job?query=%s&city=%s&page=%d",
		b.opts.BaseURL, url.QueryEscape(opts.Keyword), bossCityCode(opts.City), opts.Page)
}

func (b *BossBot) SearchJobs(ctx context.Context, opts models.SearchOptions) ([]models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "boss.SearchJobs")
	defer span.End()

	opts = opts.WithDefaults()
	span.SetAttributes(
		telemetry.String("search.keyword", opts.Keyword),
		telemetry.String("search.city", opts.City),
		telemetry.Int("search.page", opts.Page))

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.open(ctx, b.searchURL(opts), ".job-list-box", "job list"); err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("search", err, zap.String("keyword", opts.Keyword))
	}
	jobs, err := b.extractList(".job-list-box .job-primary", opts.PageSize, b.listItem)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("search", err, zap.String("keyword", opts.Keyword))
	}

	span.SetAttributes(telemetry.Int("search.results", len(jobs)))
	return jobs, nil
}

func (b *BossBot) listItem(item page.Locator) (models.JobInfo, error) {
	var job models.JobInfo
	var err error

	if job.Title, err = text(item.Locator(".job-name")); err != nil {
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
	if job.Location, err = text(item.Locator(".job-area")); err != nil {
		return job, err
	}

	href, err := item.Locator(".job-name a").GetAttribute("href")
	if err != nil {
		return job, err
	}
	if job.JobID, err = submatch(bossJobID, href); err != nil {
		return job, err
	}
	job.URL = b.opts.BaseURL + href

	companyInfo, err := optionalText(item.Locator(".company-text p"))
	if err != nil {
		return job, err
	}
	job.CompanyType, job.CompanySize = parseCompanyInfo(models.Deref(companyInfo))

	requirements, err := optionalText(item.Locator(".job-limit"))
	if err != nil {
		return job, err
	}
	job.Experience = b.vocab.extractWorkYears(models.Deref(requirements))
	job.Education = b.vocab.extractEducation(models.Deref(requirements))

	if job.Tags, err = texts(item.Locator(".tags .tag-item")); err != nil {
		return job, err
	}

	b.stamp(&job)
	return job, nil
}

func (b *BossBot) GetJobDetail(ctx context.Context, jobID string) (*models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "boss.GetJobDetail")
	defer span.End()
	span.SetAttributes(telemetry.String("job.id", jobID))

	b.mu.Lock()
	defer b.mu.Unlock()

	detailURL := fmt.Sprintf("%s/job_detail/%s", b.opts.BaseURL, url.PathEscape(jobID))
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

func (b *BossBot) detail(jobID, detailURL string) (*models.JobInfo, error) {
	job := &models.JobInfo{JobID: jobID, URL: detailURL}
	var err error

	if job.Title, err = text(b.page.Locator(".job-primary .name")); err != nil {
		return nil, err
	}
	if job.Company, err = text(b.page.Locator(".company-info .name")); err != nil {
		return nil, err
	}
	salary, err := text(b.page.Locator(".salary"))
	if err != nil {
		return nil, err
	}
	job.SalaryRaw = salary
	job.Salary = b.vocab.normalizeSalary(salary)
	if job.Location, err = text(b.page.Locator(".job-primary .address")); err != nil {
		return nil, err
	}
	if job.Description, err = optionalText(b.page.Locator(".job-sec .text")); err != nil {
		return nil, err
	}

	companyInfo, err := optionalText(b.page.Locator(".company-info p"))
	if err != nil {
		return nil, err
	}
	job.CompanyType, job.CompanySize = parseCompanyInfo(models.Deref(companyInfo))

	requirements, err := optionalText(b.page.Locator(".job-primary .info-primary p"))
	if err != nil {
		return nil, err
	}
	job.Experience = b.vocab.extractWorkYears(models.Deref(requirements))
	job.Education = b.vocab.extractEducation(models.Deref(requirements))

	if job.Tags, err = texts(b.page.Locator(".tags .tag-item")); err != nil {
		return nil, err
	}

	b.stamp(job)
	return job, nil
}

// GetCompanyJobs lists the jobs shown on a company's page.
func (b *BossBot) GetCompanyJobs(ctx context.Context, opts models.CompanyJobsOptions) ([]models.JobInfo, error) {
	ctx, span := tracer.Start(ctx, "boss.GetCompanyJobs")
	defer span.End()

	opts = opts.WithDefaults()
	span.SetAttributes(
		telemetry.String("company.id", opts.CompanyID),
		telemetry.Int("search.page", opts.Page))

	b.mu.Lock()
	defer b.mu.Unlock()

	companyURL := fmt.Sprintf("%s/gongsi/%s?page=%d", b.opts.BaseURL, url.PathEscape(opts.CompanyID), opts.Page)
	if err := b.open(ctx, companyURL, ".job-list-box", "company job list"); err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("company", err, zap.String("company_id", opts.CompanyID))
	}
	jobs, err := b.extractList(".job-list-box .job-primary", opts.PageSize, b.listItem)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, b.fail("company", err, zap.String("company_id", opts.CompanyID))
	}
	return jobs, nil
}
