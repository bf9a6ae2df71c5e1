package parser

import (
	"encoding/json"
	"testing"
	"time"

	"jobbots/services/processing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		text   string
		min    float64
		max    float64
		period string
	}{
		{"10-20k/月", 10000, 20000, PeriodMonth},
		{"10k-20k/月", 10000, 20000, PeriodMonth},
		{"15-30K/月", 15000, 30000, PeriodMonth},
		{"8千-1.2万/月", 8000, 12000, PeriodMonth},
		{"15-25w/年", 150000, 250000, PeriodYear},
		{"200-300元/天", 200, 300, PeriodDay},
		{"8k/月", 8000, 8000, PeriodMonth},
		{"30-50K·16薪", 30000, 50000, PeriodMonth},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseSalary(tt.text)
			require.NotNil(t, got.Min)
			require.NotNil(t, got.Max)
			assert.Equal(t, tt.min, *got.Min)
			assert.Equal(t, tt.max, *got.Max)
			assert.Equal(t, tt.period, got.Period)
		})
	}
}

func TestParseSalaryWithoutFigures(t *testing.T) {
	for _, text := range []string{"面议", "", "薪资面谈"} {
		got := ParseSalary(text)
		assert.Nil(t, got.Min, text)
		assert.Nil(t, got.Max, text)
		assert.Empty(t, got.Period, text)
	}
}

func TestParseExperienceYears(t *testing.T) {
	tests := []struct {
		text string
		want *int32
	}{
		{"3-5年", int32Ptr(3)},
		{"1-3年经验", int32Ptr(1)},
		{"5年以上", int32Ptr(5)},
		{"10年以上经验", int32Ptr(10)},
		{"经验不限", int32Ptr(0)},
		{"应届生", int32Ptr(0)},
		{"1年以内", int32Ptr(0)},
		{"", nil},
		{"本科", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExperienceYears(tt.text))
		})
	}
}

func TestParseJob(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	data := []byte(`{
		"job_id": "abc123",
		"title": " Go 开发工程师 ",
		"company": "字节跳动",
		"salary": "20-40K/月",
		"location": "北京·海淀区",
		"experience": "3-5年",
		"education": "本科",
		"company_type": "互联网",
		"company_size": "10000人以上",
		"tags": ["Go", "Kubernetes"],
		"description": null,
		"url": "https://www.zhipin.com/job_detail/abc123",
		"source": "BOSS直聘",
		"update_time": "2024-06-01 09:30:00"
	}`)

	listing, err := ParseJob(data, now)
	require.NoError(t, err)

	assert.Equal(t, ListingID("BOSS直聘", "abc123"), listing.ID)
	assert.Equal(t, "Go 开发工程师", listing.Title)
	assert.Equal(t, 20000.0, *listing.SalaryMin)
	assert.Equal(t, 40000.0, *listing.SalaryMax)
	assert.Equal(t, PeriodMonth, listing.SalaryPeriod)
	assert.Equal(t, int32(3), *listing.ExperienceMinYears)
	assert.Equal(t, "本科", listing.Education)
	assert.Empty(t, listing.Description)
	assert.Equal(t, []string{"Go", "Kubernetes"}, listing.Tags)
	assert.True(t, listing.ScrapedAt.Equal(time.Date(2024, 6, 1, 9, 30, 0, 0, time.Local)))
	assert.Equal(t, now, listing.CreatedAt)
	assert.Equal(t, string(data), listing.RawData)
}

func TestParseJobPrefersRawSalary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		salary, raw string
		min, max    float64
	}{
		{"8千-1.20k/月", "8千-1.2万/月", 8000, 12000},
		{"1-1.50k/月", "1-1.5万/月", 10000, 15000},
		{"6-8k/月", "6-8千/月", 6000, 8000},
		{"20-30w/年", "20-30万/年", 200000, 300000},
		{"15-30K/月", "", 15000, 30000},
	}
	for _, tt := range tests {
		t.Run(tt.salary, func(t *testing.T) {
			data, err := json.Marshal(map[string]any{
				"job_id":     "10001",
				"source":     "赶集网",
				"salary":     tt.salary,
				"salary_raw": tt.raw,
			})
			require.NoError(t, err)

			listing, err := ParseJob(data, now)
			require.NoError(t, err)
			assert.Equal(t, tt.salary, listing.SalaryText)
			assert.Equal(t, tt.min, *listing.SalaryMin)
			assert.Equal(t, tt.max, *listing.SalaryMax)
		})
	}
}

func TestParseJobFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	listing, err := ParseJob([]byte(`{"job_id":"1","source":"赶集网","salary":"面议"}`), now)
	require.NoError(t, err)

	assert.Equal(t, now, listing.ScrapedAt)
	assert.Nil(t, listing.SalaryMin)
	assert.Nil(t, listing.ExperienceMinYears)
	assert.NotNil(t, listing.Tags)
}

func TestParseJobRejectsBadInput(t *testing.T) {
	_, err := ParseJob([]byte(`not json`), time.Now())
	assert.Error(t, err)

	_, err = ParseJob([]byte(`{"title":"no id"}`), time.Now())
	assert.Error(t, err)
}

func TestListingIDIsStable(t *testing.T) {
	assert.Equal(t, ListingID("BOSS直聘", "abc"), ListingID("BOSS直聘", "abc"))
	assert.NotEqual(t, ListingID("BOSS直聘", "abc"), ListingID("赶集网", "abc"))
	assert.Equal(t, 5, int(ListingID("BOSS直聘", "abc").Version()))
}

func TestFingerprintIgnoresTimes(t *testing.T) {
	a := &models.JobListing{Title: "SRE", SalaryText: "10-20k/月", ScrapedAt: time.Unix(1, 0)}
	b := *a
	b.ScrapedAt = time.Unix(2, 0)
	b.CreatedAt = time.Unix(3, 0)
	assert.Equal(t, Fingerprint(a), Fingerprint(&b))

	b.SalaryText = "12-20k/月"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(&b))
}

func TestParseAnalysis(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got, err := ParseAnalysis([]byte(`{"job_id":"abc","source":"BOSS直聘","model":"gpt-4o-mini","analysis":"技能要求"}`), now)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.JobID)
	assert.Equal(t, now, got.CreatedAt)

	_, err = ParseAnalysis([]byte(`{"analysis":"orphan"}`), now)
	assert.Error(t, err)
}

func int32Ptr(v int32) *int32 {
	return &v
}
