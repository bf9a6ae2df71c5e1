package bots

import (
	"context"
	"testing"
	"time"

	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/models"
	"jobbots/services/ingestion/internal/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.Local)

func testOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

const bossSearchHTML = `<html><body>
<div class="job-list-box">
  <div class="job-primary">
    <span class="job-name"><a href="/job_detail/abc123.html?ka=search_list_1">Go 开发工程师</a></span>
    <span class="company-name">字节跳动</span>
    <span class="salary">20-40K·15薪</span>
    <span class="job-area">北京·海淀区</span>
    <div class="company-text"><p>互联网·D轮及以上·10000人以上</p></div>
    <div class="job-limit">3-5年经验 本科</div>
    <div class="tags"><span class="tag-item">Go</span><span class="tag-item"> Kubernetes </span></div>
  </div>
  <div class="job-primary">
    <span class="job-name"><a href="/job_detail/broken.html">缺少公司</a></span>
    <span class="salary">10-20K</span>
    <span class="job-area">北京</span>
  </div>
  <div class="job-primary">
    <span class="job-name"><a href="/job_detail/def456.html">后端工程师</a></span>
    <span class="company-name">美团</span>
    <span class="salary"> 15 - 30K </span>
    <span class="job-area">北京·朝阳区</span>
    <div class="job-limit">经验不限 学历不限</div>
  </div>
  <div class="job-primary">
    <span class="job-name"><a href="/job_detail/ghi789.html">SRE</a></span>
    <span class="company-name">京东</span>
    <span class="salary">25-35K</span>
    <span class="job-area">北京·亦庄</span>
  </div>
</div>
</body></html>`

const bossDetailHTML = `<html><body>
<div class="job-detail">
  <div class="job-primary">
    <div class="info-primary"><p>北京 经验3-5年 硕士</p></div>
    <h1 class="name"> Go 开发工程师 </h1>
    <span class="salary">20-40K·15薪</span>
    <span class="address">北京市海淀区中关村</span>
  </div>
  <div class="company-info"><a class="name">字节跳动</a><p>互联网·10000人以上</p></div>
  <div class="job-sec"><div class="text">负责后端服务开发。</div></div>
  <div class="tags"><span class="tag-item">Go</span></div>
</div>
</body></html>`

const ganjiSearchHTML = `<html><body>
<ul class="job-list">
  <li class="job-item">
    <div class="job-title"><a href="https://www.ganji.com/job/10001/">Golang 工程师</a></div>
    <div class="company-name">某科技公司</div>
    <div class="salary">6-8千/月</div>
    <div class="location">北京-海淀</div>
    <div class="job-tags"><span class="tag">五险一金</span><span class="tag">双休</span></div>
  </li>
  <li class="job-item">
    <div class="job-title"><a href="/zhaopin/detail">无编号</a></div>
    <div class="company-name">某公司</div>
    <div class="salary">面议</div>
    <div class="location">北京</div>
  </li>
  <li class="job-item">
    <div class="job-title"><a href="https://www.ganji.com/job/10002/">运维工程师</a></div>
    <div class="company-name">另一家公司</div>
    <div class="salary">1-2万/月</div>
    <div class="location">北京-朝阳</div>
  </li>
</ul>
</body></html>`

const ganjiDetailHTML = `<html><body>
<div class="job-detail">
  <h1 class="job-title">Golang 工程师</h1>
  <div class="company-name">某科技公司</div>
  <div class="salary">20-30万/年</div>
  <div class="location">北京-海淀</div>
  <div class="job-description">维护交易系统。</div>
  <div class="company-type">民营</div>
  <div class="job-requirements">不限经验 大专</div>
  <div class="job-tags"><span class="tag">包吃</span></div>
</div>
</body></html>`

func TestBossSearchJobs(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.zhipin.com/web/geek/job?query=golang&city=101010100&page=1": bossSearchHTML,
	})
	core, logs := observer.New(zap.ErrorLevel)
	bot := NewBossBot(p, testOptions(), zap.New(core))

	jobs, err := bot.SearchJobs(context.Background(), models.SearchOptions{Keyword: "golang"})
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, 1, logs.FilterMessage("failed to extract job item").Len())

	first := jobs[0]
	assert.Equal(t, "abc123.html", first.JobID)
	assert.Equal(t, "Go 开发工程师", first.Title)
	assert.Equal(t, "字节跳动", first.Company)
	assert.Equal(t, "20-40K/月", first.Salary)
	assert.Equal(t, "北京·海淀区", first.Location)
	assert.Equal(t, "https://www.zhipin.com/job_detail/abc123.html?ka=search_list_1", first.URL)
	assert.Equal(t, ptr("互联网"), first.CompanyType)
	assert.Equal(t, ptr("10000人以上"), first.CompanySize)
	assert.Equal(t, ptr("3-5年经验"), first.Experience)
	assert.Equal(t, ptr("本科"), first.Education)
	assert.Equal(t, []string{"Go", "Kubernetes"}, first.Tags)
	assert.Equal(t, BossSource, first.Source)
	assert.Equal(t, "2024-06-01 09:30:00", first.UpdateTime)
	assert.Nil(t, first.Description)

	second := jobs[1]
	assert.Equal(t, "def456.html", second.JobID)
	assert.Equal(t, "15-30K/月", second.Salary)
	assert.Equal(t, ptr("经验不限"), second.Experience)
	assert.Equal(t, ptr("学历不限"), second.Education)
	assert.Nil(t, second.CompanyType)
	assert.NotNil(t, second.Tags)
	assert.Empty(t, second.Tags)
}

func TestBossSearchJobsPageSize(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.zhipin.com/web/geek/job?query=golang&city=101020100&page=1": bossSearchHTML,
	})
	bot := NewBossBot(p, testOptions(), zap.NewNop())

	jobs, err := bot.SearchJobs(context.Background(), models.SearchOptions{
		Keyword:  "golang",
		City:     "Shanghai",
		PageSize: 2,
	})
	require.NoError(t, err)
	// the second item is broken, so only one of the first two survives
	require.Len(t, jobs, 1)
	assert.Equal(t, "abc123.html", jobs[0].JobID)

	for _, job := range jobs {
		assert.NotEmpty(t, job.Title)
		assert.NotEmpty(t, job.Company)
		assert.NotEmpty(t, job.URL)
	}
}

func TestBossSearchJobsTimeout(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.zhipin.com/web/geek/job?query=golang&city=101010100&page=1": `<html><body><p>验证</p></body></html>`,
	})
	bot := NewBossBot(p, testOptions(), zap.NewNop())

	_, err := bot.SearchJobs(context.Background(), models.SearchOptions{Keyword: "golang"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeTimeout, errors.TypeOf(err))
}

func TestBossSearchJobsNavigationError(t *testing.T) {
	bot := NewBossBot(page.NewFixturePage(nil), testOptions(), zap.NewNop())

	_, err := bot.SearchJobs(context.Background(), models.SearchOptions{Keyword: "golang"})
	assert.Equal(t, errors.ErrTypeNotFound, errors.TypeOf(err))
}

func TestBossGetJobDetail(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.zhipin.com/job_detail/abc123.html": bossDetailHTML,
	})
	bot := NewBossBot(p, testOptions(), zap.NewNop())

	job, err := bot.GetJobDetail(context.Background(), "abc123.html")
	require.NoError(t, err)
	assert.Equal(t, "abc123.html", job.JobID)
	assert.Equal(t, "Go 开发工程师", job.Title)
	assert.Equal(t, "字节跳动", job.Company)
	assert.Equal(t, "20-40K/月", job.Salary)
	assert.Equal(t, "北京市海淀区中关村", job.Location)
	assert.Equal(t, ptr("负责后端服务开发。"), job.Description)
	assert.Equal(t, ptr("经验3-5年"), job.Experience)
	assert.Equal(t, ptr("硕士"), job.Education)
	assert.Equal(t, ptr("互联网"), job.CompanyType)
	assert.Equal(t, "https://www.zhipin.com/job_detail/abc123.html", job.URL)
	assert.Equal(t, []string{"Go"}, job.Tags)
}

func TestBossGetCompanyJobs(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.zhipin.com/gongsi/c42?page=2": bossSearchHTML,
	})
	bot := NewBossBot(p, testOptions(), zap.NewNop())

	jobs, err := bot.GetCompanyJobs(context.Background(), models.CompanyJobsOptions{CompanyID: "c42", Page: 2})
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
	assert.Equal(t, "https://www.zhipin.com/gongsi/c42?page=2", p.URL())
}

func TestGanjiSearchJobs(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.ganji.com/jobs/beijing/zhaopin/?query=golang&page=1": ganjiSearchHTML,
	})
	bot := NewGanjiBot(p, testOptions(), zap.NewNop())

	jobs, err := bot.SearchJobs(context.Background(), models.SearchOptions{Keyword: "golang"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "10001", jobs[0].JobID)
	assert.Equal(t, "Golang 工程师", jobs[0].Title)
	assert.Equal(t, "6-8k/月", jobs[0].Salary)
	assert.Equal(t, "https://www.ganji.com/job/10001/", jobs[0].URL)
	assert.Equal(t, []string{"五险一金", "双休"}, jobs[0].Tags)
	assert.Equal(t, GanjiSource, jobs[0].Source)
	assert.Nil(t, jobs[0].Experience)

	assert.Equal(t, "10002", jobs[1].JobID)
	assert.Equal(t, "1-20k/月", jobs[1].Salary)
	assert.Equal(t, "1-2万/月", jobs[1].SalaryRaw)
}

func TestGanjiSearchJobsCity(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.ganji.com/jobs/shanghai/zhaopin/?query=%E8%BF%90%E7%BB%B4&page=3": ganjiSearchHTML,
	})
	bot := NewGanjiBot(p, testOptions(), zap.NewNop())

	jobs, err := bot.SearchJobs(context.Background(), models.SearchOptions{
		Keyword:  "运维",
		City:     " Shanghai ",
		Page:     3,
		PageSize: 1,
	})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestGanjiGetJobDetail(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.ganji.com/job/10001/": ganjiDetailHTML,
	})
	bot := NewGanjiBot(p, testOptions(), zap.NewNop())

	job, err := bot.GetJobDetail(context.Background(), "10001")
	require.NoError(t, err)
	assert.Equal(t, "Golang 工程师", job.Title)
	assert.Equal(t, "20-30w/年", job.Salary)
	assert.Equal(t, "20-30万/年", job.SalaryRaw)
	assert.Equal(t, ptr("维护交易系统。"), job.Description)
	assert.Equal(t, ptr("民营"), job.CompanyType)
	assert.Nil(t, job.CompanySize)
	assert.Equal(t, ptr("不限经验"), job.Experience)
	assert.Equal(t, ptr("大专"), job.Education)
	assert.Equal(t, "https://www.ganji.com/job/10001/", job.URL)
}

func TestGanjiGetCompanyJobs(t *testing.T) {
	p := page.NewFixturePage(map[string]string{
		"https://www.ganji.com/company/777/jobs/?page=1": ganjiSearchHTML,
	})
	bot := NewGanjiBot(p, testOptions(), zap.NewNop())

	jobs, err := bot.GetCompanyJobs(context.Background(), models.CompanyJobsOptions{CompanyID: "777"})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{PlatformBoss, PlatformGanji}, Platforms())

	bot, err := New(PlatformGanji, page.NewFixturePage(nil), Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, PlatformGanji, bot.Name())

	_, err = New("lagou", page.NewFixturePage(nil), Options{}, zap.NewNop())
	assert.Equal(t, errors.ErrTypeInvalidInput, errors.TypeOf(err))
}
