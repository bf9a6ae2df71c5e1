package bots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBossSalary(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10k-20k", "10k-20k/月"},
		{"10-20k·五险一金", "10-20k/月"},
		{" 15 - 30K ", "15-30K/月"},
		{"20-40K·15薪", "20-40K/月"},
		{"8-10k/月", "8-10k/月"},
		{"150-200元/天", "150-200元/天/月"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeBossSalary(tt.in), tt.in)
	}
}

func TestNormalizeGanjiSalary(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6-8千/月", "6-8k/月"},
		{"5 千/月", "5 k/月"},
		{" 1-1.5万/月\n", "1-1.50k/月"},
		{"8千-1.2万/月", "8千-1.20k/月"},
		{"20-30万/年", "20-30w/年"},
		{"面议", "面议"},
		{"3000-5000元/月", "3000-5000元/月"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeGanjiSalary(tt.in), tt.in)
	}
}

func TestExtractWorkYears(t *testing.T) {
	tests := []struct {
		vocab siteVocabulary
		in    string
		want  *string
	}{
		{bossVocabulary, "北京 3-5年经验 本科", ptr("3-5年经验")},
		{bossVocabulary, "经验1年 大专", ptr("经验1年")},
		{bossVocabulary, "应届生 硕士", ptr("应届生")},
		{bossVocabulary, "经验不限 学历不限", ptr("经验不限")},
		{bossVocabulary, "不限经验", nil},
		{ganjiVocabulary, "不限经验 不限学历", ptr("不限经验")},
		{ganjiVocabulary, "经验不限", nil},
		{ganjiVocabulary, "10年经验以上", ptr("10年经验")},
		{ganjiVocabulary, "", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.vocab.extractWorkYears(tt.in), tt.in)
	}
}

func TestExtractEducation(t *testing.T) {
	tests := []struct {
		vocab siteVocabulary
		in    string
		want  *string
	}{
		{bossVocabulary, "3-5年经验 本科", ptr("本科")},
		{bossVocabulary, "博士 硕士", ptr("博士")},
		{bossVocabulary, "初中及以下", ptr("初中及以下")},
		{bossVocabulary, "学历不限", ptr("学历不限")},
		{bossVocabulary, "不限学历", nil},
		{ganjiVocabulary, "不限学历", ptr("不限学历")},
		{ganjiVocabulary, "高中以上", ptr("高中")},
		{ganjiVocabulary, "无要求", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.vocab.extractEducation(tt.in), tt.in)
	}
}

func TestParseCompanyInfo(t *testing.T) {
	typ, size := parseCompanyInfo("互联网·D轮及以上·10000人以上")
	assert.Equal(t, ptr("互联网"), typ)
	assert.Equal(t, ptr("10000人以上"), size)

	typ, size = parseCompanyInfo(" 电子商务 · 100-499人 ")
	assert.Equal(t, ptr("电子商务"), typ)
	assert.Equal(t, ptr("100-499人"), size)

	typ, size = parseCompanyInfo("互联网")
	assert.Nil(t, typ)
	assert.Nil(t, size)
}

func TestBossCityCode(t *testing.T) {
	assert.Equal(t, "101020100", bossCityCode("shanghai"))
	assert.Equal(t, "101280600", bossCityCode("ShenZhen"))
	assert.Equal(t, "101010100", bossCityCode(""))
	assert.Equal(t, "101010100", bossCityCode("hangzhou"))
}

func ptr(s string) *string {
	return &s
}
