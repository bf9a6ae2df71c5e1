package bots

import (
	"regexp"
	"strings"

	"jobbots/common/errors"
	"jobbots/services/ingestion/internal/models"
	"jobbots/services/ingestion/internal/page"
)

// siteVocabulary is the per-site wording the shared helpers look for.
type siteVocabulary struct {
	source          string
	workYears       []*regexp.Regexp
	education       []string
	normalizeSalary func(string) string
}

var (
	whitespace = regexp.MustCompile(`\s+`)

	yearsWithSuffix = regexp.MustCompile(`\d+[-\d]*年经验`)
	yearsWithPrefix = regexp.MustCompile(`经验\d+[-\d]*年`)
	freshGraduate   = regexp.MustCompile(`应届生`)
)

// extractWorkYears returns the first matching experience phrase, or nil.
func (v siteVocabulary) extractWorkYears(text string) *string {
	for _, re := range v.workYears {
		if m := re.FindString(text); m != "" {
			return &m
		}
	}
	return nil
}

// extractEducation returns the first vocabulary level contained in text.
func (v siteVocabulary) extractEducation(text string) *string {
	for _, level := range v.education {
		if strings.Contains(text, level) {
			l := level
			return &l
		}
	}
	return nil
}

// parseCompanyInfo splits "type·funding·size" into its first and last
// parts. Text without a separator yields nothing.
func parseCompanyInfo(text string) (companyType, companySize *string) {
	if !strings.Contains(text, "·") {
		return nil, nil
	}
	parts := strings.Split(text, "·")
	return models.StringPtr(strings.TrimSpace(parts[0])),
		models.StringPtr(strings.TrimSpace(parts[len(parts)-1]))
}

// text reads the trimmed text of loc's first match; it must exist.
func text(loc page.Locator) (string, error) {
	s, err := loc.TextContent()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// optionalText is text that is nil when nothing matches.
func optionalText(loc page.Locator) (*string, error) {
	matches, err := loc.All()
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	s, err := text(matches[0])
	if err != nil {
		return nil, err
	}
	return models.StringPtr(s), nil
}

// texts reads every match, never returning nil.
func texts(loc page.Locator) ([]string, error) {
	matches, err := loc.All()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		s, err := text(m)
		if err != nil {
			return nil, err
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// submatch returns the first capture of re in s.
func submatch(re *regexp.Regexp, s string) (string, error) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", errors.InvalidInput("no job id in "+s, nil)
	}
	return m[1], nil
}
