package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScrapePlan lists what the scheduler scrapes on every run.
type ScrapePlan struct {
	Platforms []string `yaml:"platforms"`
	Keywords  []string `yaml:"keywords"`
	Cities    []string `yaml:"cities"`
	Pages     int      `yaml:"pages"`
	PageSize  int      `yaml:"page_size"`
}

// DefaultScrapePlan is used when SCRAPE_PLAN is unset.
func DefaultScrapePlan(platforms []string) *ScrapePlan {
	return &ScrapePlan{
		Platforms: platforms,
		Keywords:  []string{"python", "golang"},
		Cities:    []string{"beijing"},
		Pages:     1,
		PageSize:  20,
	}
}

func LoadScrapePlan(path string, platforms []string) (*ScrapePlan, error) {
	if path == "" {
		return DefaultScrapePlan(platforms), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scrape plan: %w", err)
	}

	plan := &ScrapePlan{}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("parsing scrape plan %s: %w", path, err)
	}

	if len(plan.Platforms) == 0 {
		plan.Platforms = platforms
	}
	if len(plan.Cities) == 0 {
		plan.Cities = []string{""}
	}
	if plan.Pages < 1 {
		plan.Pages = 1
	}
	if plan.PageSize < 1 {
		plan.PageSize = 20
	}
	if len(plan.Keywords) == 0 {
		return nil, fmt.Errorf("scrape plan %s has no keywords", path)
	}
	return plan, nil
}
