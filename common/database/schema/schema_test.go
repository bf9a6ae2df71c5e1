package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPending(t *testing.T) {
	all := []Migration{
		{Version: 3, Description: "three"},
		{Version: 1, Description: "one"},
		{Version: 2, Description: "two"},
	}

	tests := []struct {
		name    string
		applied map[int]time.Time
		want    []int
	}{
		{name: "fresh database", applied: map[int]time.Time{}, want: []int{1, 2, 3}},
		{name: "partially applied", applied: map[int]time.Time{1: time.Now()}, want: []int{2, 3}},
		{name: "up to date", applied: map[int]time.Time{1: {}, 2: {}, 3: {}}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []int{}
			for _, m := range Pending(tt.applied, all) {
				got = append(got, m.Version)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
