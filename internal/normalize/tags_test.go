package normalize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags(t *testing.T) {
	tests := []struct {
		name  string
		seeds []string
		want  []string
	}{
		{
			name:  "conjunctions and hyphenated terms",
			seeds: []string{"Coffee & Travel", "Quick-Brew"},
			want:  []string{"coffee", "travel", "quick-brew"},
		},
		{
			name:  "deduplicates across seeds",
			seeds: []string{"Coffee, coffee", "COFFEE"},
			want:  []string{"coffee"},
		},
		{
			name:  "strips punctuation",
			seeds: []string{"Yoga! (mats)", "home/office"},
			want:  []string{"yoga", "mats", "home", "office"},
		},
		{
			name:  "empty input",
			seeds: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tags(tt.seeds))
		})
	}
}

func TestTags_Bounds(t *testing.T) {
	seeds := []string{"one two three four five six seven eight nine"}
	tags := Tags(seeds)

	assert.LessOrEqual(t, len(tags), MaxTags)

	allowed := regexp.MustCompile(`^[a-z0-9-]+$`)
	for _, tag := range tags {
		assert.NotEmpty(t, tag)
		assert.Regexp(t, allowed, tag)
	}
}
