package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/testhelpers"
)

func offlinePlanner() *Planner {
	return New(config.PlannerConfig{
		Model:      "claude-sonnet-4-5",
		MaxQueries: 3,
	}, testhelpers.NewTestLogger())
}

func TestBuildPlan_OfflineFallbackIsDeterministic(t *testing.T) {
	p := offlinePlanner()

	first := p.BuildPlan(context.Background(), "Find portable coffee makers under $50")
	second := p.BuildPlan(context.Background(), "Find portable coffee makers under $50")

	assert.True(t, first.Degraded)
	assert.NotEmpty(t, first.Reason)
	assert.Equal(t, first.Plan, second.Plan)
}

func TestBuildPlan_OfflinePlanShape(t *testing.T) {
	p := offlinePlanner()

	briefs := []string{
		"Find portable coffee makers under $50",
		"standing desks",
		"",
	}

	for _, brief := range briefs {
		result := p.BuildPlan(context.Background(), brief)

		assert.NotEmpty(t, result.Plan.Niche, "brief %q", brief)
		assert.NotEmpty(t, result.Plan.Summary, "brief %q", brief)
		assert.NotEmpty(t, result.Plan.Segments, "brief %q", brief)
		assert.NotEmpty(t, result.Plan.Angles, "brief %q", brief)
		assert.NotEmpty(t, result.Plan.SearchQueries, "brief %q", brief)
	}
}

func TestBrainstormIdeas_OfflineFallback(t *testing.T) {
	p := offlinePlanner()

	result := p.BrainstormIdeas(context.Background(), "anything")

	assert.True(t, result.Degraded)
	assert.Equal(t, DefaultIdeas(), result.Ideas)
	assert.NotEmpty(t, result.Ideas)
}

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		want    Plan
	}{
		{
			name: "plain json",
			text: `{"niche":"coffee gear","summary":"s","segments":["commuters"],"angles":["speed"],"search_queries":["portable coffee maker"]}`,
			want: Plan{
				Niche:         "coffee gear",
				Summary:       "s",
				Segments:      []string{"commuters"},
				Angles:        []string{"speed"},
				SearchQueries: []string{"portable coffee maker"},
			},
		},
		{
			name: "fenced json",
			text: "```json\n{\"niche\":\"coffee gear\",\"search_queries\":[\"aeropress\"]}\n```",
			want: Plan{
				Niche:         "coffee gear",
				SearchQueries: []string{"aeropress"},
			},
		},
		{
			name:    "prose response",
			text:    "Here is your plan: coffee is great",
			wantErr: true,
		},
		{
			name:    "empty object",
			text:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := parsePlan(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan)
		})
	}
}

func TestParseIdeas(t *testing.T) {
	ideas, err := parseIdeas(`["espresso kit"," camp stove ",""]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"espresso kit", "camp stove"}, ideas)

	_, err = parseIdeas("not json")
	assert.Error(t, err)
}
