// Package planner turns a free-text campaign brief into a structured plan
// using the Anthropic Messages API, with deterministic offline fallbacks.
// No call in this package returns an error to the caller; degraded results
// carry an explicit flag and reason instead.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/logger"
)

const maxTokens = 1024

const planSystemPrompt = `You are a marketing strategist for an affiliate campaign team.
Given a campaign brief, respond with strict JSON only, no prose and no code fences:
{"niche": string, "summary": string, "segments": [string], "angles": [string], "search_queries": [string]}
Provide at most three short search_queries suitable for an e-commerce search box.`

const ideasSystemPrompt = `You are a marketing strategist. Given a campaign brief, respond with
strict JSON only: a bare array of at most five short e-commerce search phrases, e.g.
["portable espresso maker","camping coffee kit"]. No prose, no code fences.`

// Plan is the structured campaign plan the pipeline works from.
type Plan struct {
	Niche         string   `json:"niche"`
	Summary       string   `json:"summary"`
	Segments      []string `json:"segments"`
	Angles        []string `json:"angles"`
	SearchQueries []string `json:"search_queries"`
}

// PlanResult reports a plan together with whether the fallback was used.
// Degraded plans are still always usable.
type PlanResult struct {
	Plan     Plan
	Degraded bool
	Reason   string
}

// IdeasResult reports brainstormed search phrases with degraded-mode info.
type IdeasResult struct {
	Ideas    []string
	Degraded bool
	Reason   string
}

// Planner calls the language model. A nil client (no credential configured)
// means every call answers with the deterministic default.
type Planner struct {
	client     *anthropic.Client
	model      string
	maxQueries int
	logger     logger.Logger
}

func New(cfg config.PlannerConfig, log logger.Logger) *Planner {
	p := &Planner{
		model:      cfg.Model,
		maxQueries: cfg.MaxQueries,
		logger:     log,
	}

	if cfg.APIKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		p.client = &client
	}

	return p
}

// BuildPlan produces a campaign plan for the brief. It never fails: any
// upstream problem degrades to the deterministic default plan.
func (p *Planner) BuildPlan(ctx context.Context, brief string) PlanResult {
	if p.client == nil {
		return PlanResult{Plan: DefaultPlan(brief), Degraded: true, Reason: "no language model credential configured"}
	}

	text, err := p.complete(ctx, planSystemPrompt, brief)
	if err != nil {
		p.logger.Warn("Plan generation failed, using default plan",
			logger.Error(err),
		)
		return PlanResult{Plan: DefaultPlan(brief), Degraded: true, Reason: fmt.Sprintf("language model call failed: %v", err)}
	}

	plan, err := parsePlan(text)
	if err != nil {
		p.logger.Warn("Plan response unparseable, using default plan",
			logger.Error(err),
		)
		return PlanResult{Plan: DefaultPlan(brief), Degraded: true, Reason: fmt.Sprintf("malformed plan response: %v", err)}
	}

	if len(plan.SearchQueries) > p.maxQueries {
		plan.SearchQueries = plan.SearchQueries[:p.maxQueries]
	}

	return PlanResult{Plan: plan}
}

// BrainstormIdeas asks for a bare list of search phrases. Used when the plan
// carried no queries; falls back to a static list on any failure.
func (p *Planner) BrainstormIdeas(ctx context.Context, brief string) IdeasResult {
	if p.client == nil {
		return IdeasResult{Ideas: DefaultIdeas(), Degraded: true, Reason: "no language model credential configured"}
	}

	text, err := p.complete(ctx, ideasSystemPrompt, brief)
	if err != nil {
		p.logger.Warn("Idea brainstorm failed, using default ideas",
			logger.Error(err),
		)
		return IdeasResult{Ideas: DefaultIdeas(), Degraded: true, Reason: fmt.Sprintf("language model call failed: %v", err)}
	}

	ideas, err := parseIdeas(text)
	if err != nil || len(ideas) == 0 {
		return IdeasResult{Ideas: DefaultIdeas(), Degraded: true, Reason: "malformed ideas response"}
	}

	return IdeasResult{Ideas: ideas}
}

func (p *Planner) complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages request: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return sb.String(), nil
}

// DefaultPlan is the deterministic fallback plan derived from the brief.
// Its shape is stable for any input: non-empty niche, summary, segments,
// angles, and search queries.
func DefaultPlan(brief string) Plan {
	topic := strings.TrimSpace(brief)
	if topic == "" {
		topic = "general interest products"
	}

	return Plan{
		Niche:    topic,
		Summary:  "Campaign plan for: " + topic,
		Segments: []string{"deal hunters", "gift shoppers", "everyday enthusiasts"},
		Angles:   []string{"value for money", "everyday convenience", "great for gifting"},
		SearchQueries: []string{
			topic,
		},
	}
}

// DefaultIdeas is the static fallback search phrase list.
func DefaultIdeas() []string {
	return []string{
		"best sellers under $50",
		"trending gadgets",
		"top rated home essentials",
	}
}

// parsePlan decodes the model's JSON plan, tolerating code fences the model
// sometimes wraps around its output.
func parsePlan(text string) (Plan, error) {
	var plan Plan
	if err := json.Unmarshal([]byte(stripFences(text)), &plan); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	if plan.Niche == "" && len(plan.SearchQueries) == 0 {
		return Plan{}, fmt.Errorf("plan missing niche and search queries")
	}
	return plan, nil
}

func parseIdeas(text string) ([]string, error) {
	var ideas []string
	if err := json.Unmarshal([]byte(stripFences(text)), &ideas); err != nil {
		return nil, fmt.Errorf("decode ideas: %w", err)
	}

	out := ideas[:0]
	for _, idea := range ideas {
		if trimmed := strings.TrimSpace(idea); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
