package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// AnalysisObserver counts analyzer outcomes.
type AnalysisObserver interface {
	ObserveAnalysis(outcome string)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	retryBackoff        = 500 * time.Millisecond
)

// Requirement levels and their share of the résumé score.
var levelWeights = map[string]float64{
	"must_have":    0.6,
	"should_have":  0.3,
	"nice_to_have": 0.1,
}

// ErrInvalidResponse marks a model answer that could not be scored.
var ErrInvalidResponse = errors.New("gemini returned an unusable analysis")

type Options struct {
	MaxRetries int
	// RequestsPerMinute throttles calls to the API. Zero disables throttling.
	RequestsPerMinute float64
	MaxLogLength      int
	// Language names the language of summary, strengths and gaps.
	Language string
	Observer AnalysisObserver
	Logger   *zap.Logger
}

// Analyzer scores résumés against a position's requirements with Gemini.
type Analyzer struct {
	generator contentGenerator
	limiter   *rate.Limiter
	opts      Options
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewAnalyzer(generator contentGenerator, opts Options) *Analyzer {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = defaultMaxLogLength
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if strings.TrimSpace(opts.Language) == "" {
		opts.Language = "German"
	}
	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerMinute/60), 1)
	}
	return &Analyzer{
		generator: generator,
		limiter:   limiter,
		opts:      opts,
		logger:    logger.WithFields(opts.Logger, logger.AIFields("gemini", generator.Model())...).Named("gemini"),
		sleep:     sleepContext,
	}
}

func (a *Analyzer) observe(outcome string) {
	if a.opts.Observer != nil {
		a.opts.Observer.ObserveAnalysis(outcome)
	}
}

// AnalyzeCV asks the model which requirements the résumé meets and derives
// a 0..100 score from the answer.
func (a *Analyzer) AnalyzeCV(ctx context.Context, cvText string, position models.Position) (*models.CVMatch, error) {
	prompt, err := buildPrompt(cvText, position, a.opts.Language)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= a.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := a.sleep(ctx, time.Duration(attempt)*retryBackoff); err != nil {
				lastErr = err
				break
			}
		}
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				lastErr = fmt.Errorf("wait for rate limit: %w", err)
				break
			}
		}

		a.logger.Debug("gemini generate content request",
			zap.String(logger.FieldPosition, position.ID),
			zap.Int("attempt", attempt+1),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", logger.TruncateForLog(prompt, a.opts.MaxLogLength)),
		)
		raw, err := a.generator.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = err
			a.logger.Warn("gemini request failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		a.logger.Debug("gemini generate content response",
			zap.String(logger.FieldPosition, position.ID),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", logger.TruncateForLog(raw, a.opts.MaxLogLength)),
		)

		match, err := parseResponse(raw, position)
		if err != nil {
			lastErr = err
			a.logger.Warn("gemini response rejected", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		a.observe("success")
		return match, nil
	}

	if errors.Is(lastErr, ErrInvalidResponse) {
		a.observe("invalid_response")
	} else {
		a.observe("error")
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, lastErr
}

func buildPrompt(cvText string, position models.Position, language string) (string, error) {
	payload := map[string]any{
		"title":        position.Title,
		"must_have":    position.MustHave,
		"should_have":  position.ShouldHave,
		"nice_to_have": position.NiceToHave,
	}
	positionJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal position payload: %w", err)
	}
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Position:\n{{POSITION_JSON}}\n\nRésumé:\n{{CV_TEXT}}\n\nLanguage: {{LANGUAGE}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{POSITION_JSON}}", string(positionJSON))
	prompt = strings.ReplaceAll(prompt, "{{LANGUAGE}}", language)
	prompt = strings.ReplaceAll(prompt, "{{CV_TEXT}}", strings.TrimSpace(cvText))
	return prompt, nil
}

func parseResponse(raw string, position models.Position) (*models.CVMatch, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	score, ok := requirementScore(data["requirements"], position)
	if !ok {
		score = coerceFloat(data["score"])
		if math.IsNaN(score) {
			return nil, fmt.Errorf("%w: no requirements and no score", ErrInvalidResponse)
		}
	}
	score = math.Round(score*10) / 10
	score = math.Max(0, math.Min(100, score))

	return &models.CVMatch{
		Score:     score,
		Summary:   coerceString(data["summary"]),
		Strengths: coerceStrings(data["strengths"]),
		Gaps:      coerceStrings(data["gaps"]),
	}, nil
}

// requirementScore weights the share of found skills per category by the
// category weight, and each level by levelWeights. Levels the position does
// not define are left out and the remaining weights renormalized.
func requirementScore(v any, position models.Position) (float64, bool) {
	reqs, ok := v.(map[string]any)
	if !ok || len(reqs) == 0 {
		return 0, false
	}
	levels := []struct {
		name       string
		categories []models.RequirementCategory
	}{
		{"must_have", position.MustHave},
		{"should_have", position.ShouldHave},
		{"nice_to_have", position.NiceToHave},
	}

	var total, weights float64
	for _, l := range levels {
		if len(l.categories) == 0 {
			continue
		}
		found := foundSkills(reqs[l.name])
		total += levelWeights[l.name] * levelScore(l.categories, found)
		weights += levelWeights[l.name]
	}
	if weights == 0 {
		return 0, false
	}
	return total / weights, true
}

func levelScore(categories []models.RequirementCategory, found map[string]bool) float64 {
	var sum, weights float64
	for _, c := range categories {
		if len(c.Skills) == 0 {
			continue
		}
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		hits := 0
		for _, s := range c.Skills {
			if found[normalizeSkill(s)] {
				hits++
			}
		}
		sum += w * float64(hits) / float64(len(c.Skills))
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights * 100
}

// foundSkills accepts a flat list of {skill, found} entries or categories
// carrying a nested skills list.
func foundSkills(v any) map[string]bool {
	out := map[string]bool{}
	items, _ := v.([]any)
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if nested, ok := entry["skills"]; ok {
			for k, f := range foundSkills(nested) {
				out[k] = out[k] || f
			}
			continue
		}
		name := normalizeSkill(coerceString(entry["skill"]))
		if name != "" {
			out[name] = out[name] || coerceBool(entry["found"])
		}
	}
	return out
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%")), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func coerceStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := coerceString(it); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
