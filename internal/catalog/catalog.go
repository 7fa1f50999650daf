// Package catalog loads the static questionnaire configuration: items,
// interpretation texts and job positions. Defaults are embedded; each file
// can be replaced by a path on disk.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	questionsFile       = "data/questions.yaml"
	interpretationsFile = "data/interpretations.yaml"
	positionsFile       = "data/positions.yaml"
)

// Paths override the embedded files. Empty fields keep the default.
type Paths struct {
	Questions       string
	Interpretations string
	Positions       string
}

type questionDoc struct {
	Dimensions map[models.Dimension]models.LocalizedText `mapstructure:"dimensions"`
	Questions  []questionEntry                           `mapstructure:"questions"`
}

type questionEntry struct {
	ID        int                  `mapstructure:"id"`
	Dimension string               `mapstructure:"dimension"`
	Keying    string               `mapstructure:"keying"`
	Text      models.LocalizedText `mapstructure:"text"`
}

type positionsDoc struct {
	Scoring struct {
		Weights models.ScoringWeights `mapstructure:"weights"`
	} `mapstructure:"scoring"`
	Positions []models.Position `mapstructure:"positions"`
}

// Catalog is the decoded configuration. It performs structural decoding only;
// semantic validation lives with the services that consume each part.
type Catalog struct {
	dimensionNames  map[models.Dimension]models.LocalizedText
	questions       []models.Question
	interpretations models.Interpretations
	positions       []models.Position
	byID            map[string]int
	weights         models.ScoringWeights
}

// configError reports a malformed catalog file as a services.ConfigurationError.
func configError(source, format string, args ...any) error {
	return &services.ConfigurationError{Source: source, Problems: []string{fmt.Sprintf(format, args...)}}
}

// Load reads and decodes all three files. Every failure is a
// *services.ConfigurationError.
func Load(p Paths) (*Catalog, error) {
	var qd questionDoc
	if err := decodeFile(p.Questions, questionsFile, &qd); err != nil {
		return nil, err
	}
	questions, err := toQuestions(qd.Questions)
	if err != nil {
		return nil, err
	}

	var interp models.Interpretations
	if err := decodeFile(p.Interpretations, interpretationsFile, &interp); err != nil {
		return nil, err
	}

	var pd positionsDoc
	if err := decodeFile(p.Positions, positionsFile, &pd); err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(pd.Positions))
	for i, pos := range pd.Positions {
		if strings.TrimSpace(pos.ID) == "" {
			return nil, configError("positions", "entry %d has no position_id", i+1)
		}
		if _, dup := byID[pos.ID]; dup {
			return nil, configError("positions", "duplicate position_id %q", pos.ID)
		}
		byID[pos.ID] = i
	}
	if w := pd.Scoring.Weights; w.CV < 0 || w.Personality < 0 {
		return nil, configError("positions", "scoring weights must not be negative (cv %.2f, personality %.2f)", w.CV, w.Personality)
	}

	return &Catalog{
		dimensionNames:  qd.Dimensions,
		questions:       questions,
		interpretations: interp,
		positions:       pd.Positions,
		byID:            byID,
		weights:         pd.Scoring.Weights,
	}, nil
}

func toQuestions(entries []questionEntry) ([]models.Question, error) {
	out := make([]models.Question, 0, len(entries))
	for _, e := range entries {
		var reverse bool
		switch strings.TrimSpace(e.Keying) {
		case "+":
		case "-":
			reverse = true
		default:
			return nil, configError("questions", "item %d has keying %q, want \"+\" or \"-\"", e.ID, e.Keying)
		}
		out = append(out, models.Question{
			ID:            e.ID,
			TextI18n:      e.Text,
			Dimension:     models.Dimension(strings.ToUpper(strings.TrimSpace(e.Dimension))),
			ReverseScored: reverse,
		})
	}
	return out, nil
}

func decodeFile(path, fallback string, out any) error {
	var (
		data []byte
		err  error
		name = fallback
	)
	if strings.TrimSpace(path) != "" {
		name = path
		data, err = os.ReadFile(path)
	} else {
		data, err = embedded.ReadFile(fallback)
	}
	if err != nil {
		return configError(name, "read: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return configError(name, "parse: %v", err)
	}
	if len(raw) == 0 {
		return configError(name, "file is empty")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return configError(name, "decoder: %v", err)
	}
	if err := dec.Decode(raw); err != nil {
		return configError(name, "decode: %v", err)
	}
	return nil
}

// Questions implements services.QuestionSource.
func (c *Catalog) Questions() ([]models.Question, error) {
	out := make([]models.Question, len(c.questions))
	copy(out, c.questions)
	return out, nil
}

func (c *Catalog) Interpretations() models.Interpretations { return c.interpretations }

func (c *Catalog) Weights() models.ScoringWeights { return c.weights }

func (c *Catalog) Position(id string) (models.Position, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Position{}, false
	}
	return c.positions[i], true
}

// Positions returns all positions sorted by id.
func (c *Catalog) Positions() []models.Position {
	out := append([]models.Position(nil), c.positions...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DimensionName returns the display name of d, or its code when unnamed.
func (c *Catalog) DimensionName(d models.Dimension, locale, fallback string) string {
	if s := c.dimensionNames[d].In(locale, fallback); s != "" {
		return s
	}
	return string(d)
}
