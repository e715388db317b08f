package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
)

// workerPayload mirrors the worker result JSON schema. Fields use pointers
// or omitempty-friendly zero values only where a field is genuinely
// optional; required fields are plain so a missing key surfaces as Go's
// json zero value rather than a parse error, matching the "total" parsing
// stance taken throughout this package (unknown enum values fall back to
// defaults, never errors) — we still require the object to at least be
// valid JSON shaped roughly like the schema, which is the one hard failure
// mode.
type workerPayload struct {
	Ratings struct {
		Overall float64 `json:"overall"`
		Topics  []struct {
			Topic      string `json:"topic"`
			Score      int    `json:"score"`
			Confidence int    `json:"confidence"`
			Reasoning  string `json:"reasoning"`
		} `json:"topics"`
		Flags []struct {
			FlagType string `json:"flag_type"`
			Severity string `json:"severity"`
			Message  string `json:"message"`
		} `json:"flags"`
	} `json:"ratings"`

	PrimaryCategory     string   `json:"primary_category"`
	SecondaryCategories []string `json:"secondary_categories"`
	Tags                []string `json:"tags"`

	HasMCP              bool `json:"has_mcp"`
	HasReferences       bool `json:"has_references"`
	HasAssets           bool `json:"has_assets"`
	EstimatedTokenUsage int  `json:"estimated_token_usage"`

	ProvidesMCP  bool `json:"provides_mcp"`
	RequiredMCPs []struct {
		Name    string `json:"name"`
		Purpose string `json:"purpose"`
	} `json:"required_mcps"`
	SoftwareDeps []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"software_deps"`

	ReferencedFiles []string `json:"referenced_files"`
	ReferencedURLs  []string `json:"referenced_urls"`

	Summary            string   `json:"summary"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	UseCases           []string `json:"use_cases"`
	CompatibilityNotes []string `json:"compatibility_notes"`
	Prerequisites      []string `json:"prerequisites"`
}

// ParseWorkerResult extracts the JSON object from raw (the first '{' to
// the last '}', tolerating leading/trailing prose) and converts it into
// a model.Analysis with every enum parsed through its closed-taxonomy
// default-on-unknown rule.
func ParseWorkerResult(raw string) (model.Analysis, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return model.Analysis{}, apierr.Parse("no JSON object found in worker response")
	}

	var p workerPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return model.Analysis{}, apierr.Parse("worker response is not valid JSON: " + err.Error())
	}

	a := model.Analysis{
		Ratings: model.Ratings{
			Overall: model.ClampOverall(p.Ratings.Overall),
		},
		Classification: model.Classification{
			PrimaryCategory:     p.PrimaryCategory,
			SecondaryCategories: p.SecondaryCategories,
			Tags:                p.Tags,
		},
		ContentFlags: model.ContentFlags{
			HasMCP:              p.HasMCP,
			HasReferences:       p.HasReferences,
			HasAssets:           p.HasAssets,
			EstimatedTokenUsage: p.EstimatedTokenUsage,
		},
		ProvidesMCP:         p.ProvidesMCP,
		ReferencedFiles:     p.ReferencedFiles,
		ReferencedURLs:      p.ReferencedURLs,
		Summary:             p.Summary,
		Strengths:           p.Strengths,
		Weaknesses:          p.Weaknesses,
		UseCases:            p.UseCases,
		CompatibilityNotes:  p.CompatibilityNotes,
		Prerequisites:       p.Prerequisites,
		AnalysisVersion:     1,
	}

	for _, t := range p.Ratings.Topics {
		a.Ratings.Topics = append(a.Ratings.Topics, model.TopicRating{
			Topic:      model.ParseTopic(t.Topic),
			Score:      model.ClampScore(t.Score),
			Confidence: model.ClampScore(t.Confidence),
			Reasoning:  t.Reasoning,
		})
	}
	for _, f := range p.Ratings.Flags {
		a.Ratings.Flags = append(a.Ratings.Flags, model.Flag{
			Type:     model.ParseFlagType(f.FlagType),
			Severity: model.ParseSeverity(f.Severity),
			Message:  f.Message,
		})
	}
	for _, m := range p.RequiredMCPs {
		a.RequiredMCPs = append(a.RequiredMCPs, model.MCPDependency{Name: m.Name, Purpose: m.Purpose})
	}
	for _, d := range p.SoftwareDeps {
		a.SoftwareDeps = append(a.SoftwareDeps, model.SoftwareDependency{Name: d.Name, Version: d.Version})
	}

	return a, nil
}
