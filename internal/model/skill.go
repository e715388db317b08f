package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FileKind is a closed taxonomy of the role a file plays inside a skill
// bundle. Unrecognized paths fall back to Other, never an error.
type FileKind string

const (
	FileKindSkillMd   FileKind = "skill_md"
	FileKindReference FileKind = "reference"
	FileKindAsset     FileKind = "asset"
	FileKindConfig    FileKind = "config"
	FileKindOther     FileKind = "other"
)

// ClassifyFileKind derives a FileKind from a file's path: a SKILL.md/
// skill.md suffix classifies as SkillMd, a references/ prefix classifies
// as Reference, anything else falls back to Other. Config is reserved for
// seed data supplied outside of worker enrichment (e.g. admin-uploaded
// files) and is never produced by ClassifyFileKind itself.
func ClassifyFileKind(path string) FileKind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, "skill.md"):
		return FileKindSkillMd
	case strings.HasPrefix(lower, "references/"):
		return FileKindReference
	default:
		return FileKindOther
	}
}

// SkillFile is one file currently present in a skill's bundle.
type SkillFile struct {
	Path    string   `json:"path"`
	Content string   `json:"content"`
	Digest  string   `json:"digest"`
	Size    int      `json:"size"`
	Kind    FileKind `json:"kind"`
}

// FileVersion is a historical record of a file fetch, newest first in
// Skill.FileHistory, capped at MaxFileHistory entries.
type FileVersion struct {
	Path      string    `json:"path"`
	Digest    string    `json:"digest"`
	Size      int       `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
	FetchedBy Identity  `json:"fetched_by"`
	SourceURL string    `json:"source_url,omitempty"`
}

const (
	MaxFileHistory     = 50
	MaxAnalysisHistory = 20
	MaxSkillMdBytes    = 200000
	MaxFileBytes       = 500000
)

// Skill is the catalog's core record, content-addressed via FilesChecksum.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	HomepageURL string `json:"homepage_url,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	Source      string `json:"source,omitempty"`

	InstallCount int `json:"install_count"`

	SkillMdContent string `json:"skill_md_content,omitempty"`

	// Files is keyed by path for O(1) replace-by-path mutation; ordering
	// for API responses is produced on read via SortedFiles.
	Files         map[string]SkillFile `json:"files"`
	FilesChecksum string               `json:"files_checksum"`
	FileHistory   []FileVersion        `json:"file_history"`

	Analysis        *Analysis  `json:"analysis,omitempty"`
	AnalysisHistory []Analysis `json:"analysis_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSkill constructs a Skill with its maps initialized, ready for catalog
// insertion.
func NewSkill(id, name, description, owner, repo string) Skill {
	now := time.Now().UTC()
	return Skill{
		ID:          id,
		Name:        name,
		Description: description,
		Owner:       owner,
		Repo:        repo,
		Files:       make(map[string]SkillFile),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SortedFiles returns Files ordered by path, for deterministic API output
// and for checksum computation.
func (s *Skill) SortedFiles() []SkillFile {
	out := make([]SkillFile, 0, len(s.Files))
	for _, f := range s.Files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// PrimaryCategory and SecondaryCategories read through to the displayed
// analysis's classification, returning zero values when absent.
func (s *Skill) PrimaryCategory() string {
	if s.Analysis == nil {
		return ""
	}
	return s.Analysis.Classification.PrimaryCategory
}

func (s *Skill) SecondaryCategories() []string {
	if s.Analysis == nil {
		return nil
	}
	return s.Analysis.Classification.SecondaryCategories
}

func (s *Skill) Tags() []string {
	if s.Analysis == nil {
		return nil
	}
	return s.Analysis.Classification.Tags
}

func (s *Skill) OverallRating() float64 {
	if s.Analysis == nil {
		return 0.0
	}
	return s.Analysis.Ratings.Overall
}

// InstallCommand implements install-command convention.
func (s *Skill) InstallCommand(pkgManager string) string {
	if s.Repo != "" && strings.EqualFold(s.Repo, s.Name) {
		return fmt.Sprintf("%s add %s/%s", pkgManager, s.Owner, s.Repo)
	}
	return fmt.Sprintf("%s add %s/%s --skill %s", pkgManager, s.Owner, s.Repo, s.Name)
}
