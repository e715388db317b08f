// Package store holds the registry's authoritative in-memory maps plus the
// sqlite-backed snapshot used to survive process restarts. Every store
// here wraps its state in a single mutex held for the duration of one
// logical operation: the registry was originally a single-threaded
// cooperative actor, and this reproduces the same atomicity guarantee on
// top of a real concurrent net/http server.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aureuma/skillregistry/internal/apierr"
	"github.com/aureuma/skillregistry/internal/model"
	"github.com/aureuma/skillregistry/internal/sanitize"
)

// CatalogStore is the authoritative skill-id -> Skill mapping.
type CatalogStore struct {
	mu     sync.Mutex
	skills map[string]model.Skill
}

// NewCatalogStore constructs an empty catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{skills: make(map[string]model.Skill)}
}

// AddSkill upserts one skill, replacing any existing record with the same
// id.
func (c *CatalogStore) AddSkill(s model.Skill) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills[s.ID] = s
}

// AddSkillsBatch upserts many skills.
func (c *CatalogStore) AddSkillsBatch(skills []model.Skill) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range skills {
		c.skills[s.ID] = s
	}
}

// AddSkillsIfNew inserts only skills whose id is absent, returning the
// count actually inserted.
func (c *CatalogStore) AddSkillsIfNew(skills []model.Skill) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	inserted := 0
	for _, s := range skills {
		if _, exists := c.skills[s.ID]; exists {
			continue
		}
		c.skills[s.ID] = s
		inserted++
	}
	return inserted
}

// Get returns a copy of the skill with id, or false if absent.
func (c *CatalogStore) Get(id string) (model.Skill, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	return s, ok
}

// Exists reports whether a skill with id is present.
func (c *CatalogStore) Exists(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.skills[id]
	return ok
}

// All returns a copy of every skill, unordered.
func (c *CatalogStore) All() []model.Skill {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	return out
}

// Count returns the number of catalogued skills.
func (c *CatalogStore) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.skills)
}

// LoadAll replaces the entire catalog, used only by snapshot restore.
func (c *CatalogStore) LoadAll(skills map[string]model.Skill) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills = skills
}

// AllMap returns a copy of the id -> Skill map, used only by snapshot save
// where the tuple's shape is keyed rather than a plain slice.
func (c *CatalogStore) AllMap() map[string]model.Skill {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]model.Skill, len(c.skills))
	for k, v := range c.skills {
		out[k] = v
	}
	return out
}

// UpdateSkillMD sanitizes text and replaces a skill's SkillMdContent,
// bumping updated_at. A nil text clears the field.
func (c *CatalogStore) UpdateSkillMD(id string, text *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	if text == nil {
		s.SkillMdContent = ""
	} else {
		clean, err := sanitize.SanitizeSkillContent(*text)
		if err != nil {
			return apierr.Validation(err.Error())
		}
		s.SkillMdContent = clean
	}
	s.UpdatedAt = time.Now().UTC()
	c.skills[id] = s
	return nil
}

// UpdateSkillMDBatch applies UpdateSkillMD to each (id, text) pair,
// best-effort: entries that fail sanitization or whose id is absent are
// skipped rather than aborting the whole batch.
func (c *CatalogStore) UpdateSkillMDBatch(entries map[string]string) (applied int) {
	for id, text := range entries {
		t := text
		if c.UpdateSkillMD(id, &t) == nil {
			applied++
		}
	}
	return applied
}

// SetSkillFiles sanitizes all files, replaces the skill's file set, and
// recomputes files_checksum.
func (c *CatalogStore) SetSkillFiles(id string, files []model.SkillFile) error {
	cleaned := make(map[string]model.SkillFile, len(files))
	for _, f := range files {
		path, content, err := sanitize.SanitizeSkillFile(f.Path, f.Content)
		if err != nil {
			return apierr.Validation(err.Error())
		}
		f.Path = path
		f.Content = content
		f.Digest = sanitize.Digest(content)
		f.Size = len(content)
		if f.Kind == "" {
			f.Kind = model.ClassifyFileKind(path)
		}
		cleaned[path] = f
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	s.Files = cleaned
	s.FilesChecksum = recomputeChecksum(cleaned)
	s.UpdatedAt = time.Now().UTC()
	c.skills[id] = s
	return nil
}

// AddSkillFile replaces (by path) a single file in the skill's set and
// recomputes files_checksum.
func (c *CatalogStore) AddSkillFile(id string, f model.SkillFile) error {
	path, content, err := sanitize.SanitizeSkillFile(f.Path, f.Content)
	if err != nil {
		return apierr.Validation(err.Error())
	}
	f.Path = path
	f.Content = content
	f.Digest = sanitize.Digest(content)
	f.Size = len(content)
	if f.Kind == "" {
		f.Kind = model.ClassifyFileKind(path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	if s.Files == nil {
		s.Files = make(map[string]model.SkillFile)
	}
	s.Files[path] = f
	s.FilesChecksum = recomputeChecksum(s.Files)
	s.UpdatedAt = time.Now().UTC()
	c.skills[id] = s
	return nil
}

func recomputeChecksum(files map[string]model.SkillFile) string {
	entries := make([]sanitize.FileDigestEntry, 0, len(files))
	for path, f := range files {
		entries = append(entries, sanitize.FileDigestEntry{Path: path, Digest: f.Digest})
	}
	return sanitize.CombinedDigest(entries)
}

// SyncInstallCounts authoritatively overwrites install counts.
func (c *CatalogStore) SyncInstallCounts(counts map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, n := range counts {
		s, ok := c.skills[id]
		if !ok {
			continue
		}
		s.InstallCount = n
		c.skills[id] = s
	}
}

// ResetAllInstallCounts zeroes every skill's install counter.
func (c *CatalogStore) ResetAllInstallCounts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, s := range c.skills {
		s.InstallCount = 0
		c.skills[id] = s
	}
}

// IncrementInstall atomically increments one skill's install counter. The
// rate-limit check itself lives in internal/ratelimit; this method is only
// ever called once that check has passed.
func (c *CatalogStore) IncrementInstall(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	s.InstallCount++
	c.skills[id] = s
	return nil
}

// ClearAnalysis removes the displayed analysis for one skill, leaving
// history intact.
func (c *CatalogStore) ClearAnalysis(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	s.Analysis = nil
	c.skills[id] = s
	return nil
}

// ClearAllAnalyses removes the displayed analysis from every skill.
func (c *CatalogStore) ClearAllAnalyses() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, s := range c.skills {
		s.Analysis = nil
		c.skills[id] = s
	}
}

// ClearAnalysisHistory empties one skill's analysis history.
func (c *CatalogStore) ClearAnalysisHistory(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	s.AnalysisHistory = nil
	c.skills[id] = s
	return nil
}

// ClearAllSkills empties the entire catalog.
func (c *CatalogStore) ClearAllSkills() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills = make(map[string]model.Skill)
}

// Mutate runs fn against a copy of the skill with id under the catalog
// lock, persisting the result if fn returns a nil error. It is the
// building block internal/registry uses for multi-field transitions
// (submitting enrichment or analysis results) that need to land as one
// atomic step.
func (c *CatalogStore) Mutate(id string, fn func(*model.Skill) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.skills[id]
	if !ok {
		return apierr.NotFound("skill not found")
	}
	if err := fn(&s); err != nil {
		return err
	}
	c.skills[id] = s
	return nil
}

// SortKey is the closed set of supported list_skills_filtered sort keys.
type SortKey string

const (
	SortInstalls SortKey = "installs"
	SortStars    SortKey = "stars"
	SortRating   SortKey = "rating"
	SortName     SortKey = "name"
	SortRecent   SortKey = "recent"
)

// ListFiltered implements list_skills_filtered.
func (c *CatalogStore) ListFiltered(limit, offset int, sortBy SortKey, search, category string) ([]model.Skill, int) {
	all := c.All()

	filtered := all
	if strings.TrimSpace(search) != "" {
		filtered = filterBySearch(filtered, search)
	}
	if strings.TrimSpace(category) != "" {
		filtered = filterByCategory(filtered, category)
	}

	sortSkills(filtered, sortBy)

	total := len(filtered)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return filtered[offset:end], total
}

func filterBySearch(skills []model.Skill, query string) []model.Skill {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return skills
	}
	out := make([]model.Skill, 0, len(skills))
	for _, s := range skills {
		haystacks := []string{
			strings.ToLower(s.Name),
			strings.ToLower(s.Description),
			strings.ToLower(s.Owner),
			strings.ToLower(s.Repo),
			strings.ToLower(s.PrimaryCategory()),
		}
		for _, tag := range s.Tags() {
			haystacks = append(haystacks, strings.ToLower(tag))
		}
		matched := false
		for _, term := range terms {
			for _, h := range haystacks {
				if strings.Contains(h, term) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if matched {
			out = append(out, s)
		}
	}
	return out
}

func filterByCategory(skills []model.Skill, category string) []model.Skill {
	want := strings.ToLower(category)
	out := make([]model.Skill, 0, len(skills))
	for _, s := range skills {
		if strings.ToLower(s.PrimaryCategory()) == want {
			out = append(out, s)
			continue
		}
		for _, sec := range s.SecondaryCategories() {
			if strings.ToLower(sec) == want {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func sortSkills(skills []model.Skill, sortBy SortKey) {
	switch sortBy {
	case SortRating:
		sort.SliceStable(skills, func(i, j int) bool { return skills[i].OverallRating() > skills[j].OverallRating() })
	case SortName:
		sort.SliceStable(skills, func(i, j int) bool { return strings.ToLower(skills[i].Name) < strings.ToLower(skills[j].Name) })
	case SortRecent:
		sort.SliceStable(skills, func(i, j int) bool { return skills[i].UpdatedAt.After(skills[j].UpdatedAt) })
	case SortStars:
		fallthrough
	case SortInstalls:
		fallthrough
	default:
		sort.SliceStable(skills, func(i, j int) bool { return skills[i].InstallCount > skills[j].InstallCount })
	}
}

// SearchResult pairs a skill with its accumulated weighted search score.
type SearchResult struct {
	Skill model.Skill
	Score int
}

// SearchSkills implements search_skills weighted scoring:
// name x3, description x2, primary category x2, tag x1 per matched term;
// skills scoring 0 are omitted; results sort by score descending.
func (c *CatalogStore) SearchSkills(query string) []SearchResult {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}
	all := c.All()
	results := make([]SearchResult, 0, len(all))
	for _, s := range all {
		score := 0
		name := strings.ToLower(s.Name)
		desc := strings.ToLower(s.Description)
		cat := strings.ToLower(s.PrimaryCategory())
		tags := s.Tags()
		for _, term := range terms {
			if strings.Contains(name, term) {
				score += 3
			}
			if strings.Contains(desc, term) {
				score += 2
			}
			if strings.Contains(cat, term) {
				score += 2
			}
			for _, tag := range tags {
				if strings.Contains(strings.ToLower(tag), term) {
					score++
				}
			}
		}
		if score > 0 {
			results = append(results, SearchResult{Skill: s, Score: score})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// Categories returns the sorted, deduplicated union of primary and
// secondary categories across the catalog.
func (c *CatalogStore) Categories() []string {
	all := c.All()
	seen := make(map[string]struct{})
	for _, s := range all {
		if p := s.PrimaryCategory(); p != "" {
			seen[p] = struct{}{}
		}
		for _, sec := range s.SecondaryCategories() {
			if sec != "" {
				seen[sec] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
