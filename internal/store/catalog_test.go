package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aureuma/skillregistry/internal/model"
)

func TestAddSkillsIfNew_SkipsExisting(t *testing.T) {
	c := NewCatalogStore()
	c.AddSkill(model.NewSkill("a", "Alpha", "d", "o", "r"))

	inserted := c.AddSkillsIfNew([]model.Skill{
		model.NewSkill("a", "Alpha Renamed", "d", "o", "r"),
		model.NewSkill("b", "Beta", "d", "o", "r"),
	})
	assert.Equal(t, 1, inserted)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", got.Name, "existing skill must not be overwritten")
	assert.True(t, c.Exists("b"))
}

func TestIncrementInstall_MissingSkill(t *testing.T) {
	c := NewCatalogStore()
	err := c.IncrementInstall("missing")
	require.Error(t, err)
}

func TestSetSkillFiles_RecomputesChecksum(t *testing.T) {
	c := NewCatalogStore()
	c.AddSkill(model.NewSkill("a", "Alpha", "d", "o", "r"))

	err := c.SetSkillFiles("a", []model.SkillFile{
		{Path: "references/one.md", Content: "hello"},
	})
	require.NoError(t, err)

	got, _ := c.Get("a")
	assert.NotEmpty(t, got.FilesChecksum)
	assert.Equal(t, model.FileKindReference, got.Files["references/one.md"].Kind)

	before := got.FilesChecksum
	require.NoError(t, c.AddSkillFile("a", model.SkillFile{Path: "references/two.md", Content: "world"}))
	got, _ = c.Get("a")
	assert.NotEqual(t, before, got.FilesChecksum, "adding a file must change the combined checksum")
}

func TestListFiltered_SortAndPaginate(t *testing.T) {
	c := NewCatalogStore()
	for i, name := range []string{"Zed", "Alpha", "Mid"} {
		s := model.NewSkill(name, name, "d", "o", "r")
		s.InstallCount = i * 10
		c.AddSkill(s)
	}

	page, total := c.ListFiltered(2, 0, SortName, "", "")
	require.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Alpha", page[0].Name)
	assert.Equal(t, "Mid", page[1].Name)

	page, _ = c.ListFiltered(10, 0, SortInstalls, "", "")
	assert.Equal(t, "Mid", page[0].Name, "highest install count first")
}

func TestListFiltered_SearchKeepsOnlyMatchingSkills(t *testing.T) {
	c := NewCatalogStore()
	c.AddSkill(model.NewSkill("a", "PDF Tools", "extracts text from PDFs", "acme", "pdf-tools"))
	c.AddSkill(model.NewSkill("b", "Image Tools", "resizes images", "acme", "img-tools"))

	page, total := c.ListFiltered(10, 0, SortInstalls, "pdf", "")
	require.Equal(t, 1, total)
	assert.Equal(t, "a", page[0].ID)
}

func TestClearAllSkills(t *testing.T) {
	c := NewCatalogStore()
	c.AddSkill(model.NewSkill("a", "Alpha", "d", "o", "r"))
	c.ClearAllSkills()
	assert.Equal(t, 0, c.Count())
}

func TestMutate_MissingSkillReturnsError(t *testing.T) {
	c := NewCatalogStore()
	err := c.Mutate("missing", func(s *model.Skill) error { return nil })
	require.Error(t, err)
}

func TestMutate_AppliesInPlace(t *testing.T) {
	c := NewCatalogStore()
	c.AddSkill(model.NewSkill("a", "Alpha", "d", "o", "r"))

	err := c.Mutate("a", func(s *model.Skill) error {
		s.Description = "updated"
		return nil
	})
	require.NoError(t, err)

	got, _ := c.Get("a")
	assert.Equal(t, "updated", got.Description)
}
