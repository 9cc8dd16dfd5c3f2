package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
)

func TestNormalizeTags_CanonicalizesCaseAndWhitespace(t *testing.T) {
	jobs, g := newJobsService(t)

	first, err := jobs.NormalizeTags([]string{"Golang"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	variants := []string{"golang", " golang ", "GOLANG", "\tGolang\n"}
	for _, v := range variants {
		got, err := jobs.NormalizeTags([]string{v})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, first[0].ID, got[0].ID, "variant %q must resolve to the same tag", v)
		assert.Equal(t, "golang", got[0].Name)
	}

	var count int64
	require.NoError(t, g.Model(&db.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNormalizeTags_SlugDerivedFromName(t *testing.T) {
	jobs, _ := newJobsService(t)

	got, err := jobs.NormalizeTags([]string{"  Machine Learning  "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "machine learning", got[0].Name)
	assert.Equal(t, "machine-learning", got[0].Slug)
}

func TestNormalizeTags_EmptyAndBlankInput(t *testing.T) {
	jobs, g := newJobsService(t)

	got, err := jobs.NormalizeTags(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = jobs.NormalizeTags([]string{"", "   ", "\t"})
	require.NoError(t, err)
	assert.Empty(t, got)

	var count int64
	require.NoError(t, g.Model(&db.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestNormalizeTags_DeduplicatesWithinOneCall(t *testing.T) {
	jobs, g := newJobsService(t)

	got, err := jobs.NormalizeTags([]string{"go", "Go", " sql ", "sql", "go"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "go", got[0].Name)
	assert.Equal(t, "sql", got[1].Name)

	var count int64
	require.NoError(t, g.Model(&db.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestNormalizeTags_IdempotentAcrossCalls(t *testing.T) {
	jobs, g := newJobsService(t)

	first, err := jobs.NormalizeTags([]string{"backend", "devops"})
	require.NoError(t, err)
	second, err := jobs.NormalizeTags([]string{"backend", "devops"})
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)

	var count int64
	require.NoError(t, g.Model(&db.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
