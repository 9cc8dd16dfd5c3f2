package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	g, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(g))
	return g
}

func newJobsService(t *testing.T) (*Jobs, *gorm.DB) {
	g := newTestDB(t)
	return NewJobs(g, zap.NewNop().Sugar()), g
}

func makeUser(t *testing.T, g *gorm.DB, email string, staff, super bool) *db.User {
	u := db.User{
		Email:       email,
		Password:    "x",
		Token:       email + "-token",
		IsStaff:     staff,
		IsSuperuser: super,
	}
	require.NoError(t, g.Create(&u).Error)
	return &u
}

type jobSpec struct {
	title     string
	company   string
	location  *string
	jobType   string
	active    bool
	tags      []string
	createdAt time.Time
	updatedAt time.Time
}

func makeJob(t *testing.T, jobs *Jobs, g *gorm.DB, owner *db.User, spec jobSpec) *db.Job {
	tags, err := jobs.NormalizeTags(spec.tags)
	require.NoError(t, err)

	j := db.Job{
		PostedByID:      owner.ID,
		JobType:         spec.jobType,
		Title:           spec.title,
		Company:         spec.company,
		Location:        spec.location,
		ApplicationLink: "https://example.com/apply",
		IsActive:        spec.active,
		Tags:            tags,
	}
	if !spec.createdAt.IsZero() {
		j.CreatedAt = spec.createdAt
	}
	if !spec.updatedAt.IsZero() {
		j.UpdatedAt = spec.updatedAt
	}
	require.NoError(t, g.Create(&j).Error)
	return &j
}

func strPtr(s string) *string {
	return &s
}

func jobIDs(jobs []db.Job) []uint64 {
	ids := make([]uint64, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	return ids
}
