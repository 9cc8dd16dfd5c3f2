package service

import (
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
)

// TimeTokens is the fixed time-window enumeration exposed to filter UIs.
var TimeTokens = []string{"last_6", "last_24", "this_week", "this_month", "all"}

var timeWindows = map[string]time.Duration{
	"last_6":     6 * time.Hour,
	"last_24":    24 * time.Hour,
	"this_week":  7 * 24 * time.Hour,
	"this_month": 30 * 24 * time.Hour,
}

type (
	Jobs struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	Filter struct {
		Tags      []string
		Titles    []string
		Companies []string
		Locations []string
		JobTypes  []string
		Time      string
	}

	Facets struct {
		Tags      []string
		Titles    []string
		Companies []string
		Locations []string
		JobTypes  []string
		Times     []string
	}

	JobInput struct {
		Title           string
		Company         string
		Location        *string
		Description     *string
		ApplicationLink string
		JobType         string
		Tags            []string
		IsActive        *bool
	}
)

func NewJobs(g *gorm.DB, l *zap.SugaredLogger) *Jobs {
	return &Jobs{
		db:     g,
		logger: l,
	}
}

// NormalizeTags canonicalizes raw tag strings (trim, lower-case) and returns
// the matching Tag rows in input order, creating missing ones. The create is
// an ON CONFLICT DO NOTHING upsert so two concurrent calls for the same name
// cannot produce two rows.
func (s *Jobs) NormalizeTags(raw []string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(raw))
	seen := map[string]struct{}{}
	for _, r := range raw {
		name := strings.ToLower(strings.TrimSpace(r))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		tag := db.Tag{
			Name: name,
			Slug: slug.Make(name),
		}
		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "upsert tag")
		}
		if tag.ID == 0 {
			if err := s.db.Where("name = ?", name).First(&tag).Error; err != nil {
				return nil, errors.Wrap(err, "load tag")
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// FilterJobs returns active jobs matching every supplied facet (AND across
// facet categories, IN within one), de-duplicated and ordered by most recent
// update. An empty Filter lists all active jobs.
func (s *Jobs) FilterJobs(f Filter) ([]db.Job, error) {
	w := squirrel.And{squirrel.Eq{"j.is_active": true}}
	if len(f.JobTypes) != 0 {
		w = append(w, squirrel.Eq{"j.job_type": f.JobTypes})
	}
	if len(f.Locations) != 0 {
		w = append(w, squirrel.Eq{"j.location": f.Locations})
	}
	if len(f.Companies) != 0 {
		w = append(w, squirrel.Eq{"j.company": f.Companies})
	}
	if len(f.Titles) != 0 {
		w = append(w, squirrel.Eq{"j.title": f.Titles})
	}
	if len(f.Tags) != 0 {
		w = append(w, squirrel.Eq{"t.name": f.Tags})
	}
	if window, ok := timeWindows[f.Time]; ok {
		w = append(w, squirrel.GtOrEq{"j.created_at": time.Now().Add(-window)})
	}

	sql, args, err := squirrel.
		Select("DISTINCT j.id").From("jobs j").
		LeftJoin("job_tags jt ON j.id = jt.job_id").
		LeftJoin("tags t ON t.id = jt.tag_id").
		Where(w).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	ids := make([]uint64, 0)
	res := s.db.Raw(sql, args...).Scan(&ids)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}
	if len(ids) == 0 {
		return []db.Job{}, nil
	}

	jobs := make([]db.Job, 0, len(ids))
	res = s.db.
		Preload("Tags").Preload("PostedBy").
		Where("id IN ?", ids).
		Order("updated_at DESC").
		Find(&jobs)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load jobs")
	}
	return jobs, nil
}

// FacetUniverse returns the unfiltered facet values of the whole catalog,
// used to populate the filter UI alongside any job listing.
func (s *Jobs) FacetUniverse() (*Facets, error) {
	f := Facets{
		JobTypes: db.JobTypes(),
		Times:    TimeTokens,
	}

	res := s.db.Model(&db.Tag{}).Order("name").Pluck("name", &f.Tags)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "tag names")
	}
	res = s.db.Model(&db.Job{}).Distinct().Pluck("title", &f.Titles)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "titles")
	}
	res = s.db.Model(&db.Job{}).Distinct().Pluck("company", &f.Companies)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "companies")
	}
	res = s.db.Model(&db.Job{}).
		Where("location IS NOT NULL AND location <> ''").
		Distinct().Pluck("location", &f.Locations)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "locations")
	}

	return &f, nil
}

// ActiveJob loads one active job with its associations. Inactive jobs are
// invisible on the public surface, so both unknown and inactive ids report
// ErrNotFound.
func (s *Jobs) ActiveJob(id uint64) (*db.Job, error) {
	job := db.Job{}
	res := s.db.
		Preload("Tags").Preload("PostedBy").
		Where("is_active = ?", true).
		First(&job, id)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &job, nil
}

// RecordActivity upserts the single (user, job) interaction row. The upsert
// happens at the storage boundary so concurrent first interactions cannot
// race into two rows.
func (s *Jobs) RecordActivity(user *db.User, jobID uint64, activity string) error {
	if !db.ValidActivity(activity) {
		return ErrInvalidActivity
	}
	if _, err := s.ActiveJob(jobID); err != nil {
		return err
	}

	mapping := db.UserJobMapping{
		UserID: user.ID,
		JobID:  jobID,
		Status: activity,
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "job_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     activity,
			"updated_at": time.Now(),
		}),
	}).Create(&mapping)
	if res.Error != nil {
		return errors.Wrap(res.Error, "upsert mapping")
	}
	return nil
}

// ManagedJobs lists the management view: everything for superusers, own
// postings for staff.
func (s *Jobs) ManagedJobs(actor *db.User) ([]db.Job, error) {
	if d := Decide(actor, ActionList, nil); !d.Allowed {
		return nil, ErrPermissionDenied
	}

	q := s.db.Preload("Tags").Preload("PostedBy").Order("updated_at DESC")
	if !actor.IsSuperuser {
		q = q.Where("posted_by_id = ?", actor.ID)
	}

	jobs := make([]db.Job, 0)
	res := q.Find(&jobs)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load jobs")
	}
	return jobs, nil
}

func (s *Jobs) CreateJob(actor *db.User, in JobInput) (*db.Job, error) {
	if d := Decide(actor, ActionCreate, nil); !d.Allowed {
		return nil, ErrPermissionDenied
	}
	if !db.ValidJobType(in.JobType) {
		return nil, ErrInvalidJobType
	}

	tags, err := s.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	job := db.Job{
		PostedByID:      actor.ID,
		JobType:         in.JobType,
		Title:           in.Title,
		Company:         in.Company,
		Location:        in.Location,
		Description:     in.Description,
		ApplicationLink: in.ApplicationLink,
		IsActive:        true,
		Tags:            tags,
	}
	if in.IsActive != nil {
		job.IsActive = *in.IsActive
	}

	res := s.db.Create(&job)
	if res.Error != nil {
		return nil, res.Error
	}

	return s.managedJob(job.ID)
}

// ManagedJob fetches one job for the management surface. The collection gate
// runs first, then a missing id is ErrNotFound before the object check, and a
// present job the actor does not own is ErrPermissionDenied.
func (s *Jobs) ManagedJob(actor *db.User, id uint64) (*db.Job, error) {
	if d := Decide(actor, ActionRead, nil); !d.Allowed {
		return nil, ErrPermissionDenied
	}
	job, err := s.managedJob(id)
	if err != nil {
		return nil, err
	}
	if d := Decide(actor, ActionRead, job); !d.Allowed {
		return nil, ErrPermissionDenied
	}
	return job, nil
}

func (s *Jobs) UpdateJob(actor *db.User, id uint64, in JobInput) (*db.Job, error) {
	if d := Decide(actor, ActionUpdate, nil); !d.Allowed {
		return nil, ErrPermissionDenied
	}
	job, err := s.managedJob(id)
	if err != nil {
		return nil, err
	}
	if d := Decide(actor, ActionUpdate, job); !d.Allowed {
		return nil, ErrPermissionDenied
	}
	if !db.ValidJobType(in.JobType) {
		return nil, ErrInvalidJobType
	}

	tags, err := s.NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":            in.Title,
		"company":          in.Company,
		"location":         in.Location,
		"description":      in.Description,
		"application_link": in.ApplicationLink,
		"job_type":         in.JobType,
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}

	res := s.db.Model(job).Updates(fields)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update job")
	}
	if err := s.db.Model(job).Association("Tags").Replace(tags); err != nil {
		return nil, errors.Wrap(err, "replace tags")
	}

	return s.managedJob(id)
}

func (s *Jobs) DeleteJob(actor *db.User, id uint64) error {
	if d := Decide(actor, ActionDelete, nil); !d.Allowed {
		return ErrPermissionDenied
	}
	job, err := s.managedJob(id)
	if err != nil {
		return err
	}
	if d := Decide(actor, ActionDelete, job); !d.Allowed {
		return ErrPermissionDenied
	}

	if err := s.db.Model(job).Association("Tags").Clear(); err != nil {
		return errors.Wrap(err, "clear tags")
	}
	res := s.db.Delete(&db.Job{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete job")
	}
	return nil
}

func (s *Jobs) managedJob(id uint64) (*db.Job, error) {
	job := db.Job{}
	res := s.db.Preload("Tags").Preload("PostedBy").First(&job, id)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &job, nil
}
