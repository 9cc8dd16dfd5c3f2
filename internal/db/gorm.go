package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/config"
)

const (
	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"

	ActivityClicked    = "Clicked"
	ActivityApplied    = "Applied"
	ActivityBookmarked = "Bookmarked"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email       string `gorm:"unique;not null"`
		Password    string `gorm:"not null"`
		Token       string `gorm:"not null"`
		FirstName   string
		LastName    string
		IsStaff     bool  `gorm:"not null;default:false"`
		IsSuperuser bool  `gorm:"not null;default:false"`
		Jobs        []Job `gorm:"foreignKey:PostedByID"`
	}

	Tag struct {
		GormForkedModel
		Name string `gorm:"unique;not null"`
		Slug string `gorm:"unique;not null"`
		Jobs []Job  `gorm:"many2many:job_tags;"`
	}

	Job struct {
		GormForkedModel
		PostedByID      uint64 `gorm:"not null;index"`
		PostedBy        User
		JobType         string  `gorm:"not null;default:'Full-time';index"`
		Title           string  `gorm:"not null;index"`
		Company         string  `gorm:"not null;index"`
		Location        *string `gorm:"index"`
		Description     *string
		ApplicationLink string `gorm:"not null"`
		// No default tag: gorm would skip a false value on insert and let
		// the column default flip it back to active.
		IsActive bool  `gorm:"not null;index"`
		Tags     []Tag `gorm:"many2many:job_tags;"`
	}

	UserJobMapping struct {
		GormForkedModel
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_user_id_job_id"`
		User   User
		JobID  uint64 `gorm:"not null;uniqueIndex:uidx_user_id_job_id"`
		Job    Job
		Status string `gorm:"not null;default:'Clicked'"`
	}

	PasswordResetToken struct {
		GormForkedModel
		UserID    uint64 `gorm:"not null;index"`
		User      User
		Token     string `gorm:"unique;not null"`
		ExpiresAt time.Time
	}
)

// JobTypes returns the fixed job-type enumeration in display order.
func JobTypes() []string {
	return []string{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}
}

func ValidJobType(s string) bool {
	for _, t := range JobTypes() {
		if s == t {
			return true
		}
	}
	return false
}

func ValidActivity(s string) bool {
	switch s {
	case ActivityClicked, ActivityApplied, ActivityBookmarked:
		return true
	}
	return false
}

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Tag{}); err != nil {
		return errors.Wrap(err, "migrate tag")
	}
	if err := db.AutoMigrate(&Job{}); err != nil {
		return errors.Wrap(err, "migrate job")
	}
	if err := db.AutoMigrate(&UserJobMapping{}); err != nil {
		return errors.Wrap(err, "migrate user job mapping")
	}
	if err := db.AutoMigrate(&PasswordResetToken{}); err != nil {
		return errors.Wrap(err, "migrate password reset token")
	}
	return nil
}
