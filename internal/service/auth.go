package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/config"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/db"
	"github.com/Rogue-Bear-Innovations/jobboard-back/internal/mail"
)

type Auth struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	mailer mail.Sender
	cfg    *config.Config
}

func NewAuth(g *gorm.DB, l *zap.SugaredLogger, m mail.Sender, cfg *config.Config) *Auth {
	return &Auth{
		db:     g,
		logger: l,
		mailer: m,
		cfg:    cfg,
	}
}

func (s *Auth) Register(email, pass, firstName, lastName string) (*db.User, error) {
	existing := db.User{}
	res := s.db.Where("email = ?", email).First(&existing)
	if res.Error == nil {
		return nil, ErrEmailTaken
	}
	if res.Error != gorm.ErrRecordNotFound {
		return nil, errors.Wrap(res.Error, "check existing email")
	}

	hash, err := s.bcryptGen(pass)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}

	user := db.User{
		Email:     email,
		Password:  hash,
		Token:     uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
	}
	if res := s.db.Create(&user); res.Error != nil {
		return nil, res.Error
	}
	return &user, nil
}

func (s *Auth) Login(email, pass string) (*db.User, error) {
	user := db.User{}
	res := s.db.Where("email = ?", email).First(&user)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil, ErrLoginUserNotFound
		}
		return nil, res.Error
	}

	if err := s.bcryptCheck(user.Password, pass); err != nil {
		return nil, ErrLoginPasswordDoesNotMatch
	}

	token := uuid.New().String()
	res = s.db.Model(&user).Update("token", token)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update token")
	}
	user.Token = token

	return &user, nil
}

func (s *Auth) Logout(user *db.User) error {
	res := s.db.Model(user).Update("token", "")
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear token")
	}
	return nil
}

// RequestPasswordReset never reports whether the email is registered or the
// mail went out, so the endpoint cannot be used to enumerate accounts.
// Delivery failures are logged and swallowed.
func (s *Auth) RequestPasswordReset(email string) error {
	user := db.User{}
	res := s.db.Where("email = ?", email).First(&user)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return nil
		}
		return errors.Wrap(res.Error, "find user")
	}

	reset := db.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(s.cfg.ResetTTL()),
	}
	if res := s.db.Create(&reset); res.Error != nil {
		return errors.Wrap(res.Error, "create reset token")
	}

	link := s.cfg.ResetBaseURL + "?token=" + reset.Token
	if err := s.mailer.SendPasswordReset(user.Email, link); err != nil {
		s.logger.Errorw("password reset email delivery failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *Auth) ConfirmPasswordReset(token, newPass string) error {
	reset := db.PasswordResetToken{}
	res := s.db.Where("token = ?", token).First(&reset)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return ErrResetTokenInvalid
		}
		return errors.Wrap(res.Error, "find reset token")
	}
	if time.Now().After(reset.ExpiresAt) {
		s.db.Delete(&db.PasswordResetToken{}, reset.ID)
		return ErrResetTokenInvalid
	}

	hash, err := s.bcryptGen(newPass)
	if err != nil {
		return errors.Wrap(err, "bcryptGen")
	}
	res = s.db.Model(&db.User{GormForkedModel: db.GormForkedModel{ID: reset.UserID}}).Update("password", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update password")
	}

	res = s.db.Delete(&db.PasswordResetToken{}, reset.ID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete reset token")
	}
	return nil
}

func (s *Auth) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), 14)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Auth) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
