package services

import (
	"errors"

	"mealtracker/models"
	"mealtracker/utils"

	"gorm.io/gorm"
)

// AuthService signs users up and in against the user table and hands
// out JWTs whose session ids are registered with the broker, so a
// later logout can revoke them.
type AuthService struct {
	db       *gorm.DB
	sessions *SessionBroker
}

func NewAuthService(db *gorm.DB, sessions *SessionBroker) *AuthService {
	return &AuthService{db: db, sessions: sessions}
}

func (s *AuthService) Register(email, password string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:    email,
		Password: hashedPassword,
	}
	return s.db.Create(&user).Error
}

func (s *AuthService) Login(email, password string) (string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", errors.New("invalid email or password")
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", errors.New("invalid email or password")
	}

	sessionID := utils.GenerateRandomToken(24)
	s.sessions.Register(sessionID, user.ID)

	token, err := utils.GenerateJWT(user.ID, sessionID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes the session; live feeds watching it clear their view.
func (s *AuthService) Logout(sessionID string) {
	s.sessions.Revoke(sessionID)
}
