package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/auth"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/models"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/upload"
)

// UserService owns the signup/login/profile lifecycle. It is the only
// component touching both the credential store and the password hash.
type UserService struct {
	db       *gorm.DB
	uploader upload.Uploader
}

func NewUserService(db *gorm.DB, uploader upload.Uploader) *UserService {
	return &UserService{db: db, uploader: uploader}
}

// UserDTO is the public projection: the password hash is never part of it.
type UserDTO struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserDTO(u models.User) UserDTO {
	return UserDTO{ID: u.ID, FullName: u.FullName, Email: u.Email, ProfilePic: u.ProfilePic, CreatedAt: u.CreatedAt}
}

// Signup creates a new account. Duplicate email fails with ErrEmailTaken
// and creates no record.
func (s *UserService) Signup(ctx context.Context, fullName, email, password string) (*UserDTO, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{FullName: fullName, Email: email, PasswordHash: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// Login verifies email and password. Unknown email and wrong password
// both return ErrInvalidCredentials so callers cannot tell which
// happened.
func (s *UserService) Login(ctx context.Context, email, password string) (*UserDTO, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// CheckAuth re-fetches the projection for an identity the session gate
// already resolved. ErrUserNotFound signals out-of-band deletion.
func (s *UserService) CheckAuth(ctx context.Context, userID string) (*UserDTO, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// UpdateProfile uploads the picture payload to object storage and
// persists the returned URL.
func (s *UserService) UpdateProfile(ctx context.Context, userID, picturePayload string) (*UserDTO, error) {
	data, contentType, err := upload.DecodePayload(picturePayload)
	if err != nil {
		return nil, ErrMissingProfilePic
	}
	url, err := s.uploader.Upload(ctx, data, contentType, "chat-app/avatars")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("profile_pic", url).Error; err != nil {
		return nil, err
	}
	user.ProfilePic = url
	dto := toUserDTO(user)
	return &dto, nil
}
