package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/jwt"
	"go-construction-inventory/pkg/wib"
)

var (
	ErrInvalidCredentials = &Error{Kind: ErrUnauthenticated, Msg: "Invalid credentials"}
	ErrUserNotFound       = &Error{Kind: ErrNotFound, Msg: "User not found"}
	ErrUserInactive       = &Error{Kind: ErrUnauthenticated, Msg: "User account is inactive"}
	ErrWrongPassword      = &Error{Kind: ErrInvalidArgument, Msg: "Current password is incorrect"}
	ErrSessionReplaced    = &Error{Kind: ErrUnauthenticated, Msg: "Session expired"}
)

type AuthService interface {
	Login(identifier, password string) (*LoginResponse, error)
	Logout(userID uuid.UUID) error
	Me(userID uuid.UUID) (*TokenValidationResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	ExpiresAt  time.Time          `json:"expires_at"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	events   EventPublisher
}

func NewAuthService(userRepo repository.UserRepository, events EventPublisher) AuthService {
	return &authService{
		userRepo: userRepo,
		events:   publisherOrNop(events),
	}
}

// Login accepts an email or a username. Every login rotates the token version,
// which signs out any other session of the same user.
func (s *authService) Login(identifier, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByLogin(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(user.ID, version); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastSeen(user.ID); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), version)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:      token,
		ExpiresAt:  wib.Now().Add(jwt.TTL()),
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Logout invalidates every token issued to the user so far.
func (s *authService) Logout(userID uuid.UUID) error {
	return s.userRepo.UpdateTokenVersion(userID, uuid.New().String())
}

func (s *authService) Me(userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound.Msg)
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return invalid("Password must be at least 6 characters")
	}
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return notFoundOr(err, ErrUserNotFound.Msg)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	return s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String())
}

// ValidateToken checks the signature, then that the user still exists, is active
// and that the token belongs to the current session.
func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: err.Error()}
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &Error{Kind: ErrUnauthenticated, Msg: ErrUserNotFound.Msg}
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}

	// broadcast on every beat so newly connected clients catch up
	s.events.Publish(eventUserStatusUpdate, map[string]interface{}{
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": wib.Now(),
	})
	return nil
}
