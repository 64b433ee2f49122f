package service

import (
	"errors"
	"time"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = &Error{Kind: ErrConflict, Msg: "Email already registered"}
	ErrUsernameExists = &Error{Kind: ErrConflict, Msg: "Username already taken"}
	ErrRoleNotFound   = &Error{Kind: ErrInvalidArgument, Msg: "Role not found"}
	ErrDeleteSelf     = &Error{Kind: ErrInvalidArgument, Msg: "Cannot delete yourself"}
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(userID uuid.UUID, requesterID string) error
	BulkDeleteUsers(ids []uuid.UUID, requesterID string) (int64, error)
	BulkUpdateUsers(req *BulkUpdateUsersRequest, updaterID string) (int64, error)
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error)
	GetAllUsers(roleCode string) ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	GetRoles() ([]model.Role, error)
	GetPrivileges() ([]model.Privilege, error)
}

// Either RoleID or Role (a role code) selects the role.
type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    *string `json:"username" validate:"omitempty,min=3"`
	Password    string  `json:"password" validate:"required,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	BirthDate   *string `json:"birth_date"` // Format: YYYY-MM-DD
	RoleID      uint    `json:"role_id" validate:"required_without=Role"`
	Role        string  `json:"role" validate:"required_without=RoleID"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    *string `json:"username" validate:"omitempty,min=3"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number"`
	BirthDate   *string `json:"birth_date"`
	RoleID      uint    `json:"role_id" validate:"required_without=Role"`
	Role        string  `json:"role" validate:"required_without=RoleID"`
	IsActive    *bool   `json:"is_active"`
}

// BulkUpdateUsers changes only what is set: activation, role, or both.
type BulkUpdateUsersRequest struct {
	UserIDs  []uuid.UUID `json:"user_ids" validate:"required,min=1"`
	IsActive *bool       `json:"is_active"`
	RoleID   *uint       `json:"role_id"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) resolveRole(id uint, code string) (*model.Role, error) {
	var (
		role *model.Role
		err  error
	)
	if id != 0 {
		role, err = s.roleRepo.FindByID(id)
	} else {
		role, err = s.roleRepo.FindByCode(code)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	return role, err
}

func parseBirthDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, invalid("invalid birth_date format, use YYYY-MM-DD")
	}
	return &parsed, nil
}

// checkUnique fails with Conflict when the email or username belongs to another user.
func (s *userService) checkUnique(self uuid.UUID, email string, username *string) error {
	existing, err := s.userRepo.FindByEmail(email)
	switch {
	case err == nil && existing.ID != self:
		return ErrEmailExists
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if username == nil || *username == "" {
		return nil
	}
	existing, err = s.userRepo.FindByUsername(*username)
	switch {
	case err == nil && existing.ID != self:
		return ErrUsernameExists
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return nil
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	if err := s.checkUnique(uuid.Nil, req.Email, req.Username); err != nil {
		return nil, err
	}
	role, err := s.resolveRole(req.RoleID, req.Role)
	if err != nil {
		return nil, err
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:       req.Email,
		Username:    req.Username,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		BirthDate:   birthDate,
		RoleID:      &role.ID,
		IsActive:    true,
	}
	user.Touch(creatorID)

	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	// privileges follow the role
	user.Privileges = role.Privileges

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound.Msg)
	}
	if err := s.checkUnique(userID, req.Email, req.Username); err != nil {
		return nil, err
	}
	role, err := s.resolveRole(req.RoleID, req.Role)
	if err != nil {
		return nil, err
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	user.Email = req.Email
	if req.Username != nil {
		user.Username = req.Username
	}
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.BirthDate = birthDate
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.Touch(updaterID)

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdatePrivileges(userID, role.Privileges); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID, requesterID string) error {
	if userID.String() == requesterID {
		return ErrDeleteSelf
	}
	return notFoundOr(s.userRepo.Delete(userID), ErrUserNotFound.Msg)
}

// BulkDeleteUsers refuses the whole batch when it names the requester.
func (s *userService) BulkDeleteUsers(ids []uuid.UUID, requesterID string) (int64, error) {
	if len(ids) == 0 {
		return 0, invalid("No users selected")
	}
	for _, id := range ids {
		if id.String() == requesterID {
			return 0, ErrDeleteSelf
		}
	}
	return s.userRepo.DeleteMany(ids)
}

func (s *userService) BulkUpdateUsers(req *BulkUpdateUsersRequest, updaterID string) (int64, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return 0, invalid("Validation failed: %s", validator.Message(errs))
	}
	if req.IsActive == nil && req.RoleID == nil {
		return 0, invalid("Nothing to update")
	}

	fields := map[string]interface{}{"updated_by": updaterID}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	var privileges []model.Privilege
	if req.RoleID != nil {
		role, err := s.resolveRole(*req.RoleID, "")
		if err != nil {
			return 0, err
		}
		fields["role_id"] = role.ID
		privileges = role.Privileges
		if privileges == nil {
			privileges = []model.Privilege{}
		}
	}
	return s.userRepo.UpdateMany(req.UserIDs, fields, privileges)
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, updaterID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound.Msg)
	}

	privileges, err := s.privilegeRepo.FindByCodes(privilegeCodes)
	if err != nil {
		return nil, err
	}
	if len(privileges) != len(privilegeCodes) {
		return nil, invalid("Unknown privilege code")
	}

	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, err
	}

	user.Touch(updaterID)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(userID)
}

// GetAllUsers lists every user, or only those with roleCode when it is set.
func (s *userService) GetAllUsers(roleCode string) ([]model.UserResponse, error) {
	var (
		users []model.User
		err   error
	)
	if roleCode != "" {
		users, err = s.userRepo.FindByRoleCode(roleCode)
	} else {
		users, err = s.userRepo.FindAll()
	}
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound.Msg)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) GetRoles() ([]model.Role, error) {
	return s.roleRepo.FindAll()
}

func (s *userService) GetPrivileges() ([]model.Privilege, error) {
	return s.privilegeRepo.FindAll()
}
