package repository

import (
	"errors"
	"fmt"

	"go-construction-inventory/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedDefaults creates the privilege catalogue, the default roles and the first admin.
// It is safe to run on every start.
func SeedDefaults(db *gorm.DB, adminEmail, adminPassword string, logger *logrus.Logger) error {
	privilegeRepo := NewPrivilegeRepo(db)
	roleRepo := NewRoleRepo(db)
	userRepo := NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	catalogue, err := privilegeRepo.FindAll()
	if err != nil {
		return err
	}
	granted, err := roleRepo.SeedDefaults(catalogue)
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	for _, role := range granted {
		logger.WithField("role", role.Code).Infof("role assigned %d privileges", len(role.Privileges))
	}

	_, err = userRepo.FindByEmail(adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return err
	}
	username := "admin"
	admin := &model.User{
		Email:      adminEmail,
		Username:   &username,
		FullName:   "Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.Touch("system")
	if err := admin.SetPassword(adminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	logger.WithField("email", adminEmail).Info("admin user created")
	return nil
}
