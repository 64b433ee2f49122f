package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/jwt"
	"go-construction-inventory/pkg/wib"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const cookieName = "session"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: wib.Now,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	if err := repository.SeedDefaults(db, "admin@example.com", "admin123", logg); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func newUser(t *testing.T, db *gorm.DB, email, roleCode string) *model.User {
	t.Helper()
	role, err := repository.NewRoleRepo(db).FindByCode(roleCode)
	if err != nil {
		t.Fatalf("FindByCode(%s): %v", roleCode, err)
	}
	user := &model.User{Email: email, FullName: email, RoleID: &role.ID, IsActive: true, Privileges: role.Privileges}
	if err := user.SetPassword("rahasia123"); err != nil {
		t.Fatal(err)
	}
	users := repository.NewUserRepo(db)
	if err := users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	loaded, err := users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	return loaded
}

// loginAs stores a fresh token version for the user and returns a matching token.
func loginAs(t *testing.T, repo repository.UserRepository, user *model.User) string {
	t.Helper()
	version := uuid.NewString()
	if err := repo.UpdateTokenVersion(user.ID, version); err != nil {
		t.Fatalf("UpdateTokenVersion: %v", err)
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode(), user.GetPrivilegeCodes(), version)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func newApp(repo repository.UserRepository, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{RequireAuth(repo, cookieName)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRoleCode).(string)
		return c.SendString(role)
	})
	app.Get("/protected", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, header, cookie string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookieName+"="+cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequireAuth(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUserRepo(db)
	admin, err := repo.FindByEmail("admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	stale := loginAs(t, repo, admin)
	token := loginAs(t, repo, admin)

	inactive := newUser(t, db, "cuti@example.com", model.RoleEmployee)
	inactiveToken := loginAs(t, repo, inactive)
	if err := db.Model(&model.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	app := newApp(repo)
	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{"bearer", "Bearer " + token, "", fiber.StatusOK, model.RoleAdmin},
		{"cookie", "", token, fiber.StatusOK, model.RoleAdmin},
		{"missing", "", "", fiber.StatusUnauthorized, "Not authenticated"},
		{"malformed header", "Token " + token, "", fiber.StatusUnauthorized, "Not authenticated"},
		{"garbage", "Bearer abc.def.ghi", "", fiber.StatusUnauthorized, "Invalid or expired token"},
		{"replaced session", "Bearer " + stale, "", fiber.StatusUnauthorized, "Session expired"},
		{"inactive", "Bearer " + inactiveToken, "", fiber.StatusUnauthorized, "User account is inactive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.header, tt.cookie)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", status, tt.wantStatus, body)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %s, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestPrivilegeAndRoleGuards(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUserRepo(db)
	admin, err := repo.FindByEmail("admin@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	supervisor := newUser(t, db, "mandor@example.com", model.RoleSiteSupervisor)
	adminToken := "Bearer " + loginAs(t, repo, admin)
	supervisorToken := "Bearer " + loginAs(t, repo, supervisor)

	tests := []struct {
		name   string
		guard  fiber.Handler
		token  string
		status int
	}{
		{"issue allowed", RequirePrivilege(model.PrivInventoryIssue), supervisorToken, fiber.StatusOK},
		{"delete denied", RequirePrivilege(model.PrivInventoryDelete), supervisorToken, fiber.StatusForbidden},
		{"any of", RequireAnyPrivilege(model.PrivInventoryDelete, model.PrivProjectUpdate), supervisorToken, fiber.StatusOK},
		{"admin has all", RequirePrivilege(model.PrivUserPrivilege), adminToken, fiber.StatusOK},
		{"admin only", RequireRole(model.RoleAdmin), supervisorToken, fiber.StatusForbidden},
		{"admin passes", RequireRole(model.RoleAdmin), adminToken, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, newApp(repo, tt.guard), tt.token, "")
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %s)", status, tt.status, body)
			}
		})
	}
}

func TestPrivilegeRevocationAppliesImmediately(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUserRepo(db)
	supervisor := newUser(t, db, "mandor@example.com", model.RoleSiteSupervisor)
	token := "Bearer " + loginAs(t, repo, supervisor)
	app := newApp(repo, RequirePrivilege(model.PrivInventoryIssue))

	if status, _ := call(t, app, token, ""); status != fiber.StatusOK {
		t.Fatalf("before revocation status = %d", status)
	}
	viewOnly, err := repository.NewPrivilegeRepo(db).FindByCodes([]string{model.PrivProjectView})
	if err != nil || len(viewOnly) != 1 {
		t.Fatalf("FindByCodes = %v, %v", viewOnly, err)
	}
	if err := repo.UpdatePrivileges(supervisor.ID, viewOnly); err != nil {
		t.Fatalf("UpdatePrivileges: %v", err)
	}
	if status, _ := call(t, app, token, ""); status != fiber.StatusForbidden {
		t.Errorf("after revocation status = %d, want 403", status)
	}
}
