package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/wib"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordedEvent struct {
	Type string
	Data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Data: data})
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// hookLocker calls before ahead of every acquisition on inner and keeps the requested keys.
type hookLocker struct {
	inner  lock.Locker
	before func(call int, keys []string)

	mu    sync.Mutex
	calls [][]string
}

func (l *hookLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	l.mu.Lock()
	l.calls = append(l.calls, keys)
	call := len(l.calls)
	l.mu.Unlock()
	if l.before != nil {
		l.before(call, keys)
	}
	return l.inner.Lock(ctx, keys...)
}

func (l *hookLocker) keys() [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]string(nil), l.calls...)
}

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
	return db
}

func newTestLogger() *logrus.Logger {
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return logg
}

type fixture struct {
	db     *gorm.DB
	events *recordingPublisher

	users        repository.UserRepository
	projects     repository.ProjectRepository
	transactions repository.TransactionRepository
	inventory    repository.InventoryRepository
	usages       repository.WarehouseUsageRepository
	rabs         repository.RABRepository
	schedules    repository.ScheduleRepository
	tasks        repository.TaskRepository

	notifier    NotificationService
	txService   TransactionService
	invService  InventoryService
	projService ProjectService
	report      ReportService
	financial   FinancialService
	dashboard   DashboardService
	rabService  RABService
	planning    PlanningService
	taskService TaskService
}

func newFixture(t *testing.T, cfg config.InventoryConfig) *fixture {
	t.Helper()
	db := newTestDB(t)
	logg := newTestLogger()
	events := &recordingPublisher{}
	locker := lock.NewLocal()

	f := &fixture{
		db:           db,
		events:       events,
		users:        repository.NewUserRepo(db),
		projects:     repository.NewProjectRepo(db),
		transactions: repository.NewTransactionRepo(db),
		inventory:    repository.NewInventoryRepo(db),
		usages:       repository.NewWarehouseUsageRepo(db),
		rabs:         repository.NewRABRepo(db),
		schedules:    repository.NewScheduleRepo(db),
		tasks:        repository.NewTaskRepo(db),
	}
	f.notifier = NewNotificationService(repository.NewNotificationRepo(db), f.users, events)
	f.txService = NewTransactionService(db, f.transactions, f.inventory, f.projects, locker, f.notifier, events, cfg, logg)
	f.invService = NewInventoryService(db, f.inventory, f.usages, f.projects, f.transactions, locker, events, cfg, logg)
	f.projService = NewProjectService(db, f.projects, f.transactions, f.inventory, f.usages, f.rabs, f.schedules, f.tasks, locker, f.notifier, events, logg)
	f.report = NewReportService(f.transactions, f.inventory, f.usages, f.projects)
	f.financial = NewFinancialService(f.transactions, f.projects)
	f.dashboard = NewDashboardService(f.inventory, f.projects)
	f.rabService = NewRABService(db, f.rabs, f.projects, f.projService, locker, f.notifier, logg)
	f.planning = NewPlanningService(f.schedules, f.projects, f.rabs)
	f.taskService = NewTaskService(db, f.tasks, f.notifier, logg)
	return f
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (f *fixture) createProject(t *testing.T, name, projectType string, value int64) *model.Project {
	t.Helper()
	project, err := f.projService.CreateProject(&ProjectRequest{
		Name:         name,
		Type:         projectType,
		ProjectValue: decimal.NewFromInt(value),
	}, "tester", model.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateProject(%s): %v", name, err)
	}
	return project
}

type line struct {
	name     string
	qty      string
	price    string
	status   model.ItemStatus
	supplier string
	unit     string
}

func (f *fixture) post(t *testing.T, projectID uuid.UUID, category model.TransactionCategory, lines ...line) *model.Transaction {
	t.Helper()
	tx, err := f.tryPost(projectID, category, nil, lines...)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	return tx
}

func (f *fixture) tryPost(projectID uuid.UUID, category model.TransactionCategory, date *time.Time, lines ...line) (*model.Transaction, error) {
	req := &CreateTransactionRequest{
		ProjectID:       projectID,
		Category:        string(category),
		TransactionDate: date,
	}
	amount := decimal.Zero
	for _, l := range lines {
		item := TransactionItemRequest{
			Description: l.name,
			Quantity:    dec(l.qty),
			Unit:        l.unit,
			UnitPrice:   dec(l.price),
			Status:      string(l.status),
		}
		if item.Unit == "" {
			item.Unit = "sak"
		}
		if l.supplier != "" {
			supplier := l.supplier
			item.Supplier = &supplier
		}
		amount = amount.Add(item.Quantity.Mul(item.UnitPrice))
		req.Items = append(req.Items, item)
	}
	req.Amount = amount
	return f.txService.CreateTransaction(context.Background(), req, "tester")
}

func (f *fixture) record(t *testing.T, projectID uuid.UUID, category model.TransactionCategory, name string) *model.InventoryRecord {
	t.Helper()
	var record model.InventoryRecord
	err := f.db.Where("item_name = ? AND category = ? AND project_id = ?", name, string(category), projectID).
		First(&record).Error
	if err != nil {
		t.Fatalf("load inventory %s: %v", name, err)
	}
	return &record
}

func (f *fixture) countRows(t *testing.T, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func assertQty(t *testing.T, record *model.InventoryRecord, in, out, total string) {
	t.Helper()
	if !record.QuantityInWarehouse.Equal(dec(in)) {
		t.Errorf("%s in_warehouse = %s, want %s", record.ItemName, record.QuantityInWarehouse, in)
	}
	if !record.QuantityOutWarehouse.Equal(dec(out)) {
		t.Errorf("%s out_warehouse = %s, want %s", record.ItemName, record.QuantityOutWarehouse, out)
	}
	if !record.Quantity.Equal(dec(total)) {
		t.Errorf("%s quantity = %s, want %s", record.ItemName, record.Quantity, total)
	}
}
