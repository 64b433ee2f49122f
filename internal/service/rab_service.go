package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"
	"go-construction-inventory/pkg/validator"
	"go-construction-inventory/pkg/wib"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const rabNotFound = "RAB not found"

type RABService interface {
	CreateRAB(req *CreateRABRequest, userID string) (*model.RAB, error)
	GetRABs() ([]model.RAB, error)
	GetRAB(id uuid.UUID) (*model.RAB, error)
	UpdateRAB(id uuid.UUID, req *UpdateRABRequest, userID string) (*model.RAB, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *RABStatusRequest, userID string) (*RABStatusResult, error)
	DeleteRAB(id uuid.UUID) error

	CreateItem(req *RABItemRequest, userID string) (*model.RABItem, error)
	GetItems(rabID uuid.UUID) ([]model.RABItem, error)
	UpdateItem(id uuid.UUID, req *UpdateRABItemRequest, userID string) (*model.RABItem, error)
	DeleteItem(id uuid.UUID) error

	ExportRAB(w io.Writer, id uuid.UUID) error
}

type CreateRABRequest struct {
	ProjectName string  `json:"project_name" validate:"required"`
	ProjectType string  `json:"project_type" validate:"omitempty,oneof=interior arsitektur"`
	ClientName  *string `json:"client_name"`
	Location    *string `json:"location"`
}

// UpdateRABRequest edits the pricing percentages.
type UpdateRABRequest struct {
	Discount *decimal.Decimal `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Tax      *decimal.Decimal `json:"tax" validate:"omitempty,gte=0,lte=100"`
}

type RABStatusRequest struct {
	Status         string `json:"status" validate:"rab_status"`
	RejectedReason string `json:"rejected_reason"`
}

type RABStatusResult struct {
	Message   string     `json:"message"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
}

type RABItemRequest struct {
	RABID       uuid.UUID       `json:"rab_id" validate:"uuid_required"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gte=0"`
	Unit        string          `json:"unit" validate:"required"`
}

type UpdateRABItemRequest struct {
	Category    *string          `json:"category" validate:"omitempty,min=1"`
	Description *string          `json:"description" validate:"omitempty,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Quantity    *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	Unit        *string          `json:"unit"`
}

type rabService struct {
	db          *gorm.DB
	rabRepo     repository.RABRepository
	projectRepo repository.ProjectRepository
	projects    ProjectService
	locker      lock.Locker
	notifier    NotificationService
	logger      *logrus.Logger
}

func NewRABService(
	db *gorm.DB,
	rabRepo repository.RABRepository,
	projectRepo repository.ProjectRepository,
	projects ProjectService,
	locker lock.Locker,
	notifier NotificationService,
	logger *logrus.Logger,
) RABService {
	return &rabService{
		db:          db,
		rabRepo:     rabRepo,
		projectRepo: projectRepo,
		projects:    projects,
		locker:      locker,
		notifier:    notifier,
		logger:      logger,
	}
}

func rabLockKey(id uuid.UUID) string {
	return "rab:" + id.String()
}

func (s *rabService) CreateRAB(req *CreateRABRequest, userID string) (*model.RAB, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	projectType := req.ProjectType
	if projectType == "" {
		projectType = model.ProjectInterior
	}

	rab := &model.RAB{
		ProjectName: req.ProjectName,
		ProjectType: projectType,
		ClientName:  req.ClientName,
		Location:    req.Location,
		Status:      model.RABDraft,
		Discount:    decimal.Zero,
		Tax:         model.DefaultRABTax,
	}
	rab.Touch(userID)
	if err := s.rabRepo.Create(rab); err != nil {
		return nil, err
	}
	return rab, nil
}

func (s *rabService) GetRABs() ([]model.RAB, error) {
	return s.rabRepo.FindAll()
}

func (s *rabService) GetRAB(id uuid.UUID) (*model.RAB, error) {
	rab, err := s.rabRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, rabNotFound)
	}
	return rab, nil
}

func (s *rabService) UpdateRAB(id uuid.UUID, req *UpdateRABRequest, userID string) (*model.RAB, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	fields := map[string]interface{}{"updated_by": userID}
	if req.Discount != nil {
		fields["discount"] = *req.Discount
	}
	if req.Tax != nil {
		fields["tax"] = *req.Tax
	}
	if err := s.rabRepo.UpdateFields(s.db, id, fields); err != nil {
		return nil, notFoundOr(err, rabNotFound)
	}
	return s.GetRAB(id)
}

// UpdateStatus moves a RAB through its lifecycle. Approval creates the project at the
// RAB's grand total in pelaksanaan phase; leaving approved deletes that project again.
func (s *rabService) UpdateStatus(ctx context.Context, id uuid.UUID, req *RABStatusRequest, userID string) (*RABStatusResult, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Invalid status")
	}

	unlock, err := s.locker.Lock(ctx, rabLockKey(id))
	if err != nil {
		return nil, fmt.Errorf("lock rab: %w", err)
	}
	defer unlock()

	rab, err := s.rabRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, rabNotFound)
	}

	fields := map[string]interface{}{"status": req.Status, "updated_by": userID}
	if req.Status == model.RABRejected {
		fields["rejected_reason"] = req.RejectedReason
	}

	switch {
	case req.Status == model.RABApproved && rab.Status == model.RABApproved:
		return nil, conflict("RAB already approved")

	case req.Status == model.RABApproved:
		return s.approve(rab, fields, userID)

	case rab.Status == model.RABApproved:
		fields["project_id"] = nil
		fields["approved_at"] = nil
		// the RAB and its items outlive the project they created
		detach := func(tx *gorm.DB) error {
			if err := s.rabRepo.UpdateFields(tx, id, fields); err != nil {
				return err
			}
			return s.rabRepo.UnlinkItems(tx, id)
		}
		if rab.ProjectID == nil {
			err = detach(s.db)
		} else {
			err = s.projects.DeleteProjectWith(ctx, *rab.ProjectID, detach)
			if errors.Is(err, ErrNotFound) {
				// project already removed by hand
				err = detach(s.db)
			}
		}
		if err != nil {
			return nil, notFoundOr(err, rabNotFound)
		}
		return &RABStatusResult{Message: fmt.Sprintf("RAB status updated to %s and project deleted", req.Status)}, nil
	}

	if err := s.rabRepo.UpdateFields(s.db, id, fields); err != nil {
		return nil, notFoundOr(err, rabNotFound)
	}
	return &RABStatusResult{Message: fmt.Sprintf("RAB status updated to %s", req.Status)}, nil
}

func (s *rabService) approve(rab *model.RAB, fields map[string]interface{}, userID string) (*RABStatusResult, error) {
	description := fmt.Sprintf("Project from RAB: %s", rab.ProjectName)
	project := &model.Project{
		Name:         rab.ProjectName,
		Type:         rab.ProjectType,
		Description:  &description,
		Location:     rab.Location,
		ProjectValue: rab.Totals().GrandTotal,
		Status:       model.ProjectActive,
		Phase:        model.PhasePelaksanaan,
	}
	project.Touch(userID)
	project.ID = uuid.New()

	fields["project_id"] = project.ID
	fields["approved_at"] = wib.Now()
	fields["rejected_reason"] = nil
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.projectRepo.Create(tx, project); err != nil {
			return err
		}
		return s.rabRepo.UpdateFields(tx, rab.ID, fields)
	})
	if err != nil {
		return nil, notFoundOr(err, rabNotFound)
	}

	message := fmt.Sprintf("RAB '%s' disetujui, proyek senilai Rp %s dibuat", rab.ProjectName, formatRupiah(project.ProjectValue))
	if err := s.notifier.NotifyRole(model.RoleSiteSupervisor, "Proyek Baru", message, model.NotificationSuccess); err != nil {
		config.LogError(s.logger, "rab_service", "UpdateStatus", "notify site supervisors", rab.ID.String(), err)
	}
	return &RABStatusResult{Message: "RAB approved and project created", ProjectID: &project.ID}, nil
}

func (s *rabService) DeleteRAB(id uuid.UUID) error {
	return notFoundOr(s.rabRepo.Delete(id), rabNotFound)
}

func (s *rabService) CreateItem(req *RABItemRequest, userID string) (*model.RABItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	rab, err := s.rabRepo.FindByID(req.RABID)
	if err != nil {
		return nil, notFoundOr(err, rabNotFound)
	}
	projectID := req.ProjectID
	if projectID == nil {
		projectID = rab.ProjectID
	}

	item := &model.RABItem{
		RABID:       rab.ID,
		ProjectID:   projectID,
		Category:    req.Category,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
	}
	item.Recalculate()
	item.Touch(userID)
	if err := s.rabRepo.CreateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *rabService) GetItems(rabID uuid.UUID) ([]model.RABItem, error) {
	return s.rabRepo.FindItems(rabID)
}

// UpdateItem edits a line; the total follows price and quantity.
func (s *rabService) UpdateItem(id uuid.UUID, req *UpdateRABItemRequest, userID string) (*model.RABItem, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("Validation failed: %s", validator.Message(errs))
	}
	item, err := s.rabRepo.FindItemByID(id)
	if err != nil {
		return nil, notFoundOr(err, "RAB item not found")
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	item.Recalculate()
	item.Touch(userID)
	if err := s.rabRepo.SaveItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *rabService) DeleteItem(id uuid.UUID) error {
	return notFoundOr(s.rabRepo.DeleteItem(id), "RAB item not found")
}

var rabExportHeadings = []string{"No", "Uraian Pekerjaan", "Satuan", "Volume", "Harga Satuan", "Jumlah"}

// ExportRAB writes the RAB as an xlsx workbook: items grouped by category in first seen
// order with a subtotal per category, then subtotal, discount, tax and grand total.
func (s *rabService) ExportRAB(w io.Writer, id uuid.UUID) error {
	rab, err := s.GetRAB(id)
	if err != nil {
		return err
	}

	var order []string
	byCategory := make(map[string][]model.RABItem)
	for _, item := range rab.Items {
		if _, ok := byCategory[item.Category]; !ok {
			order = append(order, item.Category)
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Sheet1"

	location := "-"
	if rab.Location != nil {
		location = *rab.Location
	}
	rows := [][]interface{}{
		{"RAB - " + rab.ProjectName},
		{"Tipe", rab.ProjectType},
		{"Lokasi", location},
		{"Status", rab.Status},
		{},
		toRow(rabExportHeadings),
	}
	no := 1
	for _, category := range order {
		rows = append(rows, []interface{}{category})
		categoryTotal := decimal.Zero
		for _, item := range byCategory[category] {
			rows = append(rows, []interface{}{
				no,
				item.Description,
				item.Unit,
				item.Quantity.InexactFloat64(),
				item.UnitPrice.InexactFloat64(),
				item.Total.InexactFloat64(),
			})
			categoryTotal = categoryTotal.Add(item.Total)
			no++
		}
		rows = append(rows, []interface{}{"", "Subtotal " + category, "", "", "", categoryTotal.InexactFloat64()})
	}

	totals := rab.Totals()
	rows = append(rows,
		[]interface{}{"", "SUBTOTAL", "", "", "", totals.Subtotal.InexactFloat64()},
		[]interface{}{"", fmt.Sprintf("DISKON (%s%%)", rab.Discount), "", "", "", totals.Discount.Neg().InexactFloat64()},
		[]interface{}{"", fmt.Sprintf("PAJAK (%s%%)", rab.Tax), "", "", "", totals.Tax.InexactFloat64()},
		[]interface{}{"", "TOTAL", "", "", "", totals.GrandTotal.InexactFloat64()},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
