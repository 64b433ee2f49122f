package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func (f *fixture) addUser(t *testing.T, email, roleCode string) *model.User {
	t.Helper()
	role := model.Role{Code: roleCode, Name: roleCode}
	if err := f.db.Where(model.Role{Code: roleCode}).FirstOrCreate(&role).Error; err != nil {
		t.Fatalf("role %s: %v", roleCode, err)
	}
	user := &model.User{Email: email, FullName: email, RoleID: &role.ID, IsActive: true}
	if err := user.SetPassword("rahasia123"); err != nil {
		t.Fatal(err)
	}
	if err := f.users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// newPricedRAB builds a RAB with two categories: subtotal 2.000.000, discount 10%, tax 11%.
func (f *fixture) newPricedRAB(t *testing.T) *model.RAB {
	t.Helper()
	location := "Bandung"
	rab, err := f.rabService.CreateRAB(&CreateRABRequest{ProjectName: "Rumah Tinggal", ProjectType: model.ProjectArsitektur, Location: &location}, "estimator")
	if err != nil {
		t.Fatalf("CreateRAB: %v", err)
	}
	items := []RABItemRequest{
		{RABID: rab.ID, Category: "Struktur", Description: "Beton K-300", UnitPrice: dec("100000"), Quantity: dec("10"), Unit: "m3"},
		{RABID: rab.ID, Category: "Finishing", Description: "Cat dinding", UnitPrice: dec("200000"), Quantity: dec("4"), Unit: "m2"},
		{RABID: rab.ID, Category: "Struktur", Description: "Besi", UnitPrice: dec("50000"), Quantity: dec("4"), Unit: "kg"},
	}
	for i := range items {
		if _, err := f.rabService.CreateItem(&items[i], "estimator"); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}
	discount := dec("10")
	if _, err := f.rabService.UpdateRAB(rab.ID, &UpdateRABRequest{Discount: &discount}, "estimator"); err != nil {
		t.Fatalf("UpdateRAB: %v", err)
	}
	return rab
}

func TestCreateRABDefaults(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	rab, err := f.rabService.CreateRAB(&CreateRABRequest{ProjectName: "Kantor"}, "estimator")
	if err != nil {
		t.Fatalf("CreateRAB: %v", err)
	}
	if rab.ProjectType != model.ProjectInterior || rab.Status != model.RABDraft || !rab.Tax.Equal(dec("11")) || !rab.Discount.IsZero() {
		t.Errorf("rab = %+v", rab)
	}

	if _, err := f.rabService.CreateRAB(&CreateRABRequest{}, "estimator"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing name err = %v", err)
	}
	tooMuch := dec("120")
	if _, err := f.rabService.UpdateRAB(rab.ID, &UpdateRABRequest{Tax: &tooMuch}, "estimator"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("tax 120 err = %v", err)
	}
	if _, err := f.rabService.UpdateRAB(uuid.New(), &UpdateRABRequest{}, "estimator"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown rab err = %v", err)
	}
	if _, err := f.rabService.CreateItem(&RABItemRequest{RABID: uuid.New(), Category: "X", Description: "X", Unit: "ls"}, "estimator"); !errors.Is(err, ErrNotFound) {
		t.Errorf("item for unknown rab err = %v", err)
	}
}

func TestRABItemTotals(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	rab := f.newPricedRAB(t)

	got, err := f.rabService.GetRAB(rab.ID)
	if err != nil {
		t.Fatalf("GetRAB: %v", err)
	}
	totals := got.Totals()
	if !totals.Subtotal.Equal(dec("2000000")) || !totals.Discount.Equal(dec("200000")) ||
		!totals.Tax.Equal(dec("198000")) || !totals.GrandTotal.Equal(dec("1998000")) {
		t.Errorf("totals = %+v", totals)
	}

	items, err := f.rabService.GetItems(rab.ID)
	if err != nil {
		t.Fatalf("GetItems: %v", err)
	}
	qty := dec("6")
	updated, err := f.rabService.UpdateItem(items[0].ID, &UpdateRABItemRequest{Quantity: &qty}, "estimator")
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !updated.Total.Equal(dec("600000")) {
		t.Errorf("total = %s, want 600000", updated.Total)
	}

	if err := f.rabService.DeleteItem(items[1].ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := f.rabService.DeleteItem(items[1].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if items, _ = f.rabService.GetItems(rab.ID); len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestRABApprovalLifecycle(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	supervisor := f.addUser(t, "mandor@example.com", model.RoleSiteSupervisor)
	rab := f.newPricedRAB(t)
	ctx := context.Background()

	result, err := f.rabService.UpdateStatus(ctx, rab.ID, &RABStatusRequest{Status: model.RABApproved}, "direktur")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.ProjectID == nil {
		t.Fatal("approve returned no project")
	}
	project, err := f.projService.GetProjectByID(*result.ProjectID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if project.Name != "Rumah Tinggal" || project.Phase != model.PhasePelaksanaan ||
		!project.ProjectValue.Equal(dec("1998000")) || project.Type != model.ProjectArsitektur {
		t.Errorf("project = %+v", project)
	}
	approved, err := f.rabService.GetRAB(rab.ID)
	if err != nil {
		t.Fatalf("GetRAB: %v", err)
	}
	if approved.Status != model.RABApproved || approved.ApprovedAt == nil || approved.ProjectID == nil || *approved.ProjectID != project.ID {
		t.Errorf("approved rab = %+v", approved)
	}
	if unread, _ := f.notifier.UnreadCount(supervisor.ID); unread != 1 {
		t.Errorf("supervisor unread = %d, want 1", unread)
	}

	if _, err := f.rabService.UpdateStatus(ctx, rab.ID, &RABStatusRequest{Status: model.RABApproved}, "direktur"); !errors.Is(err, ErrConflict) {
		t.Errorf("re-approve err = %v, want conflict", err)
	}

	// a line added after approval inherits the project
	late, err := f.rabService.CreateItem(&RABItemRequest{RABID: rab.ID, Category: "Finishing", Description: "Plafon", UnitPrice: dec("1000"), Quantity: dec("1"), Unit: "m2"}, "estimator")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if late.ProjectID == nil || *late.ProjectID != project.ID {
		t.Errorf("late item project = %v", late.ProjectID)
	}
	f.post(t, project.ID, model.CategoryBahan, line{name: "Semen", qty: "5", price: "50000"})

	reverted, err := f.rabService.UpdateStatus(ctx, rab.ID, &RABStatusRequest{Status: model.RABBiddingProcess}, "direktur")
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if reverted.Message != "RAB status updated to bidding_process and project deleted" {
		t.Errorf("message = %q", reverted.Message)
	}
	if _, err := f.projService.GetProjectByID(project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("project after revert err = %v, want not found", err)
	}
	if n := f.countRows(t, &model.InventoryRecord{}, "project_id = ?", project.ID); n != 0 {
		t.Errorf("inventory left = %d", n)
	}
	survivor, err := f.rabService.GetRAB(rab.ID)
	if err != nil {
		t.Fatalf("GetRAB after revert: %v", err)
	}
	if survivor.Status != model.RABBiddingProcess || survivor.ProjectID != nil || survivor.ApprovedAt != nil {
		t.Errorf("survivor = %+v", survivor)
	}
	if len(survivor.Items) != 4 {
		t.Errorf("items after revert = %d, want 4", len(survivor.Items))
	}
	for _, item := range survivor.Items {
		if item.ProjectID != nil {
			t.Errorf("item %s still names project %s", item.Description, item.ProjectID)
		}
	}

	again, err := f.rabService.UpdateStatus(ctx, rab.ID, &RABStatusRequest{Status: model.RABApproved}, "direktur")
	if err != nil {
		t.Fatalf("approve again: %v", err)
	}
	if *again.ProjectID == project.ID {
		t.Error("second approval reused the deleted project id")
	}
}

func TestRABStatusChanges(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	rab := f.newPricedRAB(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      uuid.UUID
		req     RABStatusRequest
		wantErr error
		wantMsg string
	}{
		{"bidding", rab.ID, RABStatusRequest{Status: model.RABBiddingProcess}, nil, "RAB status updated to bidding_process"},
		{"rejected", rab.ID, RABStatusRequest{Status: model.RABRejected, RejectedReason: "terlalu mahal"}, nil, "RAB status updated to rejected"},
		{"unknown status", rab.ID, RABStatusRequest{Status: "lunas"}, ErrInvalidArgument, ""},
		{"unknown rab", uuid.New(), RABStatusRequest{Status: model.RABDraft}, ErrNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.rabService.UpdateStatus(ctx, tt.id, &tt.req, "direktur")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if result.Message != tt.wantMsg || result.ProjectID != nil {
				t.Errorf("result = %+v", result)
			}
		})
	}

	got, err := f.rabService.GetRAB(rab.ID)
	if err != nil {
		t.Fatalf("GetRAB: %v", err)
	}
	if got.Status != model.RABRejected || got.RejectedReason == nil || *got.RejectedReason != "terlalu mahal" {
		t.Errorf("rab = %+v", got)
	}
	if n := f.countRows(t, &model.Project{}, ""); n != 0 {
		t.Errorf("projects = %d, want none without approval", n)
	}
}

func TestExportRAB(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	rab := f.newPricedRAB(t)

	var buf bytes.Buffer
	if err := f.rabService.ExportRAB(&buf, rab.ID); err != nil {
		t.Fatalf("ExportRAB: %v", err)
	}
	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if rows[0][0] != "RAB - Rumah Tinggal" || rows[2][1] != "Bandung" {
		t.Errorf("heading rows = %v", rows[:3])
	}

	// first seen category order, then the summary block
	var labels []string
	values := map[string]string{}
	for _, row := range rows[6:] {
		switch {
		case len(row) == 1:
			labels = append(labels, row[0])
		case len(row) == 6 && row[0] == "":
			labels = append(labels, row[1])
			values[row[1]] = row[5]
		}
	}
	want := []string{"Struktur", "Subtotal Struktur", "Finishing", "Subtotal Finishing", "SUBTOTAL", "DISKON (10%)", "PAJAK (11%)", "TOTAL"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, labels[i], want[i])
		}
	}
	if values["Subtotal Struktur"] != "1200000" || values["TOTAL"] != "1998000" || values["DISKON (10%)"] != "-200000" {
		t.Errorf("values = %v", values)
	}

	if err := f.rabService.ExportRAB(&buf, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown rab err = %v", err)
	}
}
