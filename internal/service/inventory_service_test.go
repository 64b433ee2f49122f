package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-construction-inventory/internal/config"
	"go-construction-inventory/internal/lock"
	"go-construction-inventory/internal/model"
	"go-construction-inventory/internal/repository"

	"github.com/google/uuid"
)

func TestIssueStock(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	project := f.createProject(t, "Rumah Pak Budi", model.ProjectArsitektur, 0)
	ctx := context.Background()

	f.post(t, project.ID, model.CategoryBahan, line{name: "Semen 50kg", qty: "10", price: "50000"})
	record := f.record(t, project.ID, model.CategoryBahan, "Semen 50kg")

	issue := func(qty string) (*model.WarehouseUsage, error) {
		return f.invService.IssueStock(ctx, &IssueStockRequest{
			InventoryID: record.ID,
			Quantity:    dec(qty),
			ProjectID:   project.ID,
			Notes:       "pengecoran lantai",
		}, "mandor")
	}

	usage, err := issue("4")
	if err != nil {
		t.Fatalf("IssueStock: %v", err)
	}
	if usage.UsageType != model.UsageProduction {
		t.Errorf("usage_type = %q, want production", usage.UsageType)
	}
	if usage.ItemName != "Semen 50kg" || usage.ProjectName != "Rumah Pak Budi" || usage.Unit != "sak" {
		t.Errorf("usage = %+v", usage)
	}
	current := f.record(t, project.ID, model.CategoryBahan, "Semen 50kg")
	assertQty(t, current, "6", "0", "6")
	if current.Status != model.StockAvailable {
		t.Errorf("status = %q, want %q", current.Status, model.StockAvailable)
	}

	if _, err := issue("6"); err != nil {
		t.Fatalf("IssueStock to zero: %v", err)
	}
	current = f.record(t, project.ID, model.CategoryBahan, "Semen 50kg")
	assertQty(t, current, "0", "0", "0")
	if current.Status != model.StockDepleted {
		t.Errorf("status = %q, want %q", current.Status, model.StockDepleted)
	}

	_, err = issue("1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("over issue err = %v, want insufficient stock", err)
	}
	if err.Error() != "Stok tidak cukup. Tersedia: 0, Diminta: 1" {
		t.Errorf("message = %q", err.Error())
	}
	assertQty(t, f.record(t, project.ID, model.CategoryBahan, "Semen 50kg"), "0", "0", "0")
	if n := f.countRows(t, &model.WarehouseUsage{}, ""); n != 2 {
		t.Errorf("usages = %d, want 2", n)
	}
}

func TestIssueStockErrors(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	project := f.createProject(t, "Kafe Dago", model.ProjectInterior, 0)
	f.post(t, project.ID, model.CategoryAlat, line{name: "Bor Listrik", qty: "2", price: "750000", unit: "unit"})
	record := f.record(t, project.ID, model.CategoryAlat, "Bor Listrik")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *IssueStockRequest
		want error
	}{
		{"unknown item", &IssueStockRequest{InventoryID: uuid.New(), Quantity: dec("1"), ProjectID: project.ID}, ErrNotFound},
		{"zero quantity", &IssueStockRequest{InventoryID: record.ID, Quantity: dec("0"), ProjectID: project.ID}, ErrInvalidArgument},
		{"bad usage type", &IssueStockRequest{InventoryID: record.ID, Quantity: dec("1"), ProjectID: project.ID, UsageType: "hilang"}, ErrInvalidArgument},
		{"more than stock", &IssueStockRequest{InventoryID: record.ID, Quantity: dec("2.5"), ProjectID: project.ID}, ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.invService.IssueStock(ctx, tt.req, "mandor"); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	assertQty(t, f.record(t, project.ID, model.CategoryAlat, "Bor Listrik"), "2", "0", "2")
}

func TestIssueStockFollowsRenameBeforeLock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		renameOn func(call int) bool
		wantErr  error
	}{
		{"renamed once", func(call int) bool { return call == 1 }, nil},
		{"renamed on every attempt", func(int) bool { return true }, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.InventoryConfig{})
			project := f.createProject(t, "Perumahan Asri", model.ProjectArsitektur, 0)
			f.post(t, project.ID, model.CategoryBahan, line{name: "Pipa PVC", qty: "10", price: "45000", unit: "batang"})
			record := f.record(t, project.ID, model.CategoryBahan, "Pipa PVC")

			locker := &hookLocker{inner: lock.NewLocal()}
			locker.before = func(call int, _ []string) {
				if !tt.renameOn(call) {
					return
				}
				name := fmt.Sprintf("Pipa PVC %d", call)
				if err := f.db.Model(&model.InventoryRecord{}).Where("id = ?", record.ID).Update("item_name", name).Error; err != nil {
					t.Errorf("rename: %v", err)
				}
			}
			svc := NewInventoryService(f.db, f.inventory, f.usages, f.projects, f.transactions, locker,
				f.events, config.InventoryConfig{}, newTestLogger())

			usage, err := svc.IssueStock(ctx, &IssueStockRequest{InventoryID: record.ID, Quantity: dec("4"), ProjectID: project.ID}, "mandor")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if n := f.countRows(t, &model.WarehouseUsage{}, ""); n != 0 {
					t.Errorf("usages = %d, want 0", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("IssueStock: %v", err)
			}
			if usage.ItemName != "Pipa PVC 1" {
				t.Errorf("usage item = %q, want renamed item", usage.ItemName)
			}
			calls := locker.keys()
			want := model.StockKey{ItemName: "Pipa PVC 1", Category: string(model.CategoryBahan), ProjectID: project.ID}.LockKey()
			if len(calls) != 2 || len(calls[1]) != 1 || calls[1][0] != want {
				t.Errorf("lock calls = %v, want retry on %s", calls, want)
			}
			assertQty(t, f.record(t, project.ID, model.CategoryBahan, "Pipa PVC 1"), "6", "0", "6")
		})
	}
}

func TestCreateInventoryDefaultProjectType(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{DefaultProjectType: model.ProjectInterior})
	record, err := f.invService.CreateInventory(context.Background(), &CreateInventoryRequest{
		ItemName:  "Lampu Downlight",
		Category:  string(model.CategoryAlat),
		Quantity:  dec("12"),
		Unit:      "pcs",
		UnitPrice: dec("85000"),
		ProjectID: uuid.New(),
	}, "gudang")
	if err != nil {
		t.Fatalf("CreateInventory: %v", err)
	}
	if record.ProjectType != model.ProjectInterior {
		t.Errorf("project_type = %q, want configured default %q", record.ProjectType, model.ProjectInterior)
	}
}

func TestCreateInventoryDirect(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	project := f.createProject(t, "Pabrik Roti", model.ProjectInterior, 0)
	ctx := context.Background()

	req := &CreateInventoryRequest{
		ItemName:  "Triplek 9mm",
		Category:  string(model.CategoryBahan),
		Quantity:  dec("15"),
		Unit:      "lembar",
		UnitPrice: dec("110000"),
		ProjectID: project.ID,
	}
	record, err := f.invService.CreateInventory(ctx, req, "gudang")
	if err != nil {
		t.Fatalf("CreateInventory: %v", err)
	}
	assertQty(t, record, "15", "0", "15")
	if !record.TotalValue.Equal(dec("1650000")) {
		t.Errorf("total_value = %s", record.TotalValue)
	}
	if record.ProjectType != model.ProjectInterior || record.Status != model.StockAvailable {
		t.Errorf("record = %+v", record)
	}

	if _, err := f.invService.CreateInventory(ctx, req, "gudang"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate err = %v, want conflict", err)
	}

	got, err := f.invService.GetInventoryByID(record.ID)
	if err != nil {
		t.Fatalf("GetInventoryByID: %v", err)
	}
	if got.ProjectName != "Pabrik Roti" {
		t.Errorf("project_name = %q", got.ProjectName)
	}
}

func TestUpdateInventory(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	project := f.createProject(t, "Hotel Pantai", model.ProjectArsitektur, 0)
	ctx := context.Background()

	f.post(t, project.ID, model.CategoryBahan,
		line{name: "Genteng", qty: "100", price: "5000"},
		line{name: "Genteng Kaca", qty: "10", price: "20000"},
	)
	tx := f.post(t, project.ID, model.CategoryBahan, line{name: "Paku", qty: "5", price: "20000", unit: "kg"})
	if _, err := f.txService.UpdateItemStatus(ctx, tx.ID, 0, string(model.ItemOutWarehouse), "tester"); err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}
	paku := f.record(t, project.ID, model.CategoryBahan, "Paku")

	qty := dec("8")
	price := dec("21000")
	updated, err := f.invService.UpdateInventory(ctx, paku.ID, &UpdateInventoryRequest{Quantity: &qty, UnitPrice: &price}, "gudang")
	if err != nil {
		t.Fatalf("UpdateInventory: %v", err)
	}
	assertQty(t, updated, "3", "5", "8")
	if !updated.TotalValue.Equal(dec("168000")) {
		t.Errorf("total_value = %s, want 168000", updated.TotalValue)
	}

	genteng := f.record(t, project.ID, model.CategoryBahan, "Genteng")
	taken := "Genteng Kaca"
	if _, err := f.invService.UpdateInventory(ctx, genteng.ID, &UpdateInventoryRequest{ItemName: &taken}, "gudang"); !errors.Is(err, ErrConflict) {
		t.Errorf("rename onto existing err = %v, want conflict", err)
	}
	renamed := "Genteng Tanah Liat"
	got, err := f.invService.UpdateInventory(ctx, genteng.ID, &UpdateInventoryRequest{ItemName: &renamed}, "gudang")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got.ItemName != renamed {
		t.Errorf("item_name = %q", got.ItemName)
	}

	if _, err := f.invService.UpdateInventory(ctx, uuid.New(), &UpdateInventoryRequest{Quantity: &qty}, "gudang"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v, want not found", err)
	}
}

func TestDeleteInventory(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	project := f.createProject(t, "Klinik", model.ProjectInterior, 0)
	f.post(t, project.ID, model.CategoryBahan, line{name: "Gypsum", qty: "30", price: "65000"})
	record := f.record(t, project.ID, model.CategoryBahan, "Gypsum")
	ctx := context.Background()

	if err := f.invService.DeleteInventory(ctx, record.ID); err != nil {
		t.Fatalf("DeleteInventory: %v", err)
	}
	if _, err := f.invService.GetInventoryByID(record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete err = %v, want not found", err)
	}
	if err := f.invService.DeleteInventory(ctx, record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestInventoryListings(t *testing.T) {
	f := newFixture(t, config.InventoryConfig{})
	a := f.createProject(t, "Proyek A", model.ProjectInterior, 0)
	b := f.createProject(t, "Proyek B", model.ProjectArsitektur, 0)

	f.post(t, a.ID, model.CategoryBahan, line{name: "Semen", qty: "1", price: "1", supplier: "Toko Jaya"})
	f.post(t, a.ID, model.CategoryAlat, line{name: "Gerinda", qty: "1", price: "1", supplier: "Toko Teknik"})
	f.post(t, b.ID, model.CategoryBahan, line{name: "Bata", qty: "1", price: "1", supplier: "Toko Jaya"})

	records, err := f.invService.GetInventory(repository.InventoryFilter{Category: "all"})
	if err != nil {
		t.Fatalf("GetInventory: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	for _, r := range records {
		if r.ProjectName == "" || r.ProjectName == unknownProjectName {
			t.Errorf("%s project_name = %q", r.ItemName, r.ProjectName)
		}
	}

	names, err := f.invService.GetItemNames(string(model.CategoryBahan), nil)
	if err != nil {
		t.Fatalf("GetItemNames: %v", err)
	}
	if len(names) != 2 || names[0] != "Bata" || names[1] != "Semen" {
		t.Errorf("item names = %v", names)
	}
	names, err = f.invService.GetItemNames("", &b.ID)
	if err != nil {
		t.Fatalf("GetItemNames by project: %v", err)
	}
	if len(names) != 1 || names[0] != "Bata" {
		t.Errorf("item names for B = %v", names)
	}

	suppliers, err := f.invService.GetSuppliers()
	if err != nil {
		t.Fatalf("GetSuppliers: %v", err)
	}
	if len(suppliers) != 2 || suppliers[0] != "Toko Jaya" || suppliers[1] != "Toko Teknik" {
		t.Errorf("suppliers = %v", suppliers)
	}
}
