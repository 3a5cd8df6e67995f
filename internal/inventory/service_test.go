package inventory

import (
	"context"
	"testing"

	"github.com/MechanicWorks/MechanicWorks/internal/common/errs"
	"github.com/MechanicWorks/MechanicWorks/internal/ticket"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *ticket.Repo) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&Inventory{}, &ticket.ServiceTicket{}, &ticket.TicketPart{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	ticketRepo := ticket.NewRepo(db)
	return NewService(NewRepo(db), ticketRepo), ticketRepo
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", 9.99); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.Create(ctx, "Oil filter", -1); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	item, err := svc.Create(ctx, "Oil filter", 9.99)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatalf("expected assigned ID")
	}
}

func TestUpdateAllowList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, "Oil filter", 9.99)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	price := 12.49
	updated, err := svc.Update(ctx, item.ID, Patch{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Price != 12.49 || updated.Name != "Oil filter" {
		t.Fatalf("unexpected item after update: %+v", updated)
	}

	negative := -0.01
	if _, err := svc.Update(ctx, item.ID, Patch{Price: &negative}); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	if _, err := svc.Update(ctx, 9999, Patch{}); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddPartToTicket(t *testing.T) {
	svc, ticketRepo := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, "Brake pads", 39.99)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	tk := &ticket.ServiceTicket{VIN: "1HGCM82633A00435", Description: "brakes", CustomerID: 1}
	if err := ticketRepo.Create(ctx, tk); err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}

	if err := svc.AddPartToTicket(ctx, item.ID, tk.ID); err != nil {
		t.Fatalf("add part failed: %v", err)
	}

	// 重复关联拒绝
	err = svc.AddPartToTicket(ctx, item.ID, tk.ID)
	if !errs.IsKind(err, errs.KindConflict) || err.Error() != "Part is already associated with this service ticket" {
		t.Fatalf("expected conflict on duplicate link, got %v", err)
	}

	if err := svc.AddPartToTicket(ctx, 9999, tk.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not found for unknown inventory, got %v", err)
	}
	if err := svc.AddPartToTicket(ctx, item.ID, 9999); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not found for unknown ticket, got %v", err)
	}
}

func TestDeleteClearsTicketLinks(t *testing.T) {
	svc, ticketRepo := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, "Brake pads", 39.99)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	tk := &ticket.ServiceTicket{VIN: "1HGCM82633A00435", Description: "brakes", CustomerID: 1}
	if err := ticketRepo.Create(ctx, tk); err != nil {
		t.Fatalf("create ticket failed: %v", err)
	}
	if err := svc.AddPartToTicket(ctx, item.ID, tk.ID); err != nil {
		t.Fatalf("add part failed: %v", err)
	}

	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	attached, err := ticketRepo.HasPart(ctx, tk.ID, item.ID)
	if err != nil {
		t.Fatalf("check link failed: %v", err)
	}
	if attached {
		t.Fatalf("expected ticket link cleared")
	}

	if err := svc.Delete(ctx, item.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
