//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/database"
	pkgerrors "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3307)/owo_internet_test?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true"
	}

	var err error
	testDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot connect to test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupUser creates a reviewer and returns a cleanup that removes it with its cutoff rows.
func setupUser(t *testing.T) (*model.User, func()) {
	t.Helper()

	user := &model.User{
		Email: fmt.Sprintf("it%d@sab.id", time.Now().UnixNano()),
		Name:  "Integration",
		Role:  model.RoleUser,
	}
	if err := testDB.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	return user, func() {
		testDB.Where("user_id = ?", user.ID).Delete(&model.Cutoff{})
		testDB.Delete(&model.User{}, user.ID)
	}
}

func resiPrefix() string {
	return fmt.Sprintf("IT%d-", time.Now().UnixNano())
}

func newCutoff(userID uint, resi string) model.Cutoff {
	lock := resi
	return model.Cutoff{
		ShipmentID: 1,
		SchoolName: "SDN Integrasi",
		NPSN:       "20200001",
		ResiNumber: resi,
		UserID:     userID,
		ResiLock:   &lock,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback / Commit
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resi := resiPrefix() + "A"

	boom := errors.New("boom")
	err := repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Cutoff.BulkCreate(ctx, []model.Cutoff{newCutoff(user.ID, resi)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	existing, err := repo.Cutoff.FindExistingResi(ctx, []string{resi})
	if err != nil {
		t.Fatalf("FindExistingResi: %v", err)
	}
	if len(existing) != 0 {
		t.Fatal("expected rollback to discard the insert")
	}
}

func TestTransaction_Commit(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resi := resiPrefix() + "A"

	err := repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Cutoff.BulkCreate(ctx, []model.Cutoff{newCutoff(user.ID, resi)}); err != nil {
			return err
		}
		return tx.CutoffHistory.Create(ctx, &model.CutoffHistoryLog{TotalNewItems: 1, UsersCount: 1, BasePerUser: 1})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	existing, _ := repo.Cutoff.FindExistingResi(ctx, []string{resi})
	if _, ok := existing[resi]; !ok {
		t.Fatal("expected committed row to be visible")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Dedup rules
// ═══════════════════════════════════════════════════════════

func TestFindExistingResi_StatusRules(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	p := resiPrefix()
	verified, rejected, unlogged := p+"V", p+"R", p+"U"

	items := []model.Cutoff{newCutoff(user.ID, verified), newCutoff(user.ID, rejected), newCutoff(user.ID, unlogged)}
	if err := repo.Cutoff.BulkCreate(ctx, items); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	queue, err := repo.Cutoff.ListUnlogged(ctx, user.ID)
	if err != nil || len(queue) != 3 {
		t.Fatalf("expected 3 unlogged items, got %d (%v)", len(queue), err)
	}

	for _, item := range queue {
		var status string
		switch item.ResiNumber {
		case verified:
			status = model.StatusVerified
		case rejected:
			status = model.StatusRejected
		default:
			continue
		}
		log := &model.VerificationLog{CutoffID: item.ID, SerialNumber: "SN", UserID: user.ID, Status: status}
		if err := repo.Log.Create(ctx, log); err != nil {
			t.Fatalf("create log: %v", err)
		}
	}

	existing, err := repo.Cutoff.FindExistingResi(ctx, []string{verified, rejected, unlogged, p + "NEW"})
	if err != nil {
		t.Fatalf("FindExistingResi: %v", err)
	}
	if _, ok := existing[verified]; !ok {
		t.Error("VERIFIED resi must block re-import")
	}
	if _, ok := existing[unlogged]; !ok {
		t.Error("unlogged resi must block re-import")
	}
	if _, ok := existing[rejected]; ok {
		t.Error("REJECTED resi must not block re-import")
	}
	if len(existing) != 2 {
		t.Errorf("expected 2 existing, got %d", len(existing))
	}
}

func TestResiLock_DuplicateAndRelease(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	resi := resiPrefix() + "L"

	if err := repo.Cutoff.BulkCreate(ctx, []model.Cutoff{newCutoff(user.ID, resi)}); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := repo.Cutoff.BulkCreate(ctx, []model.Cutoff{newCutoff(user.ID, resi)})
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	queue, _ := repo.Cutoff.ListUnlogged(ctx, user.ID)
	if len(queue) != 1 {
		t.Fatalf("expected one row, got %d", len(queue))
	}
	if err := repo.Cutoff.ClearResiLock(ctx, queue[0].ID); err != nil {
		t.Fatalf("ClearResiLock: %v", err)
	}

	if err := repo.Cutoff.BulkCreate(ctx, []model.Cutoff{newCutoff(user.ID, resi)}); err != nil {
		t.Fatalf("re-import after release: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Logs
// ═══════════════════════════════════════════════════════════

func TestLog_UniqueCutoff(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Cutoff.BulkCreate(ctx, []model.Cutoff{newCutoff(user.ID, resiPrefix()+"S")}); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	queue, _ := repo.Cutoff.ListUnlogged(ctx, user.ID)
	cutoffID := queue[0].ID

	first := &model.VerificationLog{CutoffID: cutoffID, SerialNumber: "SN1", UserID: user.ID, Status: model.StatusVerified}
	if err := repo.Log.Create(ctx, first); err != nil {
		t.Fatalf("first log: %v", err)
	}
	second := &model.VerificationLog{CutoffID: cutoffID, SerialNumber: "SN2", UserID: user.ID, Status: model.StatusVerified}
	if err := repo.Log.Create(ctx, second); !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := repo.Log.GetByCutoffID(ctx, cutoffID)
	if err != nil {
		t.Fatalf("GetByCutoffID: %v", err)
	}
	if got.ID != first.ID || got.SerialNumber != "SN1" {
		t.Errorf("expected first writer to win, got %+v", got)
	}

	rows, total, err := repo.Cutoff.ListWithStatus(ctx, user.ID, 0, 10)
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("ListWithStatus: rows=%d total=%d err=%v", len(rows), total, err)
	}
	if rows[0].LogID == nil || *rows[0].LogID != first.ID || rows[0].LogStatus == nil || *rows[0].LogStatus != model.StatusVerified {
		t.Errorf("unexpected joined row %+v", rows[0])
	}

	counts, err := repo.Dashboard.Counts(ctx, user.ID)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.TotalData != 1 || counts.VerifikasiSelesai != 1 || counts.PendingVerification != 0 {
		t.Errorf("unexpected counts %+v", counts)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Users
// ═══════════════════════════════════════════════════════════

func TestUser_UpsertByEmail(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	email := fmt.Sprintf("upsert%d@sab.id", time.Now().UnixNano())
	defer testDB.Where("email = ?", email).Delete(&model.User{})

	u1, err := repo.User.UpsertByEmail(ctx, email, "First")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	u2, err := repo.User.UpsertByEmail(ctx, email, "Second")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if u1.ID != u2.ID {
		t.Errorf("expected same id, got %d and %d", u1.ID, u2.ID)
	}
	if u2.Name != "Second" || u2.Role != model.RoleUser {
		t.Errorf("unexpected user %+v", u2)
	}

	u3, err := repo.User.UpsertByEmail(ctx, email, "")
	if err != nil {
		t.Fatalf("empty-name upsert: %v", err)
	}
	if u3.Name != "Second" {
		t.Errorf("empty name must not overwrite, got %q", u3.Name)
	}

	clusters, err := repo.Cluster.List(ctx)
	if err != nil || len(clusters) == 0 {
		t.Fatalf("expected seeded clusters, got %d (%v)", len(clusters), err)
	}
}
