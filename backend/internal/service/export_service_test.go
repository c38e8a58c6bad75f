package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
)

func setupTestExportService() (ExportService, *mockStore) {
	store := newMockStore()
	store.clusters = testClusters()
	repo := store.repository()
	logger := zap.NewNop()
	return NewExportService(repo, NewClusterService(repo, nil, time.Minute, logger), logger), store
}

func TestExportService_ExportLogs_NoData(t *testing.T) {
	svc, _ := setupTestExportService()
	if _, _, err := svc.ExportLogs(context.Background(), 0); !errors.Is(err, ErrExportNoData) {
		t.Errorf("expected ErrExportNoData, got %v", err)
	}
}

func TestExportService_ExportLogs(t *testing.T) {
	svc, store := setupTestExportService()
	u := store.addUser("a@sab.id", "Budi", model.RoleUser)
	c1 := store.addCutoff(u.ID, "R1")
	store.addCutoff(u.ID, "R2")

	l := store.addLog(c1.ID, u.ID, model.StatusRejected)
	l.SetClusterRef("serial_number_bapp", 3)

	buf, filename, err := svc.ExportLogs(context.Background(), 0)
	if err != nil {
		t.Fatalf("ExportLogs failed: %v", err)
	}
	if filename == "" {
		t.Error("expected a filename")
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Verifikasi")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	wantCols := len(exportFixedHeaders) + len(model.ClusterCategories)
	if len(rows[0]) != wantCols {
		t.Errorf("expected %d header columns, got %d", wantCols, len(rows[0]))
	}

	row := rows[1]
	if row[1] != "R1" || row[7] != "Budi" || row[8] != model.StatusRejected {
		t.Errorf("unexpected first row %v", row)
	}
	// Serial Number BAPP is the sixth category column
	snCol := len(exportFixedHeaders) + 5
	if row[snCol] != "Serial number BAPP tidak sesuai dengan SN Web" {
		t.Errorf("expected nama_opsi in the category column, got %q", row[snCol])
	}
	if rows[2][8] != model.StatusPending {
		t.Errorf("expected the unlogged row to be PENDING, got %v", rows[2])
	}
}

func TestExportService_ExportLogs_PerUser(t *testing.T) {
	svc, store := setupTestExportService()
	a := store.addUser("a@sab.id", "A", model.RoleUser)
	b := store.addUser("b@sab.id", "B", model.RoleUser)
	store.addCutoff(a.ID, "R1")

	if _, _, err := svc.ExportLogs(context.Background(), b.ID); !errors.Is(err, ErrExportNoData) {
		t.Errorf("expected ErrExportNoData for a user without items, got %v", err)
	}
	if _, _, err := svc.ExportLogs(context.Background(), a.ID); err != nil {
		t.Errorf("ExportLogs failed: %v", err)
	}
}

func TestColName(t *testing.T) {
	if colName(0) != "A" || colName(25) != "Z" || colName(26) != "AA" {
		t.Errorf("unexpected column names %s %s %s", colName(0), colName(25), colName(26))
	}
}
