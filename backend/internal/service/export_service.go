package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
)

// ── export errors ──

var (
	ErrExportNoData       = errors.New("no cutoff data to export")
	ErrExportGenerateFail = errors.New("failed to generate the Excel file")
)

// ExportService spreadsheet reports.
type ExportService interface {
	// ExportLogs renders cutoff items with reviewer, decision and the rejected
	// option of every category. userID 0 exports everyone.
	ExportLogs(ctx context.Context, userID uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo     *repository.Repository
	clusters ClusterService
	logger   *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, clusters ClusterService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clusters: clusters, logger: logger}
}

var exportFixedHeaders = []string{
	"No", "Resi", "Sekolah", "NPSN", "BAPP", "Starlink ID", "Tanggal Terima",
	"Reviewer", "Status", "Serial Number", "Tanggal BAPP", "Waktu Verifikasi",
}

// ═══════════════════════════════════════════════════════════
// ExportLogs
// ═══════════════════════════════════════════════════════════
//
// One sheet, one row per cutoff item. The category columns hold the nama_opsi of
// the selected defect and stay empty for categories without a defect.

func (s *exportService) ExportLogs(ctx context.Context, userID uint) (*bytes.Buffer, string, error) {
	items, err := s.repo.Cutoff.ListForExport(ctx, userID)
	if err != nil {
		s.logger.Error("load export rows failed", zap.Error(err))
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", ErrExportNoData
	}

	clusters, err := s.clusters.List(ctx)
	if err != nil {
		return nil, "", err
	}
	optionByID := make(map[uint]string, len(clusters))
	for _, c := range clusters {
		optionByID[c.ID] = c.NamaOpsi
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Verifikasi"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	headers := append([]string{}, exportFixedHeaders...)
	for _, cat := range model.ClusterCategories {
		headers = append(headers, cat.MainCluster)
	}
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", colName(len(headers)-1), 20)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, item := range items {
		row := i + 2
		values := []interface{}{
			i + 1,
			item.ResiNumber,
			item.SchoolName,
			item.NPSN,
			item.BappNumber,
			item.StarlinkID,
			formatDate(item.ReceivedDate),
			reviewerName(item.User),
			model.StatusPending,
			"", "", "",
		}
		if item.Log != nil {
			values[8] = item.Log.Status
			values[9] = item.Log.SerialNumber
			values[10] = formatDate(item.Log.TanggalBAPP)
			values[11] = item.Log.CreatedAt.Format("2006-01-02 15:04")
		}
		for _, cat := range model.ClusterCategories {
			option := ""
			if item.Log != nil {
				if ref := item.Log.ClusterRef(cat.Column); ref != nil {
					option = optionByID[*ref]
				}
			}
			values = append(values, option)
		}
		for col, v := range values {
			f.SetCellValue(sheet, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("verifikasi_%s.xlsx", time.Now().Format("20060102_150405"))
	if userID != 0 {
		filename = fmt.Sprintf("verifikasi_user%d_%s.xlsx", userID, time.Now().Format("20060102_150405"))
	}
	return buf, filename, nil
}

func reviewerName(u *model.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// colName converts a 0-based column index to its letter name (0 → A).
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

// cell builds a cell reference like "A1".
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
