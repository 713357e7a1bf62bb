package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/internal/fields"
	"github.com/dianabombi/student-advisor-sub000/internal/repository"
)

// Service produces XLSX bytes summarizing completed jobs and their
// extracted fields.
type Service struct {
	jobs   *repository.JobRepository
	files  *repository.FileRepository
	logger *slog.Logger
}

func NewService(jobs *repository.JobRepository, files *repository.FileRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, files: files, logger: logger}
}

// ExportCompletedXLSX returns an XLSX workbook with one row per completed
// job: file, document type, confidence and a flattened view of the
// extracted fields.
func (s *Service) ExportCompletedXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobs.ListByStatus(ctx, constants.JobStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Finished At",
		"File",
		"Document Type",
		"Confidence",
		"Low Confidence",
		"Extracted Fields",
		"Source Path",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, j := range jobs {
		filename, sourcePath := "", ""
		if fileRow, err := s.files.GetByID(ctx, j.FileID); err == nil {
			filename = fileRow.Filename
			sourcePath = fileRow.SourcePath
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if j.FinishedAt != nil {
			write(1, j.FinishedAt.Format("2006-01-02 15:04"))
		} else {
			write(1, "")
		}
		write(2, filename)
		if j.DocumentType != nil {
			write(3, *j.DocumentType)
		}
		if j.Confidence != nil {
			write(4, fmt.Sprintf("%.2f", *j.Confidence))
		}
		write(5, j.LowConfidence)
		write(6, truncate(flattenFields(j.ExtractedJSON), 500))
		write(7, sourcePath)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // finished
	_ = f.SetColWidth(sheet, "B", "B", 32) // file
	_ = f.SetColWidth(sheet, "C", "C", 20) // type
	_ = f.SetColWidth(sheet, "D", "E", 12) // confidence flags
	_ = f.SetColWidth(sheet, "F", "F", 64) // fields
	_ = f.SetColWidth(sheet, "G", "G", 60) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// flattenFields renders the first value of every extracted field as
// "name=value; ...", sorted by name for stable output.
func flattenFields(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var res fields.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return ""
	}
	names := make([]string, 0, len(res.Fields))
	for name := range res.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		ms := res.Fields[name]
		if len(ms) == 0 {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += name + "=" + ms[0].Value
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
