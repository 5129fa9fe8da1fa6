// Package export writes stored submissions into the class roster workbook.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/mobility/form"
	"mobility-portal/internal/models"
)

// Lister is the read side of the record store.
type Lister interface {
	ListAllSubmissions(ctx context.Context) ([]models.SubmissionMetaDb, error)
}

// Columns are the roster columns the exporter reads and writes.
type Columns struct {
	Email    string
	School1  string
	Details1 string
	School2  string
	Details2 string
}

// ColumnsFromConfig maps the export section of the configuration.
func ColumnsFromConfig(cfg config.ExportConfig) Columns {
	return Columns{
		Email:    cfg.EmailColumn,
		School1:  cfg.Columns.School1,
		Details1: cfg.Columns.Details1,
		School2:  cfg.Columns.School2,
		Details2: cfg.Columns.Details2,
	}
}

// RowResult tells where a record was written. Row is 0 when the roster has
// no student with that email.
type RowResult struct {
	Email string `json:"email"`
	Row   int    `json:"row"`
}

type Report struct {
	Rows    []RowResult `json:"rows"`
	Updated int         `json:"updated"`
	Missing int         `json:"missing"`
}

type Exporter struct {
	sheet   string
	columns Columns
	logger  logger.Logger
}

func NewExporter(sheet string, columns Columns, log logger.Logger) *Exporter {
	return &Exporter{
		sheet:   sheet,
		columns: columns,
		logger:  log.WithFields(map[string]interface{}{"component": "export", "sheet": sheet}),
	}
}

// Details renders the path line followed by one "- elective" line per
// elective.
func Details(c models.SchoolChoice) string {
	line := c.AcademicPath
	if c.CareerPath != "" {
		line += " / " + c.CareerPath
	}
	const sep = "\n- "
	return line + "\n" + sep + strings.Join(form.SplitElectives(c.Electives), sep)
}

// Apply writes records into wb, one at a time, in order.
func (e *Exporter) Apply(wb *excelize.File, records []models.SubmissionMetaDb) (*Report, error) {
	rows, err := e.emailRows(wb)
	if err != nil {
		return nil, err
	}

	report := &Report{Rows: make([]RowResult, 0, len(records))}
	for i, rec := range records {
		row := rows[strings.ToLower(strings.TrimSpace(rec.Email))]
		report.Rows = append(report.Rows, RowResult{Email: rec.Email, Row: row})
		if row == 0 {
			report.Missing++
			e.logger.Warn("student not found in roster", map[string]interface{}{
				"step":  fmt.Sprintf("%d/%d", i+1, len(records)),
				"email": rec.Email,
			})
			continue
		}

		cells := map[string]string{
			e.columns.School1:  string(rec.Choice1.SchoolName),
			e.columns.Details1: Details(rec.Choice1),
			e.columns.School2:  string(rec.Choice2.SchoolName),
			e.columns.Details2: Details(rec.Choice2),
		}
		for col, value := range cells {
			if err := wb.SetCellValue(e.sheet, fmt.Sprintf("%s%d", col, row), value); err != nil {
				return nil, fmt.Errorf("write %s%d: %w", col, row, err)
			}
		}
		report.Updated++
		e.logger.Info("row updated", map[string]interface{}{
			"step":  fmt.Sprintf("%d/%d", i+1, len(records)),
			"email": rec.Email,
			"row":   row,
		})
	}
	return report, nil
}

// emailRows indexes the email column. The first row holding an email wins.
func (e *Exporter) emailRows(wb *excelize.File) (map[string]int, error) {
	col, err := excelize.ColumnNameToNumber(e.columns.Email)
	if err != nil {
		return nil, fmt.Errorf("email column %q: %w", e.columns.Email, err)
	}
	rows, err := wb.GetRows(e.sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", e.sheet, err)
	}

	index := make(map[string]int, len(rows))
	for i, cells := range rows {
		if len(cells) < col {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(cells[col-1]))
		if email == "" {
			continue
		}
		if _, seen := index[email]; !seen {
			index[email] = i + 1
		}
	}
	return index, nil
}

// Run lists every stored submission and writes them into the workbook at
// path. The workbook is saved once, in place when out is empty.
func (e *Exporter) Run(ctx context.Context, store Lister, path, out string) (*Report, error) {
	records, err := store.ListAllSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	e.logger.Info("exporting submissions", map[string]interface{}{"count": len(records), "workbook": path})

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	report, err := e.Apply(wb, records)
	if err != nil {
		return nil, err
	}

	if out == "" {
		err = wb.Save()
	} else {
		err = wb.SaveAs(out)
	}
	if err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return report, nil
}
