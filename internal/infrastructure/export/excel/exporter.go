package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mkravets/studyassist/internal/core/domain"
)

const sheetName = "Tasks"

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// ExportTasks renders the task list as an xlsx workbook with a single
// Tasks sheet.
func (e *Exporter) ExportTasks(tasks []domain.Task) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Title", "Notes", "Priority", "Status", "Due", "Created"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, task := range tasks {
		due := ""
		if task.DueAt != nil {
			due = task.DueAt.UTC().Format("2006-01-02")
		}
		row := []interface{}{
			task.Title,
			task.Notes,
			string(task.Priority),
			string(task.Status),
			due,
			task.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write task row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
