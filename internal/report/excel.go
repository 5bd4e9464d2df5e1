package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jacekopitek-cloud/gymfix/internal/domain/jobs"
	"github.com/jacekopitek-cloud/gymfix/internal/domain/parts"
)

// Inventory renders the whole catalog as an .xlsx workbook.
func Inventory(catalog []parts.Part) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"sku", "name", "category", "type", "quantity", "min_level", "price", "location"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, p := range catalog {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		values := []interface{}{
			p.SKU, p.Name, string(p.Category), string(p.Type),
			p.Quantity, p.MinLevel, p.Price.StringFixed(2), p.Location,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// Picklist renders a job's staged parts as a printable pick sheet.
// resolve maps a part id to its catalog entry; unknown ids are listed by
// id so warehouse staff still see the line.
func Picklist(job jobs.ServiceJob, resolve func(id string) (parts.Part, bool)) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	title := []interface{}{fmt.Sprintf("Picklist — %s / %s", job.ClientName, job.MachineModel)}
	if err := f.SetSheetRow(sheet, "A1", &title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	header := []interface{}{"sku", "name", "location", "quantity"}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 4
	for _, line := range job.Picklist {
		values := []interface{}{line.PartID, line.PartID, "", line.Quantity}
		if p, ok := resolve(line.PartID); ok {
			values = []interface{}{p.SKU, p.Name, p.Location, line.Quantity}
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
