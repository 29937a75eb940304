package spreadsheet

import (
	"fmt"
	"strings"
)

// ClientImportPreview summarises a client portfolio file before it is uploaded.
type ClientImportPreview struct {
	HeaderRow   int
	Columns     []string
	Rows        int
	MissingName int
	MissingRUC  int
	Sample      []string
}

const (
	nameHeader = "nombre del cliente"
	rucHeader  = "ruc / dni"
	sampleSize = 5
)

// PreviewClientImport finds the header row among the first rows and counts
// the client rows below it. The name column is required.
func PreviewClientImport(rows [][]string) (ClientImportPreview, error) {
	headerRow := -1
	nameIdx, rucIdx := -1, -1
	for i, row := range rows {
		if i >= 10 {
			break
		}
		for j, cell := range row {
			switch normalizeHeader(cell) {
			case nameHeader:
				nameIdx = j
			case rucHeader, "ruc/dni", "ruc":
				rucIdx = j
			}
		}
		if nameIdx >= 0 {
			headerRow = i
			break
		}
		rucIdx = -1
	}
	if headerRow < 0 {
		return ClientImportPreview{}, fmt.Errorf("falta la columna obligatoria: Nombre del cliente")
	}

	preview := ClientImportPreview{HeaderRow: headerRow}
	for _, header := range rows[headerRow] {
		if h := strings.TrimSpace(header); h != "" {
			preview.Columns = append(preview.Columns, h)
		}
	}
	for _, row := range rows[headerRow+1:] {
		if blank(row) {
			continue
		}
		preview.Rows++
		name := cellValue(row, nameIdx)
		if name == "" {
			preview.MissingName++
			continue
		}
		if cellValue(row, rucIdx) == "" {
			preview.MissingRUC++
		}
		if len(preview.Sample) < sampleSize {
			preview.Sample = append(preview.Sample, name)
		}
	}
	if preview.Rows == preview.MissingName {
		return preview, fmt.Errorf("el archivo no tiene clientes para importar")
	}
	return preview, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
