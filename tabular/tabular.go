// Package tabular đọc / ghi dữ liệu dạng bảng (xlsx, csv) cho chức năng
// nhập và xuất danh sách. Cột được tra theo tên header đã chuẩn hoá
// (bỏ khoảng trắng thừa, chữ thường) nên thứ tự cột trong file không
// quan trọng.
package tabular

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/caobathien/Church/apperrors"
)

// Record là một dòng dữ liệu, tra theo header chuẩn hoá.
type Record map[string]string

// Get trả về giá trị cột (đã trim); không có cột thì trả "".
func (r Record) Get(header string) string {
	return strings.TrimSpace(r[NormalizeHeader(header)])
}

type Rows struct {
	Headers []string // header gốc, theo thứ tự trong file
	Records []Record
}

func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// Parse đọc file theo đuôi tên: .xlsx hoặc .csv.
func Parse(filename string, r io.Reader) (*Rows, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return parseXLSX(r)
	case ".csv":
		return parseCSV(r)
	default:
		return nil, apperrors.NewValidation("file", "Chỉ hỗ trợ file .xlsx hoặc .csv.")
	}
}

func fromCells(cells [][]string) *Rows {
	if len(cells) == 0 {
		return &Rows{}
	}
	headers := cells[0]
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = NormalizeHeader(h)
	}

	out := &Rows{Headers: headers}
	for _, row := range cells[1:] {
		rec := Record{}
		empty := true
		for i, key := range keys {
			if key == "" || i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				empty = false
			}
			rec[key] = v
		}
		if !empty {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

func parseCSV(r io.Reader) (*Rows, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cells, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidation("file", "Không đọc được file CSV.")
	}
	return fromCells(cells), nil
}

func parseXLSX(r io.Reader) (*Rows, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidation("file", "Không đọc được file Excel.")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Rows{}, nil
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewValidation("file", "Không đọc được file Excel.")
	}
	return fromCells(cells), nil
}

// WriteXLSX ghi một sheet với dòng header + các dòng dữ liệu.
func WriteXLSX(w io.Writer, sheet string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheet)
	all := append([][]string{headers}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		data := make([]interface{}, len(row))
		for j, v := range row {
			data[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &data); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// WriteCSV ghi header + các dòng dữ liệu.
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
