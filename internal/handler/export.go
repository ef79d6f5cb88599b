package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Jacket-69/Necronomics/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler writes transaction exports as CSV or XLSX downloads.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

type exportRow struct {
	Date          string
	Type          string
	AccountName   string
	CategoryName  string
	Amount        int64
	CurrencyCode  string
	DecimalPlaces int
	Description   string
	Notes         string
}

func (h *ExportHandler) exportRows() ([]exportRow, error) {
	var rows []exportRow
	err := h.DB.Raw(
		`SELECT t.date AS date, t.type AS type, a.name AS account_name,
		        c.name AS category_name, t.amount AS amount,
		        cur.code AS currency_code, cur.decimal_places AS decimal_places,
		        t.description AS description, COALESCE(t.notes, '') AS notes
		 FROM transactions t
		 JOIN accounts a ON t.account_id = a.id
		 JOIN categories c ON t.category_id = c.id
		 JOIN currencies cur ON a.currency_id = cur.id
		 ORDER BY t.date DESC, t.created_at DESC`,
	).Scan(&rows).Error
	return rows, err
}

// formatAmount renders a minor-unit amount in major units for the given
// currency, e.g. 150000 CLP -> "150000", 12345 USD -> "123.45".
func formatAmount(amount int64, decimalPlaces int) string {
	if decimalPlaces <= 0 {
		return strconv.FormatInt(amount, 10)
	}
	divisor := int64(1)
	for i := 0; i < decimalPlaces; i++ {
		divisor *= 10
	}
	return strconv.FormatFloat(float64(amount)/float64(divisor), 'f', decimalPlaces, 64)
}

var exportHeaders = []string{"Fecha", "Tipo", "Cuenta", "Categoría", "Monto", "Moneda", "Descripción", "Notas"}

func exportTypeText(t string) string {
	if t == "income" {
		return "Ingreso"
	}
	return "Gasto"
}

// ExportCSV streams all transactions as CSV, newest first.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, err := h.exportRows()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick up accented characters
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			r.Date,
			exportTypeText(r.Type),
			r.AccountName,
			r.CategoryName,
			formatAmount(r.Amount, r.DecimalPlaces),
			r.CurrencyCode,
			r.Description,
			r.Notes,
		})
	}
}

// ExportXLSX writes all transactions to a single-sheet workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, err := h.exportRows()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	f := excelize.NewFile()
	sheetName := "Transacciones"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create worksheet")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), exportTypeText(r.Type))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.AccountName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.CategoryName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), formatAmount(r.Amount, r.DecimalPlaces))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.CurrencyCode)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.Notes)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "D", 18)
	f.SetColWidth(sheetName, "E", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 30)
	f.SetColWidth(sheetName, "H", "H", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
	}
}
