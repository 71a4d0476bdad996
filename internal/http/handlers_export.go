package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ecobrain/internal/core"
	"ecobrain/internal/log"
)

const (
	exportSheet = "Transactions"
	csvMIME     = "text/csv; charset=utf-8"
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []string{"Date", "Type", "Category", "Description", "Amount", "Recurring", "Notes"}

func exportRecord(tx core.Transaction, names map[int64]string) []string {
	return []string{
		tx.Date.String(),
		string(tx.Type),
		names[tx.CategoryID],
		tx.Description,
		tx.Amount.String(),
		strconv.FormatBool(tx.IsRecurring),
		tx.Notes,
	}
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(q.Get("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		s.writeError(w, r, core.NewValidationError("format", "must be csv or xlsx"))
		return
	}
	f, err := ParseTransactionFilter(q, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	txs, names, err := s.ledger.ExportTransactions(r.Context(), userIDFrom(r), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Render into a buffer first so a failure can still become a JSON error.
	var buf bytes.Buffer
	mime := csvMIME
	if format == "xlsx" {
		mime = xlsxMIME
		err = writeXLSX(&buf, txs, names)
	} else {
		err = writeCSV(&buf, txs, names)
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("render %s export: %w", format, err))
		return
	}

	filename := fmt.Sprintf("transactions_%s.%s", s.now().Format("20060102"), format)
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).WarnContext(r.Context(), "Export write interrupted",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
	}
}

// writeCSV writes a UTF-8 BOM first so spreadsheet apps detect the encoding.
func writeCSV(w io.Writer, txs []core.Transaction, names map[int64]string) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(exportRecord(tx, names)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, txs []core.Transaction, names map[int64]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	for i, tx := range txs {
		rec := exportRecord(tx, names)
		row := []any{rec[0], rec[1], rec[2], rec[3], tx.Amount.Float64(), tx.IsRecurring, rec[6]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "C", "C", 16)
	_ = f.SetColWidth(exportSheet, "D", "D", 32)
	_ = f.SetColWidth(exportSheet, "G", "G", 32)
	return f.Write(w)
}
