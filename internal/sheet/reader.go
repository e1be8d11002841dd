// Package sheet reads input rows from CSV or Excel files and renders batch
// results as CSV, JSON and plain-text summaries.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fleveque/company-enricher/internal/model"
)

// Input column names. Matching is case-insensitive and ignores surrounding
// whitespace.
const (
	ColCompanyName   = "Company Name"
	ColCompanyRegion = "Company Region"
	ColCompanyDomain = "Company Domain"
	ColContactName   = "contact_name"
	ColContactFirm   = "company_name"
)

// Alternate headers accepted for contact sheets (LinkedIn/CRM exports).
var contactAliases = map[string][]string{
	ColContactName: {"full name", "contact name"},
	ColContactFirm: {"current company", "company name"},
}

// header maps normalized column names to their index.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff") // BOM from spreadsheet exports
		}
		key := normalize(c)
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// index finds a column by name or any of its aliases.
func (h header) index(name string, aliases ...string) (int, bool) {
	if i, ok := h[normalize(name)]; ok {
		return i, true
	}
	for _, a := range aliases {
		if i, ok := h[normalize(a)]; ok {
			return i, true
		}
	}
	return 0, false
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// readCSV parses CSV data into raw records, header first.
func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows from hand-edited sheets
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			if len(records) == 0 {
				return nil, fmt.Errorf("reading header: %w", err)
			}
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		records = append(records, rec)
	}
}

// readXLSX returns the rows of the first worksheet in an Excel workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// splitRecords separates the header from the non-blank data rows.
func splitRecords(records [][]string) (header, [][]string, error) {
	if len(records) == 0 {
		return nil, nil, &model.ValidationError{Field: "input", Message: "file is empty"}
	}
	var rows [][]string
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return newHeader(records[0]), rows, nil
}

// readFileRecords loads a .xlsx workbook or, for any other extension, a CSV file.
func readFileRecords(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readCSV(f)
}

func missingColumns(missing []string) error {
	return &model.ValidationError{
		Field:   "input",
		Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
	}
}

// ReadCompanies parses a company sheet. Company Name, Company Region and
// Company Domain columns are required; cell values may be empty and are
// validated per row later.
func ReadCompanies(r io.Reader) ([]model.CompanyInput, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return companiesFromRecords(records)
}

func companiesFromRecords(records [][]string) ([]model.CompanyInput, error) {
	h, rows, err := splitRecords(records)
	if err != nil {
		return nil, err
	}

	var missing []string
	idx := make(map[string]int, 3)
	for _, col := range []string{ColCompanyName, ColCompanyRegion, ColCompanyDomain} {
		i, ok := h.index(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing)
	}

	companies := make([]model.CompanyInput, 0, len(rows))
	for _, rec := range rows {
		companies = append(companies, model.CompanyInput{
			Name:   cell(rec, idx[ColCompanyName]),
			Region: cell(rec, idx[ColCompanyRegion]),
			Domain: cell(rec, idx[ColCompanyDomain]),
		})
	}
	return companies, nil
}

// ReadContacts parses a contact sheet. A contact name and a company column
// are required (see contactAliases); Company Domain is optional.
func ReadContacts(r io.Reader) ([]model.ContactInput, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return contactsFromRecords(records)
}

func contactsFromRecords(records [][]string) ([]model.ContactInput, error) {
	h, rows, err := splitRecords(records)
	if err != nil {
		return nil, err
	}

	nameIdx, okName := h.index(ColContactName, contactAliases[ColContactName]...)
	firmIdx, okFirm := h.index(ColContactFirm, contactAliases[ColContactFirm]...)
	var missing []string
	if !okName {
		missing = append(missing, ColContactName)
	}
	if !okFirm {
		missing = append(missing, ColContactFirm)
	}
	if len(missing) > 0 {
		return nil, missingColumns(missing)
	}

	domainIdx, okDomain := h.index(ColCompanyDomain, "company_domain")
	if !okDomain {
		domainIdx = -1
	}

	contacts := make([]model.ContactInput, 0, len(rows))
	for _, rec := range rows {
		contacts = append(contacts, model.ContactInput{
			ContactName:   cell(rec, nameIdx),
			CompanyName:   cell(rec, firmIdx),
			CompanyDomain: cell(rec, domainIdx),
		})
	}
	return contacts, nil
}

// ReadCompaniesFile reads a company sheet from a CSV file or the first
// worksheet of an .xlsx workbook.
func ReadCompaniesFile(path string) ([]model.CompanyInput, error) {
	records, err := readFileRecords(path)
	if err != nil {
		return nil, err
	}
	return companiesFromRecords(records)
}

// ReadContactsFile reads a contact sheet from a CSV file or the first
// worksheet of an .xlsx workbook.
func ReadContactsFile(path string) ([]model.ContactInput, error) {
	records, err := readFileRecords(path)
	if err != nil {
		return nil, err
	}
	return contactsFromRecords(records)
}
