package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/fleveque/company-enricher/internal/model"
)

// writeWorkbook saves rows to the first sheet of a new workbook in a temp dir.
func writeWorkbook(t *testing.T, name string, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

func TestReadCompanies(t *testing.T) {
	input := "\ufeffCompany Name, company region ,Company Domain,Notes\n" +
		"Apple Inc,North America,apple.com,x\n" +
		"\n" +
		",,,\n" +
		"  Acme  ,EU\n"

	got, err := ReadCompanies(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.CompanyInput{
		{Name: "Apple Inc", Region: "North America", Domain: "apple.com"},
		{Name: "Acme", Region: "EU", Domain: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadCompanies_MissingColumns(t *testing.T) {
	_, err := ReadCompanies(strings.NewReader("Company Name,Website\nAcme,acme.com\n"))
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Company Region") || !strings.Contains(err.Error(), "Company Domain") {
		t.Errorf("expected both missing columns named, got %q", err.Error())
	}
}

func TestReadCompanies_Empty(t *testing.T) {
	if _, err := ReadCompanies(strings.NewReader("")); !model.IsValidation(err) {
		t.Errorf("expected validation error for empty input, got %v", err)
	}
}

func TestReadContacts_Aliases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.ContactInput
	}{
		{
			name:  "canonical",
			input: "contact_name,company_name\nJane Doe,Acme\n",
			want:  model.ContactInput{ContactName: "Jane Doe", CompanyName: "Acme"},
		},
		{
			name:  "linkedin export",
			input: "Full Name,Current Company,Company Domain\nJane Doe,Acme,acme.com\n",
			want:  model.ContactInput{ContactName: "Jane Doe", CompanyName: "Acme", CompanyDomain: "acme.com"},
		},
		{
			name:  "spreadsheet headers",
			input: "Contact Name,Company Name\nJane Doe,Acme\n",
			want:  model.ContactInput{ContactName: "Jane Doe", CompanyName: "Acme"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadContacts(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadContacts_MissingColumns(t *testing.T) {
	_, err := ReadContacts(strings.NewReader("name,firm\na,b\n"))
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadCompaniesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	if err := os.WriteFile(path, []byte("Company Name,Company Region,Company Domain\nAcme,US,acme.com\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCompaniesFile(path)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one row, got %+v (%v)", got, err)
	}

	if _, err := ReadCompaniesFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadCompaniesFile_XLSX(t *testing.T) {
	path := writeWorkbook(t, "companies.xlsx",
		[]any{"Company Name", " company region ", "Company Domain"},
		[]any{"Acme", "US", "acme.com"},
		[]any{},
		[]any{"Globex", "EU"},
	)

	got, err := ReadCompaniesFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.CompanyInput{
		{Name: "Acme", Region: "US", Domain: "acme.com"},
		{Name: "Globex", Region: "EU"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadContactsFile_XLSX(t *testing.T) {
	path := writeWorkbook(t, "contacts.XLSX",
		[]any{"Full Name", "Current Company"},
		[]any{"Jane Doe", "Acme"},
	)

	got, err := ReadContactsFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.ContactInput{ContactName: "Jane Doe", CompanyName: "Acme"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReadCompaniesFile_XLSXMissingColumns(t *testing.T) {
	path := writeWorkbook(t, "companies.xlsx", []any{"Company Name", "Website"})

	if _, err := ReadCompaniesFile(path); !model.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestReadCompaniesFile_XLSXEmpty(t *testing.T) {
	path := writeWorkbook(t, "empty.xlsx")

	if _, err := ReadCompaniesFile(path); !model.IsValidation(err) {
		t.Errorf("expected validation error for an empty workbook, got %v", err)
	}
}
