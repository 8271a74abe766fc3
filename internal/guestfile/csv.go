// Package guestfile reads and writes guest lists and match results as CSV.
// Output carries a UTF-8 BOM so spreadsheet tools render Persian text
// correctly.
package guestfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"guestmatch/internal/matching"
	"guestmatch/internal/service"
)

const utf8BOM = "\uFEFF"

// Column headers recognized on import. The first two are mandatory.
const (
	colFirstName    = "first_name"
	colLastName     = "last_name"
	colID           = "id"
	colOrganization = "organization"
	colOrgType      = "organization_type"
	colBankTitle    = "bank_title"
	colPost         = "post"
	colCompany      = "company_title"
	colHolding      = "holding_title"
	colMobile       = "mobile_number"
	colIsHead       = "is_head"
)

// ReadRecords loads guest records from a CSV file with a header row.
// first_name and last_name columns are mandatory; every other column is
// optional and defaults to empty.
func ReadRecords(path string) ([]matching.GuestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open guest file: %w", err)
	}
	defer f.Close()

	return readRecords(f)
}

// ReadRecordsFrom parses guest records from an already-open CSV stream, such
// as an uploaded file.
func ReadRecordsFrom(r io.Reader) ([]matching.GuestRecord, error) {
	return readRecords(r)
}

func readRecords(r io.Reader) ([]matching.GuestRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("guest file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := cols[colFirstName]; !ok {
		return nil, fmt.Errorf("guest file is missing mandatory column %q", colFirstName)
	}
	if _, ok := cols[colLastName]; !ok {
		return nil, fmt.Errorf("guest file is missing mandatory column %q", colLastName)
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var records []matching.GuestRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		line++

		rec := matching.GuestRecord{
			ID:               field(row, colID),
			FirstName:        field(row, colFirstName),
			LastName:         field(row, colLastName),
			Organization:     field(row, colOrganization),
			OrganizationType: field(row, colOrgType),
			BankTitle:        field(row, colBankTitle),
			Post:             field(row, colPost),
			CompanyTitle:     field(row, colCompany),
			HoldingTitle:     field(row, colHolding),
			MobileNumber:     field(row, colMobile),
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(line - 1)
		}
		if raw := field(row, colIsHead); raw != "" {
			if v, err := strconv.ParseBool(raw); err == nil {
				rec.IsHead = &v
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// WriteRecords writes guest records back out as CSV.
func WriteRecords(path string, records []matching.GuestRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create guest file: %w", err)
	}
	defer f.Close()

	return writeRecords(f, records)
}

func writeRecords(w io.Writer, records []matching.GuestRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	header := []string{
		colID, colFirstName, colLastName, colOrganization, colOrgType,
		colBankTitle, colPost, colCompany, colHolding, colMobile, colIsHead,
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		isHead := ""
		if rec.IsHead != nil {
			isHead = strconv.FormatBool(*rec.IsHead)
		}
		row := []string{
			rec.ID, rec.FirstName, rec.LastName, rec.Organization,
			rec.OrganizationType, rec.BankTitle, rec.Post, rec.CompanyTitle,
			rec.HoldingTitle, rec.MobileNumber, isHead,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteResults writes match rows as CSV, one similar pair per row with the
// score expressed as a percentage.
func WriteResults(path string, rows []service.MatchRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	return writeResults(f, rows)
}

// WriteResultsTo streams match rows as CSV to w, such as an HTTP response.
func WriteResultsTo(w io.Writer, rows []service.MatchRow) error {
	return writeResults(w, rows)
}

func writeResults(w io.Writer, rows []service.MatchRow) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	header := []string{
		"name1", "post1", "organization1", "org_type1", "company1", "holding1", "phone1",
		"name2", "post2", "organization2", "org_type2", "company2", "holding2", "phone2",
		"percentage", "exact_match",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Name1, row.Post1, row.Organization1, row.OrgType1, row.Company1, row.Holding1, row.Phone1,
			row.Name2, row.Post2, row.Organization2, row.OrgType2, row.Company2, row.Holding2, row.Phone2,
			strconv.FormatFloat(row.Percentage, 'f', 1, 64),
			strconv.FormatBool(row.ExactMatch),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write result row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
