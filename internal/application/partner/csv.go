package partner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// partnerColumn pairs the on-file label with the canonical field name.
// Export writes the labels in this order; import accepts either form.
type partnerColumn struct {
	Label string
	Field string
}

var partnerColumns = []partnerColumn{
	{"取引先名称", "partner_name"},
	{"取引先名称（カナ）", "partner_name_kana"},
	{"取引先区分", "partner_type"},
	{"担当者名", "contact_name"},
	{"メールアドレス", "email"},
	{"電話番号", "tel_number"},
	{"郵便番号", "postal_code"},
	{"都道府県", "state"},
	{"市区町村", "city"},
	{"住所", "address"},
	{"住所2", "address2"},
}

var partnerHeaderSpec = csvio.HeaderSpec{
	Aliases:  partnerAliases(),
	Required: []string{"partner_name", "partner_type"},
}

func partnerAliases() map[string]string {
	aliases := make(map[string]string, len(partnerColumns)*2)
	for _, c := range partnerColumns {
		aliases[c.Label] = c.Field
		aliases[c.Field] = c.Field
	}
	return aliases
}

// ImportResult summarizes a successful CSV import
type ImportResult struct {
	Partners int `json:"partners"`
}

// ExportResult carries an export payload and its disposition
type ExportResult struct {
	Filename  string `json:"filename"`
	Data      []byte `json:"-"`
	RowCount  int    `json:"row_count"`
	Truncated bool   `json:"truncated"`
}

// CSVService imports and exports the partner master table
type CSVService struct {
	partners      partner.Repository
	maxFileSize   int64
	maxExportRows int
}

// NewCSVService creates a new partner CSVService
func NewCSVService(partners partner.Repository, maxFileSize int64, maxExportRows int) *CSVService {
	return &CSVService{
		partners:      partners,
		maxFileSize:   maxFileSize,
		maxExportRows: maxExportRows,
	}
}

// Import parses a partner CSV and creates every row it describes.
// Any failing row rejects the whole file.
func (s *CSVService) Import(ctx context.Context, caller identity.Caller, filename string, data []byte) (*ImportResult, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeEditor) {
		return nil, shared.ErrForbidden
	}
	if err := csvio.CheckFile(filename, int64(len(data)), s.maxFileSize); err != nil {
		return nil, err
	}

	reader, err := csvio.NewReader(data, partnerHeaderSpec)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rowErrs := csvio.NewRowErrors(0)
	seen := make(map[string]int, len(rows))
	partners := make([]*partner.Partner, 0, len(rows))
	for _, row := range rows {
		p := s.buildPartner(ctx, caller, row, rowErrs)
		if p == nil {
			continue
		}
		key := p.PartnerName + "\x00" + p.Email
		if prev, dup := seen[key]; dup {
			rowErrs.Add(row.Line, "partner_name", fmt.Sprintf("duplicates row %d", prev))
			continue
		}
		seen[key] = row.Line
		partners = append(partners, p)
	}
	if rowErrs.HasErrors() {
		return nil, rowErrs
	}

	if err := s.partners.SaveAll(ctx, partners); err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrIntegrity
		}
		return nil, err
	}

	logger.L(ctx).Info("partners imported", zap.Int("partners", len(partners)))
	return &ImportResult{Partners: len(partners)}, nil
}

func (s *CSVService) buildPartner(ctx context.Context, caller identity.Caller, row *csvio.Row, rowErrs *csvio.RowErrors) *partner.Partner {
	partnerType, err := partner.ParsePartnerType(row.Get("partner_type"))
	if err != nil {
		rowErrs.Add(row.Line, "partner_type", "must be one of customer, supplier, both")
		return nil
	}

	p, err := partner.NewPartner(caller.TenantID, caller.UserID, row.Get("partner_name"), partnerType)
	if err != nil {
		rowErrs.Add(row.Line, "partner_name", "cannot be empty")
		return nil
	}
	p.SetKana(row.Get("partner_name_kana"))
	if err := p.SetContact(row.Get("contact_name"), row.Get("email"), row.Get("tel_number")); err != nil {
		rowErrs.Add(row.Line, "email", err.Error())
		return nil
	}
	if err := p.SetAddress(row.Get("postal_code"), row.Get("state"), row.Get("city"), row.Get("address"), row.Get("address2")); err != nil {
		rowErrs.Add(row.Line, "postal_code", err.Error())
		return nil
	}

	if _, err := s.partners.FindByNameAndEmail(ctx, caller.TenantID, p.PartnerName, p.Email); err == nil {
		rowErrs.Add(row.Line, "partner_name", "a partner with this name and email already exists")
		return nil
	}
	return p
}

// Export writes the partner master as a UTF-8 CSV with BOM, in kana
// order, with the localized header labels
func (s *CSVService) Export(ctx context.Context, caller identity.Caller, f ListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteCSV(header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("partner_mst", "csv", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

// ExportExcel writes the partner master as an xlsx workbook
func (s *CSVService) ExportExcel(ctx context.Context, caller identity.Caller, f ListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteXLSX("partners", header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("partner_mst", "xlsx", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

func (s *CSVService) exportRows(ctx context.Context, caller identity.Caller, f ListFilter) ([]string, [][]string, bool, error) {
	partners, _, err := s.partners.FindAll(ctx, caller.TenantID, partner.Filter{
		Keyword:     f.Keyword,
		PartnerType: partner.PartnerType(f.PartnerType),
	})
	if err != nil {
		return nil, nil, false, err
	}

	header := make([]string, len(partnerColumns))
	for i, c := range partnerColumns {
		header[i] = c.Label
	}

	truncated := false
	if len(partners) > s.maxExportRows {
		partners = partners[:s.maxExportRows]
		truncated = true
	}

	rows := make([][]string, len(partners))
	for i := range partners {
		p := &partners[i]
		rows[i] = []string{
			p.PartnerName,
			p.PartnerNameKana,
			string(p.PartnerType),
			p.ContactName,
			p.Email,
			p.TelNumber,
			p.PostalCode,
			p.State,
			p.City,
			p.Address,
			p.Address2,
		}
	}
	return header, rows, truncated, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
