package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
)

// userColumn pairs the on-file label with the canonical field name.
// Export writes the labels in this order; import accepts either form.
type userColumn struct {
	Label string
	Field string
}

var userColumns = []userColumn{
	{"ユーザー名", "username"},
	{"ユーザー名（カナ）", "username_kana"},
	{"メールアドレス", "email"},
	{"性別", "gender"},
	{"電話番号", "tel_number"},
	{"在籍区分", "employment_status"},
	{"権限", "privilege"},
}

// initialPasswordField is accepted on import only and never exported
const initialPasswordField = "initial_password"

var userHeaderSpec = csvio.HeaderSpec{
	Aliases:  userAliases(),
	Required: []string{"username", "email", "privilege"},
}

func userAliases() map[string]string {
	aliases := make(map[string]string, len(userColumns)*2+2)
	for _, c := range userColumns {
		aliases[c.Label] = c.Field
		aliases[c.Field] = c.Field
	}
	aliases["初期パスワード"] = initialPasswordField
	aliases[initialPasswordField] = initialPasswordField
	return aliases
}

// ImportResult summarizes a successful CSV import
type ImportResult struct {
	Users int `json:"users"`
}

// ExportResult carries an export payload and its disposition
type ExportResult struct {
	Filename  string `json:"filename"`
	Data      []byte `json:"-"`
	RowCount  int    `json:"row_count"`
	Truncated bool   `json:"truncated"`
}

// CSVService imports and exports the user master table
type CSVService struct {
	users         identity.UserRepository
	maxFileSize   int64
	maxExportRows int
}

// NewCSVService creates a new user CSVService
func NewCSVService(users identity.UserRepository, maxFileSize int64, maxExportRows int) *CSVService {
	return &CSVService{
		users:         users,
		maxFileSize:   maxFileSize,
		maxExportRows: maxExportRows,
	}
}

// Import parses a user CSV and creates every row it describes.
// Rows without an initial password get a random one; those accounts
// cannot log in until a manager sets a real password.
// Any failing row rejects the whole file.
func (s *CSVService) Import(ctx context.Context, caller identity.Caller, filename string, data []byte) (*ImportResult, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return nil, shared.ErrForbidden
	}
	if err := csvio.CheckFile(filename, int64(len(data)), s.maxFileSize); err != nil {
		return nil, err
	}

	reader, err := csvio.NewReader(data, userHeaderSpec)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rowErrs := csvio.NewRowErrors(0)
	seen := make(map[string]int, len(rows))
	users := make([]*identity.User, 0, len(rows))
	for _, row := range rows {
		u := s.buildUser(ctx, caller, row, rowErrs)
		if u == nil {
			continue
		}
		if prev, dup := seen[u.Email]; dup {
			rowErrs.Add(row.Line, "email", fmt.Sprintf("duplicates row %d", prev))
			continue
		}
		seen[u.Email] = row.Line
		users = append(users, u)
	}
	if rowErrs.HasErrors() {
		return nil, rowErrs
	}

	if err := s.users.SaveAll(ctx, users); err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrIntegrity
		}
		return nil, err
	}

	logger.L(ctx).Info("users imported", zap.Int("users", len(users)))
	return &ImportResult{Users: len(users)}, nil
}

func (s *CSVService) buildUser(ctx context.Context, caller identity.Caller, row *csvio.Row, rowErrs *csvio.RowErrors) *identity.User {
	privilege := identity.Privilege(row.Get("privilege"))
	if !privilege.IsValid() {
		rowErrs.Add(row.Line, "privilege", "must be one of system, manager, editor, viewer")
		return nil
	}
	if privilege == identity.PrivilegeSystem && caller.Privilege != identity.PrivilegeSystem {
		rowErrs.Add(row.Line, "privilege", "only a system account may create system users")
		return nil
	}

	password := row.Get(initialPasswordField)
	if password == "" {
		password = randomPassword()
	}

	u, err := identity.NewUser(caller.TenantID, caller.UserID, row.Get("username"), row.Get("email"), password, privilege)
	if err != nil {
		rowErrs.Add(row.Line, "username", err.Error())
		return nil
	}
	u.UsernameKana = row.Get("username_kana")
	if err := u.SetGender(identity.Gender(row.Get("gender"))); err != nil {
		rowErrs.Add(row.Line, "gender", "must be one of male, female, other")
		return nil
	}
	if err := u.SetTelNumber(row.Get("tel_number")); err != nil {
		rowErrs.Add(row.Line, "tel_number", "may only contain digits and hyphens")
		return nil
	}
	if status := row.Get("employment_status"); status != "" {
		if err := u.SetEmployment(identity.EmploymentStatus(status), nil); err != nil {
			rowErrs.Add(row.Line, "employment_status", "must be one of active, on_leave, retired")
			return nil
		}
	}

	if _, err := s.users.FindByEmail(ctx, u.Email); err == nil {
		rowErrs.Add(row.Line, "email", "a user with this email already exists")
		return nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		rowErrs.Add(row.Line, "email", err.Error())
		return nil
	}
	return u
}

// Export writes the user master as a UTF-8 CSV with BOM, with the
// localized header labels. Password hashes never leave the database.
func (s *CSVService) Export(ctx context.Context, caller identity.Caller, f UserListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteCSV(header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("user_mst", "csv", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

// ExportExcel writes the user master as an xlsx workbook
func (s *CSVService) ExportExcel(ctx context.Context, caller identity.Caller, f UserListFilter) (*ExportResult, error) {
	header, rows, truncated, err := s.exportRows(ctx, caller, f)
	if err != nil {
		return nil, err
	}
	data, err := csvio.WriteXLSX("users", header, rows)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:  csvio.ExportFilename("user_mst", "xlsx", time.Now()),
		Data:      data,
		RowCount:  len(rows),
		Truncated: truncated,
	}, nil
}

func (s *CSVService) exportRows(ctx context.Context, caller identity.Caller, f UserListFilter) ([]string, [][]string, bool, error) {
	if !caller.Privilege.AtLeast(identity.PrivilegeManager) {
		return nil, nil, false, shared.ErrForbidden
	}

	users, _, err := s.users.FindAll(ctx, caller.TenantID, identity.UserFilter{
		Keyword:  f.Keyword,
		Page:     1,
		PageSize: s.maxExportRows + 1,
	})
	if err != nil {
		return nil, nil, false, err
	}

	header := make([]string, len(userColumns))
	for i, c := range userColumns {
		header[i] = c.Label
	}

	truncated := false
	if len(users) > s.maxExportRows {
		users = users[:s.maxExportRows]
		truncated = true
	}

	rows := make([][]string, len(users))
	for i := range users {
		u := &users[i]
		rows[i] = []string{
			u.Username,
			u.UsernameKana,
			u.Email,
			string(u.Gender),
			u.TelNumber,
			string(u.EmploymentStatus),
			u.Privilege.String(),
		}
	}
	return header, rows, truncated, nil
}

func randomPassword() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
