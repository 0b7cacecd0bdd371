package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
)

func csvBytes(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func newUserCSVService(users *MockUserRepository, maxExportRows int) *CSVService {
	return NewCSVService(users, 1<<20, maxExportRows)
}

func TestCSVService_Import(t *testing.T) {
	ctx := context.Background()
	header := "username,username_kana,email,gender,tel_number,employment_status,privilege,initial_password"

	t.Run("successful import", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindByEmail", ctx, "taro@example.com").Return(nil, shared.ErrNotFound)
		users.On("FindByEmail", ctx, "hanako@example.com").Return(nil, shared.ErrNotFound)
		users.On("SaveAll", ctx, mock.MatchedBy(func(batch []*identity.User) bool {
			if len(batch) != 2 {
				return false
			}
			return batch[0].Email == "taro@example.com" &&
				batch[0].Privilege == identity.PrivilegeEditor &&
				batch[0].VerifyPassword("welcome-aboard1") &&
				batch[1].Email == "hanako@example.com" &&
				batch[1].Privilege == identity.PrivilegeViewer
		})).Return(nil)

		data := csvBytes(
			header,
			"山田 太郎,ヤマダ タロウ,taro@example.com,male,03-1234-5678,active,editor,welcome-aboard1",
			"佐藤 花子,サトウ ハナコ,hanako@example.com,female,,active,viewer,another-pass-22",
		)
		result, err := service.Import(ctx, managerCaller(), "users.csv", data)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Users)
		users.AssertExpectations(t)
	})

	t.Run("localized headers are accepted", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindByEmail", ctx, "taro@example.com").Return(nil, shared.ErrNotFound)
		users.On("SaveAll", ctx, mock.AnythingOfType("[]*identity.User")).Return(nil)

		data := csvBytes(
			"ユーザー名,メールアドレス,権限,初期パスワード",
			"山田 太郎,taro@example.com,editor,welcome-aboard1",
		)
		result, err := service.Import(ctx, managerCaller(), "users.csv", data)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Users)
	})

	t.Run("missing initial password gets a random one", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindByEmail", ctx, "taro@example.com").Return(nil, shared.ErrNotFound)
		users.On("SaveAll", ctx, mock.MatchedBy(func(batch []*identity.User) bool {
			return len(batch) == 1 && batch[0].PasswordHash != ""
		})).Return(nil)

		data := csvBytes(
			"username,email,privilege",
			"山田 太郎,taro@example.com,editor",
		)
		_, err := service.Import(ctx, managerCaller(), "users.csv", data)

		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("manager cannot import system accounts", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		data := csvBytes(
			"username,email,privilege",
			"admin,admin@example.com,system",
		)
		_, err := service.Import(ctx, managerCaller(), "users.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
		assert.Equal(t, "privilege", rowErrs.Errors()[0].Column)
		users.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email within the file", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindByEmail", ctx, "taro@example.com").Return(nil, shared.ErrNotFound)

		data := csvBytes(
			"username,email,privilege",
			"山田 太郎,taro@example.com,editor",
			"山田 太郎,taro@example.com,viewer",
		)
		_, err := service.Import(ctx, managerCaller(), "users.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
		assert.Equal(t, "email", rowErrs.Errors()[0].Column)
		users.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("existing email rejects the row", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindByEmail", ctx, "taro@example.com").Return(testUser(t), nil)

		data := csvBytes(
			"username,email,privilege",
			"山田 太郎,taro@example.com,editor",
		)
		_, err := service.Import(ctx, managerCaller(), "users.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
		assert.Equal(t, "email", rowErrs.Errors()[0].Column)
	})

	t.Run("any bad row rejects the whole file", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindByEmail", ctx, "taro@example.com").Return(nil, shared.ErrNotFound)

		data := csvBytes(
			"username,email,gender,privilege",
			"山田 太郎,taro@example.com,male,editor",
			"佐藤 花子,hanako@example.com,unknown,viewer",
		)
		_, err := service.Import(ctx, managerCaller(), "users.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
		require.Len(t, rowErrs.Errors(), 1)
		assert.Equal(t, "gender", rowErrs.Errors()[0].Column)
		users.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("editor cannot import", func(t *testing.T) {
		service := newUserCSVService(new(MockUserRepository), 100)

		data := csvBytes("username,email,privilege", "山田 太郎,taro@example.com,editor")
		_, err := service.Import(ctx, editorCaller(), "users.csv", data)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestCSVService_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("exports utf-8 csv with bom and no password column", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindAll", ctx, testTenantID, identity.UserFilter{Page: 1, PageSize: 101}).
			Return([]identity.User{*testUser(t)}, int64(1), nil)

		result, err := service.Export(ctx, managerCaller(), UserListFilter{})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.Filename, "user_mst_"))
		assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
		assert.Equal(t, 1, result.RowCount)
		assert.False(t, result.Truncated)

		require.Greater(t, len(result.Data), 3)
		assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, result.Data[:3])
		body := string(result.Data[3:])
		assert.Contains(t, body, "ユーザー名")
		assert.Contains(t, body, "taro@example.com")
		assert.NotContains(t, body, "パスワード")
		assert.NotContains(t, body, "password")
	})

	t.Run("export is truncated at the row cap", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 1)

		u1 := testUser(t)
		u2, err := identity.NewUser(testTenantID, testUserID, "佐藤 花子", "hanako@example.com", "another-pass-22", identity.PrivilegeViewer)
		require.NoError(t, err)

		users.On("FindAll", ctx, testTenantID, identity.UserFilter{Page: 1, PageSize: 2}).
			Return([]identity.User{*u1, *u2}, int64(2), nil)

		result, err := service.Export(ctx, managerCaller(), UserListFilter{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
		assert.True(t, result.Truncated)
	})

	t.Run("editor cannot export", func(t *testing.T) {
		service := newUserCSVService(new(MockUserRepository), 100)

		_, err := service.Export(ctx, editorCaller(), UserListFilter{})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("excel export produces a workbook", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newUserCSVService(users, 100)

		users.On("FindAll", ctx, testTenantID, identity.UserFilter{Page: 1, PageSize: 101}).
			Return([]identity.User{*testUser(t)}, int64(1), nil)

		result, err := service.ExportExcel(ctx, managerCaller(), UserListFilter{})

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.Filename, ".xlsx"))
		require.Greater(t, len(result.Data), 2)
		assert.Equal(t, "PK", string(result.Data[:2]))
	})
}
