package partner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
	csvio "github.com/salesdesk/backend/internal/infrastructure/csv"
)

func csvBytes(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestCSVService_Import(t *testing.T) {
	header := "partner_name,partner_name_kana,partner_type,contact_name,email,tel_number"

	t.Run("import partners successfully", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()

		repo.On("FindByNameAndEmail", ctx, testTenantID, mock.Anything, mock.Anything).
			Return(nil, shared.ErrNotFound)
		repo.On("SaveAll", ctx, mock.MatchedBy(func(partners []*partner.Partner) bool {
			return len(partners) == 2 &&
				partners[0].PartnerName == "Acme Trading" &&
				partners[1].PartnerType == partner.PartnerTypeSupplier
		})).Return(nil)

		data := csvBytes(
			header,
			"Acme Trading,アクメショウジ,customer,Sato,buyer@example.com,03-1234-5678",
			"Parts Direct,,supplier,,sales@parts.example.com,",
		)
		result, err := service.Import(ctx, editorCaller(), "partners.csv", data)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Partners)
		repo.AssertExpectations(t)
	})

	t.Run("localized headers round-trip from export", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()

		repo.On("FindByNameAndEmail", ctx, testTenantID, mock.Anything, mock.Anything).
			Return(nil, shared.ErrNotFound)
		repo.On("SaveAll", ctx, mock.Anything).Return(nil)

		data := csvBytes(
			"取引先名称,取引先区分,メールアドレス",
			"Acme Trading,customer,buyer@example.com",
		)
		result, err := service.Import(ctx, editorCaller(), "partners.csv", data)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Partners)
	})

	t.Run("in-file duplicates are rejected", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()

		repo.On("FindByNameAndEmail", ctx, testTenantID, mock.Anything, mock.Anything).
			Return(nil, shared.ErrNotFound)

		data := csvBytes(
			header,
			"Acme Trading,,customer,,buyer@example.com,",
			"Acme Trading,,customer,,buyer@example.com,",
		)
		_, err := service.Import(ctx, editorCaller(), "partners.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
		assert.Equal(t, "partner_name", rowErrs.Errors()[0].Column)
		repo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("existing partner fails the row", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()
		existing := testPartner(t)

		repo.On("FindByNameAndEmail", ctx, testTenantID, "Acme Trading", "buyer@example.com").
			Return(existing, nil)

		data := csvBytes(
			header,
			"Acme Trading,,customer,,buyer@example.com,",
		)
		_, err := service.Import(ctx, editorCaller(), "partners.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
	})

	t.Run("bad partner type fails the row", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)

		data := csvBytes(
			header,
			"Acme Trading,,wholesaler,,buyer@example.com,",
		)
		_, err := service.Import(context.Background(), editorCaller(), "partners.csv", data)

		var rowErrs *csvio.RowErrors
		require.ErrorAs(t, err, &rowErrs)
		assert.Equal(t, "partner_type", rowErrs.Errors()[0].Column)
	})

	t.Run("viewer cannot import", func(t *testing.T) {
		service := NewCSVService(new(MockPartnerRepository), 1<<20, 100)

		_, err := service.Import(context.Background(), viewerCaller(), "partners.csv", csvBytes(header))

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("database uniqueness violation maps to integrity", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()

		repo.On("FindByNameAndEmail", ctx, testTenantID, mock.Anything, mock.Anything).
			Return(nil, shared.ErrNotFound)
		repo.On("SaveAll", ctx, mock.Anything).
			Return(errors.New(`duplicate key value violates unique constraint "idx_partner_tenant_name_email"`))

		data := csvBytes(
			header,
			"Acme Trading,,customer,,buyer@example.com,",
		)
		_, err := service.Import(ctx, editorCaller(), "partners.csv", data)

		assert.ErrorIs(t, err, shared.ErrIntegrity)
	})
}

func TestCSVService_Export(t *testing.T) {
	t.Run("export writes localized headers", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()
		p := testPartner(t)

		repo.On("FindAll", ctx, testTenantID, mock.Anything).
			Return([]partner.Partner{*p}, int64(1), nil)

		result, err := service.Export(ctx, viewerCaller(), ListFilter{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
		assert.True(t, strings.HasPrefix(result.Filename, "partner_mst_"))
		assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
		body := string(result.Data)
		assert.Contains(t, body, "取引先名称")
		assert.Contains(t, body, "Acme Trading")
	})

	t.Run("rows beyond the cap are cut", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 1)
		ctx := context.Background()
		p1 := testPartner(t)
		p2 := testPartner(t)

		repo.On("FindAll", ctx, testTenantID, mock.Anything).
			Return([]partner.Partner{*p1, *p2}, int64(2), nil)

		result, err := service.Export(ctx, viewerCaller(), ListFilter{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.RowCount)
		assert.True(t, result.Truncated)
	})

	t.Run("excel export produces a workbook", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		service := NewCSVService(repo, 1<<20, 100)
		ctx := context.Background()
		p := testPartner(t)

		repo.On("FindAll", ctx, testTenantID, mock.Anything).
			Return([]partner.Partner{*p}, int64(1), nil)

		result, err := service.ExportExcel(ctx, viewerCaller(), ListFilter{})

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.Filename, ".xlsx"))
		assert.Equal(t, []byte{'P', 'K'}, result.Data[:2])
	})
}
