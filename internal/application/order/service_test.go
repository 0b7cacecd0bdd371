package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/order"
	"github.com/salesdesk/backend/internal/domain/partner"
	"github.com/salesdesk/backend/internal/domain/shared"
)

type fakeNotifier struct {
	tokens []*order.ApprovalToken
	err    error
}

func (f *fakeNotifier) NotifyApprovalRequested(token *order.ApprovalToken, o *order.SalesOrder) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

type testEnv struct {
	orders   *MockOrderRepository
	tokens   *MockTokenRepository
	partners *MockPartnerRepository
	products *MockProductRepository
	notifier *fakeNotifier
	service  *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orders:   new(MockOrderRepository),
		tokens:   new(MockTokenRepository),
		partners: new(MockPartnerRepository),
		products: new(MockProductRepository),
		notifier: &fakeNotifier{},
	}
	uow := &stubUnitOfWork{orders: env.orders, tokens: env.tokens}
	env.service = NewService(env.orders, uow, env.partners, env.products, env.notifier)
	return env
}

func testProduct(t *testing.T, price int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(
		testTenantID, testCreatorID, "PRD-001", "Standing Desk",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(price),
	)
	require.NoError(t, err)
	return p
}

func testPartnerWithEmail(t *testing.T) *partner.Partner {
	t.Helper()
	p, err := partner.NewPartner(testTenantID, testCreatorID, "Acme Trading", partner.PartnerTypeCustomer)
	require.NoError(t, err)
	require.NoError(t, p.SetContact("Sato", "buyer@example.com", ""))
	return p
}

func TestService_CreateDraft(t *testing.T) {
	t.Run("create draft with details", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		product := testProduct(t, 30000)

		env.products.On("FindByIDs", ctx, testTenantID, []uuid.UUID{product.ID}).
			Return([]catalog.Product{*product}, nil)
		env.orders.On("Save", ctx, mock.AnythingOfType("*order.SalesOrder")).Return(nil)

		result, err := env.service.CreateDraft(ctx, creatorCaller(), CreateOrderRequest{
			SalesOrderDate: testOrderDate,
			Details: []DetailRequest{
				{
					ProductID:        &product.ID,
					Quantity:         2,
					BillingUnitPrice: decimal.NewFromInt(28000),
					TaxRate:          decimal.NewFromFloat(0.10),
				},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusDraft), result.Status)
		require.Len(t, result.Details, 1)
		assert.Equal(t, 1, result.Details[0].LineNo)
		assert.True(t, result.Details[0].MasterUnitPrice.Equal(decimal.NewFromInt(30000)))
		assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(56000)))
		env.orders.AssertExpectations(t)
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		env := newTestEnv()
		caller := creatorCaller()
		caller.Privilege = identity.PrivilegeViewer

		result, err := env.service.CreateDraft(context.Background(), caller, CreateOrderRequest{
			SalesOrderDate: testOrderDate,
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Nil(t, result)
	})

	t.Run("unknown partner is rejected", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		partnerID := uuid.New()

		env.partners.On("FindByID", ctx, testTenantID, partnerID).
			Return(nil, shared.ErrNotFound)

		result, err := env.service.CreateDraft(ctx, creatorCaller(), CreateOrderRequest{
			SalesOrderDate: testOrderDate,
			PartnerID:      &partnerID,
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_ERROR", de.Code)
	})

	t.Run("unknown rounding method is rejected", func(t *testing.T) {
		env := newTestEnv()

		result, err := env.service.CreateDraft(context.Background(), creatorCaller(), CreateOrderRequest{
			SalesOrderDate: testOrderDate,
			RoundingMethod: "banker",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("creator edits a draft", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.orders.On("Save", ctx, o).Return(nil)

		remarks := "rush delivery"
		result, err := env.service.Update(ctx, creatorCaller(), o.ID, UpdateOrderRequest{
			Remarks: &remarks,
		})

		require.NoError(t, err)
		assert.Equal(t, "rush delivery", result.Remarks)
		env.orders.AssertExpectations(t)
	})

	t.Run("field outside the mask is rejected", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted
		o.SetReferences([]uuid.UUID{testManagerID}, nil)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		remarks := "sneaky edit"
		result, err := env.service.Update(ctx, managerCaller(), o.ID, UpdateOrderRequest{
			Remarks: &remarks,
		})

		assert.Nil(t, result)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_ERROR", de.Code)
	})

	t.Run("reference manager writes the review comment", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted
		o.SetReferences([]uuid.UUID{testManagerID}, nil)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.orders.On("Save", ctx, o).Return(nil)

		comment := "margins look thin"
		result, err := env.service.Update(ctx, managerCaller(), o.ID, UpdateOrderRequest{
			QuotationManagerComment: &comment,
		})

		require.NoError(t, err)
		assert.Equal(t, comment, result.QuotationManagerComment)
	})

	t.Run("outsider cannot save", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		outsider := order.Caller{
			UserID:    uuid.New(),
			TenantID:  testTenantID,
			Privilege: identity.PrivilegeEditor,
		}
		remarks := "nope"
		_, err := env.service.Update(ctx, outsider, o.ID, UpdateOrderRequest{Remarks: &remarks})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestService_Get(t *testing.T) {
	t.Run("creator sees the order", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByID", ctx, testTenantID, o.ID).Return(o, nil)

		result, err := env.service.Get(ctx, creatorCaller(), o.ID)

		require.NoError(t, err)
		assert.Equal(t, o.ID, result.ID)
	})

	t.Run("unrelated editor reads it as absent", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByID", ctx, testTenantID, o.ID).Return(o, nil)

		outsider := order.Caller{
			UserID:    uuid.New(),
			TenantID:  testTenantID,
			Privilege: identity.PrivilegeEditor,
		}
		result, err := env.service.Get(ctx, outsider, o.ID)

		// denial must not reveal that the order exists
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, result)
	})

	t.Run("manager sees everything", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByID", ctx, testTenantID, o.ID).Return(o, nil)

		result, err := env.service.Get(ctx, managerCaller(), o.ID)

		require.NoError(t, err)
		assert.Equal(t, o.ID, result.ID)
	})
}

func TestService_List(t *testing.T) {
	t.Run("editor listing is restricted to own orders", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()

		env.orders.On("FindAll", ctx, testTenantID, mock.MatchedBy(func(f order.Filter) bool {
			return f.RestrictToUser != nil && *f.RestrictToUser == testCreatorID
		})).Return([]order.SalesOrder{}, int64(0), nil)

		result, err := env.service.List(ctx, creatorCaller(), ListFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Total)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, DefaultPageSize, result.PageSize)
		env.orders.AssertExpectations(t)
	})

	t.Run("manager listing is unrestricted", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindAll", ctx, testTenantID, mock.MatchedBy(func(f order.Filter) bool {
			return f.RestrictToUser == nil
		})).Return([]order.SalesOrder{*o}, int64(1), nil)

		result, err := env.service.List(ctx, managerCaller(), ListFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		require.Len(t, result.Items, 1)
	})
}

func TestService_Transition(t *testing.T) {
	t.Run("creator submits a quotation", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.Transition(ctx, creatorCaller(), o.ID, TransitionRequest{
			Verb: string(order.VerbSubmitQuotation),
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusQuotationSubmitted), result.Status)
		assert.Empty(t, env.notifier.tokens)
	})

	t.Run("submit names the reviewers in the same call", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		reviewer := uuid.New()

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.Transition(ctx, creatorCaller(), o.ID, TransitionRequest{
			Verb:       string(order.VerbSubmitQuotation),
			References: &ReferencesRequest{UserIDs: []uuid.UUID{reviewer}},
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusQuotationSubmitted), result.Status)
		assert.Equal(t, []uuid.UUID{reviewer}, o.ReferenceUserIDs)
	})

	t.Run("reviewer cannot rewrite the references mid-approval", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted
		o.SetReferences([]uuid.UUID{testManagerID}, nil)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		_, err := env.service.Transition(ctx, managerCaller(), o.ID, TransitionRequest{
			Verb:       string(order.VerbApproveQuotationInternal),
			References: &ReferencesRequest{UserIDs: []uuid.UUID{uuid.New()}},
		})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_ERROR", de.Code)
	})

	t.Run("internal approval mints a token and notifies", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		p := testPartnerWithEmail(t)
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted
		o.PartnerID = &p.ID
		o.SetReferences([]uuid.UUID{testManagerID}, nil)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.partners.On("FindByID", ctx, testTenantID, p.ID).Return(p, nil)
		env.tokens.On("Create", ctx, mock.AnythingOfType("*order.ApprovalToken")).Return(nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.Transition(ctx, managerCaller(), o.ID, TransitionRequest{
			Verb: string(order.VerbApproveQuotationInternal),
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusQuotationApprovedIn), result.Status)
		require.Len(t, env.notifier.tokens, 1)
		assert.Equal(t, "buyer@example.com", env.notifier.tokens[0].PartnerEmail)
		env.tokens.AssertExpectations(t)
	})

	t.Run("approval without a partner fails", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted
		o.SetReferences([]uuid.UUID{testManagerID}, nil)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		result, err := env.service.Transition(ctx, managerCaller(), o.ID, TransitionRequest{
			Verb: string(order.VerbApproveQuotationInternal),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Empty(t, env.notifier.tokens)
	})

	t.Run("internal rejection records the comment", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted
		o.SetReferences([]uuid.UUID{testManagerID}, nil)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.Transition(ctx, managerCaller(), o.ID, TransitionRequest{
			Verb:    string(order.VerbRejectQuotationInternal),
			Comment: "rework the pricing",
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusQuotationRejectedIn), result.Status)
		assert.Equal(t, "rework the pricing", result.QuotationManagerComment)
	})

	t.Run("non-reference manager cannot approve", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationSubmitted

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		_, err := env.service.Transition(ctx, managerCaller(), o.ID, TransitionRequest{
			Verb: string(order.VerbApproveQuotationInternal),
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("token-gated verbs are not callable directly", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.Transition(context.Background(), creatorCaller(), uuid.New(), TransitionRequest{
			Verb: string(order.VerbAccept),
		})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_ERROR", de.Code)
	})

	t.Run("verb invalid for the status conflicts", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		_, err := env.service.Transition(ctx, creatorCaller(), o.ID, TransitionRequest{
			Verb: string(order.VerbShip),
		})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CONFLICT_STATE", de.Code)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("creator cancels a draft", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.Cancel(ctx, creatorCaller(), o.ID)

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusCancel), result.Status)
	})

	t.Run("terminal orders cannot be cancelled", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusPaid

		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		_, err := env.service.Cancel(ctx, creatorCaller(), o.ID)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CONFLICT_STATE", de.Code)
	})
}

func TestService_RedeemToken(t *testing.T) {
	mintedToken := func(t *testing.T, o *order.SalesOrder) *order.ApprovalToken {
		t.Helper()
		token, err := order.NewApprovalToken(testTenantID, o.ID, "buyer@example.com")
		require.NoError(t, err)
		return token
	}

	t.Run("accept confirms the quotation", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationApprovedIn
		token := mintedToken(t, o)

		env.tokens.On("FindForUpdate", ctx, token.Token).Return(token, nil)
		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.tokens.On("Update", ctx, token).Return(nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.RedeemToken(ctx, token.Token, RedeemTokenRequest{
			Decision: "accept",
			Comment:  "looks good",
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusQuotationConfirmed), result.Status)
		assert.Equal(t, "looks good", result.QuotationCustomerComment)
		assert.True(t, token.Used)
	})

	t.Run("reject sends the order back", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusOrderApprovedIn
		token := mintedToken(t, o)

		env.tokens.On("FindForUpdate", ctx, token.Token).Return(token, nil)
		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)
		env.tokens.On("Update", ctx, token).Return(nil)
		env.orders.On("Save", ctx, o).Return(nil)

		result, err := env.service.RedeemToken(ctx, token.Token, RedeemTokenRequest{
			Decision: "reject",
		})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusOrderRejectedOut), result.Status)
	})

	t.Run("used token is refused", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusQuotationApprovedIn
		token := mintedToken(t, o)
		require.NoError(t, token.Redeem())

		env.tokens.On("FindForUpdate", ctx, token.Token).Return(token, nil)

		_, err := env.service.RedeemToken(ctx, token.Token, RedeemTokenRequest{Decision: "accept"})

		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("order moved on since minting", func(t *testing.T) {
		env := newTestEnv()
		ctx := context.Background()
		o := newDraftOrder(t)
		o.Status = order.StatusCancel
		token := mintedToken(t, o)

		env.tokens.On("FindForUpdate", ctx, token.Token).Return(token, nil)
		env.orders.On("FindByIDForUpdate", ctx, testTenantID, o.ID).Return(o, nil)

		_, err := env.service.RedeemToken(ctx, token.Token, RedeemTokenRequest{Decision: "accept"})

		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("bad decision is rejected", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.RedeemToken(context.Background(), "whatever", RedeemTokenRequest{Decision: "maybe"})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_ERROR", de.Code)
	})
}
