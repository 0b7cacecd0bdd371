package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/backend/internal/domain/catalog"
	"github.com/salesdesk/backend/internal/domain/shared"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		categories.On("FindByName", ctx, testTenantID, "Furniture").Return(nil, shared.ErrNotFound)
		categories.On("Save", ctx, mock.AnythingOfType("*catalog.ProductCategory")).Return(nil)

		resp, err := service.Create(ctx, editorCaller(), CategoryRequest{ProductCategoryName: "Furniture"})

		require.NoError(t, err)
		assert.Equal(t, "Furniture", resp.ProductCategoryName)
		categories.AssertExpectations(t)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		categories.On("FindByName", ctx, testTenantID, "Furniture").Return(testCategory(t), nil)

		_, err := service.Create(ctx, editorCaller(), CategoryRequest{ProductCategoryName: "Furniture"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		categories.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		_, err := service.Create(ctx, viewerCaller(), CategoryRequest{ProductCategoryName: "Furniture"})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()

	categories := new(MockCategoryRepository)
	service := NewCategoryService(categories)

	categories.On("FindAll", ctx, testTenantID).Return([]catalog.ProductCategory{*testCategory(t)}, nil)

	items, err := service.List(ctx, viewerCaller())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Furniture", items[0].ProductCategoryName)
	categories.AssertExpectations(t)
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("successful rename", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		c := testCategory(t)
		categories.On("FindByID", ctx, testTenantID, c.ID).Return(c, nil)
		categories.On("FindByName", ctx, testTenantID, "Office Furniture").Return(nil, shared.ErrNotFound)
		categories.On("Save", ctx, mock.MatchedBy(func(saved *catalog.ProductCategory) bool {
			return saved.ProductCategoryName == "Office Furniture" &&
				saved.UpdateUserID != nil && *saved.UpdateUserID == testUserID
		})).Return(nil)

		resp, err := service.Update(ctx, editorCaller(), c.ID, CategoryRequest{ProductCategoryName: "Office Furniture"})

		require.NoError(t, err)
		assert.Equal(t, "Office Furniture", resp.ProductCategoryName)
		categories.AssertExpectations(t)
	})

	t.Run("renaming a category to its own name is allowed", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		c := testCategory(t)
		categories.On("FindByID", ctx, testTenantID, c.ID).Return(c, nil)
		categories.On("FindByName", ctx, testTenantID, "Furniture").Return(c, nil)
		categories.On("Save", ctx, mock.AnythingOfType("*catalog.ProductCategory")).Return(nil)

		_, err := service.Update(ctx, editorCaller(), c.ID, CategoryRequest{ProductCategoryName: "Furniture"})

		require.NoError(t, err)
		categories.AssertExpectations(t)
	})

	t.Run("renaming onto another category is rejected", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		c := testCategory(t)
		other, err := catalog.NewProductCategory(testTenantID, testUserID, "Electronics")
		require.NoError(t, err)

		categories.On("FindByID", ctx, testTenantID, c.ID).Return(c, nil)
		categories.On("FindByName", ctx, testTenantID, "Electronics").Return(other, nil)

		_, err = service.Update(ctx, editorCaller(), c.ID, CategoryRequest{ProductCategoryName: "Electronics"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		categories.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("viewer cannot update", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		_, err := service.Update(ctx, viewerCaller(), uuid.New(), CategoryRequest{ProductCategoryName: "Furniture"})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("successful deletion", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		id := uuid.New()
		categories.On("Delete", ctx, testTenantID, id, testUserID).Return(nil)

		err := service.Delete(ctx, editorCaller(), id)

		require.NoError(t, err)
		categories.AssertExpectations(t)
	})

	t.Run("viewer cannot delete", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		service := NewCategoryService(categories)

		err := service.Delete(ctx, viewerCaller(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
