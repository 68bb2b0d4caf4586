package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/models"
	"budgetledger/internal/services"
)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	r.GET("/categories", handler.ListCategories)
	r.POST("/categories", handler.CreateCategory)
	r.POST("/categories/defaults", handler.InitializeDefaults)
	r.GET("/categories/:id", handler.GetCategoryByID)
	r.PUT("/categories/:id", handler.UpdateCategory)
	r.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_ListCategories(t *testing.T) {
	t.Run("returns 200 with categories", func(t *testing.T) {
		svc := &mockCategoryService{
			listActiveFn: func(_ context.Context) ([]models.Category, error) {
				return []models.Category{
					{Base: models.Base{ID: 2}, Name: "Food", Type: models.CategoryTypeExpense, IsActive: true},
					{Base: models.Base{ID: 1}, Name: "Salary", Type: models.CategoryTypeIncome, IsActive: true},
				}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cats := parseJSON(t, rec)["categories"].([]interface{})
		if len(cats) != 2 {
			t.Errorf("expected 2 categories, got %d", len(cats))
		}
	})

	t.Run("returns 500 without leaking storage details", func(t *testing.T) {
		svc := &mockCategoryService{
			listActiveFn: func(_ context.Context) ([]models.Category, error) {
				return nil, apperrors.Wrap(apperrors.WithOp(apperrors.ErrStorage, "categories.list_active"), context.DeadlineExceeded)
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORAGE_ERROR")
	})
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.CreateCategoryInput
		svc := &mockCategoryService{
			createFn: func(_ context.Context, in services.CreateCategoryInput) (*models.Category, error) {
				got = in
				return &models.Category{Base: models.Base{ID: 7}, Name: in.Name, Type: in.Type, IsActive: true}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "POST", "/categories", `{"name":"Groceries","type":"expense","color":"#FF0000","icon":"🛒"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name != "Groceries" || got.Icon == nil || *got.Icon != "🛒" {
			t.Errorf("unexpected service input %+v", got)
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["id"] != float64(7) {
			t.Errorf("expected id 7, got %v", cat["id"])
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Gifts","type":"transfer"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_ARGUMENT")
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories", `{"type":"income"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when parent is missing", func(t *testing.T) {
		svc := &mockCategoryService{
			createFn: func(_ context.Context, _ services.CreateCategoryInput) (*models.Category, error) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "POST", "/categories", `{"name":"Sub","type":"expense","parent_id":99}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("passes only supplied fields", func(t *testing.T) {
		var got services.UpdateCategoryInput
		svc := &mockCategoryService{
			updateFn: func(_ context.Context, id int64, in services.UpdateCategoryInput) (*models.Category, error) {
				got = in
				return &models.Category{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "PUT", "/categories/3", `{"color":"#00FF00","icon":null}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name.Set || got.Type.Set || got.ParentID.Set {
			t.Errorf("absent fields must not be set: %+v", got)
		}
		if !got.Color.Set || got.Color.Value != "#00FF00" {
			t.Errorf("expected color set, got %+v", got.Color)
		}
		if !got.Icon.Set || got.Icon.Value != nil {
			t.Errorf("expected icon cleared, got %+v", got.Icon)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "PUT", "/categories/abc", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on type mismatch", func(t *testing.T) {
		svc := &mockCategoryService{
			updateFn: func(_ context.Context, _ int64, _ services.UpdateCategoryInput) (*models.Category, error) {
				return nil, apperrors.ErrTypeMismatch
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "PUT", "/categories/3", `{"type":"income"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TYPE_MISMATCH")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		var deleted int64
		svc := &mockCategoryService{
			deleteFn: func(_ context.Context, id int64) error {
				deleted = id
				return nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "DELETE", "/categories/5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != 5 {
			t.Errorf("expected id 5, got %d", deleted)
		}
	})

	t.Run("returns 404 for unknown category", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteFn: func(_ context.Context, _ int64) error { return apperrors.ErrCategoryNotFound },
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "DELETE", "/categories/5", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_InitializeDefaults(t *testing.T) {
	svc := &mockCategoryService{
		initializeDefaultsFn: func(_ context.Context) (int, error) { return 13, nil },
	}
	r := setupCategoryRouter(NewCategoryHandler(svc))

	rec := doRequest(r, "POST", "/categories/defaults", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := parseJSON(t, rec)["created"]; got != float64(13) {
		t.Errorf("expected 13 created, got %v", got)
	}
}
