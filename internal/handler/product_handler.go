package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/model"
	"github.com/SatishMhobiya/e-commerce-backend/internal/service"
)

type newProductRequest struct {
	Name        string        `json:"name"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	Stock       int           `json:"stock"`
	Description string        `json:"description"`
	Photos      []model.Photo `json:"photos" validate:"dive"`
}

type updateProductRequest struct {
	Name        *string       `json:"name"`
	Price       *float64      `json:"price" validate:"omitempty,gt=0"`
	Category    *string       `json:"category"`
	Stock       *int          `json:"stock" validate:"omitempty,gte=0"`
	Description *string       `json:"description"`
	Photos      []model.Photo `json:"photos" validate:"dive"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// NewProduct handles POST /api/v1/product/new.
func (h *Handlers) NewProduct(w http.ResponseWriter, r *http.Request) {
	var req newProductRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	product, err := h.products.CreateProduct(ctx, service.NewProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Description: req.Description,
		Photos:      req.Photos,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, envelope{
		"message": "Product Created Successfully",
		"product": product,
	})
}

// LatestProducts handles GET /api/v1/product/latest.
func (h *Handlers) LatestProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.LatestProducts(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"products": products})
}

// ProductCategories handles GET /api/v1/product/categories.
func (h *Handlers) ProductCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.products.Categories(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"categories": categories})
}

// AdminProducts handles GET /api/v1/product/admin-products.
func (h *Handlers) AdminProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.AdminProducts(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"products": products})
}

// SearchProducts handles GET /api/v1/product/all.
func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	res, err := h.products.SearchProducts(ctx, params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"products":  res.Products,
		"totalPage": res.TotalPage,
	})
}

func searchParams(r *http.Request) (service.SearchParams, error) {
	q := r.URL.Query()
	params := service.SearchParams{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     model.ProductSort(q.Get("sort")),
	}

	var err error
	if params.MinPrice, err = floatParam(q.Get("min_price")); err != nil {
		return params, apperrors.Validation("min_price must be a number")
	}
	if params.MaxPrice, err = floatParam(q.Get("max_price")); err != nil {
		return params, apperrors.Validation("max_price must be a number")
	}
	if page := q.Get("page"); page != "" {
		if params.Page, err = strconv.Atoi(page); err != nil {
			return params, apperrors.Validation("page must be a number")
		}
	}

	switch params.Sort {
	case model.SortNone, model.SortPriceAsc, model.SortPriceDesc:
	default:
		return params, apperrors.Validation("sort must be asc or dsc")
	}
	return params, nil
}

func floatParam(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

// GetProduct handles GET /api/v1/product/{id}.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := h.products.GetProduct(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"product": product})
}

// UpdateProduct handles PUT /api/v1/product/{id}.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	_, err := h.products.UpdateProduct(ctx, mux.Vars(r)["id"], service.ProductUpdate{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Description: req.Description,
		Photos:      req.Photos,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"message": "Product Updated Successfully"})
}

// DeleteProduct handles DELETE /api/v1/product/{id}.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.products.DeleteProduct(ctx, mux.Vars(r)["id"]); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"message": "Product Deleted Successfully"})
}

// ProductReviews handles GET /api/v1/product/reviews/{id}.
func (h *Handlers) ProductReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviews, err := h.reviews.ProductReviews(ctx, mux.Vars(r)["id"])
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"reviews": reviews})
}

// NewReview handles POST /api/v1/product/review/new/{id}. The reviewer is
// named by the id query parameter.
func (h *Handlers) NewReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()

	productID := mux.Vars(r)["id"]
	created, err := h.reviews.UpsertReview(ctx, r.URL.Query().Get("id"), productID, req.Rating, req.Comment)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if created {
		h.writeJSONResponse(w, http.StatusCreated, envelope{"message": "Review added successfully"})
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"message": "Review updated successfully"})
}

// DeleteReview handles DELETE /api/v1/product/review/{id}.
func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.reviews.DeleteReview(ctx, r.URL.Query().Get("id"), mux.Vars(r)["id"]); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{"message": "Review deleted successfully"})
}

func (h *Handlers) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return h.validator.Struct(dst)
}
