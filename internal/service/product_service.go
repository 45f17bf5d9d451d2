package service

import (
	"context"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"

	"github.com/google/uuid"
)

type ProductService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
	parts    repository.PartRepository
}

func NewProductService(products repository.ProductRepository, parts repository.PartRepository) ProductService {
	return &productService{products: products, parts: parts}
}

func (s *productService) Create(ctx context.Context, actor model.Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	status := req.Status
	if status == "" {
		status = model.ProductActive
	}
	p := &model.Product{
		ProductNumber: req.ProductNumber,
		ProductName:   req.ProductName,
		Description:   req.Description,
		Status:        status,
		CreatedByID:   &actor.ID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, translateDuplicate(err, "product_number")
	}
	return s.toResponse(ctx, p)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s.toResponse(ctx, p)
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		r, err := s.toResponse(ctx, &products[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if req.ProductNumber != nil {
		p.ProductNumber = *req.ProductNumber
	}
	if req.ProductName != nil {
		p.ProductName = *req.ProductName
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, translateDuplicate(err, "product_number")
	}
	return s.toResponse(ctx, p)
}

// Delete removes a product. Administrator only; refused while any part still
// references the product.
func (s *productService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin {
		return apierror.ErrForbidden
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return notFoundOr(err)
	}
	n, err := s.parts.ActiveCountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &apierror.DependencyExistsError{
			Detail: "cannot delete product: active parts reference it",
		}
	}
	return s.products.Delete(ctx, id)
}

func (s *productService) toResponse(ctx context.Context, p *model.Product) (*dto.ProductResponse, error) {
	n, err := s.parts.ActiveCountByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductResponse{
		ID:            p.ID.String(),
		ProductNumber: p.ProductNumber,
		ProductName:   p.ProductName,
		Description:   p.Description,
		Status:        p.Status,
		PartsCount:    n,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.CreatedBy != nil {
		resp.CreatedByName = &p.CreatedBy.FullName
	}
	return resp, nil
}
