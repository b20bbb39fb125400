package services

import (
	"storefront/internal/domain"
	"storefront/internal/repos"
)

const catalogPageSize = 9

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

type CatalogPage struct {
	Products   []domain.Product
	Page       int
	TotalPages int
	TotalItems int
}

// Browse applies the optional search/filter/sort parameters and paginates.
func (s *CatalogService) Browse(f repos.ListFilter, page int) (CatalogPage, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.Prods.Count(f)
	if err != nil {
		return CatalogPage{}, err
	}
	totalPages := (total + catalogPageSize - 1) / catalogPageSize
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * catalogPageSize

	products, err := s.Prods.List(f, catalogPageSize, offset)
	if err != nil {
		return CatalogPage{}, err
	}
	return CatalogPage{Products: products, Page: page, TotalPages: totalPages, TotalItems: total}, nil
}

func (s *CatalogService) GetProduct(slug string) (domain.Product, error) {
	return s.Prods.BySlug(slug)
}
