package handler

import (
	"log"
	"net/http"
	"usdc-storefront/internal/dto"
	"usdc-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) GetCollections(c echo.Context) error {
	ctx := c.Request().Context()

	collections, err := h.catalogService.Collections(ctx)
	if err != nil {
		log.Printf("get collections: %v", err)
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to load collections"})
	}

	return c.JSON(http.StatusOK, collections)
}

// GetProducts lists the products of a collection; without a handle query
// parameter it falls back to the configured storefront collection.
func (h *CatalogHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	collection, err := h.catalogService.CollectionProducts(ctx, c.QueryParam("handle"))
	if err != nil {
		log.Printf("get products: %v", err)
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to load products"})
	}
	if collection == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "collection not found"})
	}

	return c.JSON(http.StatusOK, collection)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalogService.Product(ctx, c.Param("handle"))
	if err != nil {
		log.Printf("get product: %v", err)
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "failed to load product"})
	}
	if product == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "product not found"})
	}

	return c.JSON(http.StatusOK, product)
}
