package service

import (
	"context"
	"fmt"
	"usdc-storefront/internal/client"
	"usdc-storefront/internal/model"
)

// CatalogService is a thin pass-through to the Shopify catalog, defaulting
// product listings to the configured storefront collection.
type CatalogService interface {
	Collections(ctx context.Context) ([]model.Collection, error)
	CollectionProducts(ctx context.Context, handle string) (*model.Collection, error)
	Product(ctx context.Context, handle string) (*model.Product, error)
}

type catalogServiceImpl struct {
	shopify           client.ShopifyClient
	defaultCollection string
}

func NewCatalogService(shopify client.ShopifyClient, defaultCollection string) CatalogService {
	return &catalogServiceImpl{
		shopify:           shopify,
		defaultCollection: defaultCollection,
	}
}

func (s *catalogServiceImpl) Collections(ctx context.Context) ([]model.Collection, error) {
	collections, err := s.shopify.GetCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("get collections: %w", err)
	}
	return collections, nil
}

func (s *catalogServiceImpl) CollectionProducts(ctx context.Context, handle string) (*model.Collection, error) {
	if handle == "" {
		handle = s.defaultCollection
	}
	collection, err := s.shopify.GetCollectionByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("get collection %q: %w", handle, err)
	}
	return collection, nil
}

func (s *catalogServiceImpl) Product(ctx context.Context, handle string) (*model.Product, error) {
	product, err := s.shopify.GetProductByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", handle, err)
	}
	return product, nil
}
