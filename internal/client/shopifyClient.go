package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"usdc-storefront/internal/config"
	"usdc-storefront/internal/model"
)

type ShopifyClient interface {
	GetCollections(ctx context.Context) ([]model.Collection, error)
	GetCollectionByHandle(ctx context.Context, handle string) (*model.Collection, error)
	GetProductByHandle(ctx context.Context, handle string) (*model.Product, error)
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*model.OrderSummary, error)
}

// CreateOrderInput carries everything the orderCreate mutation needs. The
// transaction hash is attached as a note and custom attributes for audit.
type CreateOrderInput struct {
	LineItems       []model.LineItem
	Customer        model.Customer
	ShippingAddress model.ShippingAddress
	TransactionHash string
}

type shopifyClientImpl struct {
	httpClient  *http.Client
	apiURL      string
	accessToken string
}

func NewShopifyClient(cfg *config.Shopify) ShopifyClient {
	return &shopifyClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL:      fmt.Sprintf("https://%s/admin/api/2024-10/graphql.json", apiDomain(cfg.Domain)),
		accessToken: cfg.AccessToken,
	}
}

// apiDomain maps a custom storefront domain to its myshopify.com API host.
// Admin API calls must target the myshopify.com domain, not the storefront.
func apiDomain(domain string) string {
	if strings.Contains(domain, "myshopify.com") {
		return domain
	}
	return strings.Split(domain, ".")[0] + ".myshopify.com"
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *shopifyClientImpl) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify error %d: %s", resp.StatusCode, string(b))
	}

	var envelope graphqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode shopify response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("shopify graphql: %s", envelope.Errors[0].Message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("unmarshal shopify data: %w", err)
	}
	return nil
}

type moneyNode struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type variantNode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            string `json:"price"`
}

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	PriceRange  struct {
		MinVariantPrice moneyNode `json:"minVariantPrice"`
	} `json:"priceRange"`
	Images struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type collectionNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	Description string `json:"description"`
	Products    struct {
		Edges []struct {
			Node productNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

func (n *productNode) toModel() model.Product {
	p := model.Product{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Description: n.Description,
		Price: model.Money{
			Amount:       n.PriceRange.MinVariantPrice.Amount,
			CurrencyCode: n.PriceRange.MinVariantPrice.CurrencyCode,
		},
	}
	if len(n.Images.Edges) > 0 {
		p.ImageURL = n.Images.Edges[0].Node.URL
	}
	for _, e := range n.Variants.Edges {
		p.Variants = append(p.Variants, model.Variant{
			ID:               e.Node.ID,
			Title:            e.Node.Title,
			Price:            e.Node.Price,
			AvailableForSale: e.Node.AvailableForSale,
		})
	}
	return p
}

const collectionsQuery = `
query {
  collections(first: 10) {
    edges {
      node {
        id
        title
        handle
      }
    }
  }
}`

func (c *shopifyClientImpl) GetCollections(ctx context.Context) ([]model.Collection, error) {
	var data struct {
		Collections struct {
			Edges []struct {
				Node collectionNode `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	if err := c.query(ctx, collectionsQuery, nil, &data); err != nil {
		return nil, err
	}

	collections := make([]model.Collection, 0, len(data.Collections.Edges))
	for _, e := range data.Collections.Edges {
		collections = append(collections, model.Collection{
			ID:     e.Node.ID,
			Title:  e.Node.Title,
			Handle: e.Node.Handle,
		})
	}
	return collections, nil
}

const collectionByHandleQuery = `
query getCollection($handle: String!) {
  collectionByHandle(handle: $handle) {
    id
    title
    handle
    description
    products(first: 20) {
      edges {
        node {
          id
          title
          handle
          description
          priceRange {
            minVariantPrice {
              amount
              currencyCode
            }
          }
          images(first: 1) {
            edges {
              node {
                url
              }
            }
          }
        }
      }
    }
  }
}`

func (c *shopifyClientImpl) GetCollectionByHandle(ctx context.Context, handle string) (*model.Collection, error) {
	var data struct {
		CollectionByHandle *collectionNode `json:"collectionByHandle"`
	}
	if err := c.query(ctx, collectionByHandleQuery, map[string]interface{}{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.CollectionByHandle == nil {
		return nil, nil
	}

	n := data.CollectionByHandle
	collection := &model.Collection{
		ID:          n.ID,
		Title:       n.Title,
		Handle:      n.Handle,
		Description: n.Description,
	}
	for _, e := range n.Products.Edges {
		collection.Products = append(collection.Products, e.Node.toModel())
	}
	return collection, nil
}

const productByHandleQuery = `
query getProduct($handle: String!) {
  productByHandle(handle: $handle) {
    id
    title
    handle
    description
    priceRange {
      minVariantPrice {
        amount
        currencyCode
      }
    }
    images(first: 5) {
      edges {
        node {
          url
        }
      }
    }
    variants(first: 10) {
      edges {
        node {
          id
          title
          availableForSale
          price
        }
      }
    }
  }
}`

func (c *shopifyClientImpl) GetProductByHandle(ctx context.Context, handle string) (*model.Product, error) {
	var data struct {
		ProductByHandle *productNode `json:"productByHandle"`
	}
	if err := c.query(ctx, productByHandleQuery, map[string]interface{}{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.ProductByHandle == nil {
		return nil, nil
	}
	product := data.ProductByHandle.toModel()
	return &product, nil
}

const orderCreateMutation = `
mutation orderCreate($order: OrderCreateOrderInput!, $options: OrderCreateOptionsInput) {
  orderCreate(order: $order, options: $options) {
    userErrors {
      field
      message
    }
    order {
      id
      name
      displayFinancialStatus
      totalPriceSet {
        shopMoney {
          amount
          currencyCode
        }
      }
      customer {
        email
        firstName
        lastName
      }
    }
  }
}`

func (c *shopifyClientImpl) CreateOrder(ctx context.Context, input *CreateOrderInput) (*model.OrderSummary, error) {
	lineItems := make([]map[string]interface{}, len(input.LineItems))
	for i, item := range input.LineItems {
		lineItems[i] = map[string]interface{}{
			"variantId": item.VariantID,
			"quantity":  item.Quantity,
		}
	}

	country := input.ShippingAddress.Country
	if country == "" {
		country = "US"
	}

	variables := map[string]interface{}{
		"order": map[string]interface{}{
			"lineItems": lineItems,
			"customer": map[string]interface{}{
				"toUpsert": map[string]interface{}{
					"email":     input.Customer.Email,
					"firstName": input.Customer.FirstName,
					"lastName":  input.Customer.LastName,
				},
			},
			"shippingAddress": map[string]interface{}{
				"address1": input.ShippingAddress.Address1,
				"city":     input.ShippingAddress.City,
				"province": input.ShippingAddress.Province,
				"country":  country,
				"zip":      input.ShippingAddress.Zip,
			},
			"financialStatus": "PAID",
			"note":            fmt.Sprintf("USDC Transaction Hash: %s", input.TransactionHash),
			"customAttributes": []map[string]string{
				{"key": "transaction_hash", "value": input.TransactionHash},
				{"key": "payment_method", "value": "USDC on Base"},
				{"key": "source", "value": "farcaster-mini-app"},
			},
			"tags": []string{"farcaster-mini-app", "usdc-payment"},
		},
		"options": map[string]interface{}{
			"sendReceipt":                 true,
			"sendOrderFulfillmentReceipt": true,
			"inventoryBehaviour":          "DECREMENT_OBEYING_POLICY",
		},
	}

	var data struct {
		OrderCreate struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
			Order *struct {
				ID                     string `json:"id"`
				Name                   string `json:"name"`
				DisplayFinancialStatus string `json:"displayFinancialStatus"`
				TotalPriceSet          struct {
					ShopMoney moneyNode `json:"shopMoney"`
				} `json:"totalPriceSet"`
				Customer struct {
					Email     string `json:"email"`
					FirstName string `json:"firstName"`
					LastName  string `json:"lastName"`
				} `json:"customer"`
			} `json:"order"`
		} `json:"orderCreate"`
	}
	if err := c.query(ctx, orderCreateMutation, variables, &data); err != nil {
		return nil, err
	}

	if len(data.OrderCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("shopify order create: %s", data.OrderCreate.UserErrors[0].Message)
	}
	if data.OrderCreate.Order == nil {
		return nil, fmt.Errorf("shopify order create: empty order in response")
	}

	order := data.OrderCreate.Order
	return &model.OrderSummary{
		ID:     order.ID,
		Name:   order.Name,
		Status: order.DisplayFinancialStatus,
		Total: model.Money{
			Amount:       order.TotalPriceSet.ShopMoney.Amount,
			CurrencyCode: order.TotalPriceSet.ShopMoney.CurrencyCode,
		},
		Customer: model.Customer{
			Email:     order.Customer.Email,
			FirstName: order.Customer.FirstName,
			LastName:  order.Customer.LastName,
		},
	}, nil
}
