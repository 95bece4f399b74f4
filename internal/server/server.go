package server

import (
	"usdc-storefront/internal/handler"
	"usdc-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	catalogHandler  *handler.CatalogHandler
	ordersHandler   *handler.OrdersHandler
}

func NewServer(checkoutService service.CheckoutService, catalogService service.CatalogService) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		catalogHandler:  handler.NewCatalogHandler(catalogService),
		ordersHandler:   handler.NewOrdersHandler(checkoutService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/session", s.checkoutHandler.CreateSession)
	checkout.POST("/finalize", s.checkoutHandler.Finalize)

	// -------- catalog --------
	shopify := api.Group("/shopify")
	shopify.GET("/collections", s.catalogHandler.GetCollections)
	shopify.GET("/products", s.catalogHandler.GetProducts)
	shopify.GET("/products/:handle", s.catalogHandler.GetProduct)

	// -------- operations --------
	api.GET("/orders/recent", s.ordersHandler.GetRecent)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
