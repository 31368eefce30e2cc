package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avelkin/storefront/internal/admin"
	"github.com/avelkin/storefront/internal/auth"
	"github.com/avelkin/storefront/internal/cart"
	"github.com/avelkin/storefront/internal/catalog"
	"github.com/avelkin/storefront/internal/events"
	"github.com/avelkin/storefront/internal/logging"
	"github.com/avelkin/storefront/internal/order"
	"github.com/avelkin/storefront/internal/search"
)

// Deps wires the services the HTTP layer exposes. Search may be nil when
// no Elasticsearch cluster is configured.
type Deps struct {
	Logger *slog.Logger

	Auth    *auth.Service
	Admin   *admin.Service
	Catalog *catalog.Service
	Cart    *cart.Service
	Orders  *order.Service
	Search  *search.Service

	Events    events.Publisher
	JWTSecret []byte
}

func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowCredentials: true,
	}))
	e.Use(requestLogger(d.Logger))

	Register(e, d)
	return e
}

// requestLogger seeds the request context with a logger carrying the
// request id, so every handler and service log line can be correlated.
func requestLogger(l *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			rl := l.With("request_id", reqID, "method", c.Request().Method, "path", c.Path())

			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), rl)))
			return next(c)
		}
	}
}

func Register(e *echo.Echo, d Deps) {
	adminH := &AdminHandler{Svc: d.Admin, Events: d.Events}
	authH := &AuthHandler{Svc: d.Auth, Events: d.Events}
	productH := &ProductHandler{Svc: d.Catalog, Search: d.Search, Events: d.Events}
	cartH := &CartHandler{Svc: d.Cart, Events: d.Events}
	orderH := &OrderHandler{Svc: d.Orders, Events: d.Events}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api/v1", WithUser(d.JWTSecret))

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)

	api.GET("/products", productH.ListProducts)
	api.GET("/products/:id", productH.GetProduct)
	api.GET("/categories", productH.ListCategories)

	if d.Search != nil {
		searchH := &SearchHandler{Svc: d.Search}
		api.GET("/search", searchH.Search)
	}

	cg := api.Group("/cart", EnsureSession)
	cg.GET("", cartH.GetCart)
	cg.POST("", cartH.AddToCart)
	cg.PUT("/:id", cartH.UpdateQuantity)
	cg.DELETE("/:id", cartH.RemoveLine)

	og := api.Group("/orders", RequireUser)
	og.POST("", orderH.Checkout)
	og.GET("", orderH.ListOrders)
	og.GET("/:id", orderH.GetOrder)

	ag := api.Group("/admin", RequireUser, AdminOnly)
	ag.GET("/dashboard", adminH.Dashboard)
	ag.GET("/users", adminH.ListUsers)
	ag.GET("/users/:id", adminH.GetUser)
	ag.PATCH("/users/:id", adminH.UpdateUserRole)
	ag.GET("/orders", orderH.AdminList)
	ag.PATCH("/orders/:id", orderH.AdminUpdateStatus)
	ag.POST("/products", productH.CreateProduct)
	ag.PATCH("/products/:id", productH.UpdateProduct)
	ag.DELETE("/products/:id", productH.DeleteProduct)
	ag.POST("/categories", productH.CreateCategory)
	ag.PATCH("/categories/:id", productH.UpdateCategory)
	ag.DELETE("/categories/:id", productH.DeleteCategory)
}
