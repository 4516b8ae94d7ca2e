package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup_MountsGroupsUnderVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	orders := NewDomainGroup("orders", "/orders").
		GET("", ok("list")).
		GET("/:id", ok("get")).
		POST("/:id/status", ok("status"))
	payments := NewDomainGroup("payments", "/payments").POST("", ok("pay"))

	r.Register(orders).Register(payments)
	r.Setup()

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/v1/orders", "list"},
		{http.MethodGet, "/api/v1/orders/abc", "get"},
		{http.MethodPost, "/api/v1/orders/abc/status", "status"},
		{http.MethodPost, "/api/v1/payments", "pay"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(engine, tt.method, tt.target)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/orders").Code)
}

func TestDomainGroup_MiddlewareIsScoped(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	payments := NewDomainGroup("payments", "/payments").
		Use(func(c *gin.Context) {
			c.Header("X-Scoped", "payments")
			c.Next()
		}).
		POST("", ok("pay"))
	orders := NewDomainGroup("orders", "/orders").GET("", ok("list"))
	r.Register(payments).Register(orders).Setup()

	assert.Equal(t, "payments", serve(engine, http.MethodPost, "/api/v1/payments").Header().Get("X-Scoped"))
	assert.Empty(t, serve(engine, http.MethodGet, "/api/v1/orders").Header().Get("X-Scoped"))
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	stock := NewDomainGroup("stock", "/stock")
	stock.Group("ledger", "/ledger").GET("", ok("ledger"))
	stock.POST("/movements", ok("moved"))

	NewRouter(engine).Register(stock).Setup()

	assert.Equal(t, "ledger", serve(engine, http.MethodGet, "/api/v1/stock/ledger").Body.String())
	assert.Equal(t, "moved", serve(engine, http.MethodPost, "/api/v1/stock/movements").Body.String())
}

func TestRouterRoutes(t *testing.T) {
	r := NewRouter(gin.New())
	orders := NewDomainGroup("orders", "/orders").
		POST("", ok("")).
		DELETE("/:id/items/:item_id", ok(""))
	orders.Group("lines", "/lines").PUT("/:id", ok(""))
	r.Register(orders)

	assert.Equal(t, []RouteInfo{
		{Group: "orders", Method: http.MethodPost, Path: "/api/v1/orders"},
		{Group: "orders", Method: http.MethodDelete, Path: "/api/v1/orders/:id/items/:item_id"},
		{Group: "lines", Method: http.MethodPut, Path: "/api/v1/orders/lines/:id"},
	}, r.Routes())
}

type rawRegistrar struct{}

func (rawRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/raw", ok("raw"))
}

func TestRouterRegister_AcceptsAnyRegistrar(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(rawRegistrar{}).Setup()

	assert.Equal(t, "raw", serve(engine, http.MethodGet, "/api/v1/raw").Body.String())
}
