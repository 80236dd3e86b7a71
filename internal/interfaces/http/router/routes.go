package router

import (
	"github.com/adfinitum/backend/internal/interfaces/http/handler"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler mounted under /api/<version>
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Brands     *handler.BrandHandler
	Banners    *handler.HeroBannerHandler
	Slides     *handler.HeroSlideHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	Shipping   *handler.ShippingHandler
	Payments   *handler.PaymentHandler
	Analytics  *handler.AnalyticsHandler
	System     *handler.SystemHandler
}

// APIGroups builds the domain groups of the public API. Authentication is
// resolved upstream by OptionalJWTAuthMiddleware; each route here only states
// its permission class.
func APIGroups(h Handlers, perm middleware.PermissionConfig) []*DomainGroup {
	authed := middleware.RequireAuthenticatedWithConfig(perm)
	admin := middleware.RequireAdminWithConfig(perm)

	return []*DomainGroup{
		authRoutes(h.Auth, authed),
		userRoutes(h.Users, admin),
		productRoutes(h.Products, authed, admin),
		crudRoutes("categories", "/categories", h.Categories, admin),
		brandRoutes(h.Brands, admin),
		crudRoutes("hero-banners", "/hero-banners", h.Banners, admin),
		slideRoutes(h.Slides, admin),
		cartRoutes(h.Cart),
		couponRoutes(h.Cart, admin),
		orderRoutes(h.Orders, authed, admin),
		shippingRoutes(h.Shipping, authed, admin),
		paymentRoutes(h.Payments, authed, admin),
		analyticsRoutes(h.Analytics, admin),
		systemRoutes(h.System),
	}
}

func authRoutes(h *handler.AuthHandler, authed gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/token/refresh", h.RefreshToken)
	g.POST("/password-reset", h.RequestPasswordReset)
	g.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	g.GET("/me", authed, h.Me)
	g.PUT("/me", authed, h.UpdateMe)
	g.PATCH("/me", authed, h.UpdateMe)
	return g
}

func userRoutes(h *handler.UserHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("users", "/users").Use(admin)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return g
}

func productRoutes(h *handler.ProductHandler, authed, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("products", "/products")
	g.GET("", h.List)
	g.GET("/slug/:slug", h.GetBySlug)
	g.GET("/:id", h.GetByID)
	g.POST("/create", admin, h.Create)
	g.PUT("/:id/update", admin, h.Update)
	g.DELETE("/:id/delete", admin, h.Delete)

	g.POST("/:id/images", admin, h.AddImage)
	g.DELETE("/:id/images/:imageId", admin, h.DeleteImage)

	g.POST("/:id/variations", admin, h.AddVariation)
	g.PUT("/:id/variations/:variationId", admin, h.UpdateVariation)
	g.DELETE("/:id/variations/:variationId", admin, h.DeleteVariation)

	g.GET("/:id/reviews", h.ListReviews)
	g.POST("/:id/reviews", authed, h.CreateReview)
	g.DELETE("/:id/reviews/:reviewId", authed, h.DeleteReview)
	return g
}

// crudHandler is the shape shared by the simple admin-managed catalog
// resources (categories, hero banners).
type crudHandler interface {
	List(c *gin.Context)
	GetByID(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

func crudRoutes(name, prefix string, h crudHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup(name, prefix)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/create", admin, h.Create)
	g.PUT("/:id/update", admin, h.Update)
	g.DELETE("/:id/delete", admin, h.Delete)
	return g
}

func brandRoutes(h *handler.BrandHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("brands", "/brands")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("", admin, h.Create)
	g.PUT("/:id", admin, h.Update)
	g.DELETE("/:id", admin, h.Delete)
	return g
}

func slideRoutes(h *handler.HeroSlideHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("hero-slides", "/hero-slides")
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("", admin, h.Create)
	g.PUT("/:id", admin, h.Update)
	g.DELETE("/:id", admin, h.Delete)
	g.POST("/:id/media", admin, h.UploadMedia)
	return g
}

func cartRoutes(h *handler.CartHandler) *DomainGroup {
	g := NewDomainGroup("cart", "/cart").Use(middleware.GuestSession())
	g.GET("", h.Get)
	g.POST("/items", h.AddItem)
	g.PATCH("/items/:id", h.UpdateItem)
	g.DELETE("/items/:id", h.RemoveItem)
	g.POST("/clear", h.Clear)
	g.POST("/apply-coupon", h.ApplyCoupon)
	return g
}

func couponRoutes(h *handler.CartHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("coupons", "/coupons").Use(admin)
	g.GET("", h.ListCoupons)
	g.POST("", h.CreateCoupon)
	g.GET("/:id", h.GetCoupon)
	g.PUT("/:id", h.UpdateCoupon)
	g.DELETE("/:id", h.DeleteCoupon)
	return g
}

func orderRoutes(h *handler.OrderHandler, authed, admin gin.HandlerFunc) *DomainGroup {
	// checkout may name a guest cart, so orders read X-Session-ID too
	g := NewDomainGroup("orders", "/orders").Use(authed, middleware.GuestSession())
	g.GET("", h.List)
	g.POST("", h.Checkout)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/update-status", admin, h.UpdateStatus)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/history", h.History)
	g.GET("/:id/invoice", h.Invoice)
	return g
}

func shippingRoutes(h *handler.ShippingHandler, authed, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("shipping", "/shipping")

	addresses := g.Group("addresses", "/addresses").Use(authed)
	addresses.GET("", h.ListAddresses)
	addresses.POST("", h.CreateAddress)
	addresses.GET("/:id", h.GetAddress)
	addresses.PUT("/:id", h.UpdateAddress)
	addresses.PATCH("/:id", h.UpdateAddress)
	addresses.DELETE("/:id", h.DeleteAddress)
	addresses.POST("/:id/set-default", h.SetDefaultAddress)

	methods := g.Group("methods", "/methods")
	methods.GET("", h.ListMethods)
	methods.GET("/:id", h.GetMethod)
	methods.POST("", admin, h.CreateMethod)
	methods.PUT("/:id", admin, h.UpdateMethod)
	methods.DELETE("/:id", admin, h.DeleteMethod)

	shipments := g.Group("shipments", "/shipments").Use(authed)
	shipments.GET("", h.ListShipments)
	shipments.GET("/:id", h.GetShipment)
	shipments.GET("/:id/history", h.ShipmentHistory)
	shipments.POST("", admin, h.CreateShipment)
	shipments.PUT("/:id", admin, h.UpdateShipment)
	shipments.POST("/:id/update-status", admin, h.UpdateShipmentStatus)
	return g
}

func paymentRoutes(h *handler.PaymentHandler, authed, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("payments", "/payments")
	g.POST("/mpesa/callback", h.MpesaCallback)
	g.GET("", authed, h.List)
	g.GET("/:id", authed, h.GetByID)
	g.POST("/mpesa/initiate", authed, h.InitiateMpesa)
	g.POST("/bank/submit", authed, h.SubmitBank)
	g.POST("/:id/review", admin, h.Review)
	return g
}

func analyticsRoutes(h *handler.AnalyticsHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("analytics", "/analytics").Use(admin)
	g.GET("/overview", h.Overview)
	g.GET("/sales", h.Sales)
	g.GET("/recent-orders", h.RecentOrders)
	g.GET("/top-products", h.TopProducts)
	return g
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/ping", h.Ping)
	return g
}
