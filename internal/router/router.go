package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kashan16/fatima-botique-ecom-sub001/config"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/controller"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/websocket"
)

// Controllers groups the HTTP handlers. Upload and Events may be nil when
// their backing service is not configured; their routes are then omitted.
type Controllers struct {
	Product   *controller.ProductController
	Cart      *controller.CartController
	GuestCart *controller.GuestCartController
	Wishlist  *controller.WishlistController
	Address   *controller.AddressController
	Profile   *controller.ProfileController
	Checkout  *controller.CheckoutController
	Order     *controller.OrderController
	Payment   *controller.PaymentController
	Upload    *controller.UploadController
	Events    *websocket.Handler
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	ctl := r.controllers
	auth := r.authMiddleware.Authenticate()

	if ctl.Events != nil {
		router.GET("/ws/orders", auth, ctl.Events.ServeOrders)
	}

	v1 := router.Group("/api/v1")
	{
		catalog := v1.Group("")
		catalog.Use(r.authMiddleware.OptionalAuthenticate())
		{
			catalog.GET("/products", ctl.Product.GetProducts)
			catalog.GET("/products/:slug", ctl.Product.GetProductBySlug)
			catalog.GET("/categories", ctl.Product.GetCategories)
			catalog.GET("/categories/:slug/products", ctl.Product.GetCategoryProducts)
		}

		guest := v1.Group("/guest-cart")
		{
			guest.POST("", ctl.GuestCart.CreateGuestCart)
			guest.GET("", ctl.GuestCart.GetGuestCart)
			guest.POST("/items", ctl.GuestCart.AddGuestItem)
			guest.DELETE("/items/:variant_id", ctl.GuestCart.RemoveGuestItem)
		}

		cart := v1.Group("/cart")
		cart.Use(auth)
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.DELETE("", ctl.Cart.ClearCart)
			cart.POST("/items", ctl.Cart.AddToCart)
			cart.PATCH("/items/:id", ctl.Cart.UpdateCartItem)
			cart.DELETE("/items/:id", ctl.Cart.RemoveFromCart)
			cart.POST("/merge", ctl.Cart.MergeGuestCart)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(auth)
		{
			wishlist.GET("", ctl.Wishlist.GetWishlist)
			wishlist.POST("/items", ctl.Wishlist.AddToWishlist)
			wishlist.DELETE("/items/:id", ctl.Wishlist.RemoveFromWishlist)
			wishlist.POST("/items/:id/move-to-cart", ctl.Wishlist.MoveToCart)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(auth)
		{
			addresses.GET("", ctl.Address.ListAddresses)
			addresses.POST("", ctl.Address.CreateAddress)
			addresses.PATCH("/default", ctl.Address.SetDefaultAddress)
			addresses.GET("/:id", ctl.Address.GetAddress)
			addresses.PATCH("/:id", ctl.Address.UpdateAddress)
			addresses.DELETE("/:id", ctl.Address.DeleteAddress)
		}

		profile := v1.Group("/profile")
		profile.Use(auth)
		{
			profile.GET("", ctl.Profile.GetProfile)
			profile.PATCH("", ctl.Profile.UpdateProfile)
			profile.POST("/initialize", ctl.Profile.InitializeProfile)
		}
		v1.POST("/user/initialize-assets", auth, ctl.Profile.InitializeAssets)

		v1.POST("/checkout", auth, ctl.Checkout.Checkout)

		orders := v1.Group("/orders")
		orders.Use(auth)
		{
			orders.GET("", ctl.Order.GetOrders)
			orders.GET("/:id", ctl.Order.GetOrderByID)
			orders.POST("/:id/cancel", ctl.Order.CancelOrder)
		}

		payments := v1.Group("/payments")
		payments.Use(auth)
		{
			payments.POST("/razorpay/order", ctl.Payment.CreateRazorpayOrder)
			payments.POST("/razorpay/verify", ctl.Payment.VerifyRazorpayPayment)
			payments.POST("/razorpay/failure", ctl.Payment.RazorpayPaymentFailed)
			payments.POST("/cod/confirm", ctl.Payment.ConfirmCashOnDelivery)
			payments.GET("/orders/:id", ctl.Payment.GetPaymentStatus)
		}

		admin := v1.Group("/admin")
		admin.Use(auth, r.authMiddleware.RequireRole("admin"))
		{
			admin.POST("/products/:id/images", ctl.Product.AddProductImage)
			if ctl.Upload != nil {
				admin.POST("/uploads/product-images", ctl.Upload.PresignProductImage)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Guest-Token, Idempotency-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
