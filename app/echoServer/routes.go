package echoServer

import (
	"clothesrental/app/echoServer/controller/category"
	"clothesrental/app/echoServer/controller/item"
	"clothesrental/app/echoServer/controller/order"
	"clothesrental/app/echoServer/controller/payment"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Order    *order.Controller
	Payment  *payment.Controller
	Item     *item.Controller
	Category *category.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public: catalog browsing, order status, provider callback.
	pub := e.Group("/v1")
	pub.GET("/items", c.Item.List)
	pub.GET("/items/:id", c.Item.Detail)
	pub.GET("/items/:id/booked-dates", c.Order.BookedDates)
	pub.GET("/categories", c.Category.List)
	pub.GET("/orders/:code/status", c.Order.Status)
	pub.GET("/orders/:code/payment", c.Payment.Poll)
	pub.POST("/payment/payos/webhook", c.Payment.HandleWebhook)

	jwtMW := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})

	// Authenticated customers.
	user := e.Group("/v1", jwtMW)
	user.POST("/orders", c.Order.Create)
	user.POST("/orders/:code/cancel", c.Order.Cancel)
	user.POST("/orders/:code/feedback", c.Order.Feedback)

	// Back office.
	admin := e.Group("/v1/admin", jwtMW, AdminOnly())
	admin.GET("/orders", c.Order.List)
	admin.PUT("/orders/:id/approve", c.Order.Approve)
	admin.PUT("/orders/:id/reject", c.Order.Reject)
	admin.PUT("/orders/:id/complete", c.Order.Complete)
	admin.DELETE("/orders/:id", c.Order.Delete)

	admin.POST("/items", c.Item.Create)
	admin.PUT("/items/:id", c.Item.Update)
	admin.DELETE("/items/:id", c.Item.Delete)
	admin.POST("/items/:id/image", c.Item.UploadImage)

	admin.POST("/categories", c.Category.Create)
	admin.PUT("/categories/:id", c.Category.Update)
	admin.DELETE("/categories/:id", c.Category.Delete)
}
