// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"carrental/internal/http/handlers"
	"carrental/internal/http/middleware"
	"carrental/internal/infra"
	"carrental/internal/modules/configurator"
	"carrental/internal/modules/fleet"
	"carrental/internal/modules/rental"
	"carrental/internal/modules/user"
)

type RouterDeps struct {
	Fleet        *fleet.Service
	Configurator *configurator.Service
	Rentals      *rental.Service
	Users        *user.Service
	Verifier     infra.TokenVerifier
	Log          zerolog.Logger
	CORSOrigins  []string
	Pprof        bool
	Currency     string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(deps.Log),
		middleware.Recovery(),
		middleware.CORS(deps.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Pprof {
		pprof.Register(r)
	}

	authH := handlers.NewAuthHandler(deps.Users)
	vehicleH := handlers.NewVehicleHandler(deps.Fleet, deps.Currency)
	quoteH := handlers.NewQuoteHandler(deps.Configurator)
	rentalH := handlers.NewRentalHandler(deps.Rentals, deps.Configurator, deps.Users)

	api := r.Group("/api")
	api.POST("/login", authH.Login)
	api.GET("/categories", vehicleH.Categories)
	api.GET("/vehicles", vehicleH.List)
	api.GET("/brands", vehicleH.Brands)

	authed := api.Group("", middleware.Auth(deps.Verifier))
	authed.GET("/freeCar", vehicleH.FreeCars)
	authed.POST("/quotes", quoteH.Quote)
	authed.POST("/payment", quoteH.Payment)
	authed.POST("/rentals", rentalH.Book)
	authed.GET("/rentals", rentalH.List)
	authed.DELETE("/rentals/:id", rentalH.Cancel)
	authed.GET("/users/me", rentalH.Me)

	return r
}
