package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
// registry may be nil, in which case /metrics is not mounted.
func SetupRouter(handler *OdysseyHandler, observer HTTPObserver, registry *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	router.Use(cors.New(corsConfig))

	router.Use(RequestIDMiddleware())
	router.Use(ZapLoggerMiddleware(logger))
	if observer != nil {
		router.Use(MetricsMiddleware(observer))
	}
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/get-odyssey", handler.GetOdyssey)
		api.GET("/get-stage", handler.GetStage)
		api.GET("/allowlist-balance/:address", handler.GetAllowListBalance)
		api.GET("/publiclist-balance/:address", handler.GetPublicListBalance)
		api.GET("/get-mint-txn/:address/:mintQty", handler.GetMintTxn)
		api.GET("/update-metadata-image/:tokenNo/:tokenAddress", handler.UpdateMetadataImage)
		api.GET("/get-network", handler.GetNetwork)
	}

	router.GET("/healthz", handler.Health)
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return router
}
