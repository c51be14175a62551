package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"odyssey_gateway/internal/app/port"
)

// Log prefixes of the hard-failing routes.
const (
	errReadingOdyssey  = "Error reading odyssey:"
	errReadingStage    = "Error reading stage:"
	errReadingMintTxn  = "Error reading mint txn:"
	errUpdatingToken   = "Error updating TOKEN:"
	internalServerText = "Internal Server Error"
)

// OdysseyHandler обрабатывает HTTP запросы коллекции. Каждая ручка вызывает ровно
// одну операцию сервиса.
type OdysseyHandler struct {
	svc    port.OdysseyService
	logger *zap.Logger
}

// NewOdysseyHandler создает новый экземпляр OdysseyHandler.
func NewOdysseyHandler(svc port.OdysseyService, logger *zap.Logger) *OdysseyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OdysseyHandler{svc: svc, logger: logger.Named("OdysseyHandler")}
}

// hardFail logs err with prefix and answers 500.
func (h *OdysseyHandler) hardFail(c *gin.Context, prefix string, err error) {
	h.logger.Error(prefix+" "+err.Error(), zap.String("request_id", requestID(c)))
	c.JSON(http.StatusInternalServerError, gin.H{"error": internalServerText})
}

// softFail logs err and answers with the fallback body.
func (h *OdysseyHandler) softFail(c *gin.Context, route string, err error, fallback gin.H) {
	h.logger.Debug("Balance lookup failed, returning fallback",
		zap.String("route", route),
		zap.String("request_id", requestID(c)),
		zap.Error(err))
	c.JSON(http.StatusOK, fallback)
}

// GetOdyssey обрабатывает GET /api/get-odyssey.
func (h *OdysseyHandler) GetOdyssey(c *gin.Context) {
	res, err := h.svc.GetOdyssey(c.Request.Context())
	if err != nil {
		h.hardFail(c, errReadingOdyssey, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, gin.H{"odyssey": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"odyssey": res})
}

// GetStage обрабатывает GET /api/get-stage.
func (h *OdysseyHandler) GetStage(c *gin.Context) {
	res, err := h.svc.GetStage(c.Request.Context())
	if err != nil {
		h.hardFail(c, errReadingStage, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, gin.H{"stage": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stage": res})
}

// GetAllowListBalance обрабатывает GET /api/allowlist-balance/:address.
// Ошибки не приводят к 500: клиент получает нулевой баланс.
func (h *OdysseyHandler) GetAllowListBalance(c *gin.Context) {
	balance, err := h.svc.GetAllowListBalance(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.softFail(c, "allowlist-balance", err, gin.H{"balance": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetPublicListBalance обрабатывает GET /api/publiclist-balance/:address.
func (h *OdysseyHandler) GetPublicListBalance(c *gin.Context) {
	balance, err := h.svc.GetPublicListBalance(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.softFail(c, "publiclist-balance", err, gin.H{"balance": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetMintTxn обрабатывает GET /api/get-mint-txn/:address/:mintQty.
func (h *OdysseyHandler) GetMintTxn(c *gin.Context) {
	payloads, err := h.svc.GetMintPayloads(c.Request.Context(), c.Param("address"), c.Param("mintQty"))
	if err != nil {
		h.hardFail(c, errReadingMintTxn, err)
		return
	}
	if payloads == nil {
		c.JSON(http.StatusOK, gin.H{"payloads": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payloads": payloads})
}

// UpdateMetadataImage обрабатывает GET /api/update-metadata-image/:tokenNo/:tokenAddress.
func (h *OdysseyHandler) UpdateMetadataImage(c *gin.Context) {
	txn, err := h.svc.UpdateMetadataImage(c.Request.Context(), c.Param("tokenNo"), c.Param("tokenAddress"))
	if err != nil {
		h.hardFail(c, errUpdatingToken, err)
		return
	}
	if txn == nil {
		c.JSON(http.StatusOK, gin.H{"simpleTxn": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"simpleTxn": txn})
}

// GetNetwork обрабатывает GET /api/get-network.
func (h *OdysseyHandler) GetNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"network": h.svc.NetworkName()})
}

// Health обрабатывает GET /healthz.
func (h *OdysseyHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "network": h.svc.NetworkName()})
}
