package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"odyssey_gateway/internal/app/service"
	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/infrastructure/assetloader"
	clientprovider "odyssey_gateway/internal/infrastructure/network/client"
	networkdefinition "odyssey_gateway/internal/infrastructure/network/definition"
	"odyssey_gateway/internal/infrastructure/network/signer"
	"odyssey_gateway/internal/infrastructure/odyssey"
	"odyssey_gateway/internal/infrastructure/restapi"
	"odyssey_gateway/internal/infrastructure/storage/arweave"
	"odyssey_gateway/internal/pkg/logger"
	"odyssey_gateway/internal/pkg/metrics"
	"odyssey_gateway/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfgPath := utils.GetEnv("CONFIG_PATH", "config.json")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging)
	if err != nil {
		logrus.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.InstallSlog(zapLogger)

	zapLogger.Info("Configuration loaded",
		zap.String("path", cfgPath),
		zap.String("network", cfg.Network),
		zap.Bool("delayed_reveal", cfg.DelayedReveal()))

	// The creator key is only used for metadata updates; fail fast if it does not parse.
	if !cfg.DelayedReveal() {
		account, err := signer.FromPrivateKey(cfg.PrivateKey)
		if err != nil {
			zapLogger.Fatal("Invalid private_key", zap.Error(err))
		}
		zapLogger.Info("Creator account loaded", zap.String("address", account.Address()))
	}

	m := metrics.New()

	networkProvider := networkdefinition.NewNetworkDefinitionProvider(cfg.Networks)
	for _, def := range networkProvider.GetAllNetworkDefinitions() {
		zapLogger.Debug("Network available", zap.String("network", string(def.Network)), zap.String("fullnode_url", def.FullnodeURL))
	}
	netDef := networkProvider.Resolve(cfg.Network)
	zapLogger.Info("Network resolved",
		zap.String("network", string(netDef.Network)),
		zap.String("fullnode_url", netDef.FullnodeURL))

	clients := clientprovider.NewAptosClientProvider(cfg.RpcClient, zapLogger)
	rpcTimeout := time.Duration(cfg.RpcClient.TimeoutMs) * time.Millisecond
	uploader := arweave.NewUploader(cfg.Storage.Arweave.GatewayURL, rpcTimeout, m, zapLogger)
	assets := assetloader.NewAssetFileLoader(logger.NewZapAdapter(zapLogger.Named("AssetLoader")))

	odysseyClient := odyssey.NewClient(clients, uploader, assets, cfg.Odyssey, zapLogger)
	odysseySvc := service.NewOdysseyService(
		odysseyClient,
		networkProvider,
		signer.Load,
		m,
		logger.NewZapAdapter(zapLogger.Named("OdysseyService")),
		cfg,
	)
	zapLogger.Info("OdysseyService initialized")

	if zapLogger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewOdysseyHandler(odysseySvc, zapLogger)
	router := restapi.SetupRouter(handler, m, m.Registry(), zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}
