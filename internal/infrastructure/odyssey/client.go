// Package odyssey implements the odyssey client capability on top of an
// Aptos fullnode and Arweave storage.
package odyssey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"odyssey_gateway/internal/app/port"
	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/domain/entity"
	"odyssey_gateway/internal/infrastructure/network/client"
	"odyssey_gateway/internal/infrastructure/storage/arweave"
	"odyssey_gateway/internal/pkg/utils"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Move function names of the odyssey module.
const (
	fnGetOdyssey           = "get_odyssey"
	fnGetStage             = "get_stage"
	fnGetAllowListBalance  = "get_allowlist_balance"
	fnGetPublicListBalance = "get_publiclist_balance"
	fnMintTo               = "mint_to"
	fnUpdateMetadataImage  = "update_metadata_image"
)

// Uploader stores bytes permanently and returns their URI.
type Uploader interface {
	Upload(ctx context.Context, keyFilePath string, data []byte, contentType string, tags ...arweave.Tag) (string, error)
}

// AssetSource reads artwork and metadata templates from the asset directory.
type AssetSource interface {
	Image(assetDir, index string) (entity.Asset, error)
	ImageIndexes(assetDir string) ([]string, error)
	Metadata(assetDir, index string) (map[string]any, bool, error)
}

// Client implements port.OdysseyClient.
type Client struct {
	clients       port.FullnodeClientProvider
	uploader      Uploader
	assets        AssetSource
	moduleAddress string
	moduleName    string
	maxMintPerTxn uint64
	randIntN      func(n int) int
	logger        *zap.Logger
}

var _ port.OdysseyClient = (*Client)(nil)

// NewClient creates an odyssey client.
func NewClient(
	clients port.FullnodeClientProvider,
	uploader Uploader,
	assets AssetSource,
	cfg config.OdysseyConfig,
	logger *zap.Logger,
) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxMint := uint64(0)
	if cfg.MaxMintPerTxn > 0 {
		maxMint = uint64(cfg.MaxMintPerTxn)
	}
	return &Client{
		clients:       clients,
		uploader:      uploader,
		assets:        assets,
		moduleAddress: utils.NormalizeAddress(cfg.ModuleAddress),
		moduleName:    cfg.ModuleName,
		maxMintPerTxn: maxMint,
		randIntN:      rand.Intn,
		logger:        logger.Named("OdysseyClient"),
	}
}

func (c *Client) function(name string) string {
	return fmt.Sprintf("%s::%s::%s", c.moduleAddress, c.moduleName, name)
}

// GetOdyssey implements port.NetworkStateReader.
func (c *Client) GetOdyssey(ctx context.Context, network entity.NetworkDefinition, resourceAccount string) (json.RawMessage, error) {
	return c.viewObject(ctx, network, fnGetOdyssey, resourceAccount)
}

// GetStage implements port.NetworkStateReader.
func (c *Client) GetStage(ctx context.Context, network entity.NetworkDefinition, resourceAccount string) (json.RawMessage, error) {
	return c.viewObject(ctx, network, fnGetStage, resourceAccount)
}

// GetAllowListBalance implements port.BalanceReader.
func (c *Client) GetAllowListBalance(ctx context.Context, network entity.NetworkDefinition, resourceAccount, address string) (uint64, error) {
	return c.viewU64(ctx, network, fnGetAllowListBalance, resourceAccount, address)
}

// GetPublicListBalance implements port.BalanceReader.
func (c *Client) GetPublicListBalance(ctx context.Context, network entity.NetworkDefinition, resourceAccount, address string) (uint64, error) {
	return c.viewU64(ctx, network, fnGetPublicListBalance, resourceAccount, address)
}

// GetMintToPayloads implements port.PayloadBuilder. When max_mint_per_txn is set
// and mintQty is numeric, the quantity is split over several payloads.
func (c *Client) GetMintToPayloads(_ context.Context, address, resourceAccount, mintQty string, network entity.NetworkDefinition, tokenURI string) ([]entity.EntryFunctionPayload, error) {
	fn := c.function(fnMintTo)

	qty, err := strconv.ParseUint(strings.TrimSpace(mintQty), 10, 64)
	if err != nil || c.maxMintPerTxn == 0 || qty <= c.maxMintPerTxn {
		return []entity.EntryFunctionPayload{
			entity.NewEntryFunctionPayload(fn, resourceAccount, address, mintQty, tokenURI),
		}, nil
	}

	batches := utils.BatchQuantity(qty, c.maxMintPerTxn)
	payloads := make([]entity.EntryFunctionPayload, 0, len(batches))
	for _, n := range batches {
		payloads = append(payloads, entity.NewEntryFunctionPayload(fn, resourceAccount, address, strconv.FormatUint(n, 10), tokenURI))
	}
	c.logger.Debug("Mint payloads built",
		zap.String("network", string(network.Network)),
		zap.String("address", address),
		zap.Uint64("quantity", qty),
		zap.Int("payloads", len(payloads)))
	return payloads, nil
}

// UploadNFT implements port.AssetUploader.
func (c *Client) UploadNFT(ctx context.Context, index int, assetDir, keyFilePath string) (string, error) {
	return c.uploadAsset(ctx, strconv.Itoa(index), assetDir, keyFilePath, nil)
}

// UpdateMetadataImage implements port.MetadataUpdater.
func (c *Client) UpdateMetadataImage(ctx context.Context, network entity.NetworkDefinition, resourceAccount string, creator port.Signer, req entity.MetadataUpdateRequest) (json.RawMessage, error) {
	index := req.TokenNo
	if req.RandomTrait {
		indexes, err := c.assets.ImageIndexes(req.AssetDir)
		if err != nil {
			return nil, err
		}
		index = indexes[c.randIntN(len(indexes))]
		c.logger.Debug("Random trait selected", zap.String("token_no", req.TokenNo), zap.String("asset_index", index))
	}

	defaults := &entity.TokenMetadata{
		Name:        fmt.Sprintf("%s #%s", req.CollectionName, req.TokenNo),
		Description: req.Description,
	}
	uri, err := c.uploadAsset(ctx, index, req.AssetDir, req.KeyFilePath, defaults)
	if err != nil {
		return nil, err
	}

	fullnode, err := c.clients.GetClient(network)
	if err != nil {
		return nil, err
	}
	payload := entity.NewEntryFunctionPayload(c.function(fnUpdateMetadataImage), resourceAccount, req.TokenAddress, uri)
	return fullnode.SignAndSubmit(ctx, creator, payload)
}

// uploadAsset uploads image index and, when a template or defaults exist, a
// metadata document pointing at it. The metadata URI wins over the image URI.
func (c *Client) uploadAsset(ctx context.Context, index, assetDir, keyFilePath string, defaults *entity.TokenMetadata) (string, error) {
	asset, err := c.assets.Image(assetDir, index)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read asset %s: %w", asset.Path, err)
	}
	imageURI, err := c.uploader.Upload(ctx, keyFilePath, data, asset.ContentType, arweave.Tag{Name: "Asset-Index", Value: index})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", asset.Path, err)
	}

	doc, ok, err := c.assets.Metadata(assetDir, index)
	if err != nil {
		return "", err
	}
	var body []byte
	switch {
	case !ok && defaults == nil:
		return imageURI, nil
	case !ok:
		meta := *defaults
		meta.Image = imageURI
		body, err = jsonAPI.Marshal(meta)
	default:
		if defaults != nil {
			setIfMissing(doc, "name", defaults.Name)
			setIfMissing(doc, "description", defaults.Description)
		}
		doc["image"] = imageURI
		body, err = jsonAPI.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata for asset %s: %w", index, err)
	}
	metadataURI, err := c.uploader.Upload(ctx, keyFilePath, body, "application/json", arweave.Tag{Name: "Asset-Index", Value: index})
	if err != nil {
		return "", fmt.Errorf("failed to upload metadata for asset %s: %w", index, err)
	}
	return metadataURI, nil
}

func setIfMissing(doc map[string]any, key, value string) {
	if value == "" {
		return
	}
	if v, ok := doc[key]; !ok || v == nil || v == "" {
		doc[key] = value
	}
}

func (c *Client) view(ctx context.Context, network entity.NetworkDefinition, name string, args ...any) (json.RawMessage, error) {
	fullnode, err := c.clients.GetClient(network)
	if err != nil {
		return nil, err
	}
	values, err := fullnode.View(ctx, c.function(name), nil, args)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

func (c *Client) viewObject(ctx context.Context, network entity.NetworkDefinition, name string, args ...any) (json.RawMessage, error) {
	value, err := c.view(ctx, network, name, args...)
	if errors.Is(err, client.ErrViewEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isNull(value) {
		return nil, nil
	}
	return value, nil
}

func (c *Client) viewU64(ctx context.Context, network entity.NetworkDefinition, name string, args ...any) (uint64, error) {
	value, err := c.view(ctx, network, name, args...)
	if err != nil {
		return 0, err
	}
	return parseU64(value)
}

// parseU64 accepts the Move u64 string form ("12") as well as a bare JSON number.
func parseU64(raw json.RawMessage) (uint64, error) {
	if isNull(raw) {
		return 0, nil
	}
	var s string
	if err := jsonAPI.Unmarshal(raw, &s); err == nil {
		return strconv.ParseUint(s, 10, 64)
	}
	var n uint64
	if err := jsonAPI.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("unexpected u64 value %s: %w", raw, err)
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
