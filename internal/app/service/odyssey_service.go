package service

import (
	"context"
	"encoding/json"

	"odyssey_gateway/internal/app/port"
	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/domain/entity"
)

// initialAssetIndex is the artwork uploaded as placeholder for delayed-reveal mints.
const initialAssetIndex = 0

// ErrorRecorder counts failed odyssey client operations.
type ErrorRecorder interface {
	RecordSDKError(operation string)
}

// OdysseyServiceImpl implements port.OdysseyService.
type OdysseyServiceImpl struct {
	client       port.OdysseyClient
	resolver     port.NetworkResolver
	signerLoader port.SignerLoader
	recorder     ErrorRecorder
	logger       port.Logger
	cfg          *config.Config
}

// NewOdysseyService creates a new instance of OdysseyServiceImpl.
func NewOdysseyService(
	client port.OdysseyClient,
	resolver port.NetworkResolver,
	signerLoader port.SignerLoader,
	recorder ErrorRecorder,
	l port.Logger,
	cfg *config.Config,
) port.OdysseyService {
	return &OdysseyServiceImpl{
		client:       client,
		resolver:     resolver,
		signerLoader: signerLoader,
		recorder:     recorder,
		logger:       l.With("resource_account", cfg.ResourceAccount),
		cfg:          cfg,
	}
}

func (s *OdysseyServiceImpl) network() entity.NetworkDefinition {
	return s.resolver.Resolve(s.cfg.Network)
}

func (s *OdysseyServiceImpl) fail(operation string, err error) error {
	if s.recorder != nil {
		s.recorder.RecordSDKError(operation)
	}
	return err
}

// GetOdyssey reads the odyssey resource held by the resource account.
func (s *OdysseyServiceImpl) GetOdyssey(ctx context.Context) (json.RawMessage, error) {
	res, err := s.client.GetOdyssey(ctx, s.network(), s.cfg.ResourceAccount)
	if err != nil {
		return nil, s.fail("get_odyssey", err)
	}
	return res, nil
}

// GetStage reads the current mint stage.
func (s *OdysseyServiceImpl) GetStage(ctx context.Context) (json.RawMessage, error) {
	res, err := s.client.GetStage(ctx, s.network(), s.cfg.ResourceAccount)
	if err != nil {
		return nil, s.fail("get_stage", err)
	}
	return res, nil
}

// GetAllowListBalance reads the allowlist mint balance of address.
func (s *OdysseyServiceImpl) GetAllowListBalance(ctx context.Context, address string) (uint64, error) {
	balance, err := s.client.GetAllowListBalance(ctx, s.network(), s.cfg.ResourceAccount, address)
	if err != nil {
		return 0, s.fail("get_allowlist_balance", err)
	}
	return balance, nil
}

// GetPublicListBalance reads the public-list mint balance of address.
func (s *OdysseyServiceImpl) GetPublicListBalance(ctx context.Context, address string) (uint64, error) {
	balance, err := s.client.GetPublicListBalance(ctx, s.network(), s.cfg.ResourceAccount, address)
	if err != nil {
		return 0, s.fail("get_publiclist_balance", err)
	}
	return balance, nil
}

// GetMintPayloads builds the unsigned mint payloads for address. With a delayed
// reveal the placeholder artwork is uploaded first and its URI is minted;
// otherwise base_token_uri is used as is.
func (s *OdysseyServiceImpl) GetMintPayloads(ctx context.Context, address, mintQty string) ([]entity.EntryFunctionPayload, error) {
	netDef := s.network()

	tokenURI := s.cfg.BaseTokenURI
	if s.cfg.DelayedReveal() {
		uri, err := s.client.UploadNFT(ctx, initialAssetIndex, s.cfg.Collection.AssetDir, s.cfg.Storage.Arweave.KeyFilePath)
		if err != nil {
			return nil, s.fail("upload_nft", err)
		}
		s.logger.Debug("Placeholder asset uploaded", "uri", uri)
		tokenURI = uri
	}

	payloads, err := s.client.GetMintToPayloads(ctx, address, s.cfg.ResourceAccount, mintQty, netDef, tokenURI)
	if err != nil {
		return nil, s.fail("get_mint_to_payloads", err)
	}
	return payloads, nil
}

// UpdateMetadataImage reveals tokenNo. Nothing happens while the reveal is
// delayed: the result is nil and neither the network nor the signer is touched.
func (s *OdysseyServiceImpl) UpdateMetadataImage(ctx context.Context, tokenNo, tokenAddress string) (json.RawMessage, error) {
	if s.cfg.DelayedReveal() {
		s.logger.Debug("Reveal is delayed, skipping metadata update", "token_no", tokenNo)
		return nil, nil
	}

	netDef := s.network()
	creator, err := s.signerLoader(s.cfg.PrivateKey)
	if err != nil {
		return nil, s.fail("load_signer", err)
	}

	txn, err := s.client.UpdateMetadataImage(ctx, netDef, s.cfg.ResourceAccount, creator, entity.MetadataUpdateRequest{
		TokenNo:        tokenNo,
		TokenAddress:   tokenAddress,
		AssetDir:       s.cfg.Collection.AssetDir,
		KeyFilePath:    s.cfg.Storage.Arweave.KeyFilePath,
		RandomTrait:    s.cfg.RandomTrait,
		CollectionName: s.cfg.Collection.CollectionName,
		Description:    s.cfg.Collection.Description,
	})
	if err != nil {
		return nil, s.fail("update_metadata_image", err)
	}
	s.logger.Info("Token metadata updated", "token_no", tokenNo, "token_address", tokenAddress, "network", string(netDef.Network))
	return txn, nil
}

// NetworkName returns the configured network string as written.
func (s *OdysseyServiceImpl) NetworkName() string {
	return s.cfg.Network
}
