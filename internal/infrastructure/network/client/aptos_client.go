package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"odyssey_gateway/internal/app/port"
	"odyssey_gateway/internal/domain/entity"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrViewEmpty is returned when a view function returns no values.
var ErrViewEmpty = errors.New("view function returned no values")

// ErrResourceNotFound matches API errors reporting a missing account or resource.
var ErrResourceNotFound = errors.New("resource not found")

const gasPriceCacheKey = "gas_unit_price"

// APIError is a non-2xx response from the fullnode.
type APIError struct {
	StatusCode  int    `json:"-"`
	Message     string `json:"message"`
	ErrorCode   string `json:"error_code"`
	VMErrorCode *int   `json:"vm_error_code,omitempty"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("fullnode returned %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("fullnode returned %d: %s", e.StatusCode, e.Message)
}

// Is reports resource_not_found / account_not_found errors as ErrResourceNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrResourceNotFound &&
		(e.ErrorCode == "resource_not_found" || e.ErrorCode == "account_not_found")
}

// Options tune an AptosClient.
type Options struct {
	Timeout           time.Duration
	RateLimit         int
	BurstLimit        int
	GasPriceCacheTTL  time.Duration
	MaxGasAmount      uint64
	ExpirationSeconds int64
	MaxConnsPerHost   int
}

// AptosClient implements port.FullnodeClient over the fullnode REST API.
type AptosClient struct {
	http     *fasthttp.Client
	baseURL  string
	netDef   entity.NetworkDefinition
	opts     Options
	limiter  *rate.Limiter
	gasCache *cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

var _ port.FullnodeClient = (*AptosClient)(nil)

type viewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

type accountResponse struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

type gasEstimateResponse struct {
	GasEstimate uint64 `json:"gas_estimate"`
}

type transactionSignature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// transactionRequest serves both encode_submission (no signature) and submission.
type transactionRequest struct {
	Sender                  string                      `json:"sender"`
	SequenceNumber          string                      `json:"sequence_number"`
	MaxGasAmount            string                      `json:"max_gas_amount"`
	GasUnitPrice            string                      `json:"gas_unit_price"`
	ExpirationTimestampSecs string                      `json:"expiration_timestamp_secs"`
	Payload                 entity.EntryFunctionPayload `json:"payload"`
	Signature               *transactionSignature       `json:"signature,omitempty"`
}

// NewAptosClient creates a client for the given network definition.
func NewAptosClient(netDef entity.NetworkDefinition, opts Options, logger *zap.Logger) *AptosClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.BurstLimit <= 0 {
		opts.BurstLimit = 1
	}
	if opts.GasPriceCacheTTL <= 0 {
		opts.GasPriceCacheTTL = time.Minute
	}
	if opts.MaxGasAmount == 0 {
		opts.MaxGasAmount = 200000
	}
	if opts.ExpirationSeconds <= 0 {
		opts.ExpirationSeconds = 600
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AptosClient{
		http: &fasthttp.Client{
			Name:            "odyssey-gateway",
			MaxConnsPerHost: opts.MaxConnsPerHost,
			ReadTimeout:     opts.Timeout,
			WriteTimeout:    opts.Timeout,
		},
		baseURL:  strings.TrimRight(netDef.FullnodeURL, "/"),
		netDef:   netDef,
		opts:     opts,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), opts.BurstLimit),
		gasCache: cache.New(opts.GasPriceCacheTTL, 2*opts.GasPriceCacheTTL),
		logger:   logger.Named("AptosClient").With(zap.String("network", string(netDef.Network))),
		now:      time.Now,
	}
}

// Definition returns the network definition for this client.
func (c *AptosClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// View calls a Move view function.
func (c *AptosClient) View(ctx context.Context, function string, typeArguments []string, arguments []any) ([]json.RawMessage, error) {
	if typeArguments == nil {
		typeArguments = []string{}
	}
	if arguments == nil {
		arguments = []any{}
	}
	var out []json.RawMessage
	req := viewRequest{Function: function, TypeArguments: typeArguments, Arguments: arguments}
	if err := c.do(ctx, fasthttp.MethodPost, "/view", req, &out); err != nil {
		return nil, fmt.Errorf("view %s failed: %w", function, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("view %s: %w", function, ErrViewEmpty)
	}
	return out, nil
}

// SequenceNumber returns the next sequence number of address.
func (c *AptosClient) SequenceNumber(ctx context.Context, address string) (uint64, error) {
	var acc accountResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/accounts/"+address, nil, &acc); err != nil {
		return 0, fmt.Errorf("failed to fetch account %s: %w", address, err)
	}
	seq, err := strconv.ParseUint(acc.SequenceNumber, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sequence number %q for %s: %w", acc.SequenceNumber, address, err)
	}
	return seq, nil
}

// GasUnitPrice returns the estimated gas unit price, cached for GasPriceCacheTTL.
func (c *AptosClient) GasUnitPrice(ctx context.Context) (uint64, error) {
	if cached, ok := c.gasCache.Get(gasPriceCacheKey); ok {
		return cached.(uint64), nil
	}
	var est gasEstimateResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/estimate_gas_price", nil, &est); err != nil {
		return 0, fmt.Errorf("failed to estimate gas price: %w", err)
	}
	c.gasCache.SetDefault(gasPriceCacheKey, est.GasEstimate)
	c.logger.Debug("Gas price estimate cached", zap.Uint64("gas_unit_price", est.GasEstimate))
	return est.GasEstimate, nil
}

// SignAndSubmit implements port.FullnodeClient.
func (c *AptosClient) SignAndSubmit(ctx context.Context, signer port.Signer, payload entity.EntryFunctionPayload) (json.RawMessage, error) {
	var seq, gasPrice uint64

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		seq, err = c.SequenceNumber(egCtx, signer.Address())
		return err
	})
	eg.Go(func() error {
		var err error
		gasPrice, err = c.GasUnitPrice(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	txn := transactionRequest{
		Sender:                  signer.Address(),
		SequenceNumber:          strconv.FormatUint(seq, 10),
		MaxGasAmount:            strconv.FormatUint(c.opts.MaxGasAmount, 10),
		GasUnitPrice:            strconv.FormatUint(gasPrice, 10),
		ExpirationTimestampSecs: strconv.FormatInt(c.now().Unix()+c.opts.ExpirationSeconds, 10),
		Payload:                 payload,
	}

	var signingMessageHex string
	if err := c.do(ctx, fasthttp.MethodPost, "/transactions/encode_submission", txn, &signingMessageHex); err != nil {
		return nil, fmt.Errorf("failed to encode submission for %s: %w", payload.Function, err)
	}
	signingMessage, err := hexutil.Decode(signingMessageHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing message %q: %w", signingMessageHex, err)
	}

	txn.Signature = &transactionSignature{
		Type:      "ed25519_signature",
		PublicKey: signer.PublicKeyHex(),
		Signature: hexutil.Encode(signer.Sign(signingMessage)),
	}

	var pending json.RawMessage
	if err := c.do(ctx, fasthttp.MethodPost, "/transactions", txn, &pending); err != nil {
		return nil, fmt.Errorf("failed to submit %s: %w", payload.Function, err)
	}
	c.logger.Info("Transaction submitted",
		zap.String("function", payload.Function),
		zap.String("sender", txn.Sender),
		zap.String("sequence_number", txn.SequenceNumber))
	return pending, nil
}

func (c *AptosClient) do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	requestURL := c.baseURL + path
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		payload, err := jsonAPI.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", requestURL, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := c.now().Add(c.opts.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	c.logger.Debug("Fullnode request", zap.String("method", method), zap.String("url", requestURL))
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := &APIError{StatusCode: status}
		if err := jsonAPI.Unmarshal(rawBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(rawBody)
		}
		c.logger.Warn("Fullnode request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.String("error_code", apiErr.ErrorCode))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := jsonAPI.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w. Body: %s", requestURL, err, string(rawBody))
	}
	return nil
}
