package arweave

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const appName = "odyssey-gateway"

// Tag is a name/value pair attached to a transaction.
type Tag struct {
	Name  string
	Value string
}

type encodedTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// transaction is a format 1 arweave transaction carrying its data inline.
type transaction struct {
	Format    int          `json:"format"`
	ID        string       `json:"id"`
	LastTx    string       `json:"last_tx"`
	Owner     string       `json:"owner"`
	Tags      []encodedTag `json:"tags"`
	Target    string       `json:"target"`
	Quantity  string       `json:"quantity"`
	Data      string       `json:"data"`
	DataSize  string       `json:"data_size"`
	DataRoot  string       `json:"data_root"`
	Reward    string       `json:"reward"`
	Signature string       `json:"signature"`
}

// UploadRecorder receives one call per upload attempt.
type UploadRecorder interface {
	RecordUpload(contentType string, size int, err error)
}

// Uploader posts data transactions to an arweave node.
type Uploader struct {
	client     *fasthttp.Client
	gatewayURL string
	timeout    time.Duration
	recorder   UploadRecorder
	logger     *zap.Logger

	mu      sync.Mutex
	wallets map[string]*Wallet
}

// NewUploader creates an uploader targeting gatewayURL (e.g. https://arweave.net).
func NewUploader(gatewayURL string, timeout time.Duration, recorder UploadRecorder, logger *zap.Logger) *Uploader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		client:     &fasthttp.Client{Name: appName, ReadTimeout: timeout, WriteTimeout: timeout},
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		timeout:    timeout,
		recorder:   recorder,
		logger:     logger.Named("ArweaveUploader"),
		wallets:    make(map[string]*Wallet),
	}
}

// Wallet returns the wallet stored at keyFilePath, loading it on first use.
func (u *Uploader) Wallet(keyFilePath string) (*Wallet, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if w, ok := u.wallets[keyFilePath]; ok {
		return w, nil
	}
	w, err := LoadWallet(keyFilePath)
	if err != nil {
		return nil, err
	}
	u.logger.Info("Arweave wallet loaded", zap.String("address", w.Address()), zap.String("path", keyFilePath))
	u.wallets[keyFilePath] = w
	return w, nil
}

// URI returns the gateway URL under which transaction id is served.
func (u *Uploader) URI(id string) string {
	return u.gatewayURL + "/" + id
}

// Upload signs data with the wallet at keyFilePath, posts it and returns its URI.
func (u *Uploader) Upload(ctx context.Context, keyFilePath string, data []byte, contentType string, tags ...Tag) (uri string, err error) {
	defer func() {
		if u.recorder != nil {
			u.recorder.RecordUpload(contentType, len(data), err)
		}
	}()

	wallet, err := u.Wallet(keyFilePath)
	if err != nil {
		return "", err
	}

	reward, err := u.getText(ctx, "/price/"+strconv.Itoa(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to fetch upload price: %w", err)
	}
	anchor, err := u.getText(ctx, "/tx_anchor")
	if err != nil {
		return "", fmt.Errorf("failed to fetch transaction anchor: %w", err)
	}

	allTags := append([]Tag{{Name: "Content-Type", Value: contentType}, {Name: "App-Name", Value: appName}}, tags...)
	tx, err := buildTransaction(wallet, data, reward, anchor, allTags)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	if err := u.post(ctx, "/tx", body); err != nil {
		return "", fmt.Errorf("failed to post transaction %s: %w", tx.ID, err)
	}

	u.logger.Info("Uploaded to arweave",
		zap.String("id", tx.ID),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
		zap.String("reward", reward))
	return u.URI(tx.ID), nil
}

// buildTransaction assembles and signs a format 1 transaction.
func buildTransaction(w *Wallet, data []byte, reward, anchor string, tags []Tag) (*transaction, error) {
	lastTx, err := b64.DecodeString(anchor)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction anchor %q: %w", anchor, err)
	}

	tx := &transaction{
		Format:   1,
		LastTx:   anchor,
		Owner:    w.Owner(),
		Tags:     make([]encodedTag, 0, len(tags)),
		Quantity: "0",
		Data:     b64.EncodeToString(data),
		DataSize: strconv.Itoa(len(data)),
		Reward:   reward,
	}
	for _, t := range tags {
		tx.Tags = append(tx.Tags, encodedTag{
			Name:  b64.EncodeToString([]byte(t.Name)),
			Value: b64.EncodeToString([]byte(t.Value)),
		})
	}

	sig, err := w.Sign(signatureData(w.owner, data, tx.Quantity, reward, lastTx, tags))
	if err != nil {
		return nil, err
	}
	id := sha256.Sum256(sig)
	tx.Signature = b64.EncodeToString(sig)
	tx.ID = b64.EncodeToString(id[:])
	return tx, nil
}

// signatureData concatenates owner, target (empty), data, quantity, reward, last_tx and tags.
func signatureData(owner, data []byte, quantity, reward string, lastTx []byte, tags []Tag) []byte {
	var buf bytes.Buffer
	buf.Write(owner)
	buf.Write(data)
	buf.WriteString(quantity)
	buf.WriteString(reward)
	buf.Write(lastTx)
	for _, t := range tags {
		buf.WriteString(t.Name)
		buf.WriteString(t.Value)
	}
	return buf.Bytes()
}

func (u *Uploader) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(u.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	return deadline
}

func (u *Uploader) getText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(u.gatewayURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := u.client.DoDeadline(req, resp, u.deadline(ctx)); err != nil {
		return "", err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode(), resp.Body())
	}
	return strings.TrimSpace(string(resp.Body())), nil
}

func (u *Uploader) post(ctx context.Context, path string, body []byte) error {
	// DoDeadline ignores cancellation, only the deadline.
	if err := ctx.Err(); err != nil {
		return err
	}
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(u.gatewayURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := u.client.DoDeadline(req, resp, u.deadline(ctx)); err != nil {
		return err
	}
	// 208 means the node already has the transaction.
	if s := resp.StatusCode(); s != fasthttp.StatusOK && s != fasthttp.StatusAlreadyReported {
		return fmt.Errorf("POST %s returned %d: %s", path, s, resp.Body())
	}
	return nil
}
