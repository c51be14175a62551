package arweave

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	testKeyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		testKey = k
	})
	return testKey
}

func toJWK(k *rsa.PrivateKey) jwk {
	enc := func(i *big.Int) string { return b64.EncodeToString(i.Bytes()) }
	return jwk{
		Kty: "RSA",
		N:   enc(k.N),
		E:   enc(big.NewInt(int64(k.E))),
		D:   enc(k.D),
		P:   enc(k.Primes[0]),
		Q:   enc(k.Primes[1]),
	}
}

func writeKeyFile(t *testing.T, k jwk) string {
	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal jwk: %v", err)
	}
	path := filepath.Join(t.TempDir(), "arweave-key.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write jwk: %v", err)
	}
	return path
}

type recordedUpload struct {
	contentType string
	size        int
	err         error
}

type fakeRecorder struct {
	mu      sync.Mutex
	uploads []recordedUpload
}

func (r *fakeRecorder) RecordUpload(contentType string, size int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, recordedUpload{contentType, size, err})
}

func TestWallet(t *testing.T) {
	Convey("Given an RSA JWK key file", t, func() {
		key := rsaKey(t)
		w, err := LoadWallet(writeKeyFile(t, toJWK(key)))
		So(err, ShouldBeNil)

		Convey("Then the address is base64url(sha256(n))", func() {
			sum := sha256.Sum256(key.N.Bytes())
			So(w.Address(), ShouldEqual, b64.EncodeToString(sum[:]))
			So(w.Address(), ShouldHaveLength, 43)
		})

		Convey("Then the owner is the base64url modulus", func() {
			So(w.Owner(), ShouldEqual, b64.EncodeToString(key.N.Bytes()))
		})

		Convey("Then signatures round-trip through Verify", func() {
			sig, err := w.Sign([]byte("payload"))
			So(err, ShouldBeNil)
			So(w.Verify([]byte("payload"), sig), ShouldBeNil)
			So(w.Verify([]byte("tampered"), sig), ShouldNotBeNil)
		})
	})

	Convey("Given malformed key material", t, func() {
		k := toJWK(rsaKey(t))

		Convey("A non RSA key type is rejected", func() {
			k.Kty = "EC"
			_, err := walletFromJWK(k)
			So(errors.Is(err, ErrInvalidKeyFile), ShouldBeTrue)
		})

		Convey("A missing prime is rejected", func() {
			k.P = ""
			_, err := walletFromJWK(k)
			So(errors.Is(err, ErrInvalidKeyFile), ShouldBeTrue)
		})

		Convey("A missing file is rejected", func() {
			_, err := LoadWallet(filepath.Join(t.TempDir(), "nope.json"))
			So(errors.Is(err, ErrInvalidKeyFile), ShouldBeTrue)
		})
	})
}

func TestBuildTransaction(t *testing.T) {
	Convey("Given a wallet and data", t, func() {
		w, err := walletFromJWK(toJWK(rsaKey(t)))
		So(err, ShouldBeNil)

		anchorBytes := make([]byte, 48)
		_, _ = rand.Read(anchorBytes)
		anchor := b64.EncodeToString(anchorBytes)
		data := []byte(`{"name":"Odyssey #1"}`)
		tags := []Tag{{Name: "Content-Type", Value: "application/json"}}

		tx, err := buildTransaction(w, data, "12345", anchor, tags)
		So(err, ShouldBeNil)

		Convey("Then the id is sha256 of the signature", func() {
			sig, err := b64.DecodeString(tx.Signature)
			So(err, ShouldBeNil)
			sum := sha256.Sum256(sig)
			So(tx.ID, ShouldEqual, b64.EncodeToString(sum[:]))
		})

		Convey("Then the signature covers the format 1 signature data", func() {
			sig, _ := b64.DecodeString(tx.Signature)
			sigData := signatureData(w.owner, data, "0", "12345", anchorBytes, tags)
			So(w.Verify(sigData, sig), ShouldBeNil)
		})

		Convey("Then fields are encoded for the node", func() {
			So(tx.Format, ShouldEqual, 1)
			So(tx.LastTx, ShouldEqual, anchor)
			So(tx.DataSize, ShouldEqual, "21")
			So(tx.Data, ShouldEqual, b64.EncodeToString(data))
			So(tx.Tags, ShouldHaveLength, 1)
			So(tx.Tags[0].Name, ShouldEqual, b64.EncodeToString([]byte("Content-Type")))
		})

		Convey("An invalid anchor is rejected", func() {
			_, err := buildTransaction(w, data, "1", "not base64!", tags)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestUploader(t *testing.T) {
	Convey("Given an arweave node", t, func() {
		keyPath := writeKeyFile(t, toJWK(rsaKey(t)))
		anchor := b64.EncodeToString([]byte("anchor-bytes-of-some-length-0123456789abcdefghij"))

		var (
			mu       sync.Mutex
			posted   []transaction
			txStatus = http.StatusOK
			onAnchor context.CancelFunc
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasPrefix(r.URL.Path, "/price/"):
				_, _ = io.WriteString(w, "1000")
			case r.URL.Path == "/tx_anchor":
				mu.Lock()
				cancel := onAnchor
				mu.Unlock()
				if cancel != nil {
					cancel()
				}
				_, _ = io.WriteString(w, anchor)
			case r.URL.Path == "/tx" && r.Method == http.MethodPost:
				var tx transaction
				body, _ := io.ReadAll(r.Body)
				if err := json.Unmarshal(body, &tx); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				mu.Lock()
				posted = append(posted, tx)
				status := txStatus
				mu.Unlock()
				w.WriteHeader(status)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		rec := &fakeRecorder{}
		u := NewUploader(srv.URL+"/", 5*time.Second, rec, nil)

		Convey("When uploading data", func() {
			uri, err := u.Upload(context.Background(), keyPath, []byte("png-bytes"), "image/png", Tag{Name: "Asset-Index", Value: "0"})

			Convey("Then the transaction is posted and its gateway URI returned", func() {
				So(err, ShouldBeNil)
				So(posted, ShouldHaveLength, 1)
				So(uri, ShouldEqual, srv.URL+"/"+posted[0].ID)
				So(posted[0].Reward, ShouldEqual, "1000")
				So(posted[0].LastTx, ShouldEqual, anchor)
				So(posted[0].Tags, ShouldHaveLength, 3)
			})

			Convey("Then the upload is recorded", func() {
				So(rec.uploads, ShouldHaveLength, 1)
				So(rec.uploads[0].contentType, ShouldEqual, "image/png")
				So(rec.uploads[0].size, ShouldEqual, 9)
				So(rec.uploads[0].err, ShouldBeNil)
			})
		})

		Convey("When the node already has the transaction", func() {
			mu.Lock()
			txStatus = http.StatusAlreadyReported
			mu.Unlock()
			_, err := u.Upload(context.Background(), keyPath, []byte("dup"), "text/plain")
			So(err, ShouldBeNil)
		})

		Convey("When the node rejects the transaction", func() {
			mu.Lock()
			txStatus = http.StatusBadRequest
			mu.Unlock()
			_, err := u.Upload(context.Background(), keyPath, []byte("bad"), "text/plain")
			So(err, ShouldNotBeNil)
			So(rec.uploads, ShouldHaveLength, 1)
			So(rec.uploads[0].err, ShouldNotBeNil)
		})

		Convey("When the key file is missing nothing is posted", func() {
			_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "none.json"), []byte("x"), "text/plain")
			So(errors.Is(err, ErrInvalidKeyFile), ShouldBeTrue)
			So(posted, ShouldBeEmpty)
		})

		Convey("When the caller goes away before the transaction is posted", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			mu.Lock()
			onAnchor = cancel
			mu.Unlock()

			_, err := u.Upload(ctx, keyPath, []byte("late"), "text/plain")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(posted, ShouldBeEmpty)
			So(rec.uploads[0].err, ShouldNotBeNil)
		})

		Convey("When the context is already cancelled the node is not contacted", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := u.Upload(ctx, keyPath, []byte("x"), "text/plain")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(posted, ShouldBeEmpty)
		})

		Convey("Wallets are loaded once per key file", func() {
			a, err := u.Wallet(keyPath)
			So(err, ShouldBeNil)
			b, err := u.Wallet(keyPath)
			So(err, ShouldBeNil)
			So(a, ShouldPointTo, b)
		})
	})
}
