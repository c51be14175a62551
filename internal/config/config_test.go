package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"odyssey_gateway/internal/config"
)

const validYAML = `
network: testnet
resource_account: "0xabc"
private_key: "0x01"
collection:
  collection_name: Odyssey
  description: Test collection
  asset_dir: ./assets
storage:
  arweave:
    key_file_path: ./arweave.json
`

func TestParse(t *testing.T) {
	Convey("Given a minimal YAML config", t, func() {
		cfg, err := config.Parse([]byte(validYAML))

		Convey("Then it parses and applies defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Network, ShouldEqual, "testnet")
			So(cfg.Server.Port, ShouldEqual, ":3001")
			So(cfg.Server.WriteTimeout, ShouldEqual, 120)
			So(cfg.Logging.Level, ShouldEqual, "info")
			So(cfg.RpcClient.TimeoutMs, ShouldEqual, int64(30000))
			So(cfg.RpcClient.RateLimit, ShouldEqual, 20)
			So(cfg.RpcClient.MaxGasAmount, ShouldEqual, uint64(200000))
			So(cfg.Storage.Arweave.GatewayURL, ShouldEqual, "https://arweave.net")
			So(cfg.Odyssey.ModuleAddress, ShouldEqual, "0xabc")
			So(cfg.Odyssey.ModuleName, ShouldEqual, "odyssey")
			So(cfg.RpcClient.MaxConnsPerHost, ShouldEqual, 64)
		})
	})

	Convey("Given a JSON config document", t, func() {
		data := []byte(`{
  "network": "mainnet",
  "collection": {"collection_name": "C", "description": "D", "asset_dir": "assets"},
  "resource_account": "0x1",
  "storage": {"arweave": {"key_file_path": "key.json", "gateway_url": "https://arweave.dev/"}},
  "private_key": "0x02",
  "random_trait": true,
  "reveal_required": true,
  "base_token_uri": null,
  "server": {"port": "8080"}
  }`)
		cfg, err := config.Parse(data)

		Convey("Then it is decoded as JSON", func() {
			So(err, ShouldBeNil)
			So(cfg.RandomTrait, ShouldBeTrue)
			So(cfg.BaseTokenURI, ShouldEqual, "")
			So(cfg.DelayedReveal(), ShouldBeTrue)
			So(cfg.Server.Port, ShouldEqual, ":8080")
			So(cfg.Storage.Arweave.GatewayURL, ShouldEqual, "https://arweave.dev")
		})
	})

	Convey("Given a tab-indented JSON config with escaped slashes", t, func() {
		data := []byte("\n{\n\t\"network\": \"Testnet\",\n" +
			"\t\"collection\": {\"collection_name\": \"C\", \"description\": \"d \\/ x\", \"asset_dir\": \"assets\\/odyssey\"},\n" +
			"\t\"resource_account\": \"0x1\",\n" +
			"\t\"storage\": {\"arweave\": {\"key_file_path\": \"keys\\/arweave.json\"}},\n" +
			"\t\"private_key\": \"0x02\",\n" +
			"\t\"reveal_required\": true,\n" +
			"\t\"base_token_uri\": \"ar:\\/\\/xyz\",\n" +
			"\t\"rpc_client\": {\"max_conns_per_host\": 16}\n}\n")
		cfg, err := config.Parse(data)

		Convey("Then the escapes are decoded instead of rejected", func() {
			So(err, ShouldBeNil)
			So(cfg.Network, ShouldEqual, "Testnet")
			So(cfg.Collection.Description, ShouldEqual, "d / x")
			So(cfg.Collection.AssetDir, ShouldEqual, "assets/odyssey")
			So(cfg.Storage.Arweave.KeyFilePath, ShouldEqual, "keys/arweave.json")
			So(cfg.BaseTokenURI, ShouldEqual, "ar://xyz")
			So(cfg.DelayedReveal(), ShouldBeFalse)
			So(cfg.RpcClient.MaxConnsPerHost, ShouldEqual, 16)
		})
	})

	Convey("Given malformed JSON", t, func() {
		_, err := config.Parse([]byte(`{"network": "devnet",`))

		Convey("Then ErrLoadConfig is returned", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})

	Convey("Given a config missing required fields", t, func() {
		_, err := config.Parse([]byte(`network: devnet`))

		Convey("Then validation fails with ErrInvalidConfig naming the fields", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "resource_account")
			So(err.Error(), ShouldContainSubstring, "collection.asset_dir")
			So(err.Error(), ShouldContainSubstring, "storage.arweave.key_file_path")
			So(err.Error(), ShouldContainSubstring, "private_key")
		})
	})

	Convey("Given a delayed reveal without a private key", t, func() {
		data := []byte(`
resource_account: "0xabc"
reveal_required: true
collection: {asset_dir: ./assets}
storage: {arweave: {key_file_path: ./k.json}}
`)
		cfg, err := config.Parse(data)

		Convey("Then the private key is not required", func() {
			So(err, ShouldBeNil)
			So(cfg.DelayedReveal(), ShouldBeTrue)
		})
	})

	Convey("Given malformed input", t, func() {
		_, err := config.Parse([]byte("network: [unterminated"))

		Convey("Then ErrLoadConfig is returned", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestDelayedReveal(t *testing.T) {
	Convey("DelayedReveal is true only when a reveal is required and no base URI is set", t, func() {
		So((&config.Config{RevealRequired: true}).DelayedReveal(), ShouldBeTrue)
		So((&config.Config{RevealRequired: true, BaseTokenURI: "ipfs://x"}).DelayedReveal(), ShouldBeFalse)
		So((&config.Config{RevealRequired: false}).DelayedReveal(), ShouldBeFalse)
		So((&config.Config{BaseTokenURI: "ipfs://x"}).DelayedReveal(), ShouldBeFalse)
	})
}

func TestLoadConfig(t *testing.T) {
	Convey("Given a config file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte(validYAML), 0o600), ShouldBeNil)

		cfg, err := config.LoadConfig(path)
		So(err, ShouldBeNil)
		So(cfg.ResourceAccount, ShouldEqual, "0xabc")
	})

	Convey("Given a missing file", t, func() {
		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
		So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
	})
}
