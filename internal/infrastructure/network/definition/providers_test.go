package networkdefinition_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"odyssey_gateway/internal/config"
	"odyssey_gateway/internal/domain/entity"
	networkdefinition "odyssey_gateway/internal/infrastructure/network/definition"
)

func TestResolve(t *testing.T) {
	Convey("Resolve maps names case-insensitively", t, func() {
		So(networkdefinition.Resolve("testnet").Network, ShouldEqual, entity.Testnet)
		So(networkdefinition.Resolve("TESTNET").Network, ShouldEqual, entity.Testnet)
		So(networkdefinition.Resolve("Mainnet").Network, ShouldEqual, entity.Mainnet)
		So(networkdefinition.Resolve("random").Network, ShouldEqual, entity.Randomnet)
		So(networkdefinition.Resolve("RANDOM").Network, ShouldEqual, entity.Randomnet)
	})

	Convey("Every other name resolves to devnet", t, func() {
		for _, name := range []string{"devnet", "", "garbage", "randomnet", " testnet"} {
			So(networkdefinition.Resolve(name).Network, ShouldEqual, entity.Devnet)
		}
	})

	Convey("Resolve is pure", t, func() {
		So(networkdefinition.Resolve("mainnet"), ShouldResemble, networkdefinition.Resolve("MAINNET"))
	})
}

func TestNetworkDefinitionProvider(t *testing.T) {
	Convey("Given fullnode overrides", t, func() {
		p := networkdefinition.NewNetworkDefinitionProvider(config.NetworksConfig{
			Testnet: "http://localhost:8080/v1/",
		})

		Convey("Then the overridden network uses the configured URL", func() {
			def := p.Resolve("testnet")
			So(def.FullnodeURL, ShouldEqual, "http://localhost:8080/v1")
			So(def.ChainID, ShouldEqual, uint8(2))
		})

		Convey("And other networks keep their defaults", func() {
			So(p.Resolve("mainnet").FullnodeURL, ShouldEqual, networkdefinition.Mainnet.FullnodeURL)
		})

		Convey("And GetAllNetworkDefinitions lists all four networks", func() {
			defs := p.GetAllNetworkDefinitions()
			So(defs, ShouldHaveLength, 4)
			So(defs[1].FullnodeURL, ShouldEqual, "http://localhost:8080/v1")
		})

		Convey("And the package defaults are left untouched", func() {
			So(networkdefinition.Testnet.FullnodeURL, ShouldEqual, "https://api.testnet.aptoslabs.com/v1")
		})
	})

	Convey("A nil provider still resolves", t, func() {
		var p *networkdefinition.NetworkDefinitionProvider
		So(p.Resolve("mainnet").Network, ShouldEqual, entity.Mainnet)
		So(p.GetAllNetworkDefinitions(), ShouldHaveLength, 4)
	})
}
