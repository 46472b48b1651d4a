package pricing_test

import (
	"fmt"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/pricing"
)

func ExamplePrice() {
	call := contracts.Call(100, 1, "AAPL")
	market := contracts.NewMarketData("AAPL", 100, 0.05, 0.2)

	g, err := pricing.Price(call, market)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("pv=%.4f delta=%.4f gamma=%.4f\n", g.PV, g.Delta, g.Gamma)
	// Output: pv=10.4506 delta=0.6368 gamma=0.0188
}
