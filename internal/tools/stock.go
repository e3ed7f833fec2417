package tools

import (
	"context"
	"strings"
)

// StockPriceToolName is the name the model uses to request a quote
const StockPriceToolName = "getStockPrice"

// SymbolNotFound is the price reported for symbols outside the quote table
const SymbolNotFound = "symbol not found"

var stockPrices = map[string]int{
	"AAPL":  220,
	"TSLA":  180,
	"GOOGL": 150,
}

// StockPrice returns the demo quote tool. Quotes are fixed; lookup ignores case.
func StockPrice() Tool {
	return Tool{
		Name:        StockPriceToolName,
		Description: "Get the current stock price for a ticker symbol.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symbol": map[string]any{
					"type":        "string",
					"description": "Ticker symbol, for example AAPL",
				},
			},
			"required": []string{"symbol"},
		},
		Handler: stockPriceHandler,
	}
}

func stockPriceHandler(_ context.Context, args map[string]any) (map[string]any, error) {
	symbol, _ := args["symbol"].(string)
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	price, ok := stockPrices[symbol]
	if !ok {
		return map[string]any{"symbol": symbol, "price": SymbolNotFound}, nil
	}
	return map[string]any{"symbol": symbol, "price": price}, nil
}

// Default returns a registry with every built-in tool
func Default() *Registry {
	r, err := NewRegistry(StockPrice())
	if err != nil {
		panic(err)
	}
	return r
}
