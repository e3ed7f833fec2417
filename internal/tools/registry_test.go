package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dream-ai/bp-assistant/internal/llm"
)

func TestStockPrice_KnownSymbols(t *testing.T) {
	r := Default()
	tests := []struct {
		symbol string
		want   int
	}{
		{"AAPL", 220},
		{"TSLA", 180},
		{"GOOGL", 150},
		{"aapl", 220},
		{" tsla ", 180},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := r.Dispatch(context.Background(), llm.ToolCall{
				Name:      StockPriceToolName,
				Arguments: map[string]any{"symbol": tt.symbol},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got["price"])
		})
	}
}

func TestStockPrice_UnknownSymbol(t *testing.T) {
	got, err := Default().Dispatch(context.Background(), llm.ToolCall{
		Name:      StockPriceToolName,
		Arguments: map[string]any{"symbol": "MSFT"},
	})
	require.NoError(t, err)
	assert.Equal(t, SymbolNotFound, got["price"])

	got, err = Default().Dispatch(context.Background(), llm.ToolCall{Name: StockPriceToolName})
	require.NoError(t, err)
	assert.Equal(t, SymbolNotFound, got["price"])
}

func TestDispatch_UnknownTool(t *testing.T) {
	_, err := Default().Dispatch(context.Background(), llm.ToolCall{Name: "deleteEverything"})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestDispatch_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	r, err := NewRegistry(Tool{
		Name:    "broken",
		Handler: func(context.Context, map[string]any) (map[string]any, error) { return nil, boom },
	})
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), llm.ToolCall{Name: "broken"})
	assert.ErrorIs(t, err, boom)
}

func TestRegister_Validation(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	assert.Error(t, r.Register(Tool{Name: ""}))
	assert.Error(t, r.Register(Tool{Name: "noop"}))
	require.NoError(t, r.Register(StockPrice()))
	assert.Error(t, r.Register(StockPrice()), "duplicate names are rejected")
}

func TestDeclarations(t *testing.T) {
	decls := Default().Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, StockPriceToolName, decls[0].Name)
	assert.NotEmpty(t, decls[0].Description)
	assert.Equal(t, "object", decls[0].Parameters["type"])
}
