package adapters

import "github.com/Kaligetsagency/aifx/internal/feature/assets/domain/entity"

// DefaultAssets は初回起動時に登録する銘柄です。
var DefaultAssets = []entity.Asset{
	{Source: "deriv", Code: "frxEURUSD", Name: "EUR/USD", Market: "Forex", IsActive: true, SortKey: 1},
	{Source: "deriv", Code: "frxGBPUSD", Name: "GBP/USD", Market: "Forex", IsActive: true, SortKey: 2},
	{Source: "deriv", Code: "frxUSDJPY", Name: "USD/JPY", Market: "Forex", IsActive: true, SortKey: 3},
	{Source: "deriv", Code: "frxAUDUSD", Name: "AUD/USD", Market: "Forex", IsActive: true, SortKey: 4},
	{Source: "deriv", Code: "frxXAUUSD", Name: "Gold/USD", Market: "Commodities", IsActive: true, SortKey: 5},
	{Source: "deriv", Code: "R_100", Name: "Volatility 100 Index", Market: "Derived", IsActive: true, SortKey: 10},
	{Source: "deriv", Code: "R_75", Name: "Volatility 75 Index", Market: "Derived", IsActive: true, SortKey: 11},
	{Source: "deriv", Code: "R_50", Name: "Volatility 50 Index", Market: "Derived", IsActive: true, SortKey: 12},
	{Source: "deriv", Code: "1HZ100V", Name: "Volatility 100 (1s) Index", Market: "Derived", IsActive: true, SortKey: 13},

	{Source: "twelvedata", Code: "EUR/USD", Name: "EUR/USD", Market: "Forex", IsActive: true, SortKey: 1},
	{Source: "twelvedata", Code: "GBP/USD", Name: "GBP/USD", Market: "Forex", IsActive: true, SortKey: 2},
	{Source: "twelvedata", Code: "USD/JPY", Name: "USD/JPY", Market: "Forex", IsActive: true, SortKey: 3},
	{Source: "twelvedata", Code: "XAU/USD", Name: "Gold/USD", Market: "Commodities", IsActive: true, SortKey: 4},
	{Source: "twelvedata", Code: "AAPL", Name: "Apple Inc.", Market: "NASDAQ", IsActive: true, SortKey: 10},

	{Source: "binance", Code: "BTCUSDT", Name: "Bitcoin/Tether", Market: "Crypto", IsActive: true, SortKey: 1},
	{Source: "binance", Code: "ETHUSDT", Name: "Ethereum/Tether", Market: "Crypto", IsActive: true, SortKey: 2},
	{Source: "binance", Code: "SOLUSDT", Name: "Solana/Tether", Market: "Crypto", IsActive: true, SortKey: 3},
}
