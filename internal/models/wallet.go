package models

// WalletToken is one holding reported by the wallet-value endpoint.
type WalletToken struct {
	MintAddress string  `json:"mint_address"`
	Balance     float64 `json:"balance"`
	Value       float64 `json:"value"`
	TokenName   string  `json:"token_name,omitempty"`
}

// WalletValue is the aggregate wallet report.
type WalletValue struct {
	WalletTokens         []WalletToken `json:"wallet_tokens"`
	TotalValue           float64       `json:"total_value"`
	PercentChangeValue24 float64       `json:"percent_change_value_24h"`
}
