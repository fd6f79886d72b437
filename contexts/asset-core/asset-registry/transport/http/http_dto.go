package httptransport

type MintRequest struct {
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
}

type ClaimRequest struct {
	AssetID   uint64 `json:"asset_id"`
	Signature string `json:"signature"`
}

type DepositRequest struct {
	AssetID uint64 `json:"asset_id"`
}

type WithdrawRequest struct {
	AssetID   uint64 `json:"asset_id"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"`
}

type TransferRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	AssetID uint64 `json:"asset_id"`
}

type ApproveRequest struct {
	AssetID uint64 `json:"asset_id"`
	Spender string `json:"spender"`
}

type ApprovalForAllRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type RestrictionRequest struct {
	Enabled bool `json:"enabled"`
}

type AllowlistRequest struct {
	Account string `json:"account"`
	Allowed bool   `json:"allowed"`
}

type BaseURIRequest struct {
	URI string `json:"uri"`
}

type TokenURIRequest struct {
	AssetID uint64 `json:"asset_id"`
	URI     string `json:"uri"`
}

type MutationResponse struct {
	Status  string `json:"status"`
	AssetID uint64 `json:"asset_id,omitempty"`
}

type AssetResponse struct {
	Status        string `json:"status"`
	AssetID       uint64 `json:"asset_id"`
	Owner         string `json:"owner"`
	Locked        bool   `json:"locked"`
	WithdrawNonce uint64 `json:"withdraw_nonce"`
	TokenURI      string `json:"token_uri"`
	MintedAtUTC   string `json:"minted_at_utc"`
}

type NonceResponse struct {
	Status  string `json:"status"`
	AssetID uint64 `json:"asset_id"`
	Nonce   uint64 `json:"nonce"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
