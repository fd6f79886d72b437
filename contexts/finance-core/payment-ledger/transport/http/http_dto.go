package httptransport

type DepositRequest struct {
	Amount string `json:"amount"`
}

type WithdrawRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ClaimWithdrawRequest struct {
	Amount    string `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Expiry    int64  `json:"expiry"`
	Signature string `json:"signature"`
}

type MutationResponse struct {
	Status string `json:"status"`
	Amount string `json:"amount,omitempty"`
}

type NonceResponse struct {
	Status  string `json:"status"`
	Account string `json:"account"`
	Nonce   uint64 `json:"nonce"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
