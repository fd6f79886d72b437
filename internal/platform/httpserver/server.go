package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	assetregistry "mystic/contexts/asset-core/asset-registry"
	dailycheckin "mystic/contexts/community-experience/daily-checkin"
	paymentledger "mystic/contexts/finance-core/payment-ledger"
	accesscontrol "mystic/contexts/identity-access/access-control"
	marketplaceengine "mystic/contexts/trading/marketplace-engine"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "mystic/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	access   accesscontrol.Module
	assets   assetregistry.Module
	payments paymentledger.Module
	market   marketplaceengine.Module
	checkin  dailycheckin.Module
}

func New(
	access accesscontrol.Module,
	assets assetregistry.Module,
	payments paymentledger.Module,
	market marketplaceengine.Module,
	checkin dailycheckin.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		access:   access,
		assets:   assets,
		payments: payments,
		market:   market,
		checkin:  checkin,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/access/v1/roles/grant", s.handleGrantRole)
	s.mux.HandleFunc("POST /api/access/v1/roles/revoke", s.handleRevokeRole)
	s.mux.HandleFunc("GET /api/access/v1/roles/{role}/{account}", s.handleHasRole)

	s.mux.HandleFunc("POST /api/assets/v1/mint", s.handleAssetMint)
	s.mux.HandleFunc("POST /api/assets/v1/claim", s.handleAssetClaim)
	s.mux.HandleFunc("POST /api/assets/v1/deposit", s.handleAssetDeposit)
	s.mux.HandleFunc("POST /api/assets/v1/withdraw", s.handleAssetWithdraw)
	s.mux.HandleFunc("POST /api/assets/v1/transfer", s.handleAssetTransfer)
	s.mux.HandleFunc("POST /api/assets/v1/approve", s.handleAssetApprove)
	s.mux.HandleFunc("POST /api/assets/v1/approval-for-all", s.handleAssetApprovalForAll)
	s.mux.HandleFunc("POST /api/assets/v1/restriction", s.handleAssetRestriction)
	s.mux.HandleFunc("POST /api/assets/v1/allowlist", s.handleAssetAllowlist)
	s.mux.HandleFunc("POST /api/assets/v1/base-uri", s.handleAssetBaseURI)
	s.mux.HandleFunc("POST /api/assets/v1/token-uri", s.handleAssetTokenURI)
	s.mux.HandleFunc("GET /api/assets/v1/assets/{asset_id}", s.handleAssetGet)
	s.mux.HandleFunc("GET /api/assets/v1/assets/{asset_id}/nonce", s.handleAssetNonce)

	s.mux.HandleFunc("POST /api/payments/v1/deposit", s.handlePaymentDeposit)
	s.mux.HandleFunc("POST /api/payments/v1/withdraw", s.handlePaymentWithdraw)
	s.mux.HandleFunc("POST /api/payments/v1/claim-withdraw", s.handlePaymentClaimWithdraw)
	s.mux.HandleFunc("GET /api/payments/v1/accounts/{account}/nonce", s.handlePaymentNonce)

	s.mux.HandleFunc("POST /api/market/v1/orders", s.handleCreateOrder)
	s.mux.HandleFunc("POST /api/market/v1/orders/{order_id}/cancel", s.handleCancelOrder)
	s.mux.HandleFunc("POST /api/market/v1/orders/{order_id}/execute", s.handleExecuteOrder)
	s.mux.HandleFunc("GET /api/market/v1/orders/{order_id}", s.handleGetOrder)
	s.mux.HandleFunc("GET /api/market/v1/orders", s.handleListOpenOrders)
	s.mux.HandleFunc("POST /api/market/v1/fee-rate", s.handleSetFeeRate)
	s.mux.HandleFunc("POST /api/market/v1/fee-holder", s.handleSetFeeHolder)
	s.mux.HandleFunc("GET /api/market/v1/fee-config", s.handleGetFeeConfig)

	s.mux.HandleFunc("POST /api/checkin/v1/check-in", s.handleCheckIn)
	s.mux.HandleFunc("GET /api/checkin/v1/accounts/{account}/status", s.handleCheckInStatus)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// resolveCaller reads the authenticated account identity injected by the
// edge proxy.
func resolveCaller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Account-Id"))
}
