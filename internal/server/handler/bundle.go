package handler

import (
	"log/slog"
	"net/http"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/service"
)

// BundleHandler serves the transaction bundle building endpoints. Bundles
// are returned unsigned; signing and submission stay with the caller.
type BundleHandler struct {
	trades *service.TradeService
	logger *slog.Logger
}

// NewBundleHandler creates a BundleHandler.
func NewBundleHandler(trades *service.TradeService, logger *slog.Logger) *BundleHandler {
	return &BundleHandler{
		trades: trades,
		logger: logger.With(slog.String("handler", "bundle")),
	}
}

type bundleResponse struct {
	Bundle  *domain.TransactionBundle `json:"bundle"`
	TxBytes string                    `json:"tx_bytes"`
}

func writeBundle(w http.ResponseWriter, bundle *domain.TransactionBundle) {
	encoded, err := bundle.EncodeBase64()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundleResponse{Bundle: bundle, TxBytes: encoded})
}

type swapBundleRequest struct {
	Sender    string  `json:"sender"`
	PoolID    string  `json:"pool_id"`
	CoinIn    string  `json:"coin_in"`
	CoinOut   string  `json:"coin_out"`
	AmountIn  string  `json:"amount_in"`
	Slippage  float64 `json:"slippage"`
	GasBudget uint64  `json:"gas_budget"`
}

// BuildSwap builds a slippage-protected exact-in swap bundle.
// POST /api/bundles/swap
func (h *BundleHandler) BuildSwap(w http.ResponseWriter, r *http.Request) {
	var req swapBundleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount_in: "+err.Error())
		return
	}

	bundle, err := h.trades.BuildSwap(r.Context(), service.SwapRequest{
		Sender:    req.Sender,
		PoolID:    req.PoolID,
		CoinIn:    domain.CoinType(req.CoinIn),
		CoinOut:   domain.CoinType(req.CoinOut),
		AmountIn:  amountIn,
		Slippage:  req.Slippage,
		GasBudget: req.GasBudget,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeBundle(w, bundle)
}

type depositBundleRequest struct {
	Sender        string   `json:"sender"`
	PoolID        string   `json:"pool_id"`
	CoinTypes     []string `json:"coin_types"`
	Amounts       []string `json:"amounts"`
	ExpectedLPOut string   `json:"expected_lp_out"`
	Slippage      float64  `json:"slippage"`
	GasBudget     uint64   `json:"gas_budget"`
}

// BuildDeposit builds an all-coin deposit bundle.
// POST /api/bundles/deposit
func (h *BundleHandler) BuildDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositBundleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	amounts, err := parseAmounts(req.Amounts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amounts: "+err.Error())
		return
	}
	expectedLP, err := parseAmount(req.ExpectedLPOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected_lp_out: "+err.Error())
		return
	}

	bundle, err := h.trades.BuildDeposit(r.Context(), service.DepositRequest{
		Sender:        req.Sender,
		PoolID:        req.PoolID,
		CoinTypes:     toCoinTypes(req.CoinTypes),
		Amounts:       amounts,
		ExpectedLPOut: expectedLP,
		Slippage:      req.Slippage,
		GasBudget:     req.GasBudget,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeBundle(w, bundle)
}

type withdrawBundleRequest struct {
	Sender             string   `json:"sender"`
	PoolID             string   `json:"pool_id"`
	LPAmount           string   `json:"lp_amount"`
	CoinOutTypes       []string `json:"coin_out_types"`
	ExpectedAmountsOut []string `json:"expected_amounts_out"`
	Slippage           float64  `json:"slippage"`
	GasBudget          uint64   `json:"gas_budget"`
}

// BuildWithdraw builds an all-coin withdraw bundle.
// POST /api/bundles/withdraw
func (h *BundleHandler) BuildWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawBundleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	lpAmount, err := parseAmount(req.LPAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lp_amount: "+err.Error())
		return
	}
	expected, err := parseAmounts(req.ExpectedAmountsOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected_amounts_out: "+err.Error())
		return
	}

	bundle, err := h.trades.BuildWithdraw(r.Context(), service.WithdrawRequest{
		Sender:             req.Sender,
		PoolID:             req.PoolID,
		LPAmount:           lpAmount,
		CoinOutTypes:       toCoinTypes(req.CoinOutTypes),
		ExpectedAmountsOut: expected,
		Slippage:           req.Slippage,
		GasBudget:          req.GasBudget,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeBundle(w, bundle)
}

func parseAmounts(ss []string) ([]sdkmath.Int, error) {
	out := make([]sdkmath.Int, len(ss))
	for i, s := range ss {
		n, err := parseAmount(s)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func toCoinTypes(ss []string) []domain.CoinType {
	out := make([]domain.CoinType, len(ss))
	for i, s := range ss {
		out[i] = domain.CoinType(s)
	}
	return out
}
