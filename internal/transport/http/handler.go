// Package httptransport is the thin HTTP layer over the payment service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"qosic/internal/payment/models"
	"qosic/internal/transport/httputil"
)

// PaymentService is the part of the orchestrator the facade needs.
type PaymentService interface {
	Pay(ctx context.Context, payer models.Payer) (*models.Result, error)
	Refund(ctx context.Context, reference, carrierName string) (*models.Result, error)
}

// PayRequest is the facade payment body.
type PayRequest struct {
	Phone     string `json:"phone"`
	Amount    int64  `json:"amount"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RefundRequest is the facade refund body.
type RefundRequest struct {
	Reference string `json:"reference"`
	Carrier   string `json:"carrier"`
}

// ResultResponse echoes the terminal outcome to the caller.
type ResultResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Carrier   string `json:"carrier"`
}

// Handler exposes pay and refund over HTTP.
type Handler struct {
	service PaymentService
	logger  *slog.Logger
}

func NewHandler(service PaymentService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register wires the payment endpoints onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/payments", h.HandlePay)
	r.Post("/v1/refunds", h.HandleRefund)
}

// HandlePay initiates a payment and blocks until it resolves, which for the
// asynchronous carrier includes the confirmation poll.
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[PayRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	payer, err := models.NewPayer(req.Phone, req.Amount, req.FirstName, req.LastName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Pay(ctx, payer)
	if err != nil {
		h.logger.ErrorContext(ctx, "payment did not resolve", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		Status:    string(result.Status),
		Reference: result.Reference,
		Carrier:   result.Carrier,
	})
}

// HandleRefund reverses an earlier payment on the named carrier.
func (h *Handler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[RefundRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	result, err := h.service.Refund(ctx, req.Reference, req.Carrier)
	if err != nil {
		h.logger.ErrorContext(ctx, "refund did not resolve", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ResultResponse{
		Status:    string(result.Status),
		Reference: result.Reference,
		Carrier:   result.Carrier,
	})
}
