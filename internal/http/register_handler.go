package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/events"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/middleware"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/money"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/order"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/register"
)

type Handler struct {
	registers *register.Registry
	formatter receipt.Formatter
	logger    *log.Logger
}

func NewHandler(registers *register.Registry, currency string, logger *log.Logger) *Handler {
	if currency == "" {
		currency = money.DefaultCurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		registers: registers,
		formatter: receipt.Formatter{Currency: currency},
		logger:    logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type catalogItemResponse struct {
	Position  int             `json:"position"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	PriceText string          `json:"priceText"`
}

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items := h.registers.Catalog().Items()
	resp := make([]catalogItemResponse, 0, len(items))
	for i, it := range items {
		resp = append(resp, catalogItemResponse{
			Position:  i + 1,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			PriceText: money.Format(h.formatter.Currency, it.UnitPrice),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": resp})
}

type orderResponse struct {
	RegisterID string          `json:"registerId"`
	State      order.State     `json:"state"`
	Lines      []order.Line    `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	TotalText  string          `json:"totalText"`
	Selection  string          `json:"selection,omitempty"`
	Message    string          `json:"message,omitempty"`
}

func (h *Handler) orderView(reg *register.Register, snap order.Snapshot) orderResponse {
	return orderResponse{
		RegisterID: reg.ID(),
		State:      snap.State,
		Lines:      snap.Lines,
		Total:      snap.Total,
		TotalText:  register.TotalText(h.formatter.Currency, snap.Total),
		Selection:  reg.Selection(),
	}
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.orderView(reg, reg.Snapshot()))
}

func (h *Handler) ClearOrder(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.orderView(reg, reg.Clear()))
}

type itemRequest struct {
	Name string `json:"name"`
}

func (h *Handler) SelectItem(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := reg.Select(req.Name); err != nil {
		h.writeRegisterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orderView(reg, reg.Snapshot()))
}

// AddItem adds the named item, or the pending selection when the body names
// nothing.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var (
		snap order.Snapshot
		err  error
	)
	if req.Name == "" {
		snap, err = reg.AddSelected()
	} else {
		snap, err = reg.Add(req.Name)
	}
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	resp := h.orderView(reg, snap)
	resp.Message = register.MsgItemAdded
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, (*register.Register).Increment)
}

func (h *Handler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, (*register.Register).Decrement)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, (*register.Register).Remove)
}

func (h *Handler) mutateLine(w http.ResponseWriter, r *http.Request, op func(*register.Register, string) (order.Snapshot, error)) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	name, err := itemName(r)
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "invalid item name")
		return
	}

	snap, err := op(reg, name)
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orderView(reg, snap))
}

type checkoutRequest struct {
	Payment json.RawMessage `json:"payment"`
}

type checkoutResponse struct {
	Receipt receipt.Receipt `json:"receipt"`
	Text    string          `json:"text"`
}

type insufficientPaymentResponse struct {
	Error   string `json:"error"`
	Total   string `json:"total"`
	Payment string `json:"payment"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, register.MsgInvalidInput)
		return
	}
	payment, err := money.Parse(h.formatter.Currency, paymentText(req.Payment))
	if err != nil {
		writeError(w, http.StatusBadRequest, register.MsgInvalidInput)
		return
	}

	meta := events.EventMeta{
		CorrelationID: middleware.GetCorrelationID(r.Context()),
		CausationID:   chimw.GetReqID(r.Context()),
	}
	rec, err := reg.Checkout(r.Context(), payment, meta)
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		Receipt: rec,
		Text:    h.formatter.Format(rec),
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) (*register.Register, bool) {
	reg, err := h.registers.Get(chi.URLParam(r, "registerId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid register id")
		return nil, false
	}
	return reg, true
}

func (h *Handler) writeRegisterError(w http.ResponseWriter, err error) {
	var insufficient *order.InsufficientPaymentError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusUnprocessableEntity, insufficientPaymentResponse{
			Error:   register.MsgInsufficientPayment,
			Total:   insufficient.Total.StringFixed(2),
			Payment: insufficient.Payment.StringFixed(2),
		})
	case errors.Is(err, catalog.ErrUnknownItem), errors.Is(err, order.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, register.ErrNoSelection):
		writeError(w, http.StatusConflict, register.MsgSelectItem)
	default:
		h.logger.Printf("register operation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// itemName returns the decoded {name} segment. chi matches on RawPath when
// the request has one, and only then is the parameter still escaped.
func itemName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// decodeJSON accepts an empty body as the zero value.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// paymentText accepts both "600.00" and 600.00 in the request body.
func paymentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
