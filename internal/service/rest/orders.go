package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/ecom/internal/service/order"
)

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	items := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	created, err := h.orders.Create(r.Context(), order.CreateInput{
		UserID:           req.UserID,
		Items:            items,
		ShippingAddress1: req.ShippingAddress1,
		ShippingAddress2: req.ShippingAddress2,
		City:             req.City,
		Zip:              req.Zip,
		Country:          req.Country,
		Phone:            req.Phone,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	details, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderDetailsResponse(details))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	// Параметры нормализуются здесь же, чтобы ответ отражал фактическую
	// страницу, а не сырые значения запроса.
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "pageSize", order.DefaultPageSize)
	if pageSize <= 0 {
		pageSize = order.DefaultPageSize
	}
	if pageSize > order.MaxPageSize {
		pageSize = order.MaxPageSize
	}
	userID := r.URL.Query().Get("userId")

	orders, total, err := h.orders.List(r.Context(), userID, page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := listOrdersResponse{
		Orders:     make([]orderResponse, 0, len(orders)),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) orderStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Statistics(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toStatisticsResponse(stats))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
