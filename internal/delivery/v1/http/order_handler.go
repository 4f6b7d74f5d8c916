package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/internal/domain"
	"github.com/techmart/backend/internal/usecase"
	"github.com/techmart/backend/pkg/e"
	"github.com/techmart/backend/pkg/logger"
)

type OrderHandler struct {
	orderUC  usecase.OrderUC
	reportUC usecase.ReportUC
	minioCfg *cfg.MinIOCfg
	logger   logger.Logger
}

func NewOrderHandler(orderUC usecase.OrderUC, reportUC usecase.ReportUC, minioCfg *cfg.MinIOCfg, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, reportUC: reportUC, minioCfg: minioCfg, logger: logger}
}

// placeOrder
//
//	@Summary	Оформление заказа
//	@Description	Атомарно списывает остатки и фиксирует снимок цен
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		request	body		PlaceOrderRequest	true	"Корзина и доставка"
//	@Success	201		{object}	OrderResponse
//	@Failure	409		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders [post]
func (o *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromCtx(r.Context())

	var req PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	items := make([]usecase.PlaceOrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		items = append(items, usecase.PlaceOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	info, err := o.orderUC.PlaceOrder(r.Context(), &usecase.PlaceOrderReq{
		UserID: claims.UserID,
		Items:  items,
		ShippingAddress: domain.ShippingAddress{
			FullName:   req.ShippingAddress.FullName,
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toOrderResponse(info, o.imageURL))
}

// listMine
//
//	@Summary	Заказы текущего пользователя
//	@Tags		orders
//	@Produce	json
//	@Success	200	{array}	OrderResponse
//	@Security	BearerAuth
//	@Router		/orders/mine [get]
func (o *OrderHandler) listMine(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromCtx(r.Context())

	orders, err := o.orderUC.ListMine(r.Context(), claims.UserID)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i], o.imageURL))
	}

	WriteSuccess(w, http.StatusOK, res)
}

// listOrders
//
//	@Summary	Все заказы (админ)
//	@Tags		orders
//	@Produce	json
//	@Param		page	query		int	false	"Номер страницы"
//	@Success	200		{object}	OrderPageResponse
//	@Security	BearerAuth
//	@Router		/orders [get]
func (o *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, err := o.orderUC.ListOrders(r.Context(), parsePage(r))
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	orders := make([]OrderResponse, 0, len(page.Orders))
	for i := range page.Orders {
		orders = append(orders, toOrderResponse(&page.Orders[i], o.imageURL))
	}

	WriteSuccess(w, http.StatusOK, OrderPageResponse{
		Orders:    orders,
		Total:     page.Total,
		Page:      page.Page,
		PageCount: page.PageCount,
	})
}

// summary
//
//	@Summary	Сводка для дашборда (админ)
//	@Description	Счётчики, выручка по оплаченным заказам, динамика за 30 дней
//	@Tags		orders
//	@Produce	json
//	@Success	200	{object}	SummaryResponse
//	@Security	BearerAuth
//	@Router		/orders/summary [get]
func (o *OrderHandler) summary(w http.ResponseWriter, r *http.Request) {
	res, err := o.reportUC.Summary(r.Context())
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	daily := make([]DailySalesResponse, 0, len(res.DailyOrders))
	for _, d := range res.DailyOrders {
		daily = append(daily, DailySalesResponse{
			Date:   d.Date,
			Orders: d.Orders,
			Sales:  centsToAmount(d.Sales),
		})
	}

	categories := make([]CategoryCountResponse, 0, len(res.ProductCategories))
	for _, c := range res.ProductCategories {
		categories = append(categories, CategoryCountResponse{Category: c.Category, Count: c.Count})
	}

	WriteSuccess(w, http.StatusOK, SummaryResponse{
		Users:             res.NumUsers,
		Orders:            res.NumOrders,
		TotalSales:        centsToAmount(res.TotalSales),
		DailyOrders:       daily,
		ProductCategories: categories,
	})
}

// getOrder
//
//	@Summary	Заказ по ID
//	@Description	Доступен владельцу и администратору
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"UUID заказа"
//	@Success	200	{object}	OrderResponse
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id} [get]
func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromCtx(r.Context())

	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := o.orderUC.GetOrder(r.Context(), &usecase.GetOrderReq{
		OrderID:     orderID,
		RequesterID: claims.UserID,
		IsAdmin:     claims.IsAdmin,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(info, o.imageURL))
}

// createPayment
//
//	@Summary	Создание платежа у провайдера
//	@Description	Возвращает ID платежа PayPal для подтверждения на клиенте
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"UUID заказа"
//	@Success	201	{object}	CreatePaymentResponse
//	@Failure	502	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id}/payment [post]
func (o *OrderHandler) createPayment(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromCtx(r.Context())

	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := o.orderUC.CreatePayment(r.Context(), &usecase.GetOrderReq{
		OrderID:     orderID,
		RequesterID: claims.UserID,
		IsAdmin:     claims.IsAdmin,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, CreatePaymentResponse{ID: res.ProviderOrderID})
}

// payOrder
//
//	@Summary	Подтверждение оплаты
//	@Description	Идемпотентно: повторная оплата не трогает заказ и провайдера
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"UUID заказа"
//	@Param		request	body		PayOrderRequest	true	"ID платежа у провайдера"
//	@Success	200		{object}	OrderResponse
//	@Failure	502		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id}/pay [put]
func (o *OrderHandler) payOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromCtx(r.Context())

	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	var req PayOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	info, err := o.orderUC.Pay(r.Context(), &usecase.PayOrderReq{
		OrderID:         orderID,
		RequesterID:     claims.UserID,
		IsAdmin:         claims.IsAdmin,
		ProviderOrderID: req.ID,
	})
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(info, o.imageURL))
}

// deliverOrder
//
//	@Summary	Отметка о доставке (админ)
//	@Description	Только для оплаченных заказов
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"UUID заказа"
//	@Success	200	{object}	OrderResponse
//	@Failure	400	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id}/deliver [put]
func (o *OrderHandler) deliverOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := o.orderUC.Deliver(r.Context(), orderID)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(info, o.imageURL))
}

// deleteOrder
//
//	@Summary	Удаление заказа (админ)
//	@Tags		orders
//	@Param		id	path	string	true	"UUID заказа"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id} [delete]
func (o *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := o.orderUC.DeleteOrder(r.Context(), orderID); err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (o *OrderHandler) imageURL(key string) string {
	return publicImageURL(o.minioCfg, key)
}

func parseOrderID(raw string) (string, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", e.WrapField("id", e.ErrValidation)
	}
	return raw, nil
}
