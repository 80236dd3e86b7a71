package handler

import (
	"context"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	shippingapp "github.com/adfinitum/backend/internal/application/shipping"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressService manages the caller's shipping addresses
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]shippingapp.AddressResponse, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*shippingapp.AddressResponse, error)
	Create(ctx context.Context, userID uuid.UUID, input shippingapp.AddressInput) (*shippingapp.AddressResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, input shippingapp.AddressInput) (*shippingapp.AddressResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

// MethodService manages shipping methods
type MethodService interface {
	ListActive(ctx context.Context) ([]shippingapp.MethodResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*shippingapp.MethodResponse, error)
	Create(ctx context.Context, input shippingapp.MethodInput) (*shippingapp.MethodResponse, error)
	Update(ctx context.Context, id uuid.UUID, input shippingapp.MethodInput) (*shippingapp.MethodResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShipmentService manages shipments and their status
type ShipmentService interface {
	List(ctx context.Context, actor appshared.Actor, filter shippingapp.ShipmentListFilter) (*shippingapp.ShipmentListResult, error)
	Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*shippingapp.ShipmentResponse, error)
	History(ctx context.Context, actor appshared.Actor, id uuid.UUID) ([]shippingapp.HistoryResponse, error)
	Create(ctx context.Context, input shippingapp.ShipmentInput) (*shippingapp.ShipmentResponse, error)
	UpdateCarrier(ctx context.Context, id uuid.UUID, input shippingapp.CarrierInput) (*shippingapp.ShipmentResponse, error)
	UpdateStatus(ctx context.Context, actor appshared.Actor, id uuid.UUID, status, note string) (*shippingapp.ShipmentResponse, error)
}

// AddressRequest is the create/update payload for an address
type AddressRequest struct {
	FullName      string `json:"full_name" binding:"required,max=150"`
	PhoneNumber   string `json:"phone_number" binding:"required,max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Country       string `json:"country" binding:"omitempty,max=100"`
	City          string `json:"city" binding:"required,max=100"`
	PostalCode    string `json:"postal_code" binding:"omitempty,max=20"`
	StreetAddress string `json:"street_address" binding:"required,max=255"`
	Landmark      string `json:"landmark" binding:"omitempty,max=255"`
	IsDefault     bool   `json:"is_default"`
}

// MethodRequest is the admin create/update payload for a shipping method
type MethodRequest struct {
	Name          string           `json:"name" binding:"required,max=100"`
	Description   string           `json:"description"`
	BaseCost      *decimal.Decimal `json:"base_cost" binding:"required"`
	CostPerKm     *decimal.Decimal `json:"cost_per_km"`
	EstimatedDays *int             `json:"estimated_days" binding:"omitempty,gte=0"`
	IsActive      *bool            `json:"is_active"`
}

// ShipmentRequest opens a shipment for an order
type ShipmentRequest struct {
	OrderID        uuid.UUID  `json:"order_id" binding:"required"`
	AddressID      uuid.UUID  `json:"address_id" binding:"required"`
	MethodID       *uuid.UUID `json:"method_id"`
	CourierName    string     `json:"courier_name" binding:"omitempty,max=100"`
	TrackingNumber string     `json:"tracking_number" binding:"omitempty,max=100"`
}

// CarrierRequest changes the courier details of a shipment
type CarrierRequest struct {
	CourierName    string `json:"courier_name" binding:"omitempty,max=100"`
	TrackingNumber string `json:"tracking_number" binding:"omitempty,max=100"`
}

// ShipmentListRequest is the shipment list query
type ShipmentListRequest struct {
	dto.PageQuery
	Status string `form:"status"`
}

// StatusMessage is the reply of status updates and default address changes
type StatusMessage struct {
	Status string `json:"status"`
}

// ShipmentStatusResponse is returned by the admin status update
type ShipmentStatusResponse struct {
	Status   string                       `json:"status"`
	Shipment shippingapp.ShipmentResponse `json:"shipment"`
}

// ShippingHandler handles addresses, methods and shipments
type ShippingHandler struct {
	BaseHandler
	addressService  AddressService
	methodService   MethodService
	shipmentService ShipmentService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(addresses AddressService, methods MethodService, shipments ShipmentService) *ShippingHandler {
	return &ShippingHandler{
		addressService:  addresses,
		methodService:   methods,
		shipmentService: shipments,
	}
}

// ListAddresses godoc
//
//	@Summary		List my addresses
//	@Tags			shipping
//	@ID				listAddresses
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]shippingapp.AddressResponse]
//	@Failure		401	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/addresses [get]
func (h *ShippingHandler) ListAddresses(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	addresses, err := h.addressService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// GetAddress godoc
//
//	@Summary		Get one of my addresses
//	@Tags			shipping
//	@ID				getAddress
//	@Produce		json
//	@Param			id	path		string	true	"Address ID"	format(uuid)
//	@Success		200	{object}	APIResponse[shippingapp.AddressResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/addresses/{id} [get]
func (h *ShippingHandler) GetAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	address, err := h.addressService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// CreateAddress godoc
//
//	@Summary		Add an address
//	@Description	A default address clears the flag on the others
//	@Tags			shipping
//	@ID				createAddress
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AddressRequest	true	"Address"
//	@Success		201		{object}	APIResponse[shippingapp.AddressResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/addresses [post]
func (h *ShippingHandler) CreateAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	address, err := h.addressService.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// UpdateAddress godoc
//
//	@Summary		Update an address
//	@Tags			shipping
//	@ID				updateAddress
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Address ID"	format(uuid)
//	@Param			request	body		AddressRequest	true	"Address"
//	@Success		200		{object}	APIResponse[shippingapp.AddressResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/addresses/{id} [put]
//	@Router			/shipping/addresses/{id} [patch]
func (h *ShippingHandler) UpdateAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	address, err := h.addressService.Update(c.Request.Context(), userID, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// DeleteAddress godoc
//
//	@Summary		Delete an address
//	@Tags			shipping
//	@ID				deleteAddress
//	@Param			id	path	string	true	"Address ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/addresses/{id} [delete]
func (h *ShippingHandler) DeleteAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.addressService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetDefaultAddress godoc
//
//	@Summary		Make an address the default
//	@Tags			shipping
//	@ID				setDefaultAddress
//	@Produce		json
//	@Param			id	path		string	true	"Address ID"	format(uuid)
//	@Success		200	{object}	APIResponse[StatusMessage]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/addresses/{id}/set-default [post]
func (h *ShippingHandler) SetDefaultAddress(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.addressService.SetDefault(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, StatusMessage{Status: "default address set"})
}

// ListMethods godoc
//
//	@Summary		List shipping methods
//	@Description	Active methods ordered by base cost
//	@Tags			shipping
//	@ID				listShippingMethods
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]shippingapp.MethodResponse]
//	@Router			/shipping/methods [get]
func (h *ShippingHandler) ListMethods(c *gin.Context) {
	methods, err := h.methodService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// GetMethod godoc
//
//	@Summary		Get shipping method by ID
//	@Tags			shipping
//	@ID				getShippingMethod
//	@Produce		json
//	@Param			id	path		string	true	"Method ID"	format(uuid)
//	@Success		200	{object}	APIResponse[shippingapp.MethodResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/shipping/methods/{id} [get]
func (h *ShippingHandler) GetMethod(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	method, err := h.methodService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, method)
}

// CreateMethod godoc
//
//	@Summary		Create a shipping method
//	@Tags			shipping
//	@ID				createShippingMethod
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MethodRequest	true	"Method"
//	@Success		201		{object}	APIResponse[shippingapp.MethodResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/methods [post]
func (h *ShippingHandler) CreateMethod(c *gin.Context) {
	var req MethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	method, err := h.methodService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, method)
}

// UpdateMethod godoc
//
//	@Summary		Update a shipping method
//	@Tags			shipping
//	@ID				updateShippingMethod
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Method ID"	format(uuid)
//	@Param			request	body		MethodRequest	true	"Method"
//	@Success		200		{object}	APIResponse[shippingapp.MethodResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/methods/{id} [put]
func (h *ShippingHandler) UpdateMethod(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req MethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	method, err := h.methodService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, method)
}

// DeleteMethod godoc
//
//	@Summary		Delete a shipping method
//	@Tags			shipping
//	@ID				deleteShippingMethod
//	@Param			id	path	string	true	"Method ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/methods/{id} [delete]
func (h *ShippingHandler) DeleteMethod(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.methodService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListShipments godoc
//
//	@Summary		List shipments
//	@Description	Staff see all shipments, customers those of their orders
//	@Tags			shipping
//	@ID				listShipments
//	@Produce		json
//	@Param			status		query		string	false	"Shipment status"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]shippingapp.ShipmentResponse]
//	@Security		BearerAuth
//	@Router			/shipping/shipments [get]
func (h *ShippingHandler) ListShipments(c *gin.Context) {
	var q ShipmentListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.shipmentService.List(c.Request.Context(), actor(c), shippingapp.ShipmentListFilter{
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Shipments, result.Total, result.Page, result.PageSize)
}

// GetShipment godoc
//
//	@Summary		Get shipment by ID
//	@Tags			shipping
//	@ID				getShipment
//	@Produce		json
//	@Param			id	path		string	true	"Shipment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[shippingapp.ShipmentResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/shipments/{id} [get]
func (h *ShippingHandler) GetShipment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	shipment, err := h.shipmentService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// ShipmentHistory godoc
//
//	@Summary		Shipment status history
//	@Tags			shipping
//	@ID				getShipmentHistory
//	@Produce		json
//	@Param			id	path		string	true	"Shipment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]shippingapp.HistoryResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/shipments/{id}/history [get]
func (h *ShippingHandler) ShipmentHistory(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.shipmentService.History(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// CreateShipment godoc
//
//	@Summary		Open a shipment for an order
//	@Tags			shipping
//	@ID				createShipment
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ShipmentRequest	true	"Shipment"
//	@Success		201		{object}	APIResponse[shippingapp.ShipmentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/shipments [post]
func (h *ShippingHandler) CreateShipment(c *gin.Context) {
	var req ShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shipment, err := h.shipmentService.Create(c.Request.Context(), shippingapp.ShipmentInput{
		OrderID:        req.OrderID,
		AddressID:      req.AddressID,
		MethodID:       req.MethodID,
		CourierName:    req.CourierName,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// UpdateShipment godoc
//
//	@Summary		Update courier details
//	@Description	The tracking number is copied onto the order
//	@Tags			shipping
//	@ID				updateShipment
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Shipment ID"	format(uuid)
//	@Param			request	body		CarrierRequest	true	"Courier details"
//	@Success		200		{object}	APIResponse[shippingapp.ShipmentResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/shipments/{id} [put]
func (h *ShippingHandler) UpdateShipment(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CarrierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shipment, err := h.shipmentService.UpdateCarrier(c.Request.Context(), id, shippingapp.CarrierInput{
		CourierName:    req.CourierName,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// UpdateShipmentStatus godoc
//
//	@Summary		Change shipment status
//	@Tags			shipping
//	@ID				updateShipmentStatus
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Shipment ID"	format(uuid)
//	@Param			request	body		StatusUpdateRequest	true	"New status"
//	@Success		200		{object}	APIResponse[ShipmentStatusResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/shipping/shipments/{id}/update-status [post]
func (h *ShippingHandler) UpdateShipmentStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shipment, err := h.shipmentService.UpdateStatus(c.Request.Context(), actor(c), id, req.Status, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ShipmentStatusResponse{
		Status:   "Shipment updated to " + shipment.Status,
		Shipment: *shipment,
	})
}

func (r AddressRequest) toInput() shippingapp.AddressInput {
	return shippingapp.AddressInput{
		FullName:      r.FullName,
		PhoneNumber:   r.PhoneNumber,
		Email:         r.Email,
		Country:       r.Country,
		City:          r.City,
		PostalCode:    r.PostalCode,
		StreetAddress: r.StreetAddress,
		Landmark:      r.Landmark,
		IsDefault:     r.IsDefault,
	}
}

func (r MethodRequest) toInput() shippingapp.MethodInput {
	input := shippingapp.MethodInput{
		Name:        r.Name,
		Description: r.Description,
		BaseCost:    *r.BaseCost,
		IsActive:    r.IsActive,
	}
	if r.CostPerKm != nil {
		input.CostPerKm = *r.CostPerKm
	}
	if r.EstimatedDays != nil {
		input.EstimatedDays = *r.EstimatedDays
	}
	return input
}
