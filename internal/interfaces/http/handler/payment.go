package handler

import (
	"context"
	"io"
	"net/http"

	paymentapp "github.com/adfinitum/backend/internal/application/payment"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/infrastructure/logger"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService is the payments API
type PaymentService interface {
	List(ctx context.Context, actor appshared.Actor, filter paymentapp.ListFilter) (*paymentapp.ListResult, error)
	Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*paymentapp.PaymentResponse, error)
	InitiateMpesa(ctx context.Context, actor appshared.Actor, input paymentapp.MpesaInput) (*paymentapp.PaymentResponse, error)
	HandleCallback(ctx context.Context, raw []byte) error
	SubmitBank(ctx context.Context, actor appshared.Actor, input paymentapp.BankInput) (*paymentapp.PaymentResponse, error)
	Review(ctx context.Context, actor appshared.Actor, id uuid.UUID, approve bool, note string) (*paymentapp.PaymentResponse, error)
}

// MpesaInitiateRequest starts an STK push
type MpesaInitiateRequest struct {
	OrderID     uuid.UUID        `json:"order_id" binding:"required"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	PhoneNumber string           `json:"phone_number" binding:"required,phone_ke"`
}

// BankSubmitForm is the multipart bank transfer form; the receipt travels
// as the receipt_image file
type BankSubmitForm struct {
	OrderID         string `form:"order_id" binding:"required,uuid"`
	Amount          string `form:"amount" binding:"required,numeric"`
	ReferenceNumber string `form:"reference_number" binding:"required,max=100"`
}

// PaymentReviewRequest approves or rejects a bank transfer
type PaymentReviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Note    string `json:"note" binding:"max=500"`
}

// PaymentListRequest is the payment list query
type PaymentListRequest struct {
	dto.PageQuery
	Status string `form:"status"`
	Method string `form:"method"`
}

// PaymentCreatedResponse is returned when a payment is started
type PaymentCreatedResponse struct {
	Message string                     `json:"message"`
	Payment paymentapp.PaymentResponse `json:"payment"`
}

// MpesaCallbackAck is the reply Daraja expects from a callback endpoint
type MpesaCallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// PaymentHandler handles payment HTTP requests and the M-Pesa callback
type PaymentHandler struct {
	BaseHandler
	paymentService PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List godoc
//
//	@Summary		List payments
//	@Description	Staff see every payment, customers their own
//	@Tags			payments
//	@ID				listPayments
//	@Produce		json
//	@Param			status		query		string	false	"Payment status"
//	@Param			method		query		string	false	"mpesa or bank"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[paymentapp.PaymentResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var q PaymentListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.paymentService.List(c.Request.Context(), actor(c), paymentapp.ListFilter{
		Status:   q.Status,
		Method:   q.Method,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Payments, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
//
//	@Summary		Get payment by ID
//	@Tags			payments
//	@ID				getPayment
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"	format(uuid)
//	@Success		200	{object}	APIResponse[paymentapp.PaymentResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.paymentService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// InitiateMpesa godoc
//
//	@Summary		Start an M-Pesa STK push
//	@Tags			payments
//	@ID				initiateMpesa
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MpesaInitiateRequest	true	"Order, amount and phone"
//	@Success		201		{object}	APIResponse[PaymentCreatedResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/mpesa/initiate [post]
func (h *PaymentHandler) InitiateMpesa(c *gin.Context) {
	var req MpesaInitiateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.paymentService.InitiateMpesa(c.Request.Context(), actor(c), paymentapp.MpesaInput{
		OrderID:     req.OrderID,
		Amount:      *req.Amount,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PaymentCreatedResponse{Message: "STK Push initiated", Payment: *p})
}

// MpesaCallback godoc
//
//	@Summary		M-Pesa STK callback
//	@Description	Called by Daraja. Always acknowledged, whatever the outcome.
//	@Tags			payments
//	@ID				mpesaCallback
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	MpesaCallbackAck
//	@Router			/payments/mpesa/callback [post]
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	log := logger.GetGinLogger(c)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn("Failed to read M-Pesa callback body", zap.Error(err))
	} else if err := h.paymentService.HandleCallback(c.Request.Context(), payload); err != nil {
		log.Error("M-Pesa callback processing failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, MpesaCallbackAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// SubmitBank godoc
//
//	@Summary		Submit a bank transfer
//	@Description	Uploads the receipt and records a payment awaiting review
//	@Tags			payments
//	@ID				submitBankTransfer
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			order_id			formData	string	true	"Order ID"
//	@Param			amount				formData	number	true	"Amount paid"
//	@Param			reference_number	formData	string	true	"Bank reference"
//	@Param			receipt_image		formData	file	true	"Receipt image or PDF"
//	@Success		201					{object}	APIResponse[PaymentCreatedResponse]
//	@Failure		400					{object}	ErrorResponse
//	@Failure		404					{object}	ErrorResponse
//	@Failure		413					{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/bank/submit [post]
func (h *PaymentHandler) SubmitBank(c *gin.Context) {
	var form BankSubmitForm
	if !h.bindForm(c, &form) {
		return
	}
	orderID, err := uuid.Parse(form.OrderID)
	if err != nil {
		h.FieldError(c, "order_id", "Must be a valid UUID.")
		return
	}
	amount, err := decimal.NewFromString(form.Amount)
	if err != nil {
		h.FieldError(c, "amount", "Enter a number.")
		return
	}
	receipt, closeFile, err := formUpload(c, "receipt_image")
	if err != nil {
		h.FieldError(c, "receipt_image", "The submitted data was not a file.")
		return
	}
	defer closeFile()

	p, err := h.paymentService.SubmitBank(c.Request.Context(), actor(c), paymentapp.BankInput{
		OrderID:         orderID,
		Amount:          amount,
		ReferenceNumber: form.ReferenceNumber,
		Receipt:         receipt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, PaymentCreatedResponse{Message: "Bank transfer submitted", Payment: *p})
}

// Review godoc
//
//	@Summary		Review a bank transfer
//	@Description	Approval marks the order paid; rejection fails the payment
//	@Tags			payments
//	@ID				reviewPayment
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Payment ID"	format(uuid)
//	@Param			request	body		PaymentReviewRequest	true	"Decision"
//	@Success		200		{object}	APIResponse[paymentapp.PaymentResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/payments/{id}/review [post]
func (h *PaymentHandler) Review(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req PaymentReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.paymentService.Review(c.Request.Context(), actor(c), id, *req.Approve, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
