package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/papererp/backend/internal/application/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles payment, invoice, credit and ledger query endpoints
type LedgerHandler struct {
	BaseHandler
	paymentService *ledgerapp.PaymentService
	invoiceService *ledgerapp.InvoiceService
	creditService  *ledgerapp.CreditService
	accountService *ledgerapp.AccountService
	queryService   *ledgerapp.LedgerQueryService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(
	paymentService *ledgerapp.PaymentService,
	invoiceService *ledgerapp.InvoiceService,
	creditService *ledgerapp.CreditService,
	accountService *ledgerapp.AccountService,
	queryService *ledgerapp.LedgerQueryService,
) *LedgerHandler {
	return &LedgerHandler{
		paymentService: paymentService,
		invoiceService: invoiceService,
		creditService:  creditService,
		accountService: accountService,
		queryService:   queryService,
	}
}

// RegisterRoutes registers all ledger routes on the given group
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/ledger")

	ledger.POST("/invoices", h.CreateInvoice)
	ledger.GET("/invoices/:id", h.GetInvoice)
	ledger.POST("/invoices/:id/cancel", h.CancelInvoice)

	ledger.POST("/payments", h.RecordPayment)
	ledger.GET("/payments/:id", h.GetPayment)

	ledger.POST("/credits", h.CreateCredit)
	ledger.GET("/credits/:id", h.GetCredit)
	ledger.POST("/credits/:id/apply", h.ApplyCredit)
	ledger.POST("/credits/:id/void", h.VoidCredit)

	ledger.POST("/accounts", h.ImportOpeningBalance)

	customers := ledger.Group("/customers/:customerID")
	customers.GET("/invoices", h.ListInvoices)
	customers.GET("/payments", h.ListPayments)
	customers.GET("/credits", h.ListCredits)
	customers.GET("/account", h.GetAccount)
	customers.GET("/summary", h.GetSummary)
	customers.GET("/statement", h.GetStatement)
}

// ===================== Invoices =====================

// CreateInvoice creates a new invoice with its full amount outstanding
func (h *LedgerHandler) CreateInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetInvoice retrieves an invoice by ID
func (h *LedgerHandler) GetInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// CancelInvoiceRequest carries the reason for cancelling an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelInvoice cancels an invoice that has no payments or credits applied
func (h *LedgerHandler) CancelInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), tenantID, invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ListInvoices lists a customer's invoices, optionally filtered by status
func (h *LedgerHandler) ListInvoices(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndCustomer(c)
	if !ok {
		return
	}

	var filter ledgerapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, customerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// ===================== Payments =====================

// RecordPayment records a payment and allocates it across the customer's
// open invoices
func (h *LedgerHandler) RecordPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req ledgerapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetPayment retrieves a payment by ID
func (h *LedgerHandler) GetPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListPayments lists a customer's payments, most recent first
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndCustomer(c)
	if !ok {
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, customerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ===================== Credits =====================

// CreateCredit issues a manual credit for a customer
func (h *LedgerHandler) CreateCredit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req ledgerapp.CreateCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	credit, err := h.creditService.CreateCredit(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, credit)
}

// GetCredit retrieves a credit by ID
func (h *LedgerHandler) GetCredit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit ID format")
		return
	}

	credit, err := h.creditService.GetCredit(c.Request.Context(), tenantID, creditID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, credit)
}

// ApplyCredit applies part of a credit's available balance to an invoice
func (h *LedgerHandler) ApplyCredit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit ID format")
		return
	}

	var req ledgerapp.ApplyCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.creditService.ApplyCredit(c.Request.Context(), tenantID, creditID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// VoidCredit voids an unapplied credit
func (h *LedgerHandler) VoidCredit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	creditID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid credit ID format")
		return
	}

	var req ledgerapp.VoidCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	credit, err := h.creditService.VoidCredit(c.Request.Context(), tenantID, creditID, userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, credit)
}

// ListCredits lists a customer's credits
func (h *LedgerHandler) ListCredits(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndCustomer(c)
	if !ok {
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	credits, total, err := h.creditService.ListCredits(c.Request.Context(), tenantID, customerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, credits, total, filter.Page, filter.PageSize)
}

// ===================== Accounts and queries =====================

// ImportOpeningBalance records the balance a customer carried into the system
func (h *LedgerHandler) ImportOpeningBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.ImportOpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.ImportOpeningBalance(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// GetAccount retrieves a customer's ledger account
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndCustomer(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// GetSummary retrieves a customer's ledger summary
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndCustomer(c)
	if !ok {
		return
	}

	summary, err := h.queryService.GetSummary(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetStatement retrieves a customer's chronological statement
func (h *LedgerHandler) GetStatement(c *gin.Context) {
	tenantID, customerID, ok := h.tenantAndCustomer(c)
	if !ok {
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	statement, err := h.queryService.GetStatement(c.Request.Context(), tenantID, customerID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// tenantAndCustomer extracts the tenant ID and the customerID path
// parameter, writing the error response itself on failure
func (h *LedgerHandler) tenantAndCustomer(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}

	customerID, err := uuid.Parse(c.Param("customerID"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return uuid.Nil, uuid.Nil, false
	}

	return tenantID, customerID, true
}

// bindFilter binds common pagination query parameters into a shared.Filter
func (h *LedgerHandler) bindFilter(c *gin.Context) (shared.Filter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}

	return filter, true
}
