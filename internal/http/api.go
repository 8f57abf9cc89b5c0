package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invoice-dashboard/internal/cache"
	"invoice-dashboard/internal/domain"
	"invoice-dashboard/internal/search"
	"invoice-dashboard/internal/service"
	"invoice-dashboard/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	invoices  service.InvoiceService
	users     service.UserService
	views     *cache.Views
	storage   storage.Service
	bucket    string
	keyPrefix string
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *logrus.Logger
}

func NewHandler(
	invoices service.InvoiceService,
	users service.UserService,
	views *cache.Views,
	store storage.Service,
	bucket, keyPrefix string,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		invoices:  invoices,
		users:     users,
		views:     views,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	router.GET("/api/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	router.GET(loginPath, h.redirectAuthed(), h.loginPage)
	router.POST(loginPath, h.login)
	router.POST("/logout", h.logout)
	router.POST("/signup", h.signup)

	dashboard := router.Group(dashboardPath, h.requireSession())
	{
		dashboard.GET("", h.dashboardIndex)
		dashboard.GET("/invoices", h.listInvoices)
		dashboard.POST("/invoices", h.createInvoice)
		dashboard.DELETE("/invoices/:id", h.deleteInvoice)
		dashboard.GET("/invoices/search", h.searchInvoices)
		dashboard.GET("/invoices/export", h.exportInvoices)
		dashboard.GET("/invoices/exports", h.listExports)
		dashboard.GET("/customers", h.listCustomers)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remote_ip":  c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}

func (h *Handler) dashboardIndex(c *gin.Context) {
	user, _ := c.Get(userKey)
	u, ok := user.(*domain.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": u.ID, "name": u.Name, "email": u.Email}})
}

type createInvoiceRequest struct {
	CustomerID string `form:"customerId"`
	Amount     string `form:"amount"`
	Status     string `form:"status"`
}

func (h *Handler) createInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed form submission."})
		return
	}

	_, err := h.invoices.Create(c.Request.Context(), service.CreateInvoiceInput{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Status:     req.Status,
	})
	if err != nil {
		var fieldErrs *service.FieldErrors
		var storageErr *service.StorageError
		switch {
		case errors.As(err, &fieldErrs):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"errors":  fieldErrs.Fields,
				"message": fieldErrs.Message,
			})
		case errors.As(err, &storageErr):
			h.logger.WithError(storageErr.Unwrap()).Error("create invoice")
			c.JSON(http.StatusInternalServerError, gin.H{"message": storageErr.Error()})
		default:
			h.logger.WithError(err).Error("create invoice")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
		}
		return
	}

	h.views.Invalidate(invoicesPath)
	c.Redirect(http.StatusSeeOther, invoicesPath)
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid invoice id"})
		return
	}

	resp := gin.H{"deleted": id}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		// best effort: a failed delete never breaks the page, but the
		// failure is logged and surfaced as a warning
		h.logger.WithError(err).Warn("delete invoice")
		resp["warnings"] = []string{"Database Error: Failed to Delete Invoice."}
		c.JSON(http.StatusOK, resp)
		return
	}

	h.views.Invalidate(invoicesPath)
	c.JSON(http.StatusOK, resp)
}

type invoiceListResponse struct {
	Invoices   []InvoiceResponse `json:"invoices"`
	TotalPages int               `json:"total_pages"`
	Query      string            `json:"query"`
	Page       int               `json:"page"`
}

func (h *Handler) listInvoices(c *gin.Context) {
	query := c.Query("query")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	// url-encoded so a query containing "&" or "=" cannot forge
	// another (query, page) pair's cache key
	variant := url.Values{"query": {query}, "page": {strconv.Itoa(page)}}.Encode()
	if payload, ok := h.views.Get(invoicesPath, variant); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	rows, err := h.invoices.List(c.Request.Context(), query, page)
	if err != nil {
		h.storageFailure(c, err, "list invoices")
		return
	}
	totalPages, err := h.invoices.CountPages(c.Request.Context(), query)
	if err != nil {
		h.storageFailure(c, err, "count invoice pages")
		return
	}

	resp := invoiceListResponse{
		Invoices:   make([]InvoiceResponse, len(rows)),
		TotalPages: totalPages,
		Query:      query,
		Page:       page,
	}
	for i := range rows {
		resp.Invoices[i] = invoiceToResponse(rows[i])
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
		return
	}
	h.views.Set(invoicesPath, variant, payload)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// searchInvoices turns a typed search term into the canonical list URL:
// page resets to 1 and an empty term drops the query parameter.
func (h *Handler) searchInvoices(c *gin.Context) {
	params := c.Request.URL.Query()
	term := params.Get("term")
	params.Del("term")

	normalized := search.Normalize(params, term)
	c.Redirect(http.StatusSeeOther, invoicesPath+"?"+normalized.Encode())
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.invoices.ListCustomers(c.Request.Context())
	if err != nil {
		h.storageFailure(c, err, "list customers")
		return
	}

	resp := make([]CustomerResponse, len(customers))
	for i := range customers {
		resp[i] = CustomerResponse{
			ID:       customers[i].ID,
			Name:     customers[i].Name,
			Email:    customers[i].Email,
			ImageURL: customers[i].ImageURL,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportInvoices(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "export storage not configured"})
		return
	}

	data, err := h.invoices.ExportCSV(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.storageFailure(c, err, "export invoices")
		return
	}

	key := fmt.Sprintf("%s/invoices-%s.csv", h.keyPrefix, time.Now().UTC().Format("20060102-150405"))
	location, err := h.storage.Upload(c.Request.Context(), key, bytes.NewReader(data), storage.UploadOptions{
		Bucket:      h.bucket,
		ContentType: "text/csv",
	})
	if err != nil {
		h.logger.WithError(err).Error("upload export")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload export."})
		return
	}

	resp := gin.H{"location": location}
	if url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, 15*time.Minute); err != nil {
		h.logger.WithError(err).Warn("presign export url")
	} else {
		resp["url"] = url
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listExports(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "export storage not configured"})
		return
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, h.keyPrefix)
	if err != nil {
		h.logger.WithError(err).Error("list exports")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list exports."})
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) storageFailure(c *gin.Context, err error, op string) {
	var storageErr *service.StorageError
	if errors.As(err, &storageErr) {
		h.logger.WithError(storageErr.Unwrap()).Error(op)
		c.JSON(http.StatusInternalServerError, gin.H{"message": storageErr.Error()})
		return
	}
	h.logger.WithError(err).Error(op)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong."})
}

type InvoiceResponse struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerImage string `json:"customer_image"`
	AmountCents   int64  `json:"amount_cents"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	Date          string `json:"date"`
}

type CustomerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func invoiceToResponse(row domain.InvoiceRow) InvoiceResponse {
	return InvoiceResponse{
		ID:            row.ID,
		CustomerID:    row.CustomerID,
		CustomerName:  row.CustomerName,
		CustomerEmail: row.CustomerEmail,
		CustomerImage: row.CustomerImage,
		AmountCents:   row.AmountCents,
		Amount:        service.FormatAmount(row.AmountCents),
		Status:        string(row.Status),
		Date:          row.Date,
	}
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
