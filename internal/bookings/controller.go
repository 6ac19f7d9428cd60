package bookings

import (
	"net/http"
	"strconv"
	"time"

	"engracedsmile/internal/shared/middleware"
	"engracedsmile/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// Create handles POST /bookings. Guests may book; a signed-in customer
// becomes the booking owner.
func (c *Controller) Create(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	booking, err := c.service.Create(ctx.Request.Context(), requester(ctx), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create booking")
		return
	}
	response.Success(ctx, http.StatusCreated, "Booking created, awaiting payment", ToResponse(booking))
}

// Get handles GET /bookings/:id
func (c *Controller) Get(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	booking, err := c.service.Get(ctx.Request.Context(), id, requester(ctx))
	if err != nil {
		response.RespondError(ctx, err, "Failed to get booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", ToResponse(booking))
}

// GetByReference handles GET /bookings/reference/:reference?email=
func (c *Controller) GetByReference(ctx *gin.Context) {
	booking, err := c.service.GetByReference(ctx.Request.Context(), ctx.Param("reference"), ctx.Query("email"), requester(ctx))
	if err != nil {
		response.RespondError(ctx, err, "Failed to get booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", ToResponse(booking))
}

// ListMine handles GET /bookings/me
func (c *Controller) ListMine(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}
	filter := listFilter(ctx)
	list, total, err := c.service.ListMine(ctx.Request.Context(), userID, filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to list bookings")
		return
	}
	response.Paginated(ctx, "Bookings retrieved successfully", toResponses(list), response.NewPageMeta(filter.Page, filter.Limit, total))
}

// Cancel handles POST /bookings/:id/cancel
func (c *Controller) Cancel(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	booking, err := c.service.Cancel(ctx.Request.Context(), id, requester(ctx))
	if err != nil {
		response.RespondError(ctx, err, "Failed to cancel booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking cancelled", ToResponse(booking))
}

// Ticket handles GET /bookings/:id/ticket and streams the PDF
func (c *Controller) Ticket(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	pdf, filename, err := c.service.Ticket(ctx.Request.Context(), id, requester(ctx))
	if err != nil {
		response.RespondError(ctx, err, "Failed to generate ticket")
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}

// List handles GET /admin/bookings
func (c *Controller) List(ctx *gin.Context) {
	filter := listFilter(ctx)
	list, total, err := c.service.List(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to list bookings")
		return
	}
	response.Paginated(ctx, "Bookings retrieved successfully", toResponses(list), response.NewPageMeta(filter.Page, filter.Limit, total))
}

// Complete handles PATCH /admin/bookings/:id/complete
func (c *Controller) Complete(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	booking, err := c.service.Complete(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to complete booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking marked as completed", ToResponse(booking))
}

func requester(ctx *gin.Context) Requester {
	who := Requester{Admin: middleware.IsAdmin(ctx)}
	if userID, ok := middleware.CurrentUserID(ctx); ok {
		who.UserID = &userID
	}
	return who
}

func pathID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid booking id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func listFilter(ctx *gin.Context) ListFilter {
	filter := ListFilter{
		Status:        Status(ctx.Query("status")),
		PaymentStatus: PaymentStatus(ctx.Query("payment_status")),
		Search:        ctx.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if raw := ctx.Query("trip_id"); raw != "" {
		if tripID, err := uuid.Parse(raw); err == nil {
			filter.TripID = &tripID
		}
	}
	if raw := ctx.Query("from"); raw != "" {
		if from, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = &from
		}
	}
	if raw := ctx.Query("to"); raw != "" {
		if to, err := time.Parse("2006-01-02", raw); err == nil {
			end := to.Add(24 * time.Hour)
			filter.To = &end
		}
	}
	filter.normalize()
	return filter
}
