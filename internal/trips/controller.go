package trips

import (
	"net/http"
	"strconv"
	"strings"
	"time"

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

// Search handles GET /trips/search?from=&to=&date=&passengers=
func (c *Controller) Search(ctx *gin.Context) {
	var req SearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	results, err := c.service.Search(ctx.Request.Context(), SearchQuery{
		FromCity:   strings.TrimSpace(req.From),
		ToCity:     strings.TrimSpace(req.To),
		Date:       date,
		Passengers: req.Passengers,
		Category:   Category(req.Category),
		PromoOnly:  req.PromoOnly,
	})
	if err != nil {
		response.RespondError(ctx, err, "Failed to search trips")
		return
	}
	response.Success(ctx, http.StatusOK, "Trips retrieved successfully", results)
}

// GetPublic returns the search view of a single active trip
func (c *Controller) GetPublic(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	trip, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to get trip")
		return
	}
	if !trip.IsActive {
		response.Error(ctx, http.StatusNotFound, "Trip not found", nil)
		return
	}
	response.Success(ctx, http.StatusOK, "Trip retrieved successfully", toSummary(trip, time.Now()))
}

func (c *Controller) Create(ctx *gin.Context) {
	var req CreateTripRequest
	if !c.bind(ctx, &req) {
		return
	}
	trip, err := c.service.Create(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create trip")
		return
	}
	response.Success(ctx, http.StatusCreated, "Trip created successfully", trip)
}

func (c *Controller) Update(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req UpdateTripRequest
	if !c.bind(ctx, &req) {
		return
	}
	trip, err := c.service.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update trip")
		return
	}
	response.Success(ctx, http.StatusOK, "Trip updated successfully", trip)
}

func (c *Controller) Get(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	trip, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to get trip")
		return
	}
	response.Success(ctx, http.StatusOK, "Trip retrieved successfully", trip)
}

func (c *Controller) List(ctx *gin.Context) {
	filter := ListFilter{Status: TripStatus(ctx.Query("status"))}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if raw := ctx.Query("route_id"); raw != "" {
		if routeID, err := uuid.Parse(raw); err == nil {
			filter.RouteID = &routeID
		}
	}
	if raw := ctx.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	if raw := ctx.Query("from"); raw != "" {
		if from, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &from
		}
	}
	if raw := ctx.Query("to"); raw != "" {
		if to, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &to
		}
	}
	filter.normalize()

	trips, total, err := c.service.List(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to list trips")
		return
	}
	response.Paginated(ctx, "Trips retrieved successfully", trips, response.NewPageMeta(filter.Page, filter.Limit, total))
}

func (c *Controller) Deactivate(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	trip, err := c.service.Deactivate(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to deactivate trip")
		return
	}
	response.Success(ctx, http.StatusOK, "Trip deactivated", trip)
}

func (c *Controller) SetPromotion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req PromotionRequest
	if !c.bind(ctx, &req) {
		return
	}
	trip, err := c.service.SetPromotion(ctx.Request.Context(), id, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to set promotion")
		return
	}
	response.Success(ctx, http.StatusOK, "Promotion applied", trip)
}

func (c *Controller) ClearPromotion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	trip, err := c.service.ClearPromotion(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to clear promotion")
		return
	}
	response.Success(ctx, http.StatusOK, "Promotion removed", trip)
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return false
	}
	return true
}

func pathID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid trip id", nil)
		return uuid.Nil, false
	}
	return id, true
}
