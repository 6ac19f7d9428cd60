package fleet

import (
	"net/http"
	"strconv"

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

// Routes

func (c *Controller) CreateRoute(ctx *gin.Context) {
	var req CreateRouteRequest
	if !c.bind(ctx, &req) {
		return
	}
	route, err := c.service.CreateRoute(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create route")
		return
	}
	response.Success(ctx, http.StatusCreated, "Route created successfully", route)
}

func (c *Controller) UpdateRoute(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req UpdateRouteRequest
	if !c.bind(ctx, &req) {
		return
	}
	route, err := c.service.UpdateRoute(ctx.Request.Context(), id, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update route")
		return
	}
	response.Success(ctx, http.StatusOK, "Route updated successfully", route)
}

func (c *Controller) GetRoute(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	route, err := c.service.GetRoute(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to get route")
		return
	}
	response.Success(ctx, http.StatusOK, "Route retrieved successfully", route)
}

func (c *Controller) ListRoutes(ctx *gin.Context) {
	filter := listFilter(ctx)
	routes, total, err := c.service.ListRoutes(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to list routes")
		return
	}
	response.Paginated(ctx, "Routes retrieved successfully", routes, response.NewPageMeta(filter.Page, filter.Limit, total))
}

func (c *Controller) ToggleRoute(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req ToggleActiveRequest
	if !c.bind(ctx, &req) {
		return
	}
	route, err := c.service.SetRouteActive(ctx.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update route status")
		return
	}
	response.Success(ctx, http.StatusOK, "Route status updated", route)
}

func (c *Controller) DeleteRoute(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.service.DeleteRoute(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, err, "Failed to delete route")
		return
	}
	response.Success(ctx, http.StatusOK, "Route deleted successfully", nil)
}

// Vehicles

func (c *Controller) CreateVehicle(ctx *gin.Context) {
	var req CreateVehicleRequest
	if !c.bind(ctx, &req) {
		return
	}
	vehicle, err := c.service.CreateVehicle(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create vehicle")
		return
	}
	response.Success(ctx, http.StatusCreated, "Vehicle created successfully", vehicle)
}

func (c *Controller) UpdateVehicle(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req UpdateVehicleRequest
	if !c.bind(ctx, &req) {
		return
	}
	vehicle, err := c.service.UpdateVehicle(ctx.Request.Context(), id, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update vehicle")
		return
	}
	response.Success(ctx, http.StatusOK, "Vehicle updated successfully", vehicle)
}

func (c *Controller) GetVehicle(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	vehicle, err := c.service.GetVehicle(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to get vehicle")
		return
	}
	response.Success(ctx, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

func (c *Controller) ListVehicles(ctx *gin.Context) {
	filter := listFilter(ctx)
	vehicles, total, err := c.service.ListVehicles(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to list vehicles")
		return
	}
	response.Paginated(ctx, "Vehicles retrieved successfully", vehicles, response.NewPageMeta(filter.Page, filter.Limit, total))
}

func (c *Controller) DeleteVehicle(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.service.DeleteVehicle(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, err, "Failed to delete vehicle")
		return
	}
	response.Success(ctx, http.StatusOK, "Vehicle deleted successfully", nil)
}

// Drivers

func (c *Controller) CreateDriver(ctx *gin.Context) {
	var req CreateDriverRequest
	if !c.bind(ctx, &req) {
		return
	}
	driver, err := c.service.CreateDriver(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create driver")
		return
	}
	response.Success(ctx, http.StatusCreated, "Driver created successfully", driver)
}

func (c *Controller) UpdateDriver(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req UpdateDriverRequest
	if !c.bind(ctx, &req) {
		return
	}
	driver, err := c.service.UpdateDriver(ctx.Request.Context(), id, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update driver")
		return
	}
	response.Success(ctx, http.StatusOK, "Driver updated successfully", driver)
}

func (c *Controller) GetDriver(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	driver, err := c.service.GetDriver(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err, "Failed to get driver")
		return
	}
	response.Success(ctx, http.StatusOK, "Driver retrieved successfully", driver)
}

func (c *Controller) ListDrivers(ctx *gin.Context) {
	filter := listFilter(ctx)
	drivers, total, err := c.service.ListDrivers(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to list drivers")
		return
	}
	response.Paginated(ctx, "Drivers retrieved successfully", drivers, response.NewPageMeta(filter.Page, filter.Limit, total))
}

func (c *Controller) ToggleDriver(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req ToggleActiveRequest
	if !c.bind(ctx, &req) {
		return
	}
	driver, err := c.service.SetDriverActive(ctx.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update driver status")
		return
	}
	response.Success(ctx, http.StatusOK, "Driver status updated", driver)
}

func (c *Controller) DeleteDriver(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.service.DeleteDriver(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, err, "Failed to delete driver")
		return
	}
	response.Success(ctx, http.StatusOK, "Driver deleted successfully", nil)
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
		response.Error(ctx, http.StatusBadRequest, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func listFilter(ctx *gin.Context) ListFilter {
	filter := ListFilter{Search: ctx.Query("search")}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if raw := ctx.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	filter.normalize()
	return filter
}
