package analytics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"engracedsmile/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Payments handles GET /admin/payments?status=&search=&from=&to=&page=&limit=
func (c *Controller) Payments(ctx *gin.Context) {
	filter := PaymentFilter{
		Status: strings.TrimSpace(ctx.Query("status")),
		Search: strings.TrimSpace(ctx.Query("search")),
	}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	if v := ctx.Query("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD", nil)
			return
		}
		filter.From = &from
	}
	if v := ctx.Query("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD", nil)
			return
		}
		end := to.Add(24 * time.Hour)
		filter.To = &end
	}

	report, err := c.service.Payments(ctx.Request.Context(), filter)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load payments")
		return
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	response.Success(ctx, http.StatusOK, "Payments retrieved successfully", gin.H{
		"totals":   report.Totals,
		"payments": report.Payments,
		"meta":     response.NewPageMeta(page, limit, report.Total),
	})
}

// Dashboard handles GET /admin/dashboard
func (c *Controller) Dashboard(ctx *gin.Context) {
	dashboard, err := c.service.Dashboard(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err, "Failed to load dashboard")
		return
	}
	response.Success(ctx, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}
