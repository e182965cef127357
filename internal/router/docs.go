package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/query"
	"github.com/vendordocs/docscout/internal/refresh"
	"github.com/vendordocs/docscout/pkg/pagination"
)

type DocsRouter struct {
	e           *echo.Echo
	queries     *query.Controller
	coordinator *refresh.Coordinator
}

func NewDocsRouter(e *echo.Echo, queries *query.Controller, coordinator *refresh.Coordinator) *DocsRouter {
	return &DocsRouter{
		e:           e,
		queries:     queries,
		coordinator: coordinator,
	}
}

func (r *DocsRouter) Bind() {
	api := r.e.Group("/api")

	// /docs/stats before /docs/:id so "stats" never matches as an id.
	api.GET("/docs", r.searchHandler)
	api.GET("/docs/stats", r.statsHandler)
	api.GET("/docs/:id", r.getHandler)
	api.POST("/docs/ingest", r.ingestHandler)
	api.GET("/ingest/status", r.ingestStatusHandler)
}

func (r *DocsRouter) searchHandler(c echo.Context) error {
	var pageReq pagination.OffsetRequest
	if err := c.Bind(&pageReq); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}
	if err := pageReq.Validate(); err != nil {
		return apperr.NewValidationWrap(err.Error(), err)
	}

	params := query.SearchParams{
		Query: c.QueryParam("search"),
		Page:  pageReq.Page,
		Limit: pageReq.Limit,
	}

	if raw := c.QueryParam("product_type"); raw != "" {
		pt, err := domain.ParseProductType(raw)
		if err != nil {
			return apperr.NewValidationWrap("unknown product_type: "+raw, err)
		}
		params.ProductType = &pt
	}

	page, err := r.queries.Search(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (r *DocsRouter) statsHandler(c echo.Context) error {
	stats, err := r.queries.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (r *DocsRouter) getHandler(c echo.Context) error {
	doc, err := r.queries.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (r *DocsRouter) ingestHandler(c echo.Context) error {
	report, err := r.coordinator.Trigger(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, report)
}

func (r *DocsRouter) ingestStatusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, r.coordinator.Status())
}
