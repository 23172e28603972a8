package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"seasonplan/entities"
	"seasonplan/pkg/crop/controller"
	"seasonplan/pkg/crop/service"
	"seasonplan/pkg/middleware"
)

type cropCtrl struct{ s service.CropService }

func New(s service.CropService) controller.CropController { return &cropCtrl{s: s} }

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	return uint(v), err
}

func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

func summaryOptions(c echo.Context) (service.SummaryOptions, error) {
	var opts service.SummaryOptions
	switch strings.ToLower(c.QueryParam("pricebook")) {
	case "1", "true", "yes":
		opts.UsePriceBook = true
	}
	if v := c.QueryParam("season_year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y <= 0 {
			return opts, errors.New("invalid season_year")
		}
		opts.SeasonYear = y
	}
	return opts, nil
}

type createReq struct {
	Name       string                       `json:"name"`
	CropType   string                       `json:"crop_type"`
	SeasonYear int                          `json:"season_year"`
	TotalAcres float64                      `json:"total_acres"`
	Timings    []entities.ApplicationTiming `json:"timings"`
}

func (h *cropCtrl) Create(c echo.Context) error {
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	crop := &entities.Crop{
		GrowerID:   middleware.Grower(c),
		Name:       req.Name,
		CropType:   req.CropType,
		SeasonYear: req.SeasonYear,
		TotalAcres: req.TotalAcres,
		Timings:    req.Timings,
	}
	out, err := h.s.CreateCrop(c.Request().Context(), crop)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *cropCtrl) List(c echo.Context) error {
	list, err := h.s.ListCrops(c.Request().Context(), middleware.Grower(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *cropCtrl) Get(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	crop, err := h.s.GetCrop(c.Request().Context(), id, middleware.Grower(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, crop)
}

func (h *cropCtrl) Delete(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.s.DeleteCrop(c.Request().Context(), id, middleware.Grower(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *cropCtrl) AddTiming(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var in entities.ApplicationTiming
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	out, err := h.s.AddTiming(c.Request().Context(), id, middleware.Grower(c), &in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *cropCtrl) AddApplication(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var in entities.Application
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	out, err := h.s.AddApplication(c.Request().Context(), id, middleware.Grower(c), &in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *cropCtrl) PatchApplication(c echo.Context) error {
	id, err := parseUint(c.Param("app_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid app_id"})
	}
	var in service.ApplicationPatch
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	out, err := h.s.UpdateApplication(c.Request().Context(), id, middleware.Grower(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *cropCtrl) DeleteApplication(c echo.Context) error {
	id, err := parseUint(c.Param("app_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid app_id"})
	}
	if err := h.s.RemoveApplication(c.Request().Context(), id, middleware.Grower(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *cropCtrl) SeasonSummary(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	opts, err := summaryOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	out, err := h.s.SeasonSummary(c.Request().Context(), id, middleware.Grower(c), opts)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *cropCtrl) PassSummary(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	timingID, err := parseUint(c.Param("timing_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid timing_id"})
	}
	opts, err := summaryOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	out, err := h.s.PassSummary(c.Request().Context(), id, timingID, middleware.Grower(c), opts)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
