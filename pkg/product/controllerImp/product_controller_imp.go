package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/costing"
	pbRepo "seasonplan/pkg/pricebook/repository"
	"seasonplan/pkg/product/controller"
	"seasonplan/pkg/product/repository"
)

type productCtrl struct {
	repo          repository.ProductRepository
	prices        pbRepo.PriceBookRepository
	defaultSeason int
}

func New(repo repository.ProductRepository, prices pbRepo.PriceBookRepository, defaultSeason int) controller.ProductController {
	return &productCtrl{repo: repo, prices: prices, defaultSeason: defaultSeason}
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	return uint(v), err
}

func dbError(c echo.Context, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}

func invalid(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

func (h *productCtrl) Create(c echo.Context) error {
	var p entities.Product
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	p.ProductID = 0
	p.Offerings = nil
	p.Form = strings.ToLower(strings.TrimSpace(p.Form))
	if err := entities.Validate(&p); err != nil {
		return invalid(c, err)
	}
	if p.Price > 0 {
		if _, err := costing.NormalizePrice(p.Price, p.PriceUnit, p.Form, p.ContainerSize, p.ContainerUnit); err != nil {
			return invalid(c, err)
		}
	}
	if err := h.repo.Create(c.Request().Context(), &p); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *productCtrl) List(c echo.Context) error {
	list, err := h.repo.List(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *productCtrl) Get(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Price reports the effective unit price. ?pricebook=1 brings in the season's
// price book; ?season_year= picks the season.
func (h *productCtrl) Price(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return dbError(c, err)
	}

	var pctx *costing.PriceBookContext
	switch strings.ToLower(c.QueryParam("pricebook")) {
	case "1", "true", "yes":
		season := h.defaultSeason
		if v := c.QueryParam("season_year"); v != "" {
			if season, err = strconv.Atoi(v); err != nil || season <= 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid season_year"})
			}
		}
		entries, err := h.prices.ListBySeason(ctx, season)
		if err != nil {
			return dbError(c, err)
		}
		masters, err := h.repo.ListMasters(ctx)
		if err != nil {
			return dbError(c, err)
		}
		pctx = &costing.PriceBookContext{ProductMasters: masters, PriceBook: entries, SeasonYear: season}
	}
	return c.JSON(http.StatusOK, costing.EffectivePrice(*p, p.Offerings, pctx))
}

func (h *productCtrl) AddOffering(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return dbError(c, err)
	}
	o := entities.VendorOffering{Active: true}
	if err := c.Bind(&o); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	o.OfferingID = 0
	o.ProductID = p.ProductID
	if err := entities.Validate(&o); err != nil {
		return invalid(c, err)
	}
	size, unit := o.ContainerSize, o.ContainerUnit
	if size == nil {
		size, unit = p.ContainerSize, p.ContainerUnit
	}
	if _, err := costing.NormalizePrice(o.Price, o.PriceUnit, p.Form, size, unit); err != nil {
		return invalid(c, err)
	}
	if err := h.repo.CreateOffering(ctx, &o); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

type offeringPatch struct {
	Price  *float64 `json:"price"`
	Active *bool    `json:"active"`
}

func (h *productCtrl) PatchOffering(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var in offeringPatch
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	o, err := h.repo.FindOffering(ctx, id)
	if err != nil {
		return dbError(c, err)
	}
	if in.Price != nil {
		o.Price = *in.Price
	}
	if in.Active != nil {
		o.Active = *in.Active
	}
	if err := entities.Validate(o); err != nil {
		return invalid(c, err)
	}
	if err := h.repo.SaveOffering(ctx, o); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *productCtrl) CreateVendor(c echo.Context) error {
	var v entities.Vendor
	if err := c.Bind(&v); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	v.VendorID = 0
	v.Name = strings.TrimSpace(v.Name)
	if err := entities.Validate(&v); err != nil {
		return invalid(c, err)
	}
	if err := h.repo.CreateVendor(c.Request().Context(), &v); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *productCtrl) ListVendors(c echo.Context) error {
	list, err := h.repo.ListVendors(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *productCtrl) CreateMaster(c echo.Context) error {
	var m entities.ProductMaster
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	m.ProductMasterID = 0
	m.Name = strings.TrimSpace(m.Name)
	m.Form = strings.ToLower(strings.TrimSpace(m.Form))
	if err := entities.Validate(&m); err != nil {
		return invalid(c, err)
	}
	if err := h.repo.CreateMaster(c.Request().Context(), &m); err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *productCtrl) ListMasters(c echo.Context) error {
	list, err := h.repo.ListMasters(c.Request().Context())
	if err != nil {
		return dbError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
