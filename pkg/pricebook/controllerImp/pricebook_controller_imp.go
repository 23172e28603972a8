package controllerImp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/pricebook/controller"
	"seasonplan/pkg/pricebook/service"
	"seasonplan/pkg/pricebook/sheet"
)

const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Options struct {
	DefaultSeason int
	AllowedHosts  []string
	MaxBytes      int64
	Client        *http.Client
}

type priceBookCtrl struct {
	s     service.PriceBookService
	opts  Options
	allow map[string]bool
}

func New(s service.PriceBookService, opts Options) controller.PriceBookController {
	allow := map[string]bool{}
	for _, h := range opts.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allow[h] = true
		}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 1500000
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 20 * time.Second}
	}
	return &priceBookCtrl{s: s, opts: opts, allow: allow}
}

func (h *priceBookCtrl) season(c echo.Context) (int, error) {
	v := c.QueryParam("season_year")
	if v == "" {
		return h.opts.DefaultSeason, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y <= 0 {
		return 0, errors.New("invalid season_year")
	}
	return y, nil
}

func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidEntry), errors.Is(err, sheet.ErrNoHeader):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

func (h *priceBookCtrl) Create(c echo.Context) error {
	var in entities.PriceBookEntry
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if in.SeasonYear == 0 {
		in.SeasonYear = h.opts.DefaultSeason
	}
	out, err := h.s.Create(c.Request().Context(), &in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// List returns every season when season_year is absent.
func (h *priceBookCtrl) List(c echo.Context) error {
	season := 0
	if c.QueryParam("season_year") != "" {
		var err error
		if season, err = h.season(c); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}
	list, err := h.s.List(c.Request().Context(), season)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *priceBookCtrl) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.s.Delete(c.Request().Context(), uint(id)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func isXLSX(contentType, filename string) bool {
	return strings.HasPrefix(contentType, MIMEXLSX) || strings.EqualFold(filepath.Ext(filename), ".xlsx")
}

// Import accepts a CSV or XLSX body, either raw (by Content-Type) or as the
// "file" field of a multipart form.
func (h *priceBookCtrl) Import(c echo.Context) error {
	season, err := h.season(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var (
		body     io.Reader
		ct       = strings.ToLower(c.Request().Header.Get(echo.HeaderContentType))
		filename string
	)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
		}
		if fh.Size > h.opts.MaxBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "sheet too large"})
		}
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		defer f.Close()
		body, filename, ct = f, fh.Filename, fh.Header.Get(echo.HeaderContentType)
	} else {
		b, err := io.ReadAll(io.LimitReader(c.Request().Body, h.opts.MaxBytes+1))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if int64(len(b)) > h.opts.MaxBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "sheet too large"})
		}
		body = bytes.NewReader(b)
	}

	read := sheet.ReadCSV
	if isXLSX(ct, filename) {
		read = sheet.ReadXLSX
	}
	return h.importRows(c, read, body, season)
}

func (h *priceBookCtrl) importRows(c echo.Context, read func(io.Reader) ([]sheet.Row, []sheet.RowError, error), body io.Reader, season int) error {
	rows, rowErrs, err := read(body)
	if err != nil {
		return fail(c, err)
	}
	report, err := h.s.Import(c.Request().Context(), rows, season)
	if err != nil {
		return fail(c, err)
	}
	report.Errors = append(append([]sheet.RowError{}, rowErrs...), report.Errors...)
	return c.JSON(http.StatusOK, report)
}

type importURLReq struct {
	URL        string `json:"url"`
	SeasonYear int    `json:"season_year"`
}

// ImportURL fetches a dealer price page from an allowed host and imports its price table.
func (h *priceBookCtrl) ImportURL(c echo.Context) error {
	var req importURLReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad url"})
	}
	if !h.allow[strings.ToLower(u.Host)] && !h.allow[strings.ToLower(u.Hostname())] {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "host not allowed"})
	}
	season := req.SeasonYear
	if season == 0 {
		season = h.opts.DefaultSeason
	}

	b, ct, err := h.fetch(c, req.URL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	read := sheet.ReadHTML
	switch {
	case strings.Contains(ct, "text/csv"):
		read = sheet.ReadCSV
	case strings.Contains(ct, MIMEXLSX):
		read = sheet.ReadXLSX
	}
	return h.importRows(c, read, bytes.NewReader(b), season)
}

func (h *priceBookCtrl) fetch(c echo.Context, u string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := h.opts.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	if resp.ContentLength > h.opts.MaxBytes {
		return nil, "", errors.New("page too large")
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, h.opts.MaxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(b)) > h.opts.MaxBytes {
		return nil, "", errors.New("page too large")
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ct, "text/html") && !strings.Contains(ct, "text/csv") && !strings.Contains(ct, MIMEXLSX) {
		return nil, "", fmt.Errorf("unsupported content-type: %s", ct)
	}
	return b, ct, nil
}

func (h *priceBookCtrl) Export(c echo.Context) error {
	season, err := h.season(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rows, err := h.s.Export(c.Request().Context(), season)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	format := strings.ToLower(c.QueryParam("format"))
	switch format {
	case "", "csv":
		format = "csv"
		err = sheet.WriteCSV(&buf, rows)
	case "xlsx":
		err = sheet.WriteXLSX(&buf, rows)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be csv or xlsx"})
	}
	if err != nil {
		return fail(c, err)
	}

	mime := MIMECSV
	if format == "xlsx" {
		mime = MIMEXLSX
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="pricebook-%d.%s"`, season, format))
	return c.Blob(http.StatusOK, mime, buf.Bytes())
}
