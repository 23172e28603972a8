package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/costing"
	"seasonplan/pkg/pricebook/repository"
	"seasonplan/pkg/pricebook/service"
	"seasonplan/pkg/pricebook/sheet"
	productRepo "seasonplan/pkg/product/repository"
)

type priceBookSvc struct {
	repo     repository.PriceBookRepository
	products productRepo.ProductRepository
	log      *zap.Logger
}

func New(repo repository.PriceBookRepository, products productRepo.ProductRepository, log *zap.Logger) service.PriceBookService {
	if log == nil {
		log = zap.NewNop()
	}
	return &priceBookSvc{repo: repo, products: products, log: log}
}

// normalizeSource maps sheet spellings ("Manual Override", "award") onto the stored
// source names. Blank means estimated.
func normalizeSource(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case "", "estimated", "estimate", "est":
		return entities.PriceSourceEstimated, true
	case "awarded", "award", "bid":
		return entities.PriceSourceAwarded, true
	case "manual_override", "override", "manual":
		return entities.PriceSourceManualOverride, true
	}
	return "", false
}

func (s *priceBookSvc) Create(ctx context.Context, e *entities.PriceBookEntry) (*entities.PriceBookEntry, error) {
	e.EntryID = 0
	src, ok := normalizeSource(e.Source)
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", service.ErrInvalidEntry, e.Source)
	}
	e.Source = src
	if e.ProductID == nil && e.ProductMasterID == nil {
		if err := s.resolveNames(ctx, e, ""); err != nil {
			return nil, err
		}
	} else if err := s.resolveIDs(ctx, e); err != nil {
		return nil, err
	}
	if err := entities.Validate(e); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidEntry, err)
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *priceBookSvc) List(ctx context.Context, season int) ([]entities.PriceBookEntry, error) {
	return s.repo.ListBySeason(ctx, season)
}

func (s *priceBookSvc) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// resolveIDs checks an explicit product or master link and copies its name onto e,
// so exported sheets can be imported again. The product wins when both are set.
func (s *priceBookSvc) resolveIDs(ctx context.Context, e *entities.PriceBookEntry) error {
	if e.ProductID != nil {
		p, err := s.products.FindByID(ctx, *e.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown product %d", service.ErrInvalidEntry, *e.ProductID)
		}
		if err != nil {
			return err
		}
		e.ProductName = p.Name
		e.ProductMasterID = nil
		return nil
	}
	m, err := s.products.FindMaster(ctx, *e.ProductMasterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: unknown product master %d", service.ErrInvalidEntry, *e.ProductMasterID)
	}
	if err != nil {
		return err
	}
	e.ProductName = m.Name
	return nil
}

// resolveNames links e to a product by name, else to a product master by name.
func (s *priceBookSvc) resolveNames(ctx context.Context, e *entities.PriceBookEntry, vendor string) error {
	name := strings.TrimSpace(e.ProductName)
	if name == "" {
		return fmt.Errorf("%w: product name is empty", service.ErrInvalidEntry)
	}
	p, err := s.products.FindByName(ctx, name)
	switch {
	case err == nil:
		e.ProductID = &p.ProductID
		e.ProductMasterID = p.ProductMasterID
	case errors.Is(err, gorm.ErrRecordNotFound):
		m, err := s.products.FindMasterByName(ctx, name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown product %q", service.ErrInvalidEntry, name)
		}
		if err != nil {
			return err
		}
		e.ProductMasterID = &m.ProductMasterID
	default:
		return err
	}

	if vendor = strings.TrimSpace(vendor); vendor != "" {
		v, err := s.products.FindVendorByName(ctx, vendor)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown vendor %q", service.ErrInvalidEntry, vendor)
		}
		if err != nil {
			return err
		}
		e.VendorID = &v.VendorID
	}
	return nil
}

type entryKey struct {
	product, master, vendor uint
	season                  int
	source, uom             string
	price                   float64
}

func keyOf(e entities.PriceBookEntry) entryKey {
	k := entryKey{season: e.SeasonYear, source: e.Source, uom: costing.NormalizeUnit(e.PriceUOM), price: e.Price}
	if e.ProductID != nil {
		k.product = *e.ProductID
	}
	if e.ProductMasterID != nil {
		k.master = *e.ProductMasterID
	}
	if e.VendorID != nil {
		k.vendor = *e.VendorID
	}
	return k
}

func (s *priceBookSvc) Import(ctx context.Context, rows []sheet.Row, defaultSeason int) (service.ImportReport, error) {
	report := service.ImportReport{Errors: []sheet.RowError{}}
	existing := map[int]map[entryKey]bool{}
	seen := func(season int) (map[entryKey]bool, error) {
		if m, ok := existing[season]; ok {
			return m, nil
		}
		list, err := s.repo.ListBySeason(ctx, season)
		if err != nil {
			return nil, err
		}
		m := make(map[entryKey]bool, len(list))
		for _, e := range list {
			m[keyOf(e)] = true
		}
		existing[season] = m
		return m, nil
	}

	for _, r := range rows {
		fail := func(err error) {
			report.Errors = append(report.Errors, sheet.RowError{Line: r.Line, Error: err.Error()})
		}
		e := entities.PriceBookEntry{
			ProductName: strings.TrimSpace(r.ProductName),
			SeasonYear:  r.SeasonYear,
			Price:       r.Price,
			PriceUOM:    strings.TrimSpace(r.Unit),
		}
		if e.SeasonYear == 0 {
			e.SeasonYear = defaultSeason
		}
		src, ok := normalizeSource(r.Source)
		if !ok {
			fail(fmt.Errorf("%w: unknown source %q", service.ErrInvalidEntry, r.Source))
			continue
		}
		e.Source = src
		if err := entities.Validate(&e); err != nil {
			fail(fmt.Errorf("%w: %v", service.ErrInvalidEntry, err))
			continue
		}
		if err := s.resolveNames(ctx, &e, r.Vendor); err != nil {
			if !errors.Is(err, service.ErrInvalidEntry) {
				return report, err
			}
			fail(err)
			continue
		}

		known, err := seen(e.SeasonYear)
		if err != nil {
			return report, err
		}
		k := keyOf(e)
		if known[k] {
			report.Skipped++
			continue
		}
		if err := s.repo.Create(ctx, &e); err != nil {
			return report, err
		}
		known[k] = true
		report.Created++
	}
	s.log.Info("price book import",
		zap.Int("rows", len(rows)),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

func (s *priceBookSvc) Export(ctx context.Context, season int) ([]sheet.Row, error) {
	entries, err := s.repo.ListBySeason(ctx, season)
	if err != nil {
		return nil, err
	}
	vendors, err := s.products.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(vendors))
	for _, v := range vendors {
		names[v.VendorID] = v.Name
	}
	rows := make([]sheet.Row, 0, len(entries))
	for _, e := range entries {
		r := sheet.Row{ProductName: e.ProductName, SeasonYear: e.SeasonYear, Price: e.Price, Unit: e.PriceUOM, Source: e.Source}
		if e.VendorID != nil {
			r.Vendor = names[*e.VendorID]
		}
		rows = append(rows, r)
	}
	return rows, nil
}
