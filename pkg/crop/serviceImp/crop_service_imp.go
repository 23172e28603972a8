package serviceImp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/cache"
	"seasonplan/pkg/costing"
	cropRepo "seasonplan/pkg/crop/repository"
	"seasonplan/pkg/crop/service"
	pbRepo "seasonplan/pkg/pricebook/repository"
	productRepo "seasonplan/pkg/product/repository"
)

type Options struct {
	CacheTTL      time.Duration
	DefaultSeason int
}

type cropSvc struct {
	crops    cropRepo.CropRepository
	products productRepo.ProductRepository
	prices   pbRepo.PriceBookRepository
	cache    cache.Cache
	log      *zap.Logger
	opts     Options
}

// New wires the crop service. c may be nil to disable summary caching.
func New(crops cropRepo.CropRepository, products productRepo.ProductRepository, prices pbRepo.PriceBookRepository,
	c cache.Cache, log *zap.Logger, opts Options) service.CropService {
	if log == nil {
		log = zap.NewNop()
	}
	return &cropSvc{crops: crops, products: products, prices: prices, cache: c, log: log, opts: opts}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, service.ErrNotFound)
	}
	return err
}

func (s *cropSvc) CreateCrop(ctx context.Context, c *entities.Crop) (*entities.Crop, error) {
	if c == nil {
		return nil, invalid("nil crop")
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.SeasonYear == 0 {
		c.SeasonYear = s.opts.DefaultSeason
	}
	if err := entities.Validate(c); err != nil {
		return nil, invalid("%v", err)
	}
	// applications reference timing ids, so they are added afterwards
	c.Applications = nil
	c.CropID = 0
	for i := range c.Timings {
		// ids come from the store; a client id would re-parent an existing pass
		c.Timings[i].TimingID = 0
		c.Timings[i].CropID = 0
		if c.Timings[i].Order == 0 {
			c.Timings[i].Order = i + 1
		}
		if err := entities.Validate(c.Timings[i]); err != nil {
			return nil, invalid("timing %d: %v", i, err)
		}
	}
	if err := s.crops.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cropSvc) GetCrop(ctx context.Context, id uint, growerID string) (*entities.Crop, error) {
	c, err := s.crops.FindByID(ctx, id, growerID)
	if err != nil {
		return nil, notFound(err, "crop")
	}
	return c, nil
}

func (s *cropSvc) ListCrops(ctx context.Context, growerID string) ([]entities.Crop, error) {
	return s.crops.ListByGrower(ctx, growerID)
}

func (s *cropSvc) DeleteCrop(ctx context.Context, id uint, growerID string) error {
	c, err := s.GetCrop(ctx, id, growerID)
	if err != nil {
		return err
	}
	return s.crops.Delete(ctx, c)
}

func (s *cropSvc) AddTiming(ctx context.Context, cropID uint, growerID string, t *entities.ApplicationTiming) (*entities.ApplicationTiming, error) {
	c, err := s.GetCrop(ctx, cropID, growerID)
	if err != nil {
		return nil, err
	}
	t.TimingID = 0
	t.CropID = c.CropID
	t.Name = strings.TrimSpace(t.Name)
	if err := entities.Validate(t); err != nil {
		return nil, invalid("%v", err)
	}
	if t.Order == 0 {
		for _, existing := range c.Timings {
			if existing.Order >= t.Order {
				t.Order = existing.Order
			}
		}
		t.Order++
	}
	if err := s.crops.CreateTiming(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// checkApplication validates a against its crop: the timing must belong to c,
// the product must exist and the rate unit must fit the product's form.
func (s *cropSvc) checkApplication(ctx context.Context, c *entities.Crop, a *entities.Application) error {
	if err := entities.Validate(a); err != nil {
		return invalid("%v", err)
	}
	owned := false
	for _, t := range c.Timings {
		if t.TimingID == a.TimingID {
			owned = true
			break
		}
	}
	if !owned {
		return invalid("timing %d is not part of crop %d", a.TimingID, c.CropID)
	}
	p, err := s.products.FindByID(ctx, a.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("unknown product %d", a.ProductID)
		}
		return err
	}
	if !costing.ValidUnit(a.RateUnit, p.Form) {
		return invalid("%v", &costing.UnitError{Unit: a.RateUnit, Form: p.Form})
	}
	if a.TierOverride != nil {
		if _, ok := costing.ParseTier(*a.TierOverride); !ok {
			return invalid("unknown tier %q", *a.TierOverride)
		}
	}
	return nil
}

func (s *cropSvc) AddApplication(ctx context.Context, cropID uint, growerID string, a *entities.Application) (*entities.Application, error) {
	c, err := s.GetCrop(ctx, cropID, growerID)
	if err != nil {
		return nil, err
	}
	a.ApplicationID = 0
	a.CropID = c.CropID
	if a.TierOverride != nil && strings.TrimSpace(*a.TierOverride) == "" {
		a.TierOverride = nil
	}
	if err := s.checkApplication(ctx, c, a); err != nil {
		return nil, err
	}
	if err := s.crops.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// applicationOf loads an application and the crop it belongs to, scoped to growerID.
func (s *cropSvc) applicationOf(ctx context.Context, appID uint, growerID string) (*entities.Application, *entities.Crop, error) {
	a, err := s.crops.FindApplication(ctx, appID)
	if err != nil {
		return nil, nil, notFound(err, "application")
	}
	c, err := s.crops.FindByID(ctx, a.CropID, growerID)
	if err != nil {
		// another grower's application looks the same as a missing one
		return nil, nil, notFound(err, "application")
	}
	return a, c, nil
}

func (s *cropSvc) UpdateApplication(ctx context.Context, appID uint, growerID string, p service.ApplicationPatch) (*entities.Application, error) {
	cur, c, err := s.applicationOf(ctx, appID, growerID)
	if err != nil {
		return nil, err
	}
	if p.TimingID != nil {
		cur.TimingID = *p.TimingID
	}
	if p.ProductID != nil {
		cur.ProductID = *p.ProductID
	}
	if p.Rate != nil {
		cur.Rate = *p.Rate
	}
	if p.RateUnit != nil {
		cur.RateUnit = *p.RateUnit
	}
	if p.AcresPercentage != nil {
		cur.AcresPercentage = *p.AcresPercentage
	}
	if p.TierOverride != nil {
		if strings.TrimSpace(*p.TierOverride) == "" {
			cur.TierOverride = nil
		} else {
			v := *p.TierOverride
			cur.TierOverride = &v
		}
	}
	if err := s.checkApplication(ctx, c, cur); err != nil {
		return nil, err
	}
	return cur, s.crops.SaveApplication(ctx, cur)
}

func (s *cropSvc) RemoveApplication(ctx context.Context, appID uint, growerID string) error {
	if _, _, err := s.applicationOf(ctx, appID, growerID); err != nil {
		return err
	}
	return notFound(s.crops.DeleteApplication(ctx, appID), "application")
}

// snapshot is everything a summary depends on. Its hash is the cache key.
type snapshot struct {
	Kind     string                    `json:"kind"`
	TimingID uint                      `json:"timing_id,omitempty"`
	Crop     *entities.Crop            `json:"crop"`
	Products []entities.Product        `json:"products"`
	Prices   *costing.PriceBookContext `json:"prices"`
}

func (s *cropSvc) load(ctx context.Context, cropID uint, growerID string, opts service.SummaryOptions) (*snapshot, error) {
	c, err := s.GetCrop(ctx, cropID, growerID)
	if err != nil {
		return nil, err
	}
	seen := map[uint]bool{}
	var ids []uint
	for _, a := range c.Applications {
		if !seen[a.ProductID] {
			seen[a.ProductID] = true
			ids = append(ids, a.ProductID)
		}
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	snap := &snapshot{Crop: c, Products: products}
	if !opts.UsePriceBook {
		return snap, nil
	}

	season := opts.SeasonYear
	if season == 0 {
		season = c.SeasonYear
	}
	if season == 0 {
		season = s.opts.DefaultSeason
	}
	entries, err := s.prices.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load price book: %w", err)
	}
	masters, err := s.products.ListMasters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product masters: %w", err)
	}
	snap.Prices = &costing.PriceBookContext{ProductMasters: masters, PriceBook: entries, SeasonYear: season}
	return snap, nil
}

// cached returns the value stored under snap's hash, or computes and stores it.
// Cache failures are logged and never fail the summary.
func cached[T any](ctx context.Context, s *cropSvc, snap *snapshot, compute func() T) T {
	if s.cache == nil {
		return compute()
	}
	key, err := cache.Key("summary", snap)
	if err != nil {
		s.log.Warn("summary cache key", zap.Error(err))
		return compute()
	}
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("summary cache get", zap.String("key", key), zap.Error(err))
	} else if ok {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out
		}
	}
	out := compute()
	if b, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, b, s.opts.CacheTTL); err != nil {
			s.log.Warn("summary cache set", zap.String("key", key), zap.Error(err))
		}
	}
	return out
}

func (s *cropSvc) logIssues(cropID uint, lines []costing.ApplicationLine) {
	for _, l := range lines {
		if l.Issue == costing.IssueNone {
			continue
		}
		s.log.Debug("application line degraded",
			zap.Uint("crop_id", cropID),
			zap.Uint("application_id", l.ApplicationID),
			zap.String("issue", string(l.Issue)),
			zap.Error(l.Issue.Err()))
	}
}

func (s *cropSvc) PassSummary(ctx context.Context, cropID, timingID uint, growerID string, opts service.SummaryOptions) (*costing.PassSummary, error) {
	snap, err := s.load(ctx, cropID, growerID, opts)
	if err != nil {
		return nil, err
	}
	var timing *entities.ApplicationTiming
	for i := range snap.Crop.Timings {
		if snap.Crop.Timings[i].TimingID == timingID {
			timing = &snap.Crop.Timings[i]
			break
		}
	}
	if timing == nil {
		return nil, fmt.Errorf("timing: %w", service.ErrNotFound)
	}
	snap.Kind, snap.TimingID = "pass", timingID

	out := cached(ctx, s, snap, func() costing.PassSummary {
		return costing.SummarizePass(*timing, *snap.Crop, snap.Products, snap.Prices)
	})
	s.logIssues(cropID, out.Applications)
	return &out, nil
}

func (s *cropSvc) SeasonSummary(ctx context.Context, cropID uint, growerID string, opts service.SummaryOptions) (*costing.SeasonSummary, error) {
	snap, err := s.load(ctx, cropID, growerID, opts)
	if err != nil {
		return nil, err
	}
	snap.Kind = "season"

	out := cached(ctx, s, snap, func() costing.SeasonSummary {
		return costing.SummarizeSeason(*snap.Crop, snap.Products, snap.Prices)
	})
	for _, p := range out.Passes {
		s.logIssues(cropID, p.Applications)
	}
	return &out, nil
}
