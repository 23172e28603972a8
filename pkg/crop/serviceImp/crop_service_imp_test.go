package serviceImp

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"seasonplan/database"
	"seasonplan/entities"
	"seasonplan/pkg/cache"
	"seasonplan/pkg/costing"
	cropRepoImp "seasonplan/pkg/crop/repositoryImp"
	"seasonplan/pkg/crop/service"
	pbRepoImp "seasonplan/pkg/pricebook/repositoryImp"
	productRepoImp "seasonplan/pkg/product/repositoryImp"
)

const grower = "G_TEST"

type countingCache struct {
	cache.Cache
	hits, sets int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok, err := c.Cache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return b, ok, err
}

func (c *countingCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, val, ttl)
}

type fixture struct {
	db     *gorm.DB
	svc    service.CropService
	cache  *countingCache
	uan    entities.Product
	potash entities.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	f := &fixture{db: db, cache: &countingCache{Cache: cache.NewMemory()}}
	f.uan = entities.Product{Name: "UAN 32", Form: entities.FormLiquid, Price: 10, PriceUnit: "gal", Nutrients: entities.Nutrients{N: 3.5}}
	f.potash = entities.Product{Name: "Potash", Form: entities.FormDry, Price: 1, PriceUnit: "lbs", Nutrients: entities.Nutrients{K: 0.6}}
	require.NoError(t, db.Create(&f.uan).Error)
	require.NoError(t, db.Create(&f.potash).Error)

	f.svc = New(cropRepoImp.New(db), productRepoImp.New(db), pbRepoImp.New(db), f.cache,
		zaptest.NewLogger(t), Options{CacheTTL: time.Minute, DefaultSeason: 2026})
	return f
}

func (f *fixture) crop(t *testing.T) *entities.Crop {
	t.Helper()
	c, err := f.svc.CreateCrop(context.Background(), &entities.Crop{
		GrowerID:   grower,
		Name:       "North 80",
		CropType:   "corn",
		TotalAcres: 100,
		Timings: []entities.ApplicationTiming{
			{Name: "Pre-Plant"},
			{Name: "Side-Dress"},
		},
	})
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndGetCrop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)

	assert.Equal(t, 2026, c.SeasonYear)
	got, err := f.svc.GetCrop(ctx, c.CropID, grower)
	require.NoError(t, err)
	require.Len(t, got.Timings, 2)
	assert.Equal(t, "Pre-Plant", got.Timings[0].Name)
	assert.Equal(t, 1, got.Timings[0].Order)
	assert.Equal(t, 2, got.Timings[1].Order)

	_, err = f.svc.GetCrop(ctx, c.CropID, "G_OTHER")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.svc.CreateCrop(ctx, &entities.Crop{GrowerID: grower, Name: " ", TotalAcres: 1})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.svc.CreateCrop(ctx, &entities.Crop{GrowerID: grower, Name: "Neg", TotalAcres: -5})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	list, err := f.svc.ListCrops(ctx, grower)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateCropIgnoresClientTimingIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.crop(t)
	pre := mine.Timings[0]

	theirs, err := f.svc.CreateCrop(ctx, &entities.Crop{
		GrowerID:   "G_OTHER",
		CropID:     mine.CropID,
		Name:       "South 40",
		TotalAcres: 40,
		Timings:    []entities.ApplicationTiming{{TimingID: pre.TimingID, CropID: mine.CropID, Name: "Burndown"}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, mine.CropID, theirs.CropID)
	require.Len(t, theirs.Timings, 1)
	assert.NotEqual(t, pre.TimingID, theirs.Timings[0].TimingID)

	got, err := f.svc.GetCrop(ctx, mine.CropID, grower)
	require.NoError(t, err)
	require.Len(t, got.Timings, 2)
	assert.Equal(t, pre.TimingID, got.Timings[0].TimingID)
	assert.Equal(t, "Pre-Plant", got.Timings[0].Name)
}

func TestAddTimingDefaultsToLastOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)

	tm, err := f.svc.AddTiming(ctx, c.CropID, grower, &entities.ApplicationTiming{Name: "Fungicide"})
	require.NoError(t, err)
	assert.Equal(t, 3, tm.Order)
	assert.Equal(t, c.CropID, tm.CropID)

	tm, err = f.svc.AddTiming(ctx, c.CropID, grower, &entities.ApplicationTiming{Name: "Burndown", Order: -1})
	require.NoError(t, err)
	assert.Equal(t, -1, tm.Order)

	got, err := f.svc.GetCrop(ctx, c.CropID, grower)
	require.NoError(t, err)
	assert.Equal(t, "Burndown", got.Timings[0].Name)

	_, err = f.svc.AddTiming(ctx, c.CropID, grower, &entities.ApplicationTiming{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = f.svc.AddTiming(ctx, c.CropID, "G_OTHER", &entities.ApplicationTiming{Name: "x"})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAddApplicationValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)
	other := f.crop(t)
	timing := c.Timings[0].TimingID

	cases := map[string]entities.Application{
		"foreign timing":  {TimingID: other.Timings[0].TimingID, ProductID: f.uan.ProductID, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
		"unknown product": {TimingID: timing, ProductID: 999, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
		"wrong form unit": {TimingID: timing, ProductID: f.uan.ProductID, Rate: 1, RateUnit: "lbs", AcresPercentage: 100},
		"bad tier":        {TimingID: timing, ProductID: f.uan.ProductID, Rate: 1, RateUnit: "gal", AcresPercentage: 100, TierOverride: ptr("gold")},
		"over 100 pct":    {TimingID: timing, ProductID: f.uan.ProductID, Rate: 1, RateUnit: "gal", AcresPercentage: 120},
		"negative rate":   {TimingID: timing, ProductID: f.uan.ProductID, Rate: -1, RateUnit: "gal", AcresPercentage: 100},
		"missing unit":    {TimingID: timing, ProductID: f.uan.ProductID, Rate: 1, AcresPercentage: 100},
	}
	for name, app := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AddApplication(ctx, c.CropID, grower, &app)
			assert.ErrorIs(t, err, service.ErrInvalidInput)
		})
	}

	a, err := f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: timing, ProductID: f.uan.ProductID, Rate: 32, RateUnit: "fl oz/ac", AcresPercentage: 60, TierOverride: ptr("Building"),
	})
	require.NoError(t, err)
	assert.NotZero(t, a.ApplicationID)
	assert.Equal(t, c.CropID, a.CropID)
}

func TestUpdateAndRemoveApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)

	a, err := f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: c.Timings[0].TimingID, ProductID: f.uan.ProductID, Rate: 2, RateUnit: "gal", AcresPercentage: 100, TierOverride: ptr("trial"),
	})
	require.NoError(t, err)

	out, err := f.svc.UpdateApplication(ctx, a.ApplicationID, grower, service.ApplicationPatch{Rate: ptr(3.0), TierOverride: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Rate)
	assert.Nil(t, out.TierOverride)
	assert.Equal(t, "gal", out.RateUnit)

	_, err = f.svc.UpdateApplication(ctx, a.ApplicationID, grower, service.ApplicationPatch{ProductID: ptr(f.potash.ProductID)})
	assert.ErrorIs(t, err, service.ErrInvalidInput, "gal is not a dry unit")

	_, err = f.svc.UpdateApplication(ctx, a.ApplicationID, "G_OTHER", service.ApplicationPatch{Rate: ptr(1.0)})
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, f.svc.RemoveApplication(ctx, a.ApplicationID, "G_OTHER"), service.ErrNotFound)
	require.NoError(t, f.svc.RemoveApplication(ctx, a.ApplicationID, grower))
	assert.ErrorIs(t, f.svc.RemoveApplication(ctx, a.ApplicationID, grower), service.ErrNotFound)
}

func TestDeleteCropCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)
	_, err := f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: c.Timings[0].TimingID, ProductID: f.uan.ProductID, Rate: 2, RateUnit: "gal", AcresPercentage: 100,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCrop(ctx, c.CropID, grower))

	var apps, timings int64
	require.NoError(t, f.db.Model(&entities.Application{}).Count(&apps).Error)
	require.NoError(t, f.db.Model(&entities.ApplicationTiming{}).Count(&timings).Error)
	assert.Zero(t, apps)
	assert.Zero(t, timings)
	assert.ErrorIs(t, f.svc.DeleteCrop(ctx, c.CropID, grower), service.ErrNotFound)
}

func TestSeasonSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)
	_, err := f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: c.Timings[0].TimingID, ProductID: f.uan.ProductID, Rate: 2, RateUnit: "gal", AcresPercentage: 100,
	})
	require.NoError(t, err)
	_, err = f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: c.Timings[1].TimingID, ProductID: f.potash.ProductID, Rate: 100, RateUnit: "lbs", AcresPercentage: 50,
	})
	require.NoError(t, err)

	s, err := f.svc.SeasonSummary(ctx, c.CropID, grower, service.SummaryOptions{})
	require.NoError(t, err)
	require.Len(t, s.Passes, 2)
	assert.InDelta(t, 2000.0, s.Passes[0].TotalCost, 1e-9)
	assert.InDelta(t, 5000.0, s.Passes[1].TotalCost, 1e-9)
	assert.InDelta(t, 7000.0, s.TotalCost, 1e-9)
	assert.InDelta(t, 70.0, s.CostPerAcre, 1e-9)
	assert.Equal(t, costing.PatternUniform, s.Passes[0].Pattern)
	assert.Equal(t, costing.PatternSelective, s.Passes[1].Pattern)
	assert.InDelta(t, 200.0, s.PhysicalQuantity.TotalLiquidGal, 1e-9)
	assert.InDelta(t, 5000.0, s.PhysicalQuantity.TotalDryLbs, 1e-9)
	assert.False(t, s.Unpriced)

	again, err := f.svc.SeasonSummary(ctx, c.CropID, grower, service.SummaryOptions{})
	require.NoError(t, err)
	assert.InDelta(t, s.TotalCost, again.TotalCost, 1e-9)
	assert.Len(t, again.Passes, 2)
	assert.Equal(t, 1, f.cache.hits)
	assert.Equal(t, 1, f.cache.sets)

	// a new application changes the snapshot, so the cache misses
	_, err = f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: c.Timings[1].TimingID, ProductID: f.uan.ProductID, Rate: 1, RateUnit: "gal", AcresPercentage: 20,
	})
	require.NoError(t, err)
	s, err = f.svc.SeasonSummary(ctx, c.CropID, grower, service.SummaryOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 7200.0, s.TotalCost, 1e-9)
	assert.Equal(t, 2, f.cache.sets)
}

func TestPassSummaryWithPriceBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)
	timing := c.Timings[0].TimingID
	_, err := f.svc.AddApplication(ctx, c.CropID, grower, &entities.Application{
		TimingID: timing, ProductID: f.uan.ProductID, Rate: 2, RateUnit: "gal", AcresPercentage: 100,
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&entities.PriceBookEntry{
		ProductID: &f.uan.ProductID, ProductName: "UAN 32", SeasonYear: 2026, Price: 8, PriceUOM: "gal", Source: entities.PriceSourceAwarded,
	}).Error)

	plain, err := f.svc.PassSummary(ctx, c.CropID, timing, grower, service.SummaryOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, plain.TotalCost, 1e-9)
	assert.Equal(t, costing.SourceManualEstimate, plain.Applications[0].PriceSource)

	booked, err := f.svc.PassSummary(ctx, c.CropID, timing, grower, service.SummaryOptions{UsePriceBook: true})
	require.NoError(t, err)
	assert.InDelta(t, 1600.0, booked.TotalCost, 1e-9)
	assert.Equal(t, costing.SourceAwarded, booked.Applications[0].PriceSource)

	otherSeason, err := f.svc.PassSummary(ctx, c.CropID, timing, grower, service.SummaryOptions{UsePriceBook: true, SeasonYear: 2025})
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, otherSeason.TotalCost, 1e-9)

	_, err = f.svc.PassSummary(ctx, c.CropID, 9999, grower, service.SummaryOptions{})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSummaryRecoversFromBadLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.crop(t)
	timing := c.Timings[0].TimingID
	unpriced := entities.Product{Name: "Mystery", Form: entities.FormDry}
	require.NoError(t, f.db.Create(&unpriced).Error)

	// written straight to the table to bypass service validation
	require.NoError(t, f.db.Create(&entities.Application{CropID: c.CropID, TimingID: timing, ProductID: 4242, Rate: 1, RateUnit: "gal", AcresPercentage: 100}).Error)
	require.NoError(t, f.db.Create(&entities.Application{CropID: c.CropID, TimingID: timing, ProductID: unpriced.ProductID, Rate: 10, RateUnit: "lbs", AcresPercentage: 100}).Error)
	require.NoError(t, f.db.Create(&entities.Application{CropID: c.CropID, TimingID: timing, ProductID: f.uan.ProductID, Rate: 1, RateUnit: "gal", AcresPercentage: 100}).Error)

	p, err := f.svc.PassSummary(ctx, c.CropID, timing, grower, service.SummaryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.SkippedCount)
	assert.Equal(t, 1, p.UnpricedCount)
	assert.True(t, p.Unpriced)
	assert.InDelta(t, 1000.0, p.TotalCost, 1e-9)
	assert.InDelta(t, 1000.0, p.PhysicalQuantity.TotalDryLbs, 1e-9)
	assert.False(t, math.IsNaN(p.CostPerFieldAcre))
}
