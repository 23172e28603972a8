package serviceImp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"seasonplan/database"
	"seasonplan/entities"
	"seasonplan/pkg/pricebook/repositoryImp"
	"seasonplan/pkg/pricebook/service"
	"seasonplan/pkg/pricebook/sheet"
	productRepoImp "seasonplan/pkg/product/repositoryImp"
)

type seeded struct {
	svc    service.PriceBookService
	db     *gorm.DB
	uan    entities.Product
	master entities.ProductMaster
	vendor entities.Vendor
}

func seed(t *testing.T) *seeded {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	s := &seeded{db: db}
	s.master = entities.ProductMaster{Name: "Glyphosate 4.5", Form: entities.FormLiquid}
	s.vendor = entities.Vendor{Name: "Valley Coop"}
	s.uan = entities.Product{Name: "UAN 32", Form: entities.FormLiquid}
	require.NoError(t, db.Create(&s.master).Error)
	require.NoError(t, db.Create(&s.vendor).Error)
	require.NoError(t, db.Create(&s.uan).Error)
	s.svc = New(repositoryImp.New(db), productRepoImp.New(db), zaptest.NewLogger(t))
	return s
}

func TestImportResolvesNames(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	rows := []sheet.Row{
		{ProductName: "uan 32", Price: 1.85, Unit: "gal", Vendor: "valley coop", Source: "Awarded", Line: 2},
		{ProductName: "Glyphosate 4.5", SeasonYear: 2025, Price: 21, Unit: "gal", Source: "manual override", Line: 3},
		{ProductName: "Mystery Mix", Price: 3, Unit: "gal", Line: 4},
		{ProductName: "UAN 32", Price: 2, Unit: "gal", Vendor: "Nobody Inc", Line: 5},
		{ProductName: "UAN 32", Price: 2, Unit: "gal", Source: "rumor", Line: 6},
		{ProductName: "UAN 32", Price: 0, Unit: "gal", Line: 7},
	}
	report, err := s.svc.Import(ctx, rows, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Zero(t, report.Skipped)
	require.Len(t, report.Errors, 4)
	lines := []int{}
	for _, e := range report.Errors {
		lines = append(lines, e.Line)
	}
	assert.ElementsMatch(t, []int{4, 5, 6, 7}, lines)

	list, err := s.svc.List(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.PriceSourceAwarded, list[0].Source)
	require.NotNil(t, list[0].ProductID)
	assert.Equal(t, s.uan.ProductID, *list[0].ProductID)
	require.NotNil(t, list[0].VendorID)
	assert.Equal(t, s.vendor.VendorID, *list[0].VendorID)

	list, err = s.svc.List(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].ProductID)
	require.NotNil(t, list[0].ProductMasterID)
	assert.Equal(t, s.master.ProductMasterID, *list[0].ProductMasterID)
	assert.Equal(t, entities.PriceSourceManualOverride, list[0].Source)

	// importing the same sheet twice only skips
	again, err := s.svc.Import(ctx, rows[:2], 2026)
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Equal(t, 2, again.Skipped)
}

func TestExportRoundTrip(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, err := s.svc.Import(ctx, []sheet.Row{
		{ProductName: "UAN 32", Price: 1.85, Unit: "gal", Vendor: "Valley Coop", Source: "awarded"},
		{ProductName: "Glyphosate 4.5", Price: 21, Unit: "gal"},
	}, 2026)
	require.NoError(t, err)

	rows, err := s.svc.Export(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Glyphosate 4.5", rows[0].ProductName)
	assert.Equal(t, entities.PriceSourceEstimated, rows[0].Source)
	assert.Equal(t, "Valley Coop", rows[1].Vendor)

	all, err := s.svc.Export(ctx, 2027)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAndDelete(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	e, err := s.svc.Create(ctx, &entities.PriceBookEntry{ProductName: "UAN 32", SeasonYear: 2026, Price: 1.9, PriceUOM: "gal", Source: "award"})
	require.NoError(t, err)
	assert.Equal(t, entities.PriceSourceAwarded, e.Source)
	require.NotNil(t, e.ProductID)

	_, err = s.svc.Create(ctx, &entities.PriceBookEntry{ProductName: "UAN 32", SeasonYear: 2026, Price: -1, PriceUOM: "gal"})
	assert.ErrorIs(t, err, service.ErrInvalidEntry)
	_, err = s.svc.Create(ctx, &entities.PriceBookEntry{ProductName: "Nope", SeasonYear: 2026, Price: 1, PriceUOM: "gal"})
	assert.ErrorIs(t, err, service.ErrInvalidEntry)

	require.NoError(t, s.svc.Delete(ctx, e.EntryID))
	assert.ErrorIs(t, s.svc.Delete(ctx, e.EntryID), gorm.ErrRecordNotFound)
}

func TestCreateByIDFillsName(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	e, err := s.svc.Create(ctx, &entities.PriceBookEntry{ProductID: &s.uan.ProductID, SeasonYear: 2026, Price: 1.9, PriceUOM: "gal", Source: "awarded"})
	require.NoError(t, err)
	assert.Equal(t, "UAN 32", e.ProductName)

	m, err := s.svc.Create(ctx, &entities.PriceBookEntry{ProductMasterID: &s.master.ProductMasterID, SeasonYear: 2026, Price: 20, PriceUOM: "gal"})
	require.NoError(t, err)
	assert.Equal(t, "Glyphosate 4.5", m.ProductName)

	missing := uint(999)
	_, err = s.svc.Create(ctx, &entities.PriceBookEntry{ProductID: &missing, SeasonYear: 2026, Price: 1, PriceUOM: "gal"})
	assert.ErrorIs(t, err, service.ErrInvalidEntry)
	_, err = s.svc.Create(ctx, &entities.PriceBookEntry{ProductMasterID: &missing, SeasonYear: 2026, Price: 1, PriceUOM: "gal"})
	assert.ErrorIs(t, err, service.ErrInvalidEntry)

	rows, err := s.svc.Export(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.NotEmpty(t, r.ProductName)
	}

	again, err := s.svc.Import(ctx, rows, 2026)
	require.NoError(t, err)
	assert.Empty(t, again.Errors)
	assert.Equal(t, 2, again.Skipped)
}
