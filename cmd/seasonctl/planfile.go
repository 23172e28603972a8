package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"seasonplan/entities"
	"seasonplan/pkg/costing"
)

// planFile is the YAML snapshot read by `seasonctl summary`. Applications name
// their timing and product instead of carrying ids.
type planFile struct {
	SeasonYear     int          `yaml:"season_year"`
	Crop           cropDoc      `yaml:"crop"`
	Products       []productDoc `yaml:"products"`
	ProductMasters []string     `yaml:"product_masters"`
	PriceBook      []priceDoc   `yaml:"price_book"`
}

type cropDoc struct {
	Name         string   `yaml:"name"`
	CropType     string   `yaml:"crop_type"`
	TotalAcres   float64  `yaml:"total_acres"`
	Timings      []string `yaml:"timings"`
	Applications []appDoc `yaml:"applications"`
}

type appDoc struct {
	Timing          string  `yaml:"timing"`
	Product         string  `yaml:"product"`
	Rate            float64 `yaml:"rate"`
	Unit            string  `yaml:"unit"`
	AcresPercentage float64 `yaml:"acres_pct"`
	Tier            string  `yaml:"tier"`
}

type productDoc struct {
	Name          string             `yaml:"name"`
	Form          string             `yaml:"form"`
	Price         float64            `yaml:"price"`
	PriceUnit     string             `yaml:"price_unit"`
	ContainerSize *float64           `yaml:"container_size"`
	ContainerUnit string             `yaml:"container_unit"`
	Master        string             `yaml:"master"`
	Nutrients     entities.Nutrients `yaml:"nutrients"`
	Offerings     []offeringDoc      `yaml:"offerings"`
}

type offeringDoc struct {
	Vendor        uint     `yaml:"vendor_id"`
	Price         float64  `yaml:"price"`
	PriceUnit     string   `yaml:"price_unit"`
	ContainerSize *float64 `yaml:"container_size"`
	ContainerUnit string   `yaml:"container_unit"`
	Inactive      bool     `yaml:"inactive"`
}

type priceDoc struct {
	Product string  `yaml:"product"`
	Season  int     `yaml:"season_year"`
	Price   float64 `yaml:"price"`
	Unit    string  `yaml:"unit"`
	Source  string  `yaml:"source"`
}

// snapshot is a plan file resolved into engine inputs.
type snapshot struct {
	crop     entities.Crop
	products []entities.Product
	prices   *costing.PriceBookContext
}

func loadPlan(path string) (*planFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf planFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &pf, nil
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// resolve assigns ids in file order. An application naming an unknown product is
// kept with product id 0 so the summary reports it as missing.
func (pf *planFile) resolve(withPriceBook bool) (*snapshot, error) {
	masters := map[string]uint{}
	var masterRows []entities.ProductMaster
	for i, name := range pf.ProductMasters {
		id := uint(i + 1)
		masters[key(name)] = id
		masterRows = append(masterRows, entities.ProductMaster{ProductMasterID: id, Name: name})
	}

	productIDs := map[string]uint{}
	products := make([]entities.Product, 0, len(pf.Products))
	for i, d := range pf.Products {
		id := uint(i + 1)
		p := entities.Product{
			ProductID:     id,
			Name:          d.Name,
			Form:          key(d.Form),
			Price:         d.Price,
			PriceUnit:     d.PriceUnit,
			ContainerSize: d.ContainerSize,
			ContainerUnit: d.ContainerUnit,
			Nutrients:     d.Nutrients,
		}
		if d.Master != "" {
			m, ok := masters[key(d.Master)]
			if !ok {
				return nil, fmt.Errorf("product %q: unknown master %q", d.Name, d.Master)
			}
			p.ProductMasterID = &m
		}
		for _, o := range d.Offerings {
			p.Offerings = append(p.Offerings, entities.VendorOffering{
				ProductID: id, VendorID: o.Vendor, Price: o.Price, PriceUnit: o.PriceUnit,
				ContainerSize: o.ContainerSize, ContainerUnit: o.ContainerUnit, Active: !o.Inactive,
			})
		}
		productIDs[key(d.Name)] = id
		products = append(products, p)
	}

	crop := entities.Crop{CropID: 1, Name: pf.Crop.Name, CropType: pf.Crop.CropType, SeasonYear: pf.SeasonYear, TotalAcres: pf.Crop.TotalAcres}
	timingIDs := map[string]uint{}
	for i, name := range pf.Crop.Timings {
		id := uint(i + 1)
		timingIDs[key(name)] = id
		crop.Timings = append(crop.Timings, entities.ApplicationTiming{TimingID: id, CropID: 1, Name: name, Order: i + 1})
	}
	for i, a := range pf.Crop.Applications {
		tid, ok := timingIDs[key(a.Timing)]
		if !ok {
			return nil, fmt.Errorf("application %d: unknown timing %q", i+1, a.Timing)
		}
		app := entities.Application{
			ApplicationID: uint(i + 1), CropID: 1, TimingID: tid, ProductID: productIDs[key(a.Product)],
			Rate: a.Rate, RateUnit: a.Unit, AcresPercentage: a.AcresPercentage,
		}
		if a.Tier != "" {
			tier := a.Tier
			app.TierOverride = &tier
		}
		crop.Applications = append(crop.Applications, app)
	}

	snap := &snapshot{crop: crop, products: products}
	if !withPriceBook {
		return snap, nil
	}
	ctx := &costing.PriceBookContext{ProductMasters: masterRows, SeasonYear: pf.SeasonYear}
	for i, d := range pf.PriceBook {
		e := entities.PriceBookEntry{EntryID: uint(i + 1), ProductName: d.Product, SeasonYear: d.Season, Price: d.Price, PriceUOM: d.Unit, Source: key(d.Source)}
		if e.SeasonYear == 0 {
			e.SeasonYear = pf.SeasonYear
		}
		if e.Source == "" {
			e.Source = entities.PriceSourceEstimated
		}
		if id, ok := productIDs[key(d.Product)]; ok {
			e.ProductID = &id
		} else if m, ok := masters[key(d.Product)]; ok {
			e.ProductMasterID = &m
		}
		ctx.PriceBook = append(ctx.PriceBook, e)
	}
	snap.prices = ctx
	return snap, nil
}
