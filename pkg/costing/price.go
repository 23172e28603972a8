package costing

import (
	"strings"

	"seasonplan/entities"
)

type PriceSource string

const (
	SourceAwarded        PriceSource = "awarded"
	SourceVendorOffering PriceSource = "vendor_offering"
	SourceManualOverride PriceSource = "manual_override"
	SourceManualEstimate PriceSource = "manual_estimate"
	SourceEstimated      PriceSource = "estimated"
	SourceNone           PriceSource = "none"
)

// PriceResolution is a unit price expressed per canonical unit of the product.
type PriceResolution struct {
	Price    float64     `json:"price"`
	Unit     string      `json:"unit"`
	Source   PriceSource `json:"source"`
	Priced   bool        `json:"priced"`
	VendorID *uint       `json:"vendor_id,omitempty"`
}

var containerUnits = map[string]bool{
	"case": true, "cs": true, "jug": true, "bag": true, "tote": true, "drum": true,
	"container": true, "box": true, "pail": true, "bottle": true, "jar": true,
	"each": true, "ea": true, "unit": true, "pack": true, "pkg": true, "bulk bag": true,
}

// IsContainerUnit reports whether unit prices a whole container rather than a measure.
func IsContainerUnit(unit string) bool {
	return containerUnits[NormalizeUnit(unit)]
}

// NormalizePrice converts a price quoted per unit (or per container) into a price per
// canonical unit of form. Container prices need containerSize and containerUnit.
func NormalizePrice(price float64, unit, form string, containerSize *float64, containerUnit string) (float64, error) {
	u := NormalizeUnit(unit)
	if u == "" && containerSize != nil {
		u = "container"
	}
	if f, ok := factorsFor(form)[u]; ok {
		perUnit := f.mul / f.div
		return safeDiv(price, perUnit), nil
	}
	if !containerUnits[u] {
		return 0, &UnitError{Unit: unit, Form: form}
	}
	if containerSize == nil || *containerSize <= 0 {
		return 0, &UnitError{Unit: unit, Form: form}
	}
	size, err := convert(*containerSize, containerUnit, form)
	if err != nil {
		return 0, err
	}
	return safeDiv(price, size), nil
}

// EffectivePrice resolves the unit price of product, highest priority first:
// an awarded price-book entry for the season, the lowest active vendor offering,
// then the manual estimate (manual_override entry, the product's own price, an
// estimated entry). It never fails; an unresolvable product comes back unpriced.
func EffectivePrice(product entities.Product, offerings []entities.VendorOffering, ctx *PriceBookContext) PriceResolution {
	unit := CanonicalUnit(product.Form)

	if r, ok := ctx.lowestEntry(product, entities.PriceSourceAwarded); ok {
		return r
	}
	if r, ok := lowestOffering(product, offerings); ok {
		return r
	}
	if r, ok := ctx.lowestEntry(product, entities.PriceSourceManualOverride); ok {
		return r
	}
	if product.Price > 0 {
		if p, err := NormalizePrice(product.Price, product.PriceUnit, product.Form, product.ContainerSize, product.ContainerUnit); err == nil && p > 0 {
			return PriceResolution{Price: p, Unit: unit, Source: SourceManualEstimate, Priced: true, VendorID: product.VendorID}
		}
	}
	if r, ok := ctx.lowestEntry(product, entities.PriceSourceEstimated); ok {
		return r
	}
	return PriceResolution{Unit: unit, Source: SourceNone}
}

func lowestOffering(product entities.Product, offerings []entities.VendorOffering) (PriceResolution, bool) {
	var best PriceResolution
	found := false
	for _, o := range offerings {
		if !o.Active || o.Price <= 0 {
			continue
		}
		if o.ProductID != 0 && o.ProductID != product.ProductID {
			continue
		}
		size, cunit := o.ContainerSize, o.ContainerUnit
		if size == nil {
			size, cunit = product.ContainerSize, product.ContainerUnit
		}
		p, err := NormalizePrice(o.Price, o.PriceUnit, product.Form, size, cunit)
		if err != nil || p <= 0 {
			continue
		}
		if !found || p < best.Price {
			vendorID := o.VendorID
			best = PriceResolution{Price: p, Unit: CanonicalUnit(product.Form), Source: SourceVendorOffering, Priced: true, VendorID: &vendorID}
			found = true
		}
	}
	return best, found
}

// masterID finds the product master of p: the explicit link, else a master with the same name.
func (c *PriceBookContext) masterID(p entities.Product) *uint {
	if p.ProductMasterID != nil {
		return p.ProductMasterID
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil
	}
	for i := range c.ProductMasters {
		if strings.EqualFold(strings.TrimSpace(c.ProductMasters[i].Name), name) {
			id := c.ProductMasters[i].ProductMasterID
			return &id
		}
	}
	return nil
}

func (c *PriceBookContext) matches(e entities.PriceBookEntry, p entities.Product, master *uint) bool {
	if e.ProductID != nil && *e.ProductID == p.ProductID {
		return true
	}
	return master != nil && e.ProductMasterID != nil && *e.ProductMasterID == *master
}

func (c *PriceBookContext) lowestEntry(p entities.Product, source string) (PriceResolution, bool) {
	if c == nil {
		return PriceResolution{}, false
	}
	master := c.masterID(p)
	var best PriceResolution
	found := false
	for _, e := range c.PriceBook {
		if e.Source != source || e.SeasonYear != c.SeasonYear || e.Price <= 0 {
			continue
		}
		if !c.matches(e, p, master) {
			continue
		}
		price, err := NormalizePrice(e.Price, e.PriceUOM, p.Form, p.ContainerSize, p.ContainerUnit)
		if err != nil || price <= 0 {
			continue
		}
		if !found || price < best.Price {
			best = PriceResolution{Price: price, Unit: CanonicalUnit(p.Form), Source: PriceSource(source), Priced: true, VendorID: e.VendorID}
			found = true
		}
	}
	return best, found
}
