// Package fallback synthesizes deterministic placeholder market data. It is
// the substitution path for every oracle failure: same inputs, same records,
// no randomness.
package fallback

import (
	"fmt"
	"strings"
)

// Catalog lists believable bestsellers and their brands for one category.
type Catalog struct {
	Products []string
	Brands   []string
}

// PlatformProfile scales generated numbers per marketplace.
type PlatformProfile struct {
	BaseVolume        float64
	BaseRevenue       float64
	CompetitionFactor float64
	Commission        float64
}

// RegionProfile scales market size and picks the currency symbol.
type RegionProfile struct {
	MarketFactor float64
	Currency     string
	TaxRate      float64
}

// TimeProfile scales growth figures per reporting window.
type TimeProfile struct {
	GrowthBoost   float64
	Volatility    float64
	TrendStrength string
}

var catalogs = map[string]Catalog{
	"smart home devices": {
		Products: []string{"Amazon Echo Dot (4th Gen)", "Ring Video Doorbell Pro 2", "Philips Hue White A19 Starter Kit", "Google Nest Hub (2nd Gen)", "TP-Link Kasa Smart Plug HS103"},
		Brands:   []string{"Amazon", "Ring (Amazon)", "Philips", "Google", "TP-Link"},
	},
	"electronics": {
		Products: []string{"Apple AirPods Pro (2nd Generation)", "Samsung Galaxy Buds2 Pro", "Sony WH-1000XM5 Wireless Headphones", "Apple iPad (10th Generation)", "Anker PowerCore 10000 Power Bank"},
		Brands:   []string{"Apple", "Samsung", "Sony", "Apple", "Anker"},
	},
	"fitness equipment": {
		Products: []string{"Bowflex SelectTech 552 Adjustable Dumbbells", "Resistance Bands Set (11 Piece)", "Manduka PRO Yoga Mat", "TriggerPoint GRID Foam Roller", "REP FITNESS AB-3000 Bench"},
		Brands:   []string{"Bowflex", "Bodylastics", "Manduka", "TriggerPoint", "REP FITNESS"},
	},
	"kitchen appliances": {
		Products: []string{"Ninja AF101 Air Fryer", "Keurig K-Mini Coffee Maker", "Instant Pot Duo 7-in-1 Electric Pressure Cooker", "Vitamix E310 Explorian Blender", "Breville BOV845BSS Smart Oven Pro"},
		Brands:   []string{"Ninja", "Keurig", "Instant Pot", "Vitamix", "Breville"},
	},
	"wireless headphones": {
		Products: []string{"Apple AirPods (3rd Generation)", "Sony WF-1000XM4 True Wireless Earbuds", "Bose QuietComfort Earbuds", "Jabra Elite 85t True Wireless Earbuds", "Sennheiser Momentum 4 Wireless Headphones"},
		Brands:   []string{"Apple", "Sony", "Bose", "Jabra", "Sennheiser"},
	},
	"skincare products": {
		Products: []string{"CeraVe Daily Moisturizing Lotion", "Neutrogena Ultra Gentle Daily Cleanser", "The Ordinary Niacinamide 10% + Zinc 1%", "EltaMD UV Clear Broad-Spectrum SPF 46", "Freeman Charcoal & Black Sugar Face Mask"},
		Brands:   []string{"CeraVe", "Neutrogena", "The Ordinary", "EltaMD", "Freeman"},
	},
}

var platforms = map[string]PlatformProfile{
	"Amazon":  {BaseVolume: 150, BaseRevenue: 3.2, CompetitionFactor: 1.0, Commission: 0.15},
	"eBay":    {BaseVolume: 80, BaseRevenue: 1.8, CompetitionFactor: 0.7, Commission: 0.12},
	"Walmart": {BaseVolume: 120, BaseRevenue: 2.5, CompetitionFactor: 0.8, Commission: 0.08},
}

var regions = map[string]RegionProfile{
	"US": {MarketFactor: 1.0, Currency: "$", TaxRate: 0.08},
	"UK": {MarketFactor: 0.6, Currency: "£", TaxRate: 0.20},
	"DE": {MarketFactor: 0.8, Currency: "€", TaxRate: 0.19},
	"JP": {MarketFactor: 0.7, Currency: "¥", TaxRate: 0.10},
}

var windows = map[string]TimeProfile{
	"Last Week":     {GrowthBoost: 0.3, Volatility: 0.2, TrendStrength: "High"},
	"Last Month":    {GrowthBoost: 1.0, Volatility: 0.1, TrendStrength: "Stable"},
	"Last 3 Months": {GrowthBoost: 1.5, Volatility: 0.05, TrendStrength: "Strong"},
	"Last 6 Months": {GrowthBoost: 2.0, Volatility: 0.03, TrendStrength: "Very Strong"},
}

// CatalogFor returns products and brands for the category. The match is
// case-insensitive; unrecognised categories get synthesised names so the
// tables still read naturally.
func CatalogFor(category string) Catalog {
	if c, ok := catalogs[strings.ToLower(category)]; ok {
		return c
	}
	products := make([]string, 5)
	brands := make([]string, 5)
	for i := 0; i < 5; i++ {
		products[i] = fmt.Sprintf("%s Best Seller #%d", category, i+1)
		brands[i] = fmt.Sprintf("%s Brand %c", category, 'A'+i)
	}
	return Catalog{Products: products, Brands: brands}
}

// PlatformFor returns the profile for the named marketplace, defaulting to
// Amazon. The lookup is case-sensitive on purpose: the profile keys mirror
// how marketplaces are written in requests.
func PlatformFor(platform string) PlatformProfile {
	if p, ok := platforms[platform]; ok {
		return p
	}
	return platforms["Amazon"]
}

// RegionFor returns the profile for the region code, defaulting to US.
func RegionFor(region string) RegionProfile {
	if r, ok := regions[region]; ok {
		return r
	}
	return regions["US"]
}

// WindowFor returns the profile for the time window, defaulting to Last Month.
func WindowFor(window string) TimeProfile {
	if w, ok := windows[window]; ok {
		return w
	}
	return windows["Last Month"]
}
