package research

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mohammad-safakhou/marketscope/internal/fallback"
	"github.com/mohammad-safakhou/marketscope/models"
)

// Chart is a renderer-agnostic description of one figure. Envelopes carry
// charts as opaque JSON strings; any charting front end can map Kind,
// Labels and Series onto its own visual grammar.
type Chart struct {
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	XTitle string   `json:"x_title,omitempty"`
	YTitle string   `json:"y_title,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Series []Series `json:"series"`
	Colors []string `json:"colors,omitempty"`
	Hole   float64  `json:"hole,omitempty"`
	Note   string   `json:"note,omitempty"`
	Theme  Theme    `json:"theme"`
}

// Theme is the dark dashboard palette every figure is drawn on.
type Theme struct {
	Background string `json:"background"`
	Paper      string `json:"paper"`
	Text       string `json:"text"`
}

var darkTheme = Theme{Background: "#1d293d", Paper: "#0f172b", Text: "#e2e8f0"}

// Series is one named data set within a chart. Bar and line charts fill Y
// against the chart labels, scatter and bubble charts fill X/Y/Sizes, pie
// and radar charts fill Values.
type Series struct {
	Name   string    `json:"name,omitempty"`
	X      []float64 `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Sizes  []float64 `json:"sizes,omitempty"`
	Color  string    `json:"color,omitempty"`
}

// Signal colors reused across recipes. Green marks opportunity, amber
// contested ground, red entrenched competition.
const (
	colorGood   = "#22c55e"
	colorWarn   = "#f59e0b"
	colorBad    = "#ef4444"
	colorAccent = "#615fff"
)

// greenScale shades pie slices and trend lines from strongest to weakest.
var greenScale = []string{"#22c55e", "#10b981", "#059669", "#047857", "#065f46"}

var radarAxes = []string{"Market Share", "Pricing Power", "Quality Score", "Product Range", "Customer Loyalty"}

var trendMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// BuildCharts renders the chart recipes for the request's kind over records.
// It returns nil when records are empty, the kind has no recipes, or the
// records lack the fields the recipes need.
func BuildCharts(records []models.Record, req models.AnalysisRequest) []string {
	if len(records) == 0 {
		return nil
	}
	var charts []Chart
	switch req.Kind {
	case models.KindMarketGap:
		charts = marketGapCharts(records, req)
	case models.KindTrending:
		charts = trendingCharts(records, req)
	case models.KindHighSelling:
		charts = highSellingCharts(records, req)
	case models.KindCompetitor:
		charts = competitorCharts(records, req)
	default:
		return nil
	}
	return encodeCharts(charts)
}

// FallbackCharts materializes fallback records when none are usable and
// retries chart construction once. The placeholder chart is the last
// resort, so callers always get at least one handle.
func FallbackCharts(records []models.Record, req models.AnalysisRequest) []string {
	if len(records) == 0 {
		records = fallback.Records(req.Kind, req.Category, req.Platform, req.Region, req.TimeWindow)
	}
	if len(records) > 0 && len(records[0]) > 1 {
		if charts := BuildCharts(records, req); len(charts) > 0 {
			return charts
		}
	}
	return []string{EmptyChart}
}

func encodeCharts(charts []Chart) []string {
	out := make([]string, 0, len(charts))
	for _, c := range charts {
		c.Theme = darkTheme
		b, err := json.Marshal(c)
		if err != nil {
			continue
		}
		out = append(out, string(b))
	}
	return out
}

// marketGapCharts builds the opportunity bubble map, the market size donut
// and the demand vs competition bar pairing.
func marketGapCharts(records []models.Record, req models.AnalysisRequest) []Chart {
	names, ok := requiredStrings(records, "product")
	if !ok {
		return nil
	}
	n := len(records)
	demand := make([]float64, n)
	sizes := make([]float64, n)
	opportunity := make([]float64, n)
	compScore := make([]float64, n)
	pointColors := make([]string, n)
	sliceLabels := make([]string, n)
	total := 0.0
	for i, rec := range records {
		d, ok := fieldFloat(rec, "demand_score", 5.0)
		if !ok {
			return nil
		}
		demand[i] = d
		sizes[i] = parseMillions(stringValue(rec["market_size"]), 1.5)
		total += sizes[i]
		switch stringValue(rec["opportunity"]) {
		case "High":
			opportunity[i] = 10
			pointColors[i] = colorGood
		case "Medium":
			opportunity[i] = 5
			pointColors[i] = colorWarn
		default:
			opportunity[i] = 1
			pointColors[i] = colorBad
		}
		switch stringValue(rec["competition"]) {
		case "High":
			compScore[i] = 3
		case "Medium":
			compScore[i] = 2
		default:
			compScore[i] = 1
		}
		sliceLabels[i] = "💰 " + names[i]
	}

	bubbleSizes := make([]float64, n)
	for i, s := range sizes {
		bubbleSizes[i] = maxFloat(15, s*8)
	}

	opportunityMap := Chart{
		Kind:   "bubble",
		Title:  fmt.Sprintf("🎯 Seller Opportunity Map: %s on %s (%s)", req.Category, req.Platform, req.Region),
		XTitle: "📈 Customer Demand (Higher = More Buyers)",
		YTitle: "💰 Opportunity Level (Higher = Less Competition)",
		Labels: names,
		Series: []Series{{X: demand, Y: opportunity, Sizes: bubbleSizes}},
		Colors: pointColors,
		Note:   "Bubble Size = Revenue Potential 💵",
	}

	marketShare := Chart{
		Kind:   "pie",
		Title:  fmt.Sprintf("💵 Revenue Distribution: Which %s Make Most Money (%s)", req.Category, req.Region),
		Labels: sliceLabels,
		Series: []Series{{Values: sizes}},
		Colors: greenScale,
		Hole:   0.4,
		Note:   fmt.Sprintf("Total Market $%.1fM", total),
	}

	competitionBars := Chart{
		Kind:   "bar",
		Title:  fmt.Sprintf("⚡ Competition Analysis: Easy vs Hard Markets for %s", req.Category),
		XTitle: "📦 Product Opportunities",
		YTitle: "Score (Higher = Better for Green, Worse for Red)",
		Labels: names,
		Series: []Series{
			{Name: "🟢 Customer Demand", Y: demand, Color: colorGood},
			{Name: "🔴 Seller Competition", Y: compScore, Color: colorBad},
		},
		Note: "🎯 Look for HIGH Green + LOW Red = Best Seller Opportunities",
	}

	return []Chart{opportunityMap, marketShare, competitionBars}
}

// trendingCharts builds the six month growth lines, the search volume
// bubble map and the growth champion ranking.
func trendingCharts(records []models.Record, req models.AnalysisRequest) []Chart {
	names, ok := requiredStrings(records, "product")
	if !ok {
		return nil
	}
	n := len(records)
	scores := make([]float64, n)
	growth := make([]float64, n)
	volumes := make([]float64, n)
	for i, rec := range records {
		s, ok := toFloat(rec["trend_score"])
		if !ok {
			return nil
		}
		scores[i] = s
		g, ok := parsePercent(rec["growth"])
		if !ok {
			return nil
		}
		growth[i] = g
		v, ok := parseVolume(rec["search_volume"])
		if !ok {
			return nil
		}
		volumes[i] = v
	}

	lineSeries := make([]Series, 0, 5)
	for i := 0; i < n && i < 5; i++ {
		lineSeries = append(lineSeries, Series{
			Name:  "💰 " + names[i],
			Y:     []float64{30 + 5*float64(i), 45 + 8*float64(i), 65 + 12*float64(i), 85 + 15*float64(i), 105 + 18*float64(i), growth[i]},
			Color: greenScale[i],
		})
	}
	growthLines := Chart{
		Kind:   "line",
		Title:  fmt.Sprintf("🚀 Trending Growth: Which %s Are Selling MORE Each Month?", req.Category),
		XTitle: "📅 Time (Recent Months)",
		YTitle: "📈 Sales Growth % (Higher = Better)",
		Labels: trendMonths,
		Series: lineSeries,
		Note:   "🎯 Choose products with UPWARD trend lines for maximum profit",
	}

	bubbleSizes := make([]float64, n)
	for i, g := range growth {
		bubbleSizes[i] = maxFloat(15, g/3)
	}
	demandMap := Chart{
		Kind:   "bubble",
		Title:  fmt.Sprintf("🔍 Customer Search vs Trend Score: %s Demand Map", req.Category),
		XTitle: "🔍 Monthly Customer Searches",
		YTitle: "📈 Trend Score (Higher = Hotter)",
		Labels: names,
		Series: []Series{{X: volumes, Y: scores, Sizes: bubbleSizes}},
		Note:   "Bubble Size = Growth Rate 🚀 | Top Right = Best Opportunities",
	}

	champions := Chart{
		Kind:   "hbar",
		Title:  fmt.Sprintf("🏆 Growth Champions: Fastest Growing %s on %s", req.Category, req.Platform),
		XTitle: "📈 Growth Rate % (Higher = Better for Sellers)",
		YTitle: "📦 Products",
		Labels: names,
		Series: []Series{{X: growth, Color: colorGood}},
		Note:   "🎯 Target products with 100%+ growth for maximum seller success",
	}

	return []Chart{growthLines, demandMap, champions}
}

// highSellingCharts builds the sales vs revenue bubble map, the revenue
// donut and the review count vs rating scatter.
func highSellingCharts(records []models.Record, req models.AnalysisRequest) []Chart {
	names, ok := requiredStrings(records, "product")
	if !ok {
		return nil
	}
	n := len(records)
	volumes := make([]float64, n)
	revenues := make([]float64, n)
	ratings := make([]float64, n)
	reviews := make([]float64, n)
	sliceLabels := make([]string, n)
	total := 0.0
	for i, rec := range records {
		rank, ok := fieldFloat(rec, "sales_rank", float64(i+1))
		if !ok {
			return nil
		}
		volumes[i] = rank * 1000
		revenues[i] = parseRevenue(stringValue(rec["revenue"]), 1000000)
		total += revenues[i]
		r, ok := fieldFloat(rec, "rating", 4.0)
		if !ok {
			return nil
		}
		ratings[i] = r
		reviews[i] = parseReviews(stringValue(rec["reviews"]), 1000)
		sliceLabels[i] = "🏆 " + names[i]
	}

	ratingSizes := make([]float64, n)
	for i, r := range ratings {
		ratingSizes[i] = maxFloat(15, r*12)
	}
	revenueMap := Chart{
		Kind:   "bubble",
		Title:  fmt.Sprintf("💰 Revenue Champions: Which %s Make Most Money on %s?", req.Category, req.Platform),
		XTitle: "📦 Monthly Sales Volume (Units)",
		YTitle: "💵 Monthly Revenue (Higher = Better)",
		Labels: names,
		Series: []Series{{X: volumes, Y: revenues, Sizes: ratingSizes}},
		Note:   "Bubble Size = Customer Rating ⭐ | Top Right = Best Sellers",
	}

	revenueShare := Chart{
		Kind:   "pie",
		Title:  fmt.Sprintf("📦 Revenue Breakdown: Top %s Money Makers (%s)", req.Category, req.Platform),
		Labels: sliceLabels,
		Series: []Series{{Values: revenues}},
		Colors: greenScale,
		Hole:   0.5,
		Note:   fmt.Sprintf("Total Revenue $%.1fM", total/1000000),
	}

	volumeSizes := make([]float64, n)
	for i, v := range volumes {
		volumeSizes[i] = maxFloat(15, v/200)
	}
	loveIndex := Chart{
		Kind:   "scatter",
		Title:  fmt.Sprintf("⭐ Customer Love Index: %s Reviews vs Ratings", req.Category),
		XTitle: "💬 Number of Customer Reviews",
		YTitle: "⭐ Average Rating (Higher = Happier Customers)",
		Labels: names,
		Series: []Series{{X: reviews, Y: ratings, Sizes: volumeSizes, Color: colorGood}},
		Note:   "Bubble Size = Sales Volume 📦 | Top Right = Customer Favorites",
	}

	return []Chart{revenueMap, revenueShare, loveIndex}
}

// competitorCharts builds the market share bars, the price vs quality
// positioning map and the top three capability radar.
func competitorCharts(records []models.Record, req models.AnalysisRequest) []Chart {
	names, ok := requiredStrings(records, "competitor")
	if !ok {
		return nil
	}
	n := len(records)
	shares := make([]float64, n)
	ratings := make([]float64, n)
	pricing := make([]float64, n)
	counts := make([]float64, n)
	shareColors := make([]string, n)
	clean := make([]string, n)
	for i, rec := range records {
		s, ok := parsePercent(rec["market_share"])
		if !ok {
			return nil
		}
		shares[i] = s
		r, ok := parseRating(rec["rating"])
		if !ok {
			return nil
		}
		ratings[i] = r
		pricing[i] = 120 - s*2
		counts[i] = float64(int(s * 15))
		switch {
		case s > 25:
			shareColors[i] = colorBad
		case s > 15:
			shareColors[i] = colorWarn
		default:
			shareColors[i] = colorGood
		}
		clean[i] = strings.TrimSpace(strings.SplitN(names[i], "(", 2)[0])
	}

	dominance := Chart{
		Kind:   "bar",
		Title:  fmt.Sprintf("📈 Market Control: Who Dominates %s on %s?", req.Category, req.Platform),
		XTitle: "🏢 Competitors",
		YTitle: "📊 Market Share % (Bigger = Stronger)",
		Labels: names,
		Series: []Series{{Y: shares}},
		Colors: shareColors,
		Note:   "🎯 Red = Tough Competition | Yellow = Beatable | Green = Easy Target",
	}

	bubbleSizes := make([]float64, n)
	for i, s := range shares {
		bubbleSizes[i] = maxFloat(20, s*3)
	}
	positioning := Chart{
		Kind:   "bubble",
		Title:  fmt.Sprintf("💰 Price vs Quality Map: Where Can You Compete in %s?", req.Category),
		XTitle: "💵 Price Positioning (Lower = Cheaper)",
		YTitle: "⭐ Customer Satisfaction (Higher = Better)",
		Labels: clean,
		Series: []Series{{X: pricing, Y: ratings, Sizes: bubbleSizes, Color: colorAccent}},
		Note:   "Bubble Size = Market Share 📈 | Find Empty Spaces for Your Opportunity",
	}

	radarColors := []string{colorBad, colorWarn, colorGood}
	radarSeries := make([]Series, 0, 3)
	for i := 0; i < n && i < 3; i++ {
		radarSeries = append(radarSeries, Series{
			Name: "🎯 " + clean[i],
			Values: []float64{
				shares[i],
				minFloat(100, (150-pricing[i])*1.2),
				ratings[i] * 20,
				minFloat(100, counts[i]/5),
				shares[i] * 0.9,
			},
			Color: radarColors[i],
		})
	}
	capabilities := Chart{
		Kind:   "radar",
		Title:  fmt.Sprintf("🔄 Complete Competitor Analysis: %s Market Leaders", req.Category),
		Labels: radarAxes,
		Series: radarSeries,
		Note:   "🎯 Study competitor weaknesses to find your winning strategy",
	}

	return []Chart{dominance, positioning, capabilities}
}

// requiredStrings collects a field every record must carry. Missing or
// empty values abort the recipe so the fallback path can take over.
func requiredStrings(records []models.Record, key string) ([]string, bool) {
	out := make([]string, len(records))
	for i, rec := range records {
		v, ok := rec[key]
		if !ok {
			return nil, false
		}
		s := stringValue(v)
		if s == "" {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// toFloat accepts the numeric shapes JSON decoding and the fallback
// generator produce, plus numeric strings.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// fieldFloat reads an optional numeric field. Absent values take the
// default, present but unparsable values abort the recipe.
func fieldFloat(rec models.Record, key string, def float64) (float64, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return def, true
	}
	return toFloat(v)
}

// parsePercent reads values like "+250%" or "24%".
func parsePercent(v interface{}) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	s := strings.NewReplacer("+", "", "%", "").Replace(stringValue(v))
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// parseVolume reads values like "150K/month".
func parseVolume(v interface{}) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	s := strings.NewReplacer("K/month", "", "K", "", ",", "").Replace(stringValue(v))
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// parseRating reads values like "4.5/5".
func parseRating(v interface{}) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	s := strings.SplitN(stringValue(v), "/", 2)[0]
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// parseMillions reads market sizes like "$2.5M" or "£800K" into millions.
// Unparsable values fall back to the default instead of aborting.
func parseMillions(raw string, def float64) float64 {
	s := strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "M", "", "K", "", ",", "").Replace(raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	if strings.Contains(raw, "M") {
		return f
	}
	if strings.Contains(raw, "K") {
		return f / 1000
	}
	return f
}

// parseRevenue reads revenues like "$3.2M" or "$450K" into plain dollars.
func parseRevenue(raw string, def float64) float64 {
	s := strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "M", "", "K", "", ",", "").Replace(raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	if strings.Contains(raw, "M") {
		return f * 1000000
	}
	if strings.Contains(raw, "K") {
		return f * 1000
	}
	return f
}

// parseReviews reads counts like "25,500". Fractional forms fall back to
// the default.
func parseReviews(raw string, def float64) float64 {
	hasK := strings.Contains(raw, "K")
	s := strings.NewReplacer(",", "", "K", "").Replace(raw)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	if hasK {
		return float64(n * 1000)
	}
	return float64(n)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
