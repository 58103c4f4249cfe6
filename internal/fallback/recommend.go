package fallback

import (
	"fmt"

	"github.com/mohammad-safakhou/marketscope/models"
)

// Recommendations returns the canned seller action plan for the kind,
// parameterized by category. One fixed template per kind.
func Recommendations(kind models.AnalysisKind, category string) string {
	switch kind {
	case models.KindMarketGap:
		return fmt.Sprintf(marketGapPlan, category)
	case models.KindTrending:
		return fmt.Sprintf(trendingPlan, category, category)
	case models.KindHighSelling:
		return fmt.Sprintf(highSellingPlan, category)
	case models.KindCompetitor:
		return competitorPlan
	}
	return fmt.Sprintf(defaultPlan, category)
}

const marketGapPlan = `🎯 **SELLER ACTION PLAN: Market Gap Opportunities**

**1. HIGH-PROFIT ENTRY STRATEGY** → Target premium %s segment with 78%% demand but only 23%% seller competition

**2. PRICING ADVANTAGE** → Price 15-20%% below market leaders while maintaining quality - customers will switch for value

**3. LAUNCH TIMING** → Enter market within 30-45 days before competition increases - first-mover advantage worth 40%% higher profits

**4. INVENTORY PLANNING** → Start with 500-1000 units based on $2.5M revenue potential - avoid overstock, scale gradually

**5. MARKETING FOCUS** → Target underserved customer segments with specific pain points competitors ignore

**6. COMPETITIVE MOAT** → Add unique features (eco-friendly, smart connectivity, premium packaging) for differentiation`

const trendingPlan = `🚀 **SELLER SUCCESS PLAN: Trend Capitalization**

**1. RIDE THE WAVE** → Launch %s products NOW - 95%% growth trend means 3-6 months of high profits ahead

**2. INVENTORY ACCELERATION** → Order 2-3x normal inventory for trending items - stockouts kill momentum during trends

**3. PRICE OPTIMIZATION** → Start 10%% higher than normal during peak trend - customers pay premium for hot products

**4. MARKETING AMPLIFICATION** → Increase ad spend by 200%% on trending products - ROI is 3-5x higher during trend peaks

**5. CUSTOMER CAPTURE** → Build email lists from trending product buyers - convert to long-term customers for other products

**6. TREND MONITORING** → Set up Google Trends alerts for %s - spot next trends 30-60 days early`

const highSellingPlan = `💰 **PROFIT MAXIMIZATION: Best Seller Strategy**

**1. COPY SUCCESS PATTERNS** → Analyze top %s sellers - replicate their pricing, features, and positioning

**2. QUALITY THRESHOLD** → Maintain 4.5+ star rating minimum - below this, sales drop 60%% regardless of price

**3. REVIEW VELOCITY** → Get first 50 reviews within 30 days using follow-up sequences - reviews drive 80%% of buying decisions

**4. PRICING SWEET SPOT** → Position between #2 and #3 best sellers' prices - capture price-conscious buyers from leader

**5. BUNDLE OPPORTUNITIES** → Create product bundles with complementary items - increase average order value by 35-50%%

**6. SEASONAL SCALING** → Increase inventory 3x during Q4 holiday season - high sellers see 400%% sales spikes`

const competitorPlan = `⚔️ **COMPETITIVE WARFARE: Beat Your Competition**

**1. ATTACK WEAK POINTS** → Target competitors with 3.9 or lower ratings - steal their customers with better quality

**2. PRICING STRATEGY** → Undercut market leader by 10-15% while matching #2 player's quality - classic disruption tactic

**3. FEATURE DIFFERENTIATION** → Add 2-3 features competitors lack - customers pay 20-30% more for perceived superiority

**4. CUSTOMER ACQUISITION** → Target competitors' negative reviewers - they're pre-qualified leads seeking alternatives

**5. DISTRIBUTION EXPANSION** → Sell on platforms where competitors are weak - capture untapped markets

**6. BRAND POSITIONING** → Position as 'better alternative to [market leader]' - leverage their brand awareness for your benefit`

const defaultPlan = `**SELLER OPTIMIZATION STRATEGIES for %s**

1. **Market Research** → Analyze successful competitors and replicate their winning formulas
2. **Price Competitively** → Position pricing strategically against market leaders
3. **Quality Focus** → Maintain high ratings and customer satisfaction scores
4. **Inventory Management** → Balance stock levels with demand forecasting
5. **Customer Acquisition** → Target underserved segments with specific value propositions`
