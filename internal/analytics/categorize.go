package analytics

import "strings"

type Category string

const (
	CategoryInventory Category = "inventory"
	CategoryPurchase  Category = "purchase"
	CategoryReporting Category = "reporting"
	CategoryGeneral   Category = "general"
)

// Ordered rule list. Order is load-bearing: the first matching category wins,
// so "show me the purchase report" is purchase, not reporting.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryInventory, []string{"inventory", "stock", "low stock", "reorder", "shortage", "order"}},
	{CategoryPurchase, []string{"purchase", "buy", "supplier", "vendor", "requisition"}},
	{CategoryReporting, []string{"report", "analytics", "data", "show", "list"}},
}

// Categorize classifies a user message by case-insensitive keyword
// containment. Pure and total; the empty string is general.
func Categorize(message string) Category {
	lower := strings.ToLower(message)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}
