package persistence

import (
	"strings"

	"github.com/jossiefancies/storefront/internal/domain/catalog"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// productOrderClauses maps a listing sort to its ORDER BY clause.
// Only whitelisted clauses ever reach SQL.
var productOrderClauses = map[catalog.ProductSort]string{
	catalog.SortPriceLow:  "products.price ASC, products.id ASC",
	catalog.SortPriceHigh: "products.price DESC, products.id ASC",
	catalog.SortName:      "products.name ASC, products.id ASC",
	catalog.SortNewest:    "products.created_at DESC, products.id ASC",
}

// productOrderClause returns the ORDER BY clause for s, or fallback when s is unknown
func productOrderClause(s catalog.ProductSort, fallback catalog.ProductSort) string {
	if clause, ok := productOrderClauses[s]; ok {
		return clause
	}
	return productOrderClauses[fallback]
}

// normalizePage clamps page to >= 1 and pageSize to [1, maxPageSize]
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// likePattern builds a case-insensitive LIKE pattern with wildcards escaped
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}
