package product

import (
	"fmt"
	"strconv"
	"strings"
)

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price_low"
	SortPriceHigh Sort = "price_high"
	SortName      Sort = "name"
	SortRating    Sort = "rating"
)

func ParseSort(v string) (Sort, error) {
	switch s := Sort(strings.TrimSpace(v)); s {
	case "":
		return SortNewest, nil
	case SortNewest, SortPriceLow, SortPriceHigh, SortName, SortRating:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidProduct, v)
	}
}

type Filter struct {
	Category string
	MinPrice float64
	// MaxPrice of zero means no upper bound.
	MaxPrice        float64
	Search          string
	Sort            Sort
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ParsePriceRange accepts "min-max", "min+" or a bare "min".
func ParsePriceRange(v string) (lo, hi float64, err error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, 0, nil
	}
	bad := fmt.Errorf("%w: bad price range %q", ErrInvalidProduct, v)

	if strings.HasSuffix(v, "+") {
		lo, err = strconv.ParseFloat(strings.TrimSuffix(v, "+"), 64)
		if err != nil || lo < 0 {
			return 0, 0, bad
		}
		return lo, 0, nil
	}
	from, to, found := strings.Cut(v, "-")
	lo, err = strconv.ParseFloat(from, 64)
	if err != nil || lo < 0 {
		return 0, 0, bad
	}
	if !found || to == "" {
		return lo, 0, nil
	}
	hi, err = strconv.ParseFloat(to, 64)
	if err != nil || hi < lo {
		return 0, 0, bad
	}
	return lo, hi, nil
}

const effectivePriceSQL = `(CASE WHEN sale_price > 0 AND sale_price < price THEN sale_price ELSE price END)`

// listQuery builds the catalog query for a store. Arguments are positional.
func listQuery(storeID string, f Filter) (string, []any) {
	var (
		sb   strings.Builder
		args = []any{storeID}
	)
	sb.WriteString(`SELECT ` + productColumns + ` FROM products WHERE store_id=$1`)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !f.IncludeInactive {
		sb.WriteString(` AND status='active'`)
	}
	if f.Category != "" {
		sb.WriteString(` AND category=` + arg(f.Category))
	}
	if f.MinPrice > 0 {
		sb.WriteString(` AND ` + effectivePriceSQL + ` >= ` + arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		sb.WriteString(` AND ` + effectivePriceSQL + ` <= ` + arg(f.MaxPrice))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		p := arg("%" + escapeLike(strings.ToLower(q)) + "%")
		sb.WriteString(` AND (lower(name) LIKE ` + p +
			` OR lower(description) LIKE ` + p +
			` OR lower(category) LIKE ` + p +
			` OR lower(array_to_string(tags, ' ')) LIKE ` + p + `)`)
	}

	switch f.Sort {
	case SortPriceLow:
		sb.WriteString(` ORDER BY ` + effectivePriceSQL + ` ASC, created_at DESC`)
	case SortPriceHigh:
		sb.WriteString(` ORDER BY ` + effectivePriceSQL + ` DESC, created_at DESC`)
	case SortName:
		sb.WriteString(` ORDER BY name ASC`)
	case SortRating:
		sb.WriteString(` ORDER BY rating DESC, created_at DESC`)
	default:
		sb.WriteString(` ORDER BY created_at DESC`)
	}

	if f.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(f.Limit))
	}
	if f.Offset > 0 {
		sb.WriteString(` OFFSET ` + arg(f.Offset))
	}
	return sb.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
