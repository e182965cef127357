package catalog

import (
	"fmt"
	"net/url"

	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
)

// Entry is one (product type, source URL) pair scheduled for extraction.
type Entry struct {
	ProductType domain.ProductType
	URL         string
}

// Catalog is the external, versionable list of documentation pages grouped by
// product classification. It is immutable after Load.
type Catalog struct {
	sources map[domain.ProductType][]string
	entries []Entry
}

// Entries returns every (product type, URL) pair in catalog order: product
// types in enumeration order, URLs in file order within each type.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// URLs returns the source URLs configured for one product type.
func (c *Catalog) URLs(pt domain.ProductType) []string {
	return c.sources[pt]
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// New validates raw sources and builds a Catalog. Duplicate URLs (within or
// across product types), unknown product types, empty URL lists and
// unparseable URLs are all rejected as InvalidCatalog; the caller treats this
// as fatal at startup.
func New(sources map[domain.ProductType][]string) (*Catalog, error) {
	if len(sources) == 0 {
		return nil, apperr.NewInvalidCatalog("no sources configured")
	}

	seen := make(map[string]domain.ProductType)
	c := &Catalog{sources: make(map[domain.ProductType][]string, len(sources))}

	for _, pt := range domain.ProductTypes {
		urls, ok := sources[pt]
		if !ok {
			continue
		}
		if len(urls) == 0 {
			return nil, apperr.NewInvalidCatalog(fmt.Sprintf("product type %s has no urls", pt))
		}
		for _, raw := range urls {
			parsed, err := url.Parse(raw)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return nil, apperr.NewInvalidCatalog(fmt.Sprintf("malformed url %q for product type %s", raw, pt))
			}
			if prev, dup := seen[raw]; dup {
				return nil, apperr.NewInvalidCatalog(fmt.Sprintf("duplicate url %q (listed under %s and %s)", raw, prev, pt))
			}
			seen[raw] = pt
			c.sources[pt] = append(c.sources[pt], raw)
			c.entries = append(c.entries, Entry{ProductType: pt, URL: raw})
		}
	}

	for pt := range sources {
		if !pt.Valid() {
			return nil, apperr.NewInvalidCatalog(fmt.Sprintf("unknown product type %q", pt))
		}
	}

	return c, nil
}
