package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProductType is the closed classification of vendor documentation pages.
// The catalog loader, the Document model and the search filter all share this
// type so the three cannot drift apart.
type ProductType string

const (
	ProductGPU         ProductType = "GPU"
	ProductTransceiver ProductType = "TRANSCEIVER"
	ProductCabling     ProductType = "CABLING"
	ProductNetworkCard ProductType = "NETWORK_CARD"
	ProductSoftware    ProductType = "SOFTWARE"
)

// ProductTypes lists every member of the enumeration in a stable order.
var ProductTypes = []ProductType{
	ProductGPU,
	ProductTransceiver,
	ProductCabling,
	ProductNetworkCard,
	ProductSoftware,
}

// ParseProductType resolves a raw string (case-sensitive, upper snake case)
// into a ProductType.
func ParseProductType(s string) (ProductType, error) {
	pt := ProductType(s)
	if !pt.Valid() {
		return "", fmt.Errorf("unknown product type: %q", s)
	}
	return pt, nil
}

func (p ProductType) Valid() bool {
	switch p {
	case ProductGPU, ProductTransceiver, ProductCabling, ProductNetworkCard, ProductSoftware:
		return true
	}
	return false
}

func (p ProductType) String() string {
	return string(p)
}

// UnmarshalYAML lets catalog files carry product types directly, rejecting
// unknown members at load time.
func (p *ProductType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseProductType(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Document is one extracted documentation page. Exactly one live Document
// exists per distinct SourceURL; re-ingestion replaces content in place.
type Document struct {
	ID          uuid.UUID   `json:"id"`
	ProductType ProductType `json:"product_type"`
	SourceURL   string      `json:"source_url"`
	Title       string      `json:"title"`
	Headings    []string    `json:"headings,omitempty"`
	BodyText    string      `json:"body_text"`
	FetchedAt   time.Time   `json:"fetched_at"`
}

// DocumentID derives the stable identifier for a source URL. The same URL
// always maps to the same UUID, which is what makes upserts idempotent across
// every storage backend.
func DocumentID(sourceURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL))
}

// DocumentSearchResult pairs a Document with its relevance rank.
type DocumentSearchResult struct {
	Document `json:"document"`
	Rank     float64 `json:"rank"`
}

// Statistics summarizes the stored corpus for operators.
type Statistics struct {
	TotalDocuments      int64                 `json:"total_documents"`
	CountPerProductType map[ProductType]int64 `json:"count_per_product_type"`
	LastIngestedAt      *time.Time            `json:"last_ingested_at,omitempty"`
}
