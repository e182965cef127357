package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/vendordocs/docscout/internal/domain"
)

// Namespace prefixes every cache key this controller writes, so a completed
// ingestion batch can invalidate the whole namespace in one call.
const Namespace = "docscout:query:"

// keyParams is the fully serialized parameter tuple a cache key is derived
// from. Hashing the JSON encoding (fixed field order) avoids the delimiter
// ambiguity of concatenating raw strings.
type keyParams struct {
	Op          string `json:"op"`
	ProductType string `json:"product_type,omitempty"`
	Query       string `json:"query,omitempty"`
	Page        int    `json:"page,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	ID          string `json:"id,omitempty"`
}

func (p keyParams) encode() string {
	raw, err := json.Marshal(p)
	if err != nil {
		// keyParams contains only strings and ints; Marshal cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return Namespace + p.Op + ":" + hex.EncodeToString(sum[:])
}

func searchKey(productType *domain.ProductType, normalizedQuery string, page, limit int) string {
	p := keyParams{
		Op:    "search",
		Query: normalizedQuery,
		Page:  page,
		Limit: limit,
	}
	if productType != nil {
		p.ProductType = productType.String()
	}
	return p.encode()
}

func documentKey(id uuid.UUID) string {
	return keyParams{Op: "get", ID: id.String()}.encode()
}

// normalizeQuery collapses whitespace and lowercases the search text so two
// semantically identical requests always hit the same cache slot.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
