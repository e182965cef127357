package query

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vendordocs/docscout/internal/domain"
)

func TestSearchKey_Deterministic(t *testing.T) {
	pt := domain.ProductGPU

	a := searchKey(&pt, "tensor cores", 1, 10)
	b := searchKey(&pt, "tensor cores", 1, 10)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, Namespace))
}

func TestSearchKey_DistinctParamsDistinctKeys(t *testing.T) {
	gpu := domain.ProductGPU
	sw := domain.ProductSoftware

	base := searchKey(&gpu, "tensor", 1, 10)

	assert.NotEqual(t, base, searchKey(&sw, "tensor", 1, 10), "product type must differentiate")
	assert.NotEqual(t, base, searchKey(&gpu, "tensor", 2, 10), "page must differentiate")
	assert.NotEqual(t, base, searchKey(&gpu, "tensor", 1, 20), "limit must differentiate")
	assert.NotEqual(t, base, searchKey(&gpu, "cuda", 1, 10), "query must differentiate")
	assert.NotEqual(t, base, searchKey(nil, "tensor", 1, 10), "missing filter must differentiate")
}

func TestSearchKey_NoDelimiterAmbiguity(t *testing.T) {
	// With naive string concatenation these two would collide.
	a := searchKey(nil, "ab", 1, 10)
	b := searchKey(nil, "a", 1, 10)
	assert.NotEqual(t, a, b)
}

func TestDocumentKey_DisjointFromSearchKeys(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	key := documentKey(id)

	assert.True(t, strings.HasPrefix(key, Namespace+"get:"))
	assert.NotEqual(t, key, searchKey(nil, id.String(), 1, 10))
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses whitespace", in: "  tensor   cores \n", want: "tensor cores"},
		{name: "lowercases", in: "Tensor CORES", want: "tensor cores"},
		{name: "empty stays empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeQuery(tt.in))
		})
	}
}

func TestNormalizedQueriesShareACacheSlot(t *testing.T) {
	a := searchKey(nil, normalizeQuery("Tensor   Cores"), 1, 10)
	b := searchKey(nil, normalizeQuery("tensor cores"), 1, 10)
	assert.Equal(t, a, b)
}
