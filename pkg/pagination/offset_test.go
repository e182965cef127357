package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       OffsetRequest
		wantErr   bool
		wantPage  int
		wantLimit int
	}{
		{name: "defaults filled", req: OffsetRequest{}, wantPage: 1, wantLimit: PageDefaultLimit},
		{name: "explicit values kept", req: OffsetRequest{Page: 3, Limit: 25}, wantPage: 3, wantLimit: 25},
		{name: "max limit accepted", req: OffsetRequest{Page: 1, Limit: PageMaxLimit}, wantPage: 1, wantLimit: PageMaxLimit},
		{name: "negative page rejected", req: OffsetRequest{Page: -1, Limit: 10}, wantErr: true},
		{name: "limit above max rejected", req: OffsetRequest{Page: 1, Limit: PageMaxLimit + 1}, wantErr: true},
		{name: "negative limit rejected", req: OffsetRequest{Page: 1, Limit: -5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, tt.req.Page)
			assert.Equal(t, tt.wantLimit, tt.req.Limit)
		})
	}
}

func TestOffsetRequest_Offset(t *testing.T) {
	r := OffsetRequest{Page: 3, Limit: 10}
	assert.Equal(t, 20, r.Offset())

	first := OffsetRequest{Page: 1, Limit: 50}
	assert.Equal(t, 0, first.Offset())
}

func TestNewOffsetResult(t *testing.T) {
	t.Run("has more pages", func(t *testing.T) {
		res := NewOffsetResult([]string{"a", "b"}, 25, 1, 2)
		assert.True(t, res.HasMore)
		assert.Equal(t, int64(25), res.Total)
	})

	t.Run("last partial page", func(t *testing.T) {
		res := NewOffsetResult([]string{"x"}, 25, 3, 10)
		assert.False(t, res.HasMore)
	})
}
