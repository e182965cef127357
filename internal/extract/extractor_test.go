package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendordocs/docscout/internal/domain"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  A200 Tensor   GPU </title>
  <style>.hero { color: red; }</style>
</head>
<body>
  <nav>Home / Products / GPUs</nav>
  <header>Site header</header>
  <h1>A200 Tensor GPU</h1>
  <p>The A200 delivers breakthrough performance
     for datacenter workloads.</p>
  <h2>Specifications</h2>
  <p>Memory: 80GB HBM3.</p>
  <script>trackPageView();</script>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtract_ParsesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	doc, err := NewPageExtractor().Extract(context.Background(), srv.URL, domain.ProductGPU)

	require.NoError(t, err)
	assert.Equal(t, "A200 Tensor GPU", doc.Title)
	assert.Equal(t, []string{"A200 Tensor GPU", "Specifications"}, doc.Headings)
	assert.Equal(t, domain.ProductGPU, doc.ProductType)
	assert.Equal(t, srv.URL, doc.SourceURL)
	assert.Equal(t, domain.DocumentID(srv.URL), doc.ID)
	assert.WithinDuration(t, time.Now().UTC(), doc.FetchedAt, 5*time.Second)

	assert.Contains(t, doc.BodyText, "The A200 delivers breakthrough performance for datacenter workloads.")
	assert.Contains(t, doc.BodyText, "Memory: 80GB HBM3.")
	// nav/header/footer/script content never reaches the body text.
	assert.NotContains(t, doc.BodyText, "Home / Products")
	assert.NotContains(t, doc.BodyText, "Site header")
	assert.NotContains(t, doc.BodyText, "trackPageView")
	assert.NotContains(t, doc.BodyText, "Copyright")
}

func TestExtract_DeterministicForSameBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	e := NewPageExtractor()
	first, err := e.Extract(context.Background(), srv.URL, domain.ProductGPU)
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), srv.URL, domain.ProductGPU)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Headings, second.Headings)
	assert.Equal(t, first.BodyText, second.BodyText)
}

func TestExtract_NonOKStatusIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewPageExtractor().Extract(context.Background(), srv.URL, domain.ProductGPU)

	var ef *domain.ExtractionFailure
	require.True(t, errors.As(err, &ef))
	assert.Equal(t, domain.FailureFetch, ef.Kind)
	assert.Equal(t, srv.URL, ef.URL)
	assert.Contains(t, ef.Cause, "404")
}

func TestExtract_UnreachableHostIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately closed

	_, err := NewPageExtractor(WithTimeout(2*time.Second)).Extract(context.Background(), srv.URL, domain.ProductSoftware)

	var ef *domain.ExtractionFailure
	require.True(t, errors.As(err, &ef))
	assert.Equal(t, domain.FailureFetch, ef.Kind)
}

func TestExtract_EmptyBodyIsEmptyContentFailure(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{name: "no text at all", html: "<html><body></body></html>"},
		{name: "whitespace only", html: "<html><body>\n\t   \n</body></html>"},
		{name: "only skipped elements", html: "<html><body><script>x()</script><nav>menu</nav></body></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.html))
			}))
			defer srv.Close()

			_, err := NewPageExtractor().Extract(context.Background(), srv.URL, domain.ProductCabling)

			var ef *domain.ExtractionFailure
			require.True(t, errors.As(err, &ef))
			assert.Equal(t, domain.FailureEmptyContent, ef.Kind)
		})
	}
}

func TestExtract_MissingTitleIsNotAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>Cable compatibility matrix.</p></body></html>"))
	}))
	defer srv.Close()

	doc, err := NewPageExtractor().Extract(context.Background(), srv.URL, domain.ProductCabling)

	require.NoError(t, err)
	assert.Empty(t, doc.Title)
	assert.Equal(t, "Cable compatibility matrix.", doc.BodyText)
}
