package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var bookSelectors = Selectors{
	Article: "article.product_pod",
	Title:   "h3 > a",
	Link:    "h3 > a",
	Price:   "div.product_price > p.price_color",
}

const bookMarkup = `<html><body>
<article class="product_pod">
	<h3><a href="catalogue/a-light-in-the-attic_1000/index.html" title="A Light in the Attic">A Light in the ...</a></h3>
	<div class="product_price"><p class="price_color">£51.77</p></div>
</article>
<article class="product_pod">
	<h3><a href="catalogue/tipping-the-velvet_999/index.html" title="Tipping the Velvet">Tipping the Velvet</a></h3>
	<div class="product_price"><p class="price_color">£53.74</p></div>
</article>
<article class="product_pod">
	<h3><a href="catalogue/soumission_998/index.html" title="Soumission">Soumission</a></h3>
	<div class="product_price"><p class="price_color">£50.10</p></div>
</article>
</body></html>`

func TestExtract_YieldsOneRecordPerArticle(t *testing.T) {
	t.Parallel()

	records, err := Extract(bookMarkup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "A Light in the Attic", records[0].Title)
	require.Equal(t,
		"http://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
		records[0].URL,
	)
	require.Equal(t, "£51.77", records[0].Price)
}

func TestExtract_TitleFallsBackToText(t *testing.T) {
	t.Parallel()

	markup := `<article class="product_pod">
		<h3><a href="catalogue/x/index.html">  Fallback Title  </a></h3>
	</article>`
	records, err := Extract(markup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Fallback Title", records[0].Title)
	// No price node matched; price stays empty without dropping the record.
	require.Empty(t, records[0].Price)
}

func TestExtract_DropsCandidateWithWhitespaceTitle(t *testing.T) {
	t.Parallel()

	markup := `<article class="product_pod">
		<h3><a href="catalogue/x/index.html">   </a></h3>
	</article>`
	records, err := Extract(markup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestExtract_DropsCandidateWithoutLink(t *testing.T) {
	t.Parallel()

	markup := `<article class="product_pod">
		<h3><a title="No Href">No Href</a></h3>
	</article>
	<article class="product_pod">
		<h3><a href="catalogue/ok/index.html" title="Kept">Kept</a></h3>
	</article>`
	records, err := Extract(markup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Kept", records[0].Title)
}

func TestExtract_ResolvesAbsoluteLinksUnchanged(t *testing.T) {
	t.Parallel()

	markup := `<article class="product_pod">
		<h3><a href="https://other.example/item" title="Elsewhere">Elsewhere</a></h3>
	</article>`
	records, err := Extract(markup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "https://other.example/item", records[0].URL)
}

func TestExtract_NoPriceSelectorOmitsPrice(t *testing.T) {
	t.Parallel()

	sel := bookSelectors
	sel.Price = ""
	records, err := Extract(bookMarkup, "http://books.toscrape.com/", sel)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		require.Empty(t, rec.Price)
	}
}

func TestExtract_IsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := Extract(bookMarkup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	second, err := Extract(bookMarkup, "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestExtract_NoMatchesYieldsEmpty(t *testing.T) {
	t.Parallel()

	records, err := Extract("<html><body><p>nothing here</p></body></html>", "http://books.toscrape.com/", bookSelectors)
	require.NoError(t, err)
	require.Empty(t, records)
}
