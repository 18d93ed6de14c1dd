package otomoto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carscout/internal/domain"
)

const nextDataSearch = `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"ads":[
  {"url":"https://www.otomoto.pl/oferta/nissan-350z-pierwszy-wlasciciel-ID6abc.html"},
  {"url":"/oferta/nissan-350z-po-liftingu-ID6def"},
  {"url":"https://www.otomoto.pl/oferta/nissan-350z-pierwszy-wlasciciel-ID6abc.html?suggested=1"},
  {"url":"https://www.otomoto.pl/osobowe/nissan/"}
]}}}
</script>
</body></html>`

func TestListingLinksFromNextData(t *testing.T) {
	a := New("https://www.otomoto.pl/osobowe/nissan/350z")
	links := a.ListingLinks(nextDataSearch)

	require.Len(t, links, 2)
	assert.Equal(t, "https://www.otomoto.pl/oferta/nissan-350z-pierwszy-wlasciciel-ID6abc", links[0])
	assert.Equal(t, "https://www.otomoto.pl/oferta/nissan-350z-po-liftingu-ID6def", links[1])
}

func TestListingLinksAnchorFallback(t *testing.T) {
	a := New("")
	page := `<html><body>
<a href="/oferta/nissan-350z-ID6xyz.html">Nissan</a>
<a href="/osobowe/nissan/">kategoria</a>
</body></html>`

	links := a.ListingLinks(page)
	require.Len(t, links, 1)
	assert.Equal(t, "https://www.otomoto.pl/oferta/nissan-350z-ID6xyz", links[0])
}

const nextDataDetail = `<html><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"advert":{
  "title":"Nissan 350Z 3.5 V6",
  "price":{"value":46500},
  "location":{"city":"Wrocław","region":"dolnośląskie"},
  "mileage":189000
}}}}
</script>
<h1>nagłówek HTML, nieużywany</h1>
</body></html>`

func TestExtractFromNextData(t *testing.T) {
	a := New("")
	raw, err := a.Extract(nextDataDetail, "https://www.otomoto.pl/oferta/nissan-350z-ID6abc")
	require.NoError(t, err)

	assert.Equal(t, "Nissan 350Z 3.5 V6", raw.Title)
	require.NotNil(t, raw.PriceNum)
	assert.InDelta(t, 46500, *raw.PriceNum, 1e-9)
	assert.Equal(t, "Wrocław, dolnośląskie", raw.Location)
	assert.Equal(t, domain.PLN, raw.Currency)
}

func TestExtractHTMLFallback(t *testing.T) {
	a := New("")
	page := `<html><body>
<h1>Nissan 350Z Nismo</h1>
<div>Cena 52 900 PLN</div>
</body></html>`

	raw, err := a.Extract(page, "https://www.otomoto.pl/oferta/x")
	require.NoError(t, err)
	assert.Equal(t, "Nissan 350Z Nismo", raw.Title)
	assert.Equal(t, "52 900", raw.PriceText)
}

func TestDataPriceIgnoresImplausibleNumbers(t *testing.T) {
	// Mileage and engine-size numbers share the same key names; anything
	// at or under the plausibility floor is not a car price.
	var data any = map[string]any{
		"price": map[string]any{"value": 350.0},
		"inner": map[string]any{"amount": "46 500 zł"},
	}
	p := dataPrice(data)
	require.NotNil(t, p)
	assert.InDelta(t, 46500, *p, 1e-9)
}
