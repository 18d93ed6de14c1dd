package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carscout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSendText(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegramWithBase("TOKEN", "42", srv.URL, srv.Client())
	require.NoError(t, tg.SendText(context.Background(), "hello"))

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Equal(t, "hello", gotBody["text"])
}

func TestTelegramErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(500)
			w.Write([]byte(`{"ok":false,"description":"boom"}`))
		}},
		{"api not ok", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			tg := NewTelegramWithBase("TOKEN", "42", srv.URL, srv.Client())
			assert.Error(t, tg.SendText(context.Background(), "x"))
			assert.Error(t, tg.SendLocation(context.Background(), 52.2, 21.0))
		})
	}
}

func TestDisabledNotifier(t *testing.T) {
	var d Disabled
	assert.False(t, d.Enabled())
	assert.Error(t, d.SendText(context.Background(), "x"), "errors so nothing is marked sent")
}

func TestFormatMessage(t *testing.T) {
	pln := 42500.0
	eur := 9900.0
	o := domain.Offer{
		RawListing: domain.RawListing{
			Title:    "Nissan 350Z",
			Year:     "2004",
			Location: "Warszawa, mazowieckie",
			Source:   domain.SourceOLX,
		},
		CanonicalURL: "https://www.olx.pl/d/oferta/nissan-350z-CID5",
		PricePLN:     &pln,
		PriceEUR:     &eur,
		Verdict:      domain.VerdictBargain,
	}

	msg := FormatMessage(o)
	assert.Contains(t, msg, "🇵🇱 🚗 Nissan 350Z")
	assert.Contains(t, msg, "📅 Rocznik: 2004")
	assert.Contains(t, msg, "42 500 PLN (~9 900 EUR)")
	assert.Contains(t, msg, "✅ OKAZJA")
	assert.Contains(t, msg, "📱 Otwórz w OLX:\nhttps://www.olx.pl/d/oferta/nissan-350z-CID5")
}

func TestFormatMessageUnknownPrice(t *testing.T) {
	o := domain.Offer{
		RawListing:   domain.RawListing{Title: "350z", Location: domain.UnknownLocation, Source: domain.SourceMobileDe},
		CanonicalURL: "https://www.mobile.de/x",
		Verdict:      domain.VerdictUnknownPrice,
	}
	msg := FormatMessage(o)
	assert.Contains(t, msg, "💰 Cena: —")
	assert.Contains(t, msg, "🇩🇪")
}
