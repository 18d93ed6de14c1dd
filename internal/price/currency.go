package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"carscout/internal/domain"
)

// NBPBaseURL is the National Bank of Poland exchange-rate API.
const NBPBaseURL = "https://api.nbp.pl"

// Rates fetches the one reference rate this system needs: EUR→PLN.
type Rates struct {
	hc      *http.Client
	baseURL string
}

func NewRates(hc *http.Client) *Rates {
	return &Rates{hc: hc, baseURL: NBPBaseURL}
}

// NewRatesWithBase points the client at a different API root (tests).
func NewRatesWithBase(hc *http.Client, baseURL string) *Rates {
	return &Rates{hc: hc, baseURL: baseURL}
}

type nbpResponse struct {
	Rates []struct {
		Mid float64 `json:"mid"`
	} `json:"rates"`
}

// FetchEURPLN queries the NBP table-A mid rate. Called once per run; on
// any failure the caller substitutes the configured fallback constant
// instead of failing the run.
func (r *Rates) FetchEURPLN(ctx context.Context) (float64, error) {
	u := r.baseURL + "/api/exchangerates/rates/A/EUR/?format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	res, err := r.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("nbp fetch: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("nbp status %d", res.StatusCode)
	}

	var body nbpResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("nbp decode: %w", err)
	}
	if len(body.Rates) == 0 || body.Rates[len(body.Rates)-1].Mid <= 0 {
		return 0, fmt.Errorf("nbp: no usable rate in response")
	}
	return body.Rates[len(body.Rates)-1].Mid, nil
}

// Convert moves an amount between EUR and PLN using the EUR→PLN scalar.
// Identity when the currencies match. Unknown currencies pass through
// unchanged; the caller treats such prices as unknown anyway.
func Convert(amount float64, from, to domain.Currency, eurPLN float64) float64 {
	if from == to || eurPLN <= 0 {
		return amount
	}
	switch {
	case from == domain.EUR && to == domain.PLN:
		return amount * eurPLN
	case from == domain.PLN && to == domain.EUR:
		return amount / eurPLN
	default:
		return amount
	}
}
