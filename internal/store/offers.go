package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carscout/internal/domain"
)

type OfferRow struct {
	ID        int64    `json:"id"`
	RunID     string   `json:"runId"`
	Source    string   `json:"source"`
	Title     string   `json:"title"`
	Year      string   `json:"year,omitempty"`
	PricePLN  *float64 `json:"pricePLN,omitempty"`
	PriceEUR  *float64 `json:"priceEUR,omitempty"`
	Currency  string   `json:"currency"`
	Location  string   `json:"location"`
	URL       string   `json:"url"`
	Verdict   string   `json:"verdict"`
	Risky     bool     `json:"risky"`
	Notified  bool     `json:"notified"`
	FirstSeen string   `json:"firstSeen"`
}

// InsertOffer archives one evaluated offer. The unique content-signature
// index makes re-observations of the same ad a no-op; returns whether a
// row was actually added.
func InsertOffer(ctx context.Context, db *sql.DB, runID string, o domain.Offer) (added bool, err error) {
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO offers
  (run_id, source, title, year, price_pln, price_eur, currency, location, url, content_sig, verdict, risky, notified, first_seen)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,0,?);`,
		runID,
		string(o.Source),
		o.Title,
		o.Year,
		nullFloat(o.PricePLN),
		nullFloat(o.PriceEUR),
		string(o.Currency),
		o.Location,
		o.CanonicalURL,
		o.ContentSig,
		string(o.Verdict),
		o.Risky,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert offer: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkNotified flips the notified flag after confirmed delivery.
func MarkNotified(ctx context.Context, db *sql.DB, contentSig string) error {
	_, err := db.ExecContext(ctx, `
UPDATE offers SET notified = 1 WHERE content_sig = ?;`, contentSig)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// ListOffers returns the newest archived offers, most recent first.
func ListOffers(ctx context.Context, db *sql.DB, limit int) ([]OfferRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, run_id, source, title, year, price_pln, price_eur, currency, location, url, verdict, risky, notified, first_seen
FROM offers
ORDER BY first_seen DESC, id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OfferRow
	for rows.Next() {
		var o OfferRow
		var pln, eur sql.NullFloat64
		if err := rows.Scan(
			&o.ID, &o.RunID, &o.Source, &o.Title, &o.Year,
			&pln, &eur, &o.Currency, &o.Location, &o.URL,
			&o.Verdict, &o.Risky, &o.Notified, &o.FirstSeen,
		); err != nil {
			return nil, err
		}
		if pln.Valid {
			o.PricePLN = &pln.Float64
		}
		if eur.Valid {
			o.PriceEUR = &eur.Float64
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
