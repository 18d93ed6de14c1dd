package store

import (
	"context"
	"path/filepath"
	"testing"

	"carscout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "carscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func testOffer(sig string) domain.Offer {
	pln := 42000.0
	return domain.Offer{
		RawListing: domain.RawListing{
			Title:    "Nissan 350Z",
			Location: "Warszawa",
			Currency: domain.PLN,
			Source:   domain.SourceOLX,
		},
		CanonicalURL: "https://www.olx.pl/d/oferta/x-" + sig,
		ContentSig:   sig,
		PricePLN:     &pln,
		Verdict:      domain.VerdictBargain,
	}
}

func TestInsertOfferDedupesOnContentSig(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	added, err := InsertOffer(ctx, db.Pool, "run-1", testOffer("aaa"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = InsertOffer(ctx, db.Pool, "run-2", testOffer("aaa"))
	require.NoError(t, err)
	assert.False(t, added, "same content signature archives once")

	offers, err := ListOffers(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "run-1", offers[0].RunID)
	require.NotNil(t, offers[0].PricePLN)
	assert.InDelta(t, 42000.0, *offers[0].PricePLN, 1e-9)
	assert.Nil(t, offers[0].PriceEUR)
}

func TestMarkNotified(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := InsertOffer(ctx, db.Pool, "run-1", testOffer("bbb"))
	require.NoError(t, err)
	require.NoError(t, MarkNotified(ctx, db.Pool, "bbb"))

	offers, err := ListOffers(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.True(t, offers[0].Notified)
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, StartRun(ctx, db.Pool, "run-1"))
	require.NoError(t, FinishRun(ctx, db.Pool, RunRow{
		ID: "run-1", Stubs: 12, Checked: 10, AlreadySent: 3, Filtered: 2, Sent: 4, Errors: 1,
	}))

	runs, err := ListRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 12, runs[0].Stubs)
	assert.Equal(t, 4, runs[0].Sent)
	assert.NotEmpty(t, runs[0].FinishedAt)
}
