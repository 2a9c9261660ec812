package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

func newSubscription(userID, title string, dueDay int) models.Subscription {
	return models.Subscription{
		UserID: userID,
		Title:  title,
		Price:  decimal.NewNullDecimal(decimal.RequireFromString("9.99")),
		BillingRule: models.BillingRule{
			DueType:       models.DueMonthly,
			DueDay:        dueDay,
			StartDatetime: calendar.Date(2025, 1, dueDay),
		},
	}
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := uuid.New().String()
	companyID := s.AddCompany("Netflix")

	sub := newSubscription(userID, "Netflix", 15)
	sub.Category = models.HasCategory(1, "")
	sub.Company = models.FormalCompany(companyID, "")
	sub.StartDatetime = time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC)

	id, err := s.Create(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.Read(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, models.HasCategory(1, "Streaming"), got.Category)
	assert.Equal(t, models.FormalCompany(companyID, "Netflix"), got.Company)
	assert.Equal(t, calendar.Date(2025, 1, 15), got.StartDatetime)

	got.Title = "Netflix 4K"
	got.Company = models.CustomCompanyName("Netflix B.V.")
	n, err := s.Update(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	updated, err := s.Read(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, "Netflix 4K", updated.Title)
	assert.Equal(t, models.CustomCompanyName("Netflix B.V."), updated.Company)

	n, err = s.Update(ctx, newSubscription(uuid.New().String(), "x", 1))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.Remove(ctx, uuid.New().String(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.Remove(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Read(ctx, userID, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_UnknownReference(t *testing.T) {
	s := New()
	sub := newSubscription(uuid.New().String(), "x", 1)
	sub.Company = models.FormalCompany(42, "")

	_, err := s.Create(context.Background(), sub)
	assert.ErrorIs(t, err, storage.ErrUnknownReference)
}

func TestStore_InvalidUserID(t *testing.T) {
	s := New()
	_, err := s.List(context.Background(), "not-a-uuid")
	assert.Error(t, err)
}

func TestStore_ListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := uuid.New().String()

	end := calendar.Date(2025, 6, 1)
	sub := newSubscription(userID, "Spotify", 1)
	sub.EndDatetime = &end
	_, err := s.Create(ctx, sub)
	require.NoError(t, err)

	snapshot, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	_, err = s.Create(ctx, newSubscription(userID, "Deezer", 2))
	require.NoError(t, err)
	assert.Len(t, snapshot, 1, "earlier snapshot must not see later writes")

	snapshot[0].Title = "changed"
	*snapshot[0].EndDatetime = calendar.Date(2030, 1, 1)

	fresh, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "Spotify", fresh[0].Title)
	assert.Equal(t, end, *fresh[0].EndDatetime)
	assert.Equal(t, "Deezer", fresh[1].Title)

	empty, err := s.List(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()
	userID := uuid.New().String()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, newSubscription(userID, "sub", i%28+1))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.List(ctx, userID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestStore_FindSimilar(t *testing.T) {
	ctx := context.Background()
	s := New()
	netflix := s.AddCompany("Netflix")
	streaming := models.HasCategory(1, "")

	mustAdd := func(title, price string, category models.Category, company models.Company) {
		_, err := s.AddOffer(models.Offer{
			Title:    title,
			Price:    decimal.RequireFromString(price),
			Category: category,
			Company:  company,
		})
		require.NoError(t, err)
	}
	mustAdd("Cheap streaming", "5.99", streaming, models.NoCompany())
	mustAdd("Netflix Basic", "7.99", models.NoCategory(), models.FormalCompany(netflix, ""))
	mustAdd("Premium streaming", "19.99", streaming, models.NoCompany())
	mustAdd("Mobile 10GB", "4.99", models.HasCategory(2, ""), models.NoCompany())
	mustAdd("netflix bundle", "3.00", models.NoCategory(), models.NoCompany())

	got, err := s.FindSimilar(ctx, models.OfferQuery{
		Title:    "Netflix",
		Category: streaming,
		MaxPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.99")),
		Limit:    10,
	})
	require.NoError(t, err)
	var titles []string
	for _, o := range got {
		titles = append(titles, o.Title)
	}
	assert.Equal(t, []string{"netflix bundle", "Cheap streaming", "Netflix Basic"}, titles)
	assert.Equal(t, models.HasCategory(1, "Streaming"), got[1].Category)

	got, err = s.FindSimilar(ctx, models.OfferQuery{Category: streaming, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cheap streaming", got[0].Title)

	got, err = s.FindSimilar(ctx, models.OfferQuery{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_SeedDefaultCatalog(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Seed(DefaultCatalog))

	// повторное имя не создает новую компанию
	assert.Equal(t, int64(1), s.AddCompany("Netflix"))

	got, err := s.FindSimilar(ctx, models.OfferQuery{
		Category: models.HasCategory(1, ""),
		MaxPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.99")),
		Limit:    2,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Netflix Basic", got[0].Title)
	assert.Equal(t, models.HasCategory(1, "Streaming"), got[0].Category)
	assert.Equal(t, models.FormalCompany(1, "Netflix"), got[0].Company)
	assert.Equal(t, "Apple TV+", got[1].Title)

	id, err := s.Create(ctx, models.Subscription{
		UserID:  uuid.New().String(),
		Title:   "Spotify",
		Company: models.FormalCompany(2, ""),
		BillingRule: models.BillingRule{
			DueType:       models.DueMonthly,
			DueDay:        3,
			StartDatetime: calendar.Date(2025, 1, 3),
		},
	})
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestStore_SeedInvalidPrice(t *testing.T) {
	err := New().Seed(Catalog{Offers: []CatalogOffer{{Title: "Broken", Price: "free"}}})
	assert.Error(t, err)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().List(ctx, uuid.New().String())
	assert.ErrorIs(t, err, context.Canceled)
}
