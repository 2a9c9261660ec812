package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

func newSubscription(userUID, title string, price string, dueDay int) models.Subscription {
	sub := models.Subscription{
		UserID: userUID,
		Title:  title,
		BillingRule: models.BillingRule{
			DueType:       models.DueMonthly,
			DueDay:        dueDay,
			StartDatetime: calendar.Date(2025, 1, dueDay),
		},
		Category: models.NoCategory(),
		Company:  models.NoCompany(),
	}
	if price != "" {
		sub.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return sub
}

func TestStorage_CreateReadUpdateRemove(t *testing.T) {
	st, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(st)

	userUID := uuid.New().String()
	categoryID := factory.CreateCategory(t, "Streaming")
	companyID := factory.CreateCompany(t, "Netflix")

	end := calendar.Date(2025, 12, 15)
	sub := newSubscription(userUID, "Netflix", "12.99", 15)
	sub.EndDatetime = &end
	sub.Category = models.HasCategory(categoryID, "")
	sub.Company = models.FormalCompany(companyID, "")

	id, err := st.Create(ctx, sub)
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := st.Read(ctx, userUID, id)
	require.NoError(t, err)
	assert.Equal(t, "Netflix", got.Title)
	assert.True(t, got.Price.Valid)
	assert.True(t, got.Price.Decimal.Equal(decimal.RequireFromString("12.99")))
	assert.Equal(t, models.DueMonthly, got.DueType)
	assert.Equal(t, 15, got.DueDay)
	assert.Equal(t, calendar.Date(2025, 1, 15), got.StartDatetime)
	require.NotNil(t, got.EndDatetime)
	assert.Equal(t, end, *got.EndDatetime)
	assert.Equal(t, models.HasCategory(categoryID, "Streaming"), got.Category)
	assert.Equal(t, models.FormalCompany(companyID, "Netflix"), got.Company)

	got.Title = "Netflix Premium"
	got.Price = decimal.NullDecimal{}
	got.Company = models.CustomCompanyName("École de musique")
	got.Category = models.NoCategory()
	got.EndDatetime = nil
	n, err := st.Update(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	updated, err := st.Read(ctx, userUID, id)
	require.NoError(t, err)
	assert.Equal(t, "Netflix Premium", updated.Title)
	assert.False(t, updated.Price.Valid)
	assert.Nil(t, updated.EndDatetime)
	assert.Equal(t, models.CustomCompanyName("École de musique"), updated.Company)
	assert.False(t, updated.Category.Assigned())

	// чужой пользователь не видит и не удаляет подписку
	_, err = st.Read(ctx, uuid.New().String(), id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	n, err = st.Remove(ctx, uuid.New().String(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = st.Remove(ctx, userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = st.Read(ctx, userUID, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_List(t *testing.T) {
	st, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(st)

	user1 := uuid.New().String()
	user2 := uuid.New().String()

	_, err := st.Create(ctx, newSubscription(user1, "Netflix", "12.99", 10))
	require.NoError(t, err)
	_, err = st.Create(ctx, newSubscription(user1, "Spotify", "9.99", 12))
	require.NoError(t, err)
	_, err = st.Create(ctx, newSubscription(user2, "Disney+", "8", 1))
	require.NoError(t, err)
	brokenID := factory.CreateRawSubscription(t, user1, "Broken", "weekly", 0, calendar.Date(2025, 1, 1))

	got, err := st.List(ctx, user1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Netflix", got[0].Title)
	assert.Equal(t, "Spotify", got[1].Title)
	assert.Equal(t, brokenID, got[2].ID)
	assert.Equal(t, models.DueType("weekly"), got[2].DueType)
	assert.Equal(t, 0, got[2].DueDay)

	empty, err := st.List(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStorage_FindSimilar(t *testing.T) {
	st, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(st)

	streaming := factory.CreateCategory(t, "Streaming")
	telecom := factory.CreateCategory(t, "Telecom")
	netflix := factory.CreateCompany(t, "Netflix")

	factory.CreateOffer(t, "Cheap streaming", "5.99", &streaming, nil)
	factory.CreateOffer(t, "Netflix Basic", "7.99", nil, &netflix)
	factory.CreateOffer(t, "Premium streaming", "19.99", &streaming, nil)
	factory.CreateOffer(t, "Mobile 10GB", "4.99", &telecom, nil)
	factory.CreateOffer(t, "Netflix 100% bundle", "3.00", nil, nil)

	got, err := st.FindSimilar(ctx, models.OfferQuery{
		Title:    "Netflix",
		Category: models.HasCategory(streaming, "Streaming"),
		MaxPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.99")),
		Limit:    10,
	})
	require.NoError(t, err)

	var titles []string
	for _, o := range got {
		titles = append(titles, o.Title)
	}
	assert.Equal(t, []string{"Netflix 100% bundle", "Cheap streaming", "Netflix Basic"}, titles)
	assert.Equal(t, models.HasCategory(streaming, "Streaming"), got[1].Category)
	assert.Equal(t, models.FormalCompany(netflix, "Netflix"), got[2].Company)

	got, err = st.FindSimilar(ctx, models.OfferQuery{Company: models.FormalCompany(netflix, ""), Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Netflix Basic", got[0].Title)

	got, err = st.FindSimilar(ctx, models.OfferQuery{Title: "100%", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestStorage_CreateUnknownReference(t *testing.T) {
	st, cleanup := setupTestDatabase(t)
	defer cleanup()

	sub := newSubscription(uuid.New().String(), "Ghost", "1", 1)
	sub.Category = models.HasCategory(999999, "")
	_, err := st.Create(context.Background(), sub)
	assert.ErrorIs(t, err, storage.ErrUnknownReference)
}
