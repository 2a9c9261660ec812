// Package memory реализует хранилище подписок в памяти процесса.
// Данные пользователя хранятся как неизменяемый срез: запись строит новый
// срез и подменяет его целиком, поэтому читатели работают со снимком.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/calendar"
	"github.com/magabrotheeeer/subscription-calendar/internal/models"
	"github.com/magabrotheeeer/subscription-calendar/internal/storage"
)

// DefaultCategories категории, с которыми создается хранилище.
var DefaultCategories = []string{"Streaming", "Telecom", "Insurance", "Music", "Software"}

// CatalogOffer предложение каталога. Категория и компания задаются названиями.
type CatalogOffer struct {
	Title    string
	Price    string
	Category string
	Company  string
	URL      string
}

// Catalog начальное наполнение справочников.
type Catalog struct {
	Companies []string
	Offers    []CatalogOffer
}

// DefaultCatalog каталог, которым наполняется хранилище в памяти при запуске приложения.
var DefaultCatalog = Catalog{
	Companies: []string{"Netflix", "Spotify", "Apple", "YouTube", "JetBrains"},
	Offers: []CatalogOffer{
		{Title: "Netflix Basic", Price: "7.99", Category: "Streaming", Company: "Netflix", URL: "https://www.netflix.com/signup"},
		{Title: "YouTube Premium", Price: "11.99", Category: "Streaming", Company: "YouTube", URL: "https://www.youtube.com/premium"},
		{Title: "Apple TV+", Price: "9.99", Category: "Streaming", Company: "Apple", URL: "https://tv.apple.com"},
		{Title: "Spotify Individual", Price: "10.99", Category: "Music", Company: "Spotify", URL: "https://www.spotify.com/premium"},
		{Title: "Apple Music", Price: "10.99", Category: "Music", Company: "Apple", URL: "https://www.apple.com/apple-music"},
		{Title: "YouTube Music", Price: "9.99", Category: "Music", Company: "YouTube", URL: "https://music.youtube.com"},
		{Title: "JetBrains All Products Pack", Price: "28.90", Category: "Software", Company: "JetBrains", URL: "https://www.jetbrains.com/all"},
	},
}

// Store хранилище подписок и предложений в памяти.
type Store struct {
	mu         sync.RWMutex
	lastID     int64
	byUser     map[string][]models.Subscription
	categories map[int64]string
	companies  map[int64]string
	offers     []models.Offer
}

// New создает хранилище с категориями DefaultCategories.
func New() *Store {
	s := &Store{
		byUser:     make(map[string][]models.Subscription),
		categories: make(map[int64]string),
		companies:  make(map[int64]string),
	}
	for _, name := range DefaultCategories {
		s.AddCategory(name)
	}
	return s
}

// AddCategory добавляет категорию в каталог и возвращает её ID.
// Повторное имя возвращает существующий ID.
func (s *Store) AddCategory(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addName(s.categories, name)
}

// AddCompany добавляет компанию в каталог и возвращает её ID.
func (s *Store) AddCompany(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addName(s.companies, name)
}

func addName(catalog map[int64]string, name string) int64 {
	var maxID int64
	for id, existing := range catalog {
		if existing == name {
			return id
		}
		maxID = max(maxID, id)
	}
	catalog[maxID+1] = name
	return maxID + 1
}

// Seed добавляет компании и предложения каталога.
// Неизвестные категории и компании предложений заводятся в справочниках.
func (s *Store) Seed(catalog Catalog) error {
	const op = "memory.Seed"
	for _, name := range catalog.Companies {
		s.AddCompany(name)
	}
	for _, item := range catalog.Offers {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return fmt.Errorf("%s: offer %q: %w", op, item.Title, err)
		}
		offer := models.Offer{
			Title:    item.Title,
			Price:    price,
			Category: models.NoCategory(),
			Company:  models.NoCompany(),
			URL:      item.URL,
		}
		if item.Category != "" {
			offer.Category = models.HasCategory(s.AddCategory(item.Category), "")
		}
		if item.Company != "" {
			offer.Company = models.FormalCompany(s.AddCompany(item.Company), "")
		}
		if _, err := s.AddOffer(offer); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// AddOffer добавляет предложение и возвращает его ID.
func (s *Store) AddOffer(offer models.Offer) (int64, error) {
	const op = "memory.AddOffer"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolve(&offer.Category, &offer.Company); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	offer.ID = int64(len(s.offers) + 1)
	s.offers = append(s.offers, offer)
	return offer.ID, nil
}

// Create сохраняет подписку и возвращает её ID.
func (s *Store) Create(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "memory.Create"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	userID, err := userKey(sub.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolve(&sub.Category, &sub.Company); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.lastID++
	sub.ID = s.lastID
	sub.UserID = userID

	current := s.byUser[userID]
	next := make([]models.Subscription, len(current), len(current)+1)
	copy(next, current)
	s.byUser[userID] = append(next, normalize(sub))
	return sub.ID, nil
}

// Read возвращает копию подписки пользователя.
func (s *Store) Read(ctx context.Context, userID string, id int64) (*models.Subscription, error) {
	const op = "memory.Read"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	key, err := userKey(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	snapshot := s.byUser[key]
	s.mu.RUnlock()

	i := slices.IndexFunc(snapshot, func(sub models.Subscription) bool { return sub.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	sub := clone(snapshot[i])
	return &sub, nil
}

// Update заменяет подписку и возвращает количество измененных записей.
func (s *Store) Update(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "memory.Update"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	userID, err := userKey(sub.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[userID]
	i := slices.IndexFunc(current, func(existing models.Subscription) bool { return existing.ID == sub.ID })
	if i < 0 {
		return 0, nil
	}
	if err := s.resolve(&sub.Category, &sub.Company); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	sub.UserID = userID

	next := slices.Clone(current)
	next[i] = normalize(sub)
	s.byUser[userID] = next
	return 1, nil
}

// Remove удаляет подписку и возвращает количество удаленных записей.
func (s *Store) Remove(ctx context.Context, userID string, id int64) (int, error) {
	const op = "memory.Remove"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	key, err := userKey(userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[key]
	i := slices.IndexFunc(current, func(sub models.Subscription) bool { return sub.ID == id })
	if i < 0 {
		return 0, nil
	}
	// slices.Delete изменил бы срез, который могут читать другие горутины
	next := make([]models.Subscription, 0, len(current)-1)
	next = append(next, current[:i]...)
	next = append(next, current[i+1:]...)
	s.byUser[key] = next
	return 1, nil
}

// List возвращает снимок подписок пользователя в порядке создания.
func (s *Store) List(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "memory.List"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	key, err := userKey(userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	snapshot := s.byUser[key]
	s.mu.RUnlock()

	result := make([]models.Subscription, 0, len(snapshot))
	for _, sub := range snapshot {
		result = append(result, clone(sub))
	}
	return result, nil
}

// FindSimilar ищет предложения по тем же правилам, что и хранилище PostgreSQL.
func (s *Store) FindSimilar(ctx context.Context, q models.OfferQuery) ([]models.Offer, error) {
	const op = "memory.FindSimilar"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	title := strings.ToLower(strings.TrimSpace(q.Title))

	s.mu.RLock()
	result := make([]models.Offer, 0)
	for _, offer := range s.offers {
		matches := (q.Category.Assigned() && offer.Category.Assigned() && offer.Category.ID == q.Category.ID) ||
			(q.Company.Formal() && offer.Company.Formal() && offer.Company.ID == q.Company.ID) ||
			(title != "" && strings.Contains(strings.ToLower(offer.Title), title))
		if !matches {
			continue
		}
		if q.MaxPrice.Valid && !offer.Price.LessThan(q.MaxPrice.Decimal) {
			continue
		}
		result = append(result, offer)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b models.Offer) int {
		if c := a.Price.Cmp(b.Price); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if q.Limit >= 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// resolve проверяет ссылки каталога и подставляет их названия. Вызывается под s.mu.
func (s *Store) resolve(category *models.Category, company *models.Company) error {
	switch {
	case category.Assigned():
		name, ok := s.categories[category.ID]
		if !ok {
			return storage.ErrUnknownReference
		}
		*category = models.HasCategory(category.ID, name)
	default:
		*category = models.NoCategory()
	}

	switch company.Kind {
	case models.CompanyFormal:
		name, ok := s.companies[company.ID]
		if !ok {
			return storage.ErrUnknownReference
		}
		*company = models.FormalCompany(company.ID, name)
	case models.CompanyCustom:
		if company.Name == "" {
			*company = models.NoCompany()
		}
	default:
		*company = models.NoCompany()
	}
	return nil
}

func userKey(userID string) (string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return uid.String(), nil
}

// normalize приводит даты к календарным дням, как это делает колонка DATE.
func normalize(sub models.Subscription) models.Subscription {
	sub.StartDatetime = calendar.Day(sub.StartDatetime)
	if sub.EndDatetime != nil {
		end := calendar.Day(*sub.EndDatetime)
		sub.EndDatetime = &end
	}
	return sub
}

func clone(sub models.Subscription) models.Subscription {
	if sub.EndDatetime != nil {
		end := *sub.EndDatetime
		sub.EndDatetime = &end
	}
	return sub
}
