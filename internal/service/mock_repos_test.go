package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	"github.com/undarez/camper-splatchs-sub001/pkg/geocode"
	"github.com/undarez/camper-splatchs-sub001/pkg/mail"
	"github.com/undarez/camper-splatchs-sub001/pkg/moderation"
)

// ── shared in-memory store ──

type mockStore struct {
	seq      int
	users    map[string]*model.User
	stations map[string]*model.Station
	services map[string]*model.Service        // by station id
	parkings map[string]*model.ParkingDetails // by station id
	reviews  map[string]*model.Review
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*model.User),
		stations: make(map[string]*model.Station),
		services: make(map[string]*model.Service),
		parkings: make(map[string]*model.ParkingDetails),
		reviews:  make(map[string]*model.Review),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// ── Mock UserRepository ──

type mockUserRepo struct{ store *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.store.users {
		if strings.EqualFold(u.Email, user.Email) {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if user.UserID == "" {
		user.UserID = m.store.nextID("user")
	}
	m.store.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.store.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.store.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.store.users[user.UserID] = user
	return nil
}

// ── Mock StationRepository ──

type mockStationRepo struct {
	store *mockStore

	errUpdateValidation error
	errDelete           error
}

func (m *mockStationRepo) Create(_ context.Context, station *model.Station) error {
	if station.StationID == "" {
		station.StationID = m.store.nextID("station")
	}
	now := time.Now()
	station.CreatedAt, station.UpdatedAt = now, now
	cp := *station
	cp.Author, cp.Service, cp.Parking = nil, nil, nil
	m.store.stations[station.StationID] = &cp
	return nil
}

// load returns a detached copy with associations attached, like a preload
func (m *mockStationRepo) load(id string) (*model.Station, error) {
	st, ok := m.store.stations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *st
	cp.Author = m.store.users[st.AuthorID]
	if svc, ok := m.store.services[id]; ok {
		c := *svc
		cp.Service = &c
	}
	if p, ok := m.store.parkings[id]; ok {
		c := *p
		cp.Parking = &c
	}
	return &cp, nil
}

func (m *mockStationRepo) GetByID(_ context.Context, id string) (*model.Station, error) {
	return m.load(id)
}

func (m *mockStationRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Station, error) {
	st, err := m.load(id)
	if err != nil {
		return nil, err
	}
	st.Author = nil
	return st, nil
}

func (m *mockStationRepo) matching(filter repository.StationFilter) []model.Station {
	var result []model.Station
	for id, st := range m.store.stations {
		if filter.Type != "" && st.Type != filter.Type {
			continue
		}
		if filter.City != "" && !strings.EqualFold(st.City, filter.City) {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && st.AuthorID != filter.AuthorID {
			continue
		}
		loaded, _ := m.load(id)
		result = append(result, *loaded)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StationID < result[j].StationID })
	if filter.OldestFirst {
		sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	}
	return result
}

func (m *mockStationRepo) List(_ context.Context, filter repository.StationFilter) ([]model.Station, int64, error) {
	all := m.matching(filter)
	total := int64(len(all))
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	end := len(all)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return all[filter.Offset:end], total, nil
}

func (m *mockStationRepo) ListAll(_ context.Context, filter repository.StationFilter) ([]model.Station, error) {
	return m.matching(filter), nil
}

func (m *mockStationRepo) UpdateValidation(_ context.Context, id string, status model.StationStatus, validatedAt *time.Time, validatedBy *string, updatedBy string) error {
	if m.errUpdateValidation != nil {
		return m.errUpdateValidation
	}
	st, ok := m.store.stations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	st.Status = status
	st.ValidatedAt = validatedAt
	st.ValidatedBy = validatedBy
	st.UpdatedBy = &updatedBy
	st.UpdatedAt = time.Now()
	return nil
}

func (m *mockStationRepo) Delete(_ context.Context, id string) error {
	if m.errDelete != nil {
		return m.errDelete
	}
	if _, ok := m.store.stations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.store.stations, id)
	return nil
}

// ── Mock ServiceRepository ──

type mockServiceRepo struct {
	store   *mockStore
	upserts int
}

func (m *mockServiceRepo) GetByStationID(_ context.Context, stationID string) (*model.Service, error) {
	if svc, ok := m.store.services[stationID]; ok {
		return svc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServiceRepo) Upsert(_ context.Context, svc *model.Service) error {
	m.upserts++
	if existing, ok := m.store.services[svc.StationID]; ok {
		svc.ServiceID = existing.ServiceID
	} else if svc.ServiceID == "" {
		svc.ServiceID = m.store.nextID("service")
	}
	cp := *svc
	m.store.services[svc.StationID] = &cp
	return nil
}

func (m *mockServiceRepo) DeleteByStationID(_ context.Context, stationID string) error {
	delete(m.store.services, stationID)
	return nil
}

// ── Mock ParkingRepository ──

type mockParkingRepo struct{ store *mockStore }

func (m *mockParkingRepo) GetByStationID(_ context.Context, stationID string) (*model.ParkingDetails, error) {
	if p, ok := m.store.parkings[stationID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParkingRepo) Upsert(_ context.Context, details *model.ParkingDetails) error {
	if details.ParkingDetailsID == "" {
		details.ParkingDetailsID = m.store.nextID("parking")
	}
	cp := *details
	m.store.parkings[details.StationID] = &cp
	return nil
}

func (m *mockParkingRepo) DeleteByStationID(_ context.Context, stationID string) error {
	delete(m.store.parkings, stationID)
	return nil
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct{ store *mockStore }

func (m *mockReviewRepo) Create(_ context.Context, review *model.Review) error {
	if review.ReviewID == "" {
		review.ReviewID = m.store.nextID("review")
	}
	review.CreatedAt = time.Now()
	cp := *review
	cp.Author = nil
	m.store.reviews[review.ReviewID] = &cp
	return nil
}

func (m *mockReviewRepo) byStation(stationID string) []model.Review {
	var result []model.Review
	for _, r := range m.store.reviews {
		if r.StationID == stationID {
			cp := *r
			cp.Author = m.store.users[r.AuthorID]
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReviewID < result[j].ReviewID })
	return result
}

func (m *mockReviewRepo) ListByStation(_ context.Context, stationID string, offset, limit int) ([]model.Review, error) {
	all := m.byStation(stationID)
	if offset >= len(all) {
		return nil, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (m *mockReviewRepo) Summary(_ context.Context, stationID string) (repository.RatingSummary, error) {
	all := m.byStation(stationID)
	if len(all) == 0 {
		return repository.RatingSummary{}, nil
	}
	sum := 0
	for _, r := range all {
		sum += r.Rating
	}
	return repository.RatingSummary{Average: float64(sum) / float64(len(all)), Count: int64(len(all))}, nil
}

func (m *mockReviewRepo) DeleteByStationID(_ context.Context, stationID string) error {
	for id, r := range m.store.reviews {
		if r.StationID == stationID {
			delete(m.store.reviews, id)
		}
	}
	return nil
}

// ── fake collaborators ──

type fakeCache struct {
	data    map[string][]byte
	deletes int
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.deletes++
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// fakeBlacklist set-if-absent like the Redis implementation
type fakeBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeBlacklist() *fakeBlacklist { return &fakeBlacklist{revoked: make(map[string]bool)} }

func (b *fakeBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked[jti] {
		return false, nil
	}
	b.revoked[jti] = true
	return true, nil
}

// fakeEncrypter reversible prefix "cipher:"; err forces failure
type fakeEncrypter struct{ err error }

func (e *fakeEncrypter) Encrypt(plaintext string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "cipher:" + plaintext, nil
}

func (e *fakeEncrypter) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "cipher:") {
		return "", errors.New("malformed")
	}
	return strings.TrimPrefix(ciphertext, "cipher:"), nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeGeocoder struct {
	result *geocode.Result
	err    error
	calls  int
}

func (g *fakeGeocoder) Geocode(_ context.Context, _, _ string) (*geocode.Result, error) {
	g.calls++
	return g.result, g.err
}

// ── test environment ──

const (
	testAdminEmail   = "admin@splashcamper.fr"
	testContactEmail = "contact@splashcamper.fr"
)

type testEnv struct {
	cfg      *config.Config
	store    *mockStore
	repo     *repository.Repository
	stations *mockStationRepo
	services *mockServiceRepo
	policy   *policy.Policy
	cache    *fakeCache
	enc      *fakeEncrypter
	mailer   *fakeMailer
	geocoder *fakeGeocoder
	notifier NotificationService
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	store := newMockStore()
	stations := &mockStationRepo{store: store}
	services := &mockServiceRepo{store: store}
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "https://splashcamper.fr"},
		Auth:   config.AuthConfig{AdminEmails: []string{testAdminEmail}},
		Mail:   config.MailConfig{ContactAddress: testContactEmail},
		Review: config.ReviewConfig{MaxLength: 800, ForbiddenWords: []string{"arnaque", "escroc"}},
		Cache:  config.CacheConfig{StationListTTL: time.Minute},
	}
	logger := zap.NewNop()
	mailer := &fakeMailer{}
	return &testEnv{
		cfg:   cfg,
		store: store,
		repo: &repository.Repository{
			User:    &mockUserRepo{store: store},
			Station: stations,
			Service: services,
			Parking: &mockParkingRepo{store: store},
			Review:  &mockReviewRepo{store: store},
		},
		stations: stations,
		services: services,
		policy:   policy.New(cfg.Auth.AdminEmails),
		cache:    newFakeCache(),
		enc:      &fakeEncrypter{},
		mailer:   mailer,
		geocoder: &fakeGeocoder{},
		notifier: NewNotificationService(cfg.Server.BaseURL, mailer, cfg.Mail.Timeout, logger),
		logger:   logger,
	}
}

func (e *testEnv) stationService() StationService {
	return NewStationService(e.cfg, e.repo, e.policy, e.enc, e.geocoder, e.cache, e.notifier, e.logger)
}

func (e *testEnv) validationService(now func() time.Time) ValidationService {
	return NewValidationService(e.repo, e.policy, e.cache, e.notifier, now, e.logger)
}

func (e *testEnv) reviewService() ReviewService {
	filter := moderation.NewFilter(e.cfg.Review.MaxLength, e.cfg.Review.ForbiddenWords)
	return NewReviewService(e.cfg, e.repo, e.policy, filter, e.enc, e.logger)
}

// addUser seeds a user and returns the matching actor
func (e *testEnv) addUser(id, email, role string) *policy.Actor {
	e.store.users[id] = &model.User{UserID: id, Name: "User " + id, Email: email, Role: role}
	return &policy.Actor{UserID: id, Email: email, Role: role}
}

// addStation seeds a station directly in the store
func (e *testEnv) addStation(id string, typ model.StationType, status model.StationStatus, authorID string) *model.Station {
	st := &model.Station{
		StationID:  id,
		Name:       "Station " + id,
		Address:    "1 rue du Port",
		City:       "La Rochelle",
		PostalCode: "17000",
		Type:       typ,
		Status:     status,
		AuthorID:   authorID,
	}
	e.store.stations[id] = st
	return st
}
