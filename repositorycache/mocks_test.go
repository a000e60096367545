package repositorycache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"github.com/goliatone/go-contacts-cache/cache"
	"github.com/goliatone/go-contacts-cache/domain"
)

var quietLogger = &log.Logger{Handler: discard.Default, Level: log.ErrorLevel}

// memoryCache is a map backed cache.Store that records calls
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	calls   []string
	failGet error
	failSet error
	failDel error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Get "+key)
	if m.failGet != nil {
		return nil, false, m.failGet
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Set "+key)
	if m.failSet != nil {
		return m.failSet
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.calls = append(m.calls, "Delete "+k)
	}
	if m.failDel != nil {
		return m.failDel
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memoryCache) put(key, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(raw)
}

func (m *memoryCache) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memoryCache) clearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// callRecorder counts method calls under a mutex
type callRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *callRecorder) record(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[method]++
}

func (r *callRecorder) count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *callRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *callRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// fakeCategoryStore keeps categories in a map
type fakeCategoryStore struct {
	callRecorder
	mu   sync.RWMutex
	rows map[string]domain.Category
	fail map[string]error
	// beforeFind runs at the start of FindByID and FindAll when set
	beforeFind func(method string)
	// afterFindAll runs once FindAll has read its rows, before it returns
	afterFindAll func()
}

func newFakeCategoryStore(seed ...domain.Category) *fakeCategoryStore {
	s := &fakeCategoryStore{rows: map[string]domain.Category{}, fail: map[string]error{}}
	for _, c := range seed {
		s.rows[c.ID] = c
	}
	return s
}

func (s *fakeCategoryStore) enter(method string) error {
	s.record(method)
	if s.beforeFind != nil && (method == "FindByID" || method == "FindAll") {
		s.beforeFind(method)
	}
	return s.fail[method]
}

func (s *fakeCategoryStore) FindAll(ctx context.Context) ([]domain.Category, error) {
	if err := s.enter("FindAll"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.Category, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if s.afterFindAll != nil {
		s.afterFindAll()
	}
	return out, nil
}

func (s *fakeCategoryStore) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	if err := s.enter("FindByID"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.rows[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *fakeCategoryStore) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	if err := s.enter("FindByName"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.rows {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *fakeCategoryStore) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	if err := s.enter("Create"); err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.ID] = c
	return c, nil
}

func (s *fakeCategoryStore) Update(ctx context.Context, c domain.Category) (domain.Category, error) {
	if err := s.enter("Update"); err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.ID] = c
	return c, nil
}

func (s *fakeCategoryStore) Delete(ctx context.Context, id string) error {
	if err := s.enter("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// fakeContactStore keeps contacts in a map and joins categories from a
// fakeCategoryStore without recording calls on it
type fakeContactStore struct {
	callRecorder
	mu         sync.RWMutex
	rows       map[string]domain.Contact
	categories *fakeCategoryStore
	fail       map[string]error
	beforeFind func(method string)
}

func newFakeContactStore(categories *fakeCategoryStore) *fakeContactStore {
	return &fakeContactStore{rows: map[string]domain.Contact{}, categories: categories, fail: map[string]error{}}
}

func (s *fakeContactStore) enter(method string) error {
	s.record(method)
	if s.beforeFind != nil && (method == "FindByID" || method == "FindAll") {
		s.beforeFind(method)
	}
	return s.fail[method]
}

func (s *fakeContactStore) join(c domain.Contact) domain.ContactWithCategory {
	if c.CategoryID == "" || s.categories == nil {
		return c.WithCategory(nil)
	}
	s.categories.mu.RLock()
	defer s.categories.mu.RUnlock()
	if cat, ok := s.categories.rows[c.CategoryID]; ok {
		return c.WithCategory(&domain.CategoryRef{ID: cat.ID, Name: cat.Name})
	}
	return c.WithCategory(nil)
}

func (s *fakeContactStore) FindAll(ctx context.Context) ([]domain.ContactWithCategory, error) {
	if err := s.enter("FindAll"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ContactWithCategory, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, s.join(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeContactStore) FindByID(ctx context.Context, id string) (*domain.ContactWithCategory, error) {
	if err := s.enter("FindByID"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.rows[id]; ok {
		v := s.join(c)
		return &v, nil
	}
	return nil, nil
}

func (s *fakeContactStore) FindByEmail(ctx context.Context, email string) (*domain.ContactWithCategory, error) {
	if err := s.enter("FindByEmail"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.rows {
		if c.Email == email {
			v := s.join(c)
			return &v, nil
		}
	}
	return nil, nil
}

func (s *fakeContactStore) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	if err := s.enter("Create"); err != nil {
		return domain.Contact{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.ID] = c
	return c, nil
}

func (s *fakeContactStore) Update(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	if err := s.enter("Update"); err != nil {
		return domain.Contact{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[c.ID] = c
	return c, nil
}

func (s *fakeContactStore) Delete(ctx context.Context, id string) error {
	if err := s.enter("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// sequentialIDs returns an IDGenerator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

// fixture bundles both services over fake stores and one shared cache
type fixture struct {
	cache         *memoryCache
	categoryStore *fakeCategoryStore
	contactStore  *fakeContactStore
	categories    *CategoryService
	contacts      *ContactService
}

func newFixture(opts ...Option) *fixture {
	backend := newMemoryCache()
	categoryStore := newFakeCategoryStore()
	contactStore := newFakeContactStore(categoryStore)

	repoOpts := []cache.Option{cache.WithLogger(quietLogger)}
	categoryCache := cache.NewRepository[domain.Category](backend, CategoryPrefix, time.Hour, repoOpts...)
	contactCache := cache.NewRepository[domain.ContactWithCategory](backend, ContactPrefix, time.Hour, repoOpts...)

	categoryOpts := append([]Option{WithLogger(quietLogger), WithIDGenerator(sequentialIDs("cat"))}, opts...)
	contactOpts := append([]Option{WithLogger(quietLogger), WithIDGenerator(sequentialIDs("con"))}, opts...)

	categories := NewCategoryService(categoryStore, categoryCache, categoryOpts...)
	contacts := NewContactService(contactStore, categories, contactCache, contactOpts...)

	return &fixture{
		cache:         backend,
		categoryStore: categoryStore,
		contactStore:  contactStore,
		categories:    categories,
		contacts:      contacts,
	}
}
