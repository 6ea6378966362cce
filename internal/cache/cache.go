// cache — кэш ответов запросов-чтения с инвалидацией по тегам.
//
// Каждая запись хранит тело ответа и набор тегов, которые она «предоставляет».
// Мутация после успеха инвалидирует теги:
//   - тег с ID (Skills:42) удаляет записи, предоставившие ровно этот тег;
//   - тег без ID (Skills) удаляет все записи с любым тегом этого типа.
//
// Записи живут не дольше TTL; просроченные удаляются лениво при чтении и при Set.
package cache

import (
	"sync"
	"time"
)

// Типы тегов.
const (
	TypeAuth      = "Auth"
	TypeSkills    = "Skills"
	TypeProgress  = "Progress"
	TypeResources = "Resources"
	TypeSummaries = "Summaries"
	TypeUser      = "User"
)

// Служебные ID тегов.
const (
	IDList      = "LIST"
	IDStats     = "STATS"
	IDProfile   = "PROFILE"
	IDDashboard = "DASHBOARD"
	IDCurrent   = "CURRENT"
	IDLast      = "LAST"
)

// Tag — метка группы данных. Пустой ID означает «весь тип».
type Tag struct {
	Type string
	ID   string
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}

	return t.Type + ":" + t.ID
}

// matches сообщает, задевает ли инвалидация t предоставленный тег p.
func (t Tag) matches(p Tag) bool {
	if t.Type != p.Type {
		return false
	}

	return t.ID == "" || t.ID == p.ID
}

// Cache задаёт контракт кэша. Реализации безопасны для конкурентного использования.
type Cache interface {
	// Get возвращает тело ответа и признак попадания.
	Get(key string) ([]byte, bool)
	// Set сохраняет тело с тегами. ttl <= 0 — TTL кэша по умолчанию.
	Set(key string, body []byte, ttl time.Duration, tags ...Tag)
	// Invalidate удаляет записи, задетые хотя бы одним тегом, и возвращает их число.
	Invalidate(tags ...Tag) int
	// Reset очищает кэш полностью.
	Reset()
	// Len — число живых записей.
	Len() int
}

type entry struct {
	body      []byte
	tags      []Tag
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option настраивает кэш.
type Option func(*memoryCache)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *memoryCache) { c.now = now }
}

// New создаёт кэш в памяти с TTL по умолчанию ttl.
func New(ttl time.Duration, opts ...Option) Cache {
	c := &memoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return e.body, true
}

func (c *memoryCache) Set(key string, body []byte, ttl time.Duration, tags ...Tag) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl <= 0 {
		return
	}

	now := c.now()
	tcopy := append([]Tag(nil), tags...)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired(now)
	c.entries[key] = entry{body: body, tags: tcopy, expiresAt: now.Add(ttl)}
}

func (c *memoryCache) Invalidate(tags ...Tag) int {
	if len(tags) == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, e := range c.entries {
		if touched(tags, e.tags) {
			delete(c.entries, key)
			n++
		}
	}

	return n
}

func (c *memoryCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired(c.now())
	return len(c.entries)
}

// evictExpired вызывается под c.mu.
func (c *memoryCache) evictExpired(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func touched(invalidated, provided []Tag) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.matches(p) {
				return true
			}
		}
	}

	return false
}

// nop — кэш, который ничего не хранит (cache.disabled).
type nop struct{}

// NewNop возвращает выключенный кэш: каждый Get — промах.
func NewNop() Cache { return nop{} }

func (nop) Get(string) ([]byte, bool) { return nil, false }
func (nop) Set(string, []byte, time.Duration, ...Tag) {}
func (nop) Invalidate(...Tag) int { return 0 }
func (nop) Reset() {}
func (nop) Len() int { return 0 }
