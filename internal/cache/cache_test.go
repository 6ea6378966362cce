package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T) (Cache, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	return New(time.Minute, WithClock(clk.Now)), clk
}

func TestTag_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Skills", Tag{Type: TypeSkills}.String())
	require.Equal(t, "Skills:LIST", Tag{Type: TypeSkills, ID: IDList}.String())
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)

	_, ok := c.Get("k")
	require.False(t, ok)

	c.Set("k", []byte("v"), 0, Tag{Type: TypeSkills, ID: IDList})
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)
	require.Equal(t, 1, c.Len())
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()
	c, clk := newTestCache(t)

	c.Set("default", []byte("a"), 0)
	c.Set("short", []byte("b"), 10*time.Second)

	clk.Advance(10 * time.Second)
	_, ok := c.Get("short")
	require.False(t, ok, "запись с коротким TTL должна истечь")
	_, ok = c.Get("default")
	require.True(t, ok)

	clk.Advance(50 * time.Second)
	_, ok = c.Get("default")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestCache_Invalidate_ExactID(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)

	c.Set("list", []byte("l"), 0, Tag{TypeSkills, IDList}, Tag{TypeSkills, "1"}, Tag{TypeSkills, "2"})
	c.Set("skill1", []byte("1"), 0, Tag{TypeSkills, "1"})
	c.Set("skill2", []byte("2"), 0, Tag{TypeSkills, "2"})
	c.Set("stats", []byte("s"), 0, Tag{TypeSkills, IDStats})

	n := c.Invalidate(Tag{TypeSkills, "1"})
	require.Equal(t, 2, n, "список содержит навык 1 и тоже сбрасывается")

	_, ok := c.Get("skill2")
	require.True(t, ok)
	_, ok = c.Get("stats")
	require.True(t, ok)
	_, ok = c.Get("list")
	require.False(t, ok)
}

func TestCache_Invalidate_BareTypeMatchesAllIDs(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)

	c.Set("p1", []byte("1"), 0, Tag{TypeProgress, "1"})
	c.Set("pstats", []byte("s"), 0, Tag{TypeProgress, IDStats})
	c.Set("psum", []byte("s"), 0, Tag{TypeProgress, "SKILL_3"})
	c.Set("skills", []byte("x"), 0, Tag{TypeSkills, IDList})

	require.Equal(t, 3, c.Invalidate(Tag{Type: TypeProgress}))
	require.Equal(t, 1, c.Len())
	require.Equal(t, 0, c.Invalidate())
}

func TestCache_Reset(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(t)

	for i := 0; i < 5; i++ {
		c.Set(strconv.Itoa(i), []byte("x"), 0, Tag{Type: TypeAuth})
	}
	c.Reset()
	require.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := strconv.Itoa(n % 4)
			for j := 0; j < 100; j++ {
				c.Set(key, []byte("v"), 0, Tag{TypeSkills, key})
				c.Get(key)
				c.Invalidate(Tag{TypeSkills, key})
			}
		}(i)
	}
	wg.Wait()
}

func TestNop(t *testing.T) {
	t.Parallel()

	c := NewNop()
	c.Set("k", []byte("v"), time.Hour, Tag{Type: TypeAuth})
	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.Invalidate(Tag{Type: TypeAuth}))
}
