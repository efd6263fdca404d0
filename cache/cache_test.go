package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/folio/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(maxEntries int) (*Cache, *clock) {
	c := New(maxEntries)
	clk := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clk.now
	return c, clk
}

func TestGetHonoursMaxAge(t *testing.T) {
	c, clk := newTestCache(10)
	defer c.Stop()

	key := Key("https://janedoe.dev", "browser")
	c.Set(key, &models.ScrapeResult{Name: "Jane Doe"})

	_, ok := c.Get(key, 0)
	assert.False(t, ok, "zero max age never hits")

	clk.t = clk.t.Add(30 * time.Second)
	got, ok := c.Get(key, time.Minute)
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", got.Name)

	_, ok = c.Get(key, 10*time.Second)
	assert.False(t, ok)
}

func TestKeyDistinguishesMode(t *testing.T) {
	assert.Equal(t, Key("https://janedoe.dev/", "http"), Key("https://janedoe.dev", "http"))
	assert.NotEqual(t, Key("https://janedoe.dev", "http"), Key("https://janedoe.dev", "browser"))
}

func TestSetEvictsOldest(t *testing.T) {
	c, clk := newTestCache(2)
	defer c.Stop()

	c.Set("a", &models.ScrapeResult{Name: "a"})
	clk.t = clk.t.Add(time.Second)
	c.Set("b", &models.ScrapeResult{Name: "b"})
	clk.t = clk.t.Add(time.Second)
	c.Set("c", &models.ScrapeResult{Name: "c"})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a", time.Hour)
	assert.False(t, ok)
	_, ok = c.Get("c", time.Hour)
	assert.True(t, ok)

	// Overwriting an existing key does not evict.
	c.Set("b", &models.ScrapeResult{Name: "b2"})
	assert.Equal(t, 2, c.Len())
}

func TestExpire(t *testing.T) {
	c, clk := newTestCache(10)
	defer c.Stop()

	c.Set("old", &models.ScrapeResult{})
	clk.t = clk.t.Add(2 * time.Hour)
	c.Set("fresh", &models.ScrapeResult{})
	c.expire()

	assert.Equal(t, 1, c.Len())
}
