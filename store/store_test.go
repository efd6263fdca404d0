package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/models"
)

const layout = `<html><body><nav><a>Home</a></nav><main><h1>Jane Doe</h1><section><h2>Projects</h2><article><h3>Weather</h3><p>x</p></article></section></main><footer></footer></body></html>`

func sampleResult() *models.ScrapeResult {
	return &models.ScrapeResult{
		URL:         "https://janedoe.dev/",
		Name:        "Jane Doe",
		Title:       "Full Stack Developer",
		Bio:         "I build accessible web apps for small businesses.",
		Email:       "jane@janedoe.dev",
		SocialLinks: models.SocialLinks{GitHub: "https://github.com/janedoe"},
		Skills:      []string{"Go", "React"},
		Projects:    []models.Project{{Name: "Weather", Description: "Forecasts.", Link: "https://weather.janedoe.dev"}},
		ScrapedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		RawHTML:     layout,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sampleResult()))

	bad := sampleResult()
	bad.URL = "janedoe.dev"
	bad.Projects = []models.Project{{Name: "x", Link: "/relative"}}
	bad.Skills = make([]string, 26)
	for i := range bad.Skills {
		bad.Skills[i] = string(rune('a' + i))
	}

	err := Validate(bad)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	fields := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "url")
	assert.Contains(t, fields, "skills")
	assert.Contains(t, fields, "projects.0.name")
	assert.Contains(t, fields, "projects.0.link")
}

func TestValidateAcceptsNilCollections(t *testing.T) {
	r := sampleResult()
	r.Skills, r.Projects, r.Headings = nil, nil, nil
	r.DesignAnalysis = models.DesignAnalysis{Error: models.DesignUnavailable}
	assert.NoError(t, Validate(r))
}

func TestNewSnapshot(t *testing.T) {
	first := NewSnapshot(sampleResult(), nil)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "https://janedoe.dev", first.NormalizedURL)
	assert.Empty(t, first.PreviousID)
	assert.False(t, first.Changed())
	assert.Len(t, first.ContentFingerprint, 16)

	again := NewSnapshot(sampleResult(), first)
	assert.Equal(t, first.ID, again.PreviousID)
	assert.NotEqual(t, first.ID, again.ID)
	assert.Zero(t, again.ContentDistance)
	assert.Zero(t, again.StructureDistance)
	assert.False(t, again.Changed())

	redesigned := sampleResult()
	redesigned.RawHTML = `<html><body><table><tr><td>Jane</td><td>Doe</td></tr><tr><td>a</td></tr></table><form><input/><button></button></form></body></html>`
	snap := NewSnapshot(redesigned, first)
	assert.True(t, snap.StructureChanged)
	assert.True(t, snap.Changed())
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://janedoe.dev/work", NormalizeURL(" https://JaneDoe.dev/work/#top "))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	latest, err := m.Latest(ctx, "https://janedoe.dev")
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := m.SaveSnapshot(ctx, sampleResult())
	require.NoError(t, err)
	second, err := m.SaveSnapshot(ctx, sampleResult())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.PreviousID)

	latest, err = m.Latest(ctx, "https://janedoe.dev")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	bad := sampleResult()
	bad.Name = ""
	_, err = m.SaveSnapshot(ctx, bad)
	assert.True(t, models.IsCode(err, models.ErrCodeStorage))
	assert.NoError(t, m.Close(ctx))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FOLIO_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FOLIO_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	m, err := NewMongo(ctx, config.MongoConfig{
		URI:        uri,
		Database:   "folio_test",
		Collection: "snapshots_" + time.Now().Format("20060102150405"),
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.snapshots.Drop(ctx)
		_ = m.Close(ctx)
	})

	first, err := m.SaveSnapshot(ctx, sampleResult())
	require.NoError(t, err)

	r := sampleResult()
	r.ScrapedAt = r.ScrapedAt.Add(time.Hour)
	second, err := m.SaveSnapshot(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.PreviousID)

	latest, err := m.Latest(ctx, "https://janedoe.dev")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "Jane Doe", latest.Result.Name)
}
