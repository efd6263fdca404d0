package simhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/folio/models"
)

func TestOfText(t *testing.T) {
	a := OfText("Jane Doe builds developer tools in Go")
	assert.Equal(t, a, OfText("jane doe   builds developer tools in go"), "case and spacing are ignored")

	near := OfText("Jane Doe builds developer tooling in Go")
	far := OfText("completely unrelated content about quantum physics and mathematics")
	assert.Less(t, a.Distance(near), a.Distance(far))

	assert.Zero(t, OfText(""))
	assert.Zero(t, OfText(" \t\n "))
	assert.NotZero(t, OfText("hello"))
}

func TestDistanceAndSimilar(t *testing.T) {
	tests := []struct {
		name string
		a, b Fingerprint
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, Fingerprint(^uint64(0)), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Distance(tt.b))
			assert.True(t, tt.a.Similar(tt.b, tt.want))
			if tt.want > 0 {
				assert.False(t, tt.a.Similar(tt.b, tt.want-1))
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	fp := OfText("the quick brown fox")
	s := fp.String()
	assert.Len(t, s, 16)

	back, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, fp, back)

	assert.Equal(t, "0000000000000001", Fingerprint(1).String())
	_, err = Parse("not-hex")
	assert.Error(t, err)
}

func TestOfStructure(t *testing.T) {
	a := `<html><head><title>A</title></head><body><nav><a>Home</a></nav><h1>Jane</h1><p>Hi</p></body></html>`
	b := `<html><head><title>B</title></head><body><nav><a>Start</a></nav><h1>Sam</h1><p>Yo</p></body></html>`
	assert.Equal(t, OfStructure(a), OfStructure(b), "text does not affect structure")

	table := `<html><body><table><tr><td>A</td><td>B</td></tr><tr><td>C</td><td>D</td></tr></table></body></html>`
	assert.GreaterOrEqual(t, OfStructure(a).Distance(OfStructure(table)), 3)

	withScripts := `<html><head><title>A</title><script>var x = "<div><div>";</script></head><body><nav><a>Home</a></nav><svg><path/><g><path/></g></svg><h1>Jane</h1><p>Hi</p></body></html>`
	assert.Equal(t, OfStructure(a), OfStructure(withScripts), "script and svg subtrees are skipped")

	assert.Zero(t, OfStructure(""))
	assert.Zero(t, OfStructure("just text"))
	assert.NotZero(t, OfStructure("<br/>"))
}

func TestLayoutTags(t *testing.T) {
	got := layoutTags(`<html><head><style>p{}</style></head><body><div><svg><svg></svg><rect/></svg><p>x</p><img/></div></body></html>`)
	assert.Equal(t, []string{"html", "head", "body", "div", "p", "img"}, got)
}

func TestShingle(t *testing.T) {
	assert.Equal(t, []string{"a_b_c", "b_c_d"}, shingle([]string{"a", "b", "c", "d"}, 3))
	assert.Nil(t, shingle([]string{"a", "b"}, 3))
}

func TestOfPortfolio(t *testing.T) {
	base := &models.ScrapeResult{
		Name:     "Jane Doe",
		Title:    "Full Stack Developer",
		Bio:      "I build accessible web apps for small businesses.",
		Skills:   []string{"Go", "React", "PostgreSQL"},
		Projects: []models.Project{{Name: "Weather", Description: "Forecasts for hikers."}},
	}
	same := *base
	assert.Equal(t, OfPortfolio(base), OfPortfolio(&same))

	changed := *base
	changed.Skills = []string{"Rust"}
	changed.Projects = []models.Project{{Name: "Compiler", Description: "A toy language."}, {Name: "Shell"}}
	changed.Experience = []models.Experience{{Position: "Engineer", Company: "Acme"}}
	assert.Greater(t, OfPortfolio(base).Distance(OfPortfolio(&changed)), 0)
}
