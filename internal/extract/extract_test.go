package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head>
<script type="application/ld+json">{"@type":"Product","name":"Game","offers":{"price":499}}</script>
<script type="application/ld+json">{broken</script>
<style>.x{}</style>
</head><body>
<div class="a"> Hello <b>world</b></div>
<a class="lnk" href="/en-tr/product/X1">x</a>
</body></html>`

func parse(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse([]byte(page), "https://store.example.com/en-tr/pages/browse/1")
	require.NoError(t, err)
	return doc
}

func TestDocument_Strings(t *testing.T) {
	doc := parse(t)
	assert.Equal(t, []string{"Hello", "world", "x"}, doc.Strings())
	assert.Equal(t, "Hello world", Text(doc.Find("div.a")))
}

func TestDocument_Resolve(t *testing.T) {
	doc := parse(t)
	href, _ := doc.Find("a.lnk").Attr("href")
	assert.Equal(t, "https://store.example.com/en-tr/product/X1", doc.Resolve(href))
	assert.Equal(t, "", doc.Resolve(" "))
}

func TestJSONScripts_MalformedReported(t *testing.T) {
	doc := parse(t)
	vals, errs := doc.JSONScripts("application/ld+json")
	require.Len(t, vals, 1)
	require.Len(t, errs, 1)

	name, ok := String(vals[0], "name")
	assert.True(t, ok)
	assert.Equal(t, "Game", name)

	price, ok := String(vals[0], "offers", "price")
	assert.True(t, ok)
	assert.Equal(t, "499", price)
}

func TestPath_Arrays(t *testing.T) {
	v, err := DecodeJSON(`{"offers":[{"duration":{"value":3}}]}`)
	require.NoError(t, err)

	got, ok := String(v, "offers", "0", "duration", "value")
	assert.True(t, ok)
	assert.Equal(t, "3", got)

	_, ok = Path(v, "offers", "5")
	assert.False(t, ok)
}

func TestWalk_SortedKeyOrder(t *testing.T) {
	v, err := DecodeJSON(`{"zeta":{"name":"z"},"alpha":{"name":"a","inner":{"name":"i"}},"mid":[{"name":"m"}]}`)
	require.NoError(t, err)

	var want []string
	for i := 0; i < 50; i++ {
		var got []string
		Walk(v, func(m map[string]any) {
			if n, ok := m["name"].(string); ok {
				got = append(got, n)
			}
		})
		if want == nil {
			want = got
		}
		require.Equal(t, want, got)
	}
	assert.Equal(t, []string{"a", "i", "m", "z"}, want)
}

func TestFirst(t *testing.T) {
	bad := func() Field[string] { return Malformed[string](SourceStructured, errors.New("bad json")) }
	miss := func() Field[string] { return Missing[string]() }
	hit := func() Field[string] { return Found("v", SourceMarkup) }

	f := First(bad, hit)
	assert.True(t, f.OK())
	assert.Equal(t, SourceMarkup, f.Source)

	f = First(bad, miss)
	assert.Equal(t, StatusMalformed, f.Status)
	assert.Equal(t, "", f.Value)

	f = First(miss, miss)
	assert.Equal(t, StatusNotFound, f.Status)
	assert.Equal(t, "fallback", f.Or("fallback"))
}

func TestRun_RecoversPanic(t *testing.T) {
	doc := parse(t)
	_, err := Run("boom", doc, func(*Document) (int, error) {
		var m map[string]int
		m["x"] = 1
		return 0, nil
	})

	var exErr *Error
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "boom", exErr.Rule)
}
