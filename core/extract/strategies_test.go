package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorsFor_HostOverrides(t *testing.T) {
	generic := selectorsFor("example.com")
	assert.Equal(t, genericSelectors, generic)

	arxiv := selectorsFor("arxiv.org")
	assert.Equal(t, []string{"#abs", ".abstract"}, arxiv[len(genericSelectors):])

	mlm := selectorsFor("www.machinelearningmastery.com")
	assert.Contains(t, mlm[len(genericSelectors):], ".entry")
}

func TestRankedText_LargestContainerWins(t *testing.T) {
	small := strings.Repeat("small ", 50)
	large := strings.Repeat("large ", 80)
	page := `<html><body>
		<article>` + small + `</article>
		<article>` + large + `</article>
	</body></html>`

	text, err := rankedText([]byte(page), "example.com")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(large), text)
}

func TestRankedText_RemovesNoise(t *testing.T) {
	body := strings.Repeat("Transformers keep scaling. ", 20)
	page := `<html><body><article>
		<nav>` + strings.Repeat("MENU ", 100) + `</nav>
		<script>var tracking = true;</script>
		<p>` + body + `</p>
	</article></body></html>`

	text, err := rankedText([]byte(page), "example.com")
	require.NoError(t, err)
	assert.NotContains(t, text, "MENU")
	assert.NotContains(t, text, "tracking")
	assert.Contains(t, text, "Transformers keep scaling.")
}

func TestRankedText_ParagraphFallback(t *testing.T) {
	p := strings.Repeat("x", 150)
	page := `<html><body><div class="misc"><p>` + p + `</p><p>` + p + `</p></div></body></html>`

	text, err := rankedText([]byte(page), "example.com")
	require.NoError(t, err)
	assert.Equal(t, p+" "+p, text)
}

func TestRankedText_BodyMiddleHalf(t *testing.T) {
	bodyText := strings.Repeat("A", 3000) + strings.Repeat("B", 6000) + strings.Repeat("C", 3000)
	page := `<html><body><div class="misc">` + bodyText + `</div></body></html>`

	text, err := rankedText([]byte(page), "example.com")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("B", 6000), text)
}

func TestRankedText_ShortBodyKeptWhole(t *testing.T) {
	page := `<html><body><div>tiny page</div></body></html>`

	text, err := rankedText([]byte(page), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "tiny page", text)
}

func TestPageHeaders(t *testing.T) {
	h := pageHeaders("https://blog.example.com/post", "agent", false)
	assert.Equal(t, "https://www.google.com/", h["Referer"])
	assert.Equal(t, "agent", h["User-Agent"])
	assert.Equal(t, pageAccept, h["Accept"])
	assert.NotContains(t, h, "DNT")
	assert.NotContains(t, h, "Cookie")

	h = pageHeaders("https://machinelearningmastery.com/some-tutorial/", "agent", true)
	assert.Equal(t, "https://machinelearningmastery.com/", h["Referer"])
	assert.Contains(t, h["Cookie"], "wordpress_gdpr_allowed_services")
	assert.Equal(t, "1", h["DNT"])

	h = pageHeaders("https://openai.com/index/research", "agent", false)
	assert.Equal(t, "https://openai.com/", h["Referer"])
	assert.NotContains(t, h, "Cookie")
}
