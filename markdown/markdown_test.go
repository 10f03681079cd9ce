package markdown

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wellFormed wraps a fragment in a root element and decodes every token.
func wellFormed(t *testing.T, fragment string) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader([]byte("<root>" + fragment + "</root>")))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err, "fragment is not well-formed XML:\n%s", fragment)
	}
}

const talk = `# Dieter F. Uchtdorf <br />Fourth Floor, Last Door

My dear brothers and sisters, when I was a young man.[^1]

Keep climbing.

[^1]: See [the story](https://www.lds.org/general-conference/2016/10/fourth-floor-last-door).
`

func TestConvert(t *testing.T) {
	out, err := New().Convert([]byte(talk))
	require.NoError(t, err)
	wellFormed(t, out)

	assert.Contains(t, out, "Dieter F. Uchtdorf <br/>Fourth Floor, Last Door</h1>")
	assert.Contains(t, out, "<p>Keep climbing.</p>")
	assert.Contains(t, out, `href="#fn:1"`)
	assert.Contains(t, out, `id="fn:1"`)
	assert.Contains(t, out, `href="https://www.lds.org/general-conference/2016/10/fourth-floor-last-door"`)
	assert.Contains(t, out, "<hr/>")
	assert.NotContains(t, out, "<br />")
}

func TestConvertSanitizes(t *testing.T) {
	src := `# A<br/>B

<p onclick="steal()">Hello</p>

<script>alert(1)</script>

<div><style>p { color: red }</style><a href="javascript:alert(1)" title="bad">bad link</a></div>

[mail](mailto:someone@example.com) and [rel](../other.xhtml)
`
	out, err := New().Convert([]byte(src))
	require.NoError(t, err)
	wellFormed(t, out)

	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "color: red")
	assert.NotContains(t, out, "javascript")
	assert.Contains(t, out, "<p>Hello</p>")
	assert.Contains(t, out, `<a title="bad">bad link</a>`)
	assert.Contains(t, out, `href="mailto:someone@example.com"`)
	assert.Contains(t, out, `href="../other.xhtml"`)
}

func TestConvertEntitiesBecomeCharacters(t *testing.T) {
	out, err := New().Convert([]byte("Faith&nbsp;and &copy; hope & charity\n"))
	require.NoError(t, err)
	wellFormed(t, out)

	assert.Contains(t, out, "Faith\u00a0and © hope &amp; charity")
	assert.NotContains(t, out, "&nbsp;")
}

func TestConvertOptions(t *testing.T) {
	src := []byte("He said \"come\" -- and\nthey came.\n")

	plain, err := New().Convert(src)
	require.NoError(t, err)
	assert.NotContains(t, plain, "<br/>")
	assert.NotContains(t, plain, "“")

	typo, err := New(WithTypographer()).Convert(src)
	require.NoError(t, err)
	assert.Contains(t, typo, "“come”")
	assert.Contains(t, typo, "–")

	wrapped, err := New(WithHardWraps()).Convert(src)
	require.NoError(t, err)
	wellFormed(t, wrapped)
	assert.Contains(t, wrapped, "and<br/>")
}

func TestIsSafeURI(t *testing.T) {
	tests := []struct {
		uri  string
		safe bool
	}{
		{"", true},
		{"#fn:1", true},
		{"../eng/talk.xhtml", true},
		{"https://www.lds.org", true},
		{"HTTP://example.com", true},
		{"mailto:a@b.c", true},
		{"javascript:alert(1)", false},
		{" JavaScript:alert(1)", false},
		{"data:text/html;base64,AAAA", false},
		{"vbscript:msgbox", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.safe, isSafeURI(tt.uri), "isSafeURI(%q)", tt.uri)
	}
}
