package render

import (
	"errors"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"go-minimalapp/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"greet.txt":  {Data: []byte("Hello {{.name}} & welcome")},
		"greet.html": {Data: []byte("<p>Hello {{.name}}</p>")},
		"page.html":  {Data: []byte(`{{template "part" .}}!`)},
		"part.html":  {Data: []byte(`{{define "part"}}[{{.name}}]{{end}}`)},
	}
}

func TestRender(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)

	t.Run("Should render text templates without escaping", func(t *testing.T) {
		out, err := r.Render("greet.txt", map[string]any{"name": "<ichiro>"})
		require.NoError(t, err)
		assert.Equal(t, "Hello <ichiro> & welcome", out)
	})

	t.Run("Should escape html templates", func(t *testing.T) {
		out, err := r.Render("greet.html", map[string]any{"name": "<ichiro>"})
		require.NoError(t, err)
		assert.Equal(t, "<p>Hello &lt;ichiro&gt;</p>", out)
	})

	t.Run("Should resolve templates defined in other files", func(t *testing.T) {
		out, err := r.Render("page.html", map[string]any{"name": "ichiro"})
		require.NoError(t, err)
		assert.Equal(t, "[ichiro]!", out)
	})

	t.Run("Should fail for unknown templates", func(t *testing.T) {
		_, err := r.Render("missing.txt", nil)
		assert.ErrorIs(t, err, ErrTemplateNotFound)

		_, err = r.Render("missing.html", nil)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})

	t.Run("Should fail for missing bindings", func(t *testing.T) {
		_, err := r.Render("greet.txt", map[string]any{})
		assert.ErrorIs(t, err, ErrBinding)
	})
}

func TestLoad(t *testing.T) {
	fsys := testFS()
	r, err := New(fsys)
	require.NoError(t, err)

	t.Run("Should keep the previous set on parse errors", func(t *testing.T) {
		fsys["broken.txt"] = &fstest.MapFile{Data: []byte("{{.name")}
		err := r.Load()
		assert.Error(t, err)

		out, err := r.Render("greet.txt", map[string]any{"name": "ichiro"})
		require.NoError(t, err)
		assert.Equal(t, "Hello ichiro & welcome", out)
		delete(fsys, "broken.txt")
	})

	t.Run("Should pick up changed templates", func(t *testing.T) {
		fsys["greet.txt"] = &fstest.MapFile{Data: []byte("Hi {{.name}}")}
		require.NoError(t, r.Load())

		out, err := r.Render("greet.txt", map[string]any{"name": "ichiro"})
		require.NoError(t, err)
		assert.Equal(t, "Hi ichiro", out)
	})

	t.Run("Should fail on invalid templates at construction", func(t *testing.T) {
		_, err := New(fstest.MapFS{"bad.html": {Data: []byte("{{if}}")}})
		assert.Error(t, err)
	})
}

func TestInstance(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Instance("greet.html", map[string]any{"name": "ichiro"}).Render(w))
	assert.Equal(t, "<p>Hello ichiro</p>", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestEmbeddedContactMail(t *testing.T) {
	r, err := New(web.Templates())
	require.NoError(t, err)

	bindings := map[string]any{"username": "ichiro", "description": "<b>hello</b>"}

	text, err := r.Render("contact_mail.txt", bindings)
	require.NoError(t, err)
	assert.Contains(t, text, "Dear ichiro,")
	assert.Contains(t, text, "<b>hello</b>")

	html, err := r.Render("contact_mail.html", bindings)
	require.NoError(t, err)
	assert.Contains(t, html, "Dear ichiro,")
	assert.Contains(t, html, "&lt;b&gt;hello&lt;/b&gt;")

	_, err = r.Render("contact_mail.txt", map[string]any{"username": "ichiro"})
	assert.True(t, errors.Is(err, ErrBinding))
}
