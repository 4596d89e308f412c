package views

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sbilibin2017/lamp-demo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, page *models.Page) string {
	t.Helper()

	r, err := New()
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, r.Render(&sb, page))
	return sb.String()
}

func TestRender_EmptyListing(t *testing.T) {
	out := render(t, &models.Page{Users: []models.User{}})

	assert.Contains(t, out, "No users found in the database.")
	assert.NotContains(t, out, "<table>")
	assert.NotContains(t, out, `class="message`)
}

func TestRender_Users(t *testing.T) {
	created := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	out := render(t, &models.Page{
		Users: []models.User{
			{ID: 2, Name: "Grace", Email: "grace@example.com", CreatedAt: created},
			{ID: 1, Name: "Ada", Email: "ada@example.com", CreatedAt: created},
		},
		Stack:     models.StackInfo{OS: "linux/amd64", Server: "Go net/http", Database: "16.2", Runtime: "go1.25.0"},
		CSRFField: template.HTML(`<input type="hidden" name="csrf_token" value="tok">`),
		Elapsed:   1500 * time.Microsecond,
	})

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>Grace</td>")
	assert.Contains(t, out, "2025-03-04 05:06:07")
	assert.Contains(t, out, `<input type="hidden" name="id" value="2">`)
	assert.Less(t, strings.Index(out, "Grace"), strings.Index(out, "Ada"))
	assert.Equal(t, 3, strings.Count(out, `name="csrf_token"`), "add form plus one per delete form")
	assert.Contains(t, out, "16.2")
	assert.Contains(t, out, "go1.25.0")
	assert.Contains(t, out, "0.0015 seconds")
	assert.NotContains(t, out, "No users found")
}

func TestRender_EscapesUserInput(t *testing.T) {
	out := render(t, &models.Page{
		Users: []models.User{{ID: 1, Name: `<script>alert("x")</script>`, Email: `a&b@example.com`}},
		Flash: &models.Flash{Kind: models.FlashSuccess, Text: `User '<b>' added successfully!`},
	})

	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "a&amp;b@example.com")
	assert.Contains(t, out, "&lt;b&gt;")
}

func TestRender_FlashKinds(t *testing.T) {
	for _, kind := range []models.FlashKind{models.FlashSuccess, models.FlashNotice, models.FlashError} {
		out := render(t, &models.Page{Flash: &models.Flash{Kind: kind, Text: "hello"}})
		assert.Contains(t, out, `<div class="message `+string(kind)+`">hello</div>`)
	}
}

func TestRender_ListError(t *testing.T) {
	out := render(t, &models.Page{ListError: true})

	assert.Contains(t, out, "Users could not be loaded.")
	assert.NotContains(t, out, "No users found")
}

func TestStaticHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/styles.css", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rr.Body.String(), ".container")
}
