package validation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isPositive(value interface{}) bool {
	f, ok := value.(float64)
	return ok && f > 0
}

// newApp mounts the given chains in front of a handler that echoes the
// recorded violations.
func newApp(method, path string, chains ...*validation.Chain) *fiber.App {
	handlers := make([]fiber.Handler, 0, len(chains)+1)
	for _, ch := range chains {
		handlers = append(handlers, ch.Run)
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		violations := validation.Result(c)
		if violations == nil {
			violations = []validation.Violation{}
		}
		return c.JSON(violations)
	})

	app := fiber.New()
	app.Add(method, path, handlers...)
	return app
}

func run(t *testing.T, app *fiber.App, method, target, body string) []validation.Violation {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "chains must never stop the request")

	var violations []validation.Violation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&violations))
	return violations
}

func priceChain() *validation.Chain {
	return validation.Body("price").
		IsNumeric().WithMessage("numeric").
		NotEmpty().WithMessage("empty").
		Custom(isPositive).WithMessage("positive")
}

func TestChain_AccumulatesEveryFailingStep(t *testing.T) {
	app := newApp(http.MethodPost, "/",
		validation.Body("name").NotEmpty().WithMessage("name empty"),
		priceChain(),
	)

	violations := run(t, app, http.MethodPost, "/", "{}")
	require.Len(t, violations, 4)

	msgs := []string{violations[0].Msg, violations[1].Msg, violations[2].Msg, violations[3].Msg}
	assert.Equal(t, []string{"name empty", "numeric", "empty", "positive"}, msgs)
	assert.Equal(t, "name", violations[0].Path)
	assert.Equal(t, validation.LocationBody, violations[0].Location)
	assert.Equal(t, "field", violations[0].Type)
}

func TestChain_PriceCounts(t *testing.T) {
	app := newApp(http.MethodPost, "/", priceChain())

	tests := []struct {
		name string
		body string
		want []string
	}{
		{"negative", `{"price": -2200}`, []string{"positive"}},
		{"zero", `{"price": 0}`, []string{"positive"}},
		{"not a number", `{"price": "Hola"}`, []string{"numeric", "positive"}},
		{"null", `{"price": null}`, []string{"numeric", "empty", "positive"}},
		{"valid", `{"price": 50}`, nil},
		{"numeric string", `{"price": "12.5"}`, []string{"positive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := run(t, app, http.MethodPost, "/", tt.body)
			var got []string
			for _, v := range violations {
				got = append(got, v.Msg)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChain_IsInt(t *testing.T) {
	app := newApp(http.MethodGet, "/:id", validation.Param("id").IsInt().WithMessage("Invalid ID"))

	for _, id := range []string{"1", "10213", "-5", "+7"} {
		assert.Empty(t, run(t, app, http.MethodGet, "/"+id, ""), id)
	}

	for _, id := range []string{"not-valid-url", "1.5", "1e3"} {
		violations := run(t, app, http.MethodGet, "/"+id, "")
		require.Len(t, violations, 1, id)
		assert.Equal(t, "Invalid ID", violations[0].Msg)
		assert.Equal(t, "id", violations[0].Path)
		assert.Equal(t, validation.LocationParams, violations[0].Location)
		assert.Equal(t, id, violations[0].Value)
	}
}

func TestChain_IsBoolean(t *testing.T) {
	app := newApp(http.MethodPut, "/", validation.Body("availability").IsBoolean())

	for _, body := range []string{`{"availability": true}`, `{"availability": false}`, `{"availability": "true"}`, `{"availability": "false"}`, `{"availability": 0}`, `{"availability": 1}`, `{"availability": "1"}`} {
		assert.Empty(t, run(t, app, http.MethodPut, "/", body), body)
	}

	for _, body := range []string{`{}`, `{"availability": "yes"}`, `{"availability": 2}`, `{"availability": "TRUE"}`, `{"availability": "t"}`, `{"availability": "F"}`, `{"availability": "True"}`} {
		violations := run(t, app, http.MethodPut, "/", body)
		require.Len(t, violations, 1, body)
		assert.Equal(t, validation.DefaultMessage, violations[0].Msg)
	}
}

func TestChain_MalformedBodyReportedOnce(t *testing.T) {
	app := newApp(http.MethodPost, "/",
		validation.Body("name").NotEmpty(),
		validation.Body("price").NotEmpty(),
	)

	violations := run(t, app, http.MethodPost, "/", `{"name":`)
	require.Len(t, violations, 3)
	assert.Equal(t, validation.MalformedBodyMessage, violations[0].Msg)
	assert.Equal(t, "name", violations[1].Path)
	assert.Equal(t, "price", violations[2].Path)
}

func TestChain_NonJSONBodyIsEmpty(t *testing.T) {
	app := newApp(http.MethodPost, "/", validation.Body("name").NotEmpty())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=Mouse"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var violations []validation.Violation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&violations))
	require.Len(t, violations, 1)
	assert.Equal(t, "name", violations[0].Path)
}

func TestWithMessage_WithoutStepsIsNoop(t *testing.T) {
	app := newApp(http.MethodGet, "/:id", validation.Param("id").WithMessage("ignored"))
	assert.Empty(t, run(t, app, http.MethodGet, "/abc", ""))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", validation.Stringify(nil))
	assert.Equal(t, "50", validation.Stringify(float64(50)))
	assert.Equal(t, "-2200", validation.Stringify(float64(-2200)))
	assert.Equal(t, "0.5", validation.Stringify(0.5))
	assert.Equal(t, "true", validation.Stringify(true))
	assert.Equal(t, "Hola", validation.Stringify("Hola"))
}
