package swagger_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"region-sync/docs/swagger"

	"github.com/gofiber/fiber/v2"
	fiberswagger "github.com/gofiber/swagger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocRegistered(t *testing.T) {
	doc, err := swag.ReadDoc(swagger.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "Region Sync API", parsed.Info.Title)
	for path, method := range map[string]string{
		"/replication/status":        "get",
		"/replication/journal":       "get",
		"/regions/{world}":           "get",
		"/regions/{world}/save":      "post",
		"/regions/{world}/drift":     "get",
		"/regions/{world}/reconcile": "post",
		"/snapshot/{world}":          "post",
		"/snapshot/{world}/import":   "post",
	} {
		require.Contains(t, parsed.Paths, path)
		assert.Contains(t, parsed.Paths[path], method, path)
	}
	assert.Contains(t, parsed.Paths["/snapshot/{world}"], "get")
}

func TestHandlerServesDoc(t *testing.T) {
	app := fiber.New()
	app.Get("/swagger/*", fiberswagger.HandlerDefault)

	resp, err := app.Test(httptest.NewRequest("GET", "/swagger/doc.json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, json.Valid(body))
	assert.Contains(t, string(body), "/regions/{world}/reconcile")
}
