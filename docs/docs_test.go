package docs_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"github.com/jhoicas/mesa-api/docs"
)

// El documento registrado y el swagger.json servido por la UI describen la misma API.
func TestSwaggerRegistrado_CoincideConSwaggerJSON(t *testing.T) {
	registered, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	raw, err := os.ReadFile("swagger.json")
	require.NoError(t, err)

	var fromRegistry, fromFile map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(registered), &fromRegistry))
	require.NoError(t, json.Unmarshal(raw, &fromFile))

	for _, key := range []string{"paths", "definitions", "securityDefinitions"} {
		require.Contains(t, fromRegistry, key)
		assert.JSONEq(t, string(fromFile[key]), string(fromRegistry[key]), key)
	}

	var info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(fromRegistry["info"], &info))
	assert.Equal(t, "Mesa API", info.Title)
	assert.Equal(t, "1.0", info.Version)
}

func TestSwaggerRegistrado_RutasDeMesa(t *testing.T) {
	registered, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	for _, route := range []string{
		"/api/auth/token",
		"/auth/{token}",
		"/loading/{tableId}",
		"/api/tables/{tableId}/dashboard",
		"/api/tables/{tableId}/menu",
	} {
		assert.Contains(t, registered, `"`+route+`"`)
	}
}
