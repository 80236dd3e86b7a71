package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"

	"github.com/adfinitum/backend/docs"
)

type swaggerDoc struct {
	Swagger     string                                `json:"swagger"`
	BasePath    string                                `json:"basePath"`
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]json.RawMessage            `json:"definitions"`
}

func readDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSwaggerDoc_DescribesRoutes(t *testing.T) {
	doc := readDoc(t)

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.NotEmpty(t, doc.Paths)

	tests := []struct {
		path   string
		method string
	}{
		{"/orders", "post"},
		{"/orders", "get"},
		{"/cart/items", "post"},
		{"/products", "get"},
		{"/auth/login", "post"},
		{"/payments/mpesa/callback", "post"},
		{"/shipping/shipments/{id}/history", "get"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			ops, ok := doc.Paths[tt.path]
			require.True(t, ok, "path %s missing", tt.path)
			assert.Contains(t, ops, tt.method)
		})
	}
}

func TestSwaggerDoc_ReferencedDefinitionsExist(t *testing.T) {
	doc := readDoc(t)

	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var generic any
	require.NoError(t, json.Unmarshal([]byte(raw), &generic))

	var refs []string
	var walk func(v any)
	walk = func(v any) {
		switch n := v.(type) {
		case map[string]any:
			for k, child := range n {
				if ref, ok := child.(string); ok && k == "$ref" {
					refs = append(refs, ref)
					continue
				}
				walk(child)
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(generic)

	require.NotEmpty(t, refs)
	for _, ref := range refs {
		name := ref[len("#/definitions/"):]
		assert.Contains(t, doc.Definitions, name, "dangling $ref %s", ref)
	}
}

func TestSwaggerDoc_CheckoutAcceptsCashOnDelivery(t *testing.T) {
	doc := readDoc(t)

	var def struct {
		Properties map[string]struct {
			Enum []string `json:"enum"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(doc.Definitions["handler.CheckoutRequest"], &def))
	assert.ElementsMatch(t, []string{"mpesa", "bank", "cod"}, def.Properties["payment_method"].Enum)
}
