package printing

import (
	"html/template"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	e := NewTemplateEngine()
	tests := []struct {
		in   any
		want string
	}{
		{decimal.RequireFromString("1234.5"), "KES 1,234.50"},
		{decimal.RequireFromString("-1000000"), "KES -1,000,000.00"},
		{12, "KES 12.00"},
		{"999.999", "KES 1,000.00"},
		{nil, "KES 0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.formatMoney(tt.in))
	}
	assert.Equal(t, "USD 1.00", NewTemplateEngine(WithCurrency("USD")).formatMoney(1))
}

func TestTemplateHelpers(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	assert.Equal(t, "05 Mar 2024", formatDate(ts))
	assert.Equal(t, "05 Mar 2024 14:07", formatDateTime(&ts))
	assert.Empty(t, formatDate((*time.Time)(nil)))
	assert.Equal(t, "Out For Delivery", humanize("out_for_delivery"))
	assert.Equal(t, "1F0E2C3A", shortUUID(uuid.MustParse("1f0e2c3a-0000-4000-8000-000000000000")))
}

func TestTemplateEngine_RenderString(t *testing.T) {
	e := NewTemplateEngine(WithFuncs(template.FuncMap{"shout": func(s string) string { return s + "!" }}))

	out, err := e.RenderString("t", `{{shout .Name}} owes {{formatMoney .Amount}}`, map[string]any{
		"Name":   "<Jane>",
		"Amount": decimal.NewFromInt(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, "&lt;Jane&gt;! owes KES 1,500.00", out)

	_, err = e.RenderString("t", "", nil)
	assert.Error(t, err)
	_, err = e.RenderString("t", "{{.Missing", nil)
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	assert.Contains(t, e.FuncMap(), "shout")
}
