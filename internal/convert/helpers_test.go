package convert

import (
	"testing"

	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/model"
	"github.com/kolah/xml2openrpc/internal/render"
	"github.com/kolah/xml2openrpc/internal/typemap"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *loader.Element {
	t.Helper()
	result, err := loader.Parse([]byte(src))
	require.NoError(t, err)
	return result.Root
}

func newBuilder() *builder {
	return &builder{table: typemap.Default()}
}

func paramJSON(t *testing.T, p *model.Param) string {
	t.Helper()
	require.NotNil(t, p)
	out, err := render.MarshalJSON(render.ParamTree(p))
	require.NoError(t, err)
	return string(out)
}

func messages(diags []Diagnostic) []string {
	var result []string
	for _, d := range diags {
		result = append(result, d.Message)
	}
	return result
}
