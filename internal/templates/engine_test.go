package templates

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type titleData struct {
	Branch  string
	Handler string
}

func TestEngineExecute(t *testing.T) {
	e, err := NewEngine(map[string]string{
		"title": "IBSng: branch {{.Branch}}: {{.Handler}}",
		"upper": "{{upper .Handler}}",
	}, DefaultFuncs())
	require.NoError(t, err)

	out, err := e.Execute("title", titleData{Branch: "main", Handler: "user"})
	require.NoError(t, err)
	require.Equal(t, "IBSng: branch main: user", out)

	out, err = e.Execute("upper", titleData{Handler: "user"})
	require.NoError(t, err)
	require.Equal(t, "USER", out)
}

func TestEngineErrors(t *testing.T) {
	_, err := NewEngine(map[string]string{"bad": "{{.Branch"}, DefaultFuncs())
	require.ErrorContains(t, err, "parsing template bad")

	e, err := NewEngine(map[string]string{"title": "{{.Missing}}"}, DefaultFuncs())
	require.NoError(t, err)

	_, err = e.Execute("other", nil)
	require.ErrorContains(t, err, "template not found: other")

	_, err = e.Execute("title", titleData{})
	require.ErrorContains(t, err, "executing template title")
}
