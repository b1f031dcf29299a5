package convert

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kolah/xml2openrpc/internal/model"
	"github.com/kolah/xml2openrpc/internal/render"
	"github.com/kolah/xml2openrpc/internal/typemap"
	"github.com/stretchr/testify/require"
)

func resultJSON(t *testing.T, m *model.Method) string {
	t.Helper()
	out, err := render.MarshalJSON(render.ResultTree(&m.Result))
	require.NoError(t, err)
	return string(out)
}

func TestMethod(t *testing.T) {
	b := newBuilder()
	el := parse(t, `<method name="info" auth_type="ADMIN, NORMAL_USER" requires_perm="SEE USER" comment="user info">
		<input>
			<param name="user_id" type="int"/>
			<param name="fields" type="list" optional="1"><item type="str"/></param>
		</input>
		<output type="dict" comment="user">
			<param name="id" type="int" comment="id"/>
			<param name="name" type="str"/>
		</output>
	</method>`)

	outcome := b.method("user", el)
	require.Equal(t, MethodProduced, outcome.Status)
	m := outcome.Method
	require.Equal(t, "user.info", m.Name)
	require.Equal(t, "user info", m.Description)
	require.Equal(t, []model.AuthType{model.AuthAdmin, model.AuthNormalUser}, m.AuthTypes)
	require.Equal(t, "SEE USER", m.RequiresPerm)
	require.Len(t, m.Params, 2)
	require.True(t, m.Params[1].Optional)
	require.Empty(t, b.diags)

	require.JSONEq(t, `{
		"name": "Response (object)",
		"comment": "user",
		"schema": {
			"title": "",
			"type": "object",
			"properties": {
				"id": {"title": "id", "type": "number"},
				"name": {"title": "", "type": "string"}
			}
		}
	}`, resultJSON(t, m))
}

func TestMethodAuthTypes(t *testing.T) {
	tests := []struct {
		name     string
		attr     string
		expected []model.AuthType
		warnings []string
	}{
		{
			name:     "empty means all authenticated",
			attr:     `auth_type=""`,
			expected: []model.AuthType{model.AuthAdmin, model.AuthNormalUser, model.AuthVoIPUser},
		},
		{
			name:     "anonymous",
			attr:     `auth_type="ANONYMOUS"`,
			expected: []model.AuthType{model.AuthAnonymous},
		},
		{
			name:     "tokens trimmed",
			attr:     `auth_type=" VOIP_USER ,ADMIN"`,
			expected: []model.AuthType{model.AuthVoIPUser, model.AuthAdmin},
		},
		{
			name:     "unknown kept with warning",
			attr:     `auth_type="ADMIN,ROOT"`,
			expected: []model.AuthType{model.AuthAdmin, "ROOT"},
			warnings: []string{`bad auth_type=ROOT in "ADMIN,ROOT"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder()
			outcome := b.method("h", parse(t, `<method name="m" `+tt.attr+`><input/><output type="bool"/></method>`))
			require.Equal(t, MethodProduced, outcome.Status)
			require.Equal(t, tt.expected, outcome.Method.AuthTypes)
			require.Equal(t, tt.warnings, messages(b.diags))
		})
	}
}

func TestMethodSkipped(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"no name", `<method auth_type=""><input/><output type="bool"/></method>`, "method has no name"},
		{"no input", `<method name="m" auth_type=""><output type="bool"/></method>`, "no <input>"},
		{"no output", `<method name="m" auth_type=""><input/></method>`, "no <output>"},
		{"unknown output type", `<method name="m" auth_type=""><input/><output type="bogus"/></method>`, `unknown type tag: "bogus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder()
			outcome := b.method("h", parse(t, tt.src))
			require.Equal(t, MethodSkipped, outcome.Status)
			require.Nil(t, outcome.Method)
			require.Len(t, b.diags, 1)
			require.Contains(t, b.diags[0].Message, tt.message)
		})
	}
}

func TestMethodAbortsHandler(t *testing.T) {
	b := newBuilder()
	outcome := b.method("h", parse(t, `<method name="m"><input/><output type="bool"/></method>`))
	require.Equal(t, MethodAbortsHandler, outcome.Status)
	require.ErrorIs(t, outcome.Err, ErrMissingAuthType)

	b = newBuilder()
	outcome = b.method("h", parse(t, `<method name="m" auth_type=""><input/><output comment="nothing"/></method>`))
	require.Equal(t, MethodAbortsHandler, outcome.Status)
	require.ErrorIs(t, outcome.Err, ErrMissingOutputType)
	require.Equal(t, "aborts handler: output has neither type nor value", outcome.String())
}

func TestMethodResults(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected string
	}{
		{
			name:     "literal value",
			output:   `<output value="ok" comment="always ok"/>`,
			expected: `{"name": "Response (one of following values)", "comment": "always ok", "enum": ["ok"]}`,
		},
		{
			name:     "value wins over type",
			output:   `<output value="ok" type="choice"><choice value="other"/></output>`,
			expected: `{"name": "Response (one of following values)", "comment": "", "enum": ["ok"]}`,
		},
		{
			name: "choice list",
			output: `<output type="choice">
				<choice value="a"/>
				<param name="ignored" type="int"/>
				<choice value=""/>
				<choice value="b"/>
			</output>`,
			expected: `{"name": "Response (one of following values)", "comment": "", "enum": ["a", "b"]}`,
		},
		{
			name:     "scalar",
			output:   `<output type="bool"/>`,
			expected: `{"name": "Response (boolean)", "comment": "", "schema": {"title": "", "type": "boolean"}}`,
		},
		{
			name:     "disjunction",
			output:   `<output type="int, null"/>`,
			expected: `{"name": "Response (number, null)", "comment": "", "schema": {"title": "", "type": ["number", "null"]}}`,
		},
		{
			name:     "any",
			output:   `<output type="any" comment="anything"/>`,
			expected: `{"name": "", "comment": "anything"}`,
		},
		{
			name: "result fields flattened",
			output: `<output type="dict">
				<param name="mode" type="choice" comment="mode"><choice value="x"/></param>
				<param name="list" type="list"><item type="int"/></param>
				<param type="int"/>
			</output>`,
			expected: `{"name": "Response (object)", "comment": "", "schema": {"title": "", "type": "object", "properties": {
				"mode": {"title": "mode", "enum": ["x"]},
				"list": {"title": "", "type": "array", "items": {"title": "", "type": "int"}}
			}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := newBuilder().method("h", parse(t, `<method name="m" auth_type=""><input/>`+tt.output+`</method>`))
			require.Equal(t, MethodProduced, outcome.Status)
			require.JSONEq(t, tt.expected, resultJSON(t, outcome.Method))
		})
	}
}

func TestMethodResultChoiceWarnings(t *testing.T) {
	b := newBuilder()
	b.method("h", parse(t, `<method name="m" auth_type=""><input/><output type="choice"><choice value=""/><item/></output></method>`))
	require.Equal(t, []string{"empty value", "expected <choice>, got <item>"}, messages(b.diags))
}

const handlerXML = `<root>
	<handler name="user">
		<method name="add" auth_type="ADMIN"><input><param name="name" type="str"/></input><output type="int"/></method>
		<note/>
		<method name="broken" auth_type="ADMIN"><output type="int"/></method>
		<method name="remove" auth_type=""><input/><output value="ok"/></method>
	</handler>
</root>`

func TestHandler(t *testing.T) {
	root := parse(t, handlerXML)
	result := New(Options{}).Handler(root.Find("handler"))

	require.Equal(t, HandlerConverted, result.Status)
	require.Equal(t, "user", result.Name)
	require.NoError(t, result.Err)
	require.Equal(t, 1, result.Skipped)
	require.Len(t, result.Methods, 2)
	require.Equal(t, "user.add", result.Methods[0].Name)
	require.Equal(t, "user.remove", result.Methods[1].Name)

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	require.Equal(t, "handler[user]/method[broken]", d.Path)
	require.Equal(t, "no <input>", d.Message)
	require.Equal(t, 5, d.Line)
	require.True(t, strings.HasPrefix(d.String(), "handler[user]/method[broken] (line 5): no <input>: <method "))
}

func TestHandlerWithoutName(t *testing.T) {
	root := parse(t, `<root><handler><method name="m" auth_type=""><input/><output type="int"/></method></handler></root>`)
	result := New(Options{}).Handler(root.Find("handler"))
	require.Equal(t, HandlerSkipped, result.Status)
	require.Empty(t, result.Methods)
	require.Equal(t, []string{"handler has no name"}, messages(result.Diagnostics))
}

func TestHandlerNameMustBeFileName(t *testing.T) {
	for _, name := range []string{"../../x", "a/b", `a\b`, "..", "."} {
		t.Run(name, func(t *testing.T) {
			root := parse(t, `<root><handler name="`+name+`"><method name="m" auth_type=""><input/><output type="int"/></method></handler></root>`)
			result := New(Options{}).Handler(root.Find("handler"))
			require.Equal(t, HandlerSkipped, result.Status)
			require.Empty(t, result.Name)
			require.Empty(t, result.Methods)
			require.Equal(t, []string{fmt.Sprintf("handler name %q is not a valid file name", name)}, messages(result.Diagnostics))
		})
	}

	result := New(Options{}).Handler(parse(t, `<handler name="user..v2"><method name="m" auth_type=""><input/><output type="int"/></method></handler>`))
	require.Equal(t, HandlerConverted, result.Status)
}

func TestHandlerAbortedOnMissingAuthType(t *testing.T) {
	root := parse(t, `<root><handler name="user">
		<method name="first" auth_type=""><input/><output type="int"/></method>
		<method name="second"><input/><output type="int"/></method>
		<method name="third" auth_type=""><input/><output type="int"/></method>
	</handler></root>`)

	result := New(Options{}).Handler(root.Find("handler"))
	require.Equal(t, HandlerAborted, result.Status)
	require.ErrorIs(t, result.Err, ErrMissingAuthType)
	require.NoError(t, result.Fatal)
	require.Nil(t, result.Methods, "aborted handlers produce no methods")
	require.Equal(t, []string{"no auth_type"}, messages(result.Diagnostics))
}

func TestHandlerAbortedOnMissingOutputType(t *testing.T) {
	root := parse(t, `<root><handler name="user">
		<method name="first" auth_type=""><input/><output/></method>
	</handler></root>`)

	result := New(Options{}).Handler(root.Find("handler"))
	require.Equal(t, HandlerAborted, result.Status)
	require.ErrorIs(t, result.Err, ErrMissingOutputType)
}

func TestHandlerUnknownType(t *testing.T) {
	src := `<root><handler name="user">
		<method name="a" auth_type=""><input><param name="x" type="bogus"/></input><output type="int"/></method>
		<method name="b" auth_type=""><input/><output type="int"/></method>
	</handler></root>`

	t.Run("skipped by default", func(t *testing.T) {
		result := New(Options{}).Handler(parse(t, src).Find("handler"))
		require.Equal(t, HandlerConverted, result.Status)
		require.Len(t, result.Methods, 2)
		require.Empty(t, result.Methods[0].Params)
		require.Len(t, result.Diagnostics, 1)
		require.Equal(t, SeverityError, result.Diagnostics[0].Severity)
		require.Equal(t, "handler[user]/method[a]/param[x]", result.Diagnostics[0].Path)
	})

	t.Run("fatal in strict mode", func(t *testing.T) {
		result := New(Options{Strict: true}).Handler(parse(t, src).Find("handler"))
		require.Equal(t, HandlerAborted, result.Status)
		require.ErrorIs(t, result.Fatal, typemap.ErrUnknownType)
		require.ErrorContains(t, result.Fatal, "handler[user]/method[a]/param[x]")
		require.Nil(t, result.Methods)
	})
}

func TestHandlerCustomTypeTable(t *testing.T) {
	table, err := typemap.Default().With(map[string]typemap.Mapping{
		"ip": {Types: []string{"string"}, Comment: "IPv4"},
	})
	require.NoError(t, err)

	root := parse(t, `<root><handler name="net">
		<method name="ping" auth_type=""><input><param name="host" type="ip"/></input><output type="bool"/></method>
	</handler></root>`)

	result := New(Options{Table: table, Strict: true}).Handler(root.Find("handler"))
	require.Equal(t, HandlerConverted, result.Status)
	require.Equal(t, "IPv4, ", *result.Methods[0].Params[0].Description)
}
