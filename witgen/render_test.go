package witgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witforge/witforge/wit"
)

func TestRenderInterface(t *testing.T) {
	defs := []wit.TypeDefinition{
		{KebabName: "chat-message", Kind: wit.DefRecord, Body: "record chat-message {\n    body: string,\n}"},
	}
	sigs := []wit.SignatureStruct{
		{
			FunctionName: "send-message",
			Attr:         wit.AttrRemote,
			Fields: []wit.SignatureField{
				{Name: "target", Type: "address"},
				{Name: "message", Type: "chat-message"},
				{Name: "returning", Type: "result<string, string>"},
			},
		},
		{
			FunctionName: "fetch-history",
			Attr:         wit.AttrHTTP,
			HTTPMethod:   "GET",
			HTTPPath:     "/api/history",
			Fields: []wit.SignatureField{
				{Name: "target", Type: "string"},
				{Name: "returning", Type: "list<chat-message>"},
			},
		},
	}

	got := RenderInterface("chat", defs, sigs)
	want := `interface chat {
    use standard.{address};

    record chat-message {
        body: string,
    }

    // Function signature for: fetch-history (http)
    // HTTP: GET /api/history
    record fetch-history-signature-http {
        target: string,
        returning: list<chat-message>,
    }

    // Function signature for: send-message (remote)
    record send-message-signature-remote {
        target: address,
        message: chat-message,
        returning: result<string, string>,
    }
}
`
	assert.Equal(t, want, got)
}

func TestRenderInterfaceRoundTrip(t *testing.T) {
	sigs := []wit.SignatureStruct{{
		FunctionName: "ping",
		Attr:         wit.AttrLocal,
		Fields: []wit.SignatureField{
			{Name: "target", Type: "address"},
			{Name: "count", Type: "u32"},
			{Name: "returning", Type: "result<string, string>"},
		},
	}}

	doc := wit.ParseInterface(RenderInterface("echo", nil, sigs))
	require.Len(t, doc.Signatures, 1)
	assert.Equal(t, "ping", doc.Signatures[0].FunctionName)
	assert.Equal(t, wit.AttrLocal, doc.Signatures[0].Attr)
	assert.Equal(t, sigs[0].Fields, doc.Signatures[0].Fields)
}
