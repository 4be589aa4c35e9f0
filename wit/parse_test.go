package wit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInterface = `interface chat {
    use standard.{address};

    type payload = list<u8>;

    enum status {
        active,
        archived,
    }

    record chat-message {
        sender: string,
        body: string,
        attachments: list<u8>,
    }

    variant chat-event {
        joined(string),
        left(string),
        idle,
    }

    // Function signature for: send-message (remote)
    record send-message-signature-remote {
        target: address,
        message: chat-message,
        returning: result<string, string>,
    }

    // Function signature for: fetch-history (http)
    // HTTP: GET /api/history
    record fetch-history-signature-http {
        target: string,
        limit: u32,
        returning: result<list<chat-message>, string>,
    }
}
`

func TestParseInterfaceTypes(t *testing.T) {
	doc := ParseInterface(sampleInterface)

	require.Len(t, doc.Aliases, 1)
	assert.Equal(t, "payload", doc.Aliases[0].Name)
	assert.Equal(t, "list<u8>", doc.Aliases[0].RHS)

	require.Len(t, doc.Enums, 1)
	assert.Equal(t, "status", doc.Enums[0].Name)
	assert.Equal(t, []string{"active", "archived"}, doc.Enums[0].Cases)

	require.Len(t, doc.Records, 1)
	rec := doc.Records[0]
	assert.Equal(t, "chat-message", rec.Name)
	require.Len(t, rec.Fields, 3)
	assert.Equal(t, SignatureField{Name: "sender", Type: "string"}, rec.Fields[0])
	assert.Equal(t, SignatureField{Name: "attachments", Type: "list<u8>"}, rec.Fields[2])

	require.Len(t, doc.Variants, 1)
	v := doc.Variants[0]
	assert.Equal(t, "chat-event", v.Name)
	require.Len(t, v.Cases, 3)
	assert.Equal(t, VariantCase{Name: "joined", Type: "string"}, v.Cases[0])
	assert.Equal(t, VariantCase{Name: "idle"}, v.Cases[2])
}

func TestParseInterfaceSignatures(t *testing.T) {
	doc := ParseInterface(sampleInterface)
	require.Len(t, doc.Signatures, 2)

	remote := doc.Signatures[0]
	assert.Equal(t, "send-message", remote.FunctionName)
	assert.Equal(t, AttrRemote, remote.Attr)
	require.Len(t, remote.Fields, 3)
	assert.Equal(t, "target", remote.Fields[0].Name)
	assert.Equal(t, "address", remote.Fields[0].Type)

	ret, ok := remote.Returning()
	assert.True(t, ok)
	assert.Equal(t, "result<string, string>", ret)

	params := remote.Params()
	require.Len(t, params, 1)
	assert.Equal(t, "message", params[0].Name)

	http := doc.Signatures[1]
	assert.Equal(t, "fetch-history", http.FunctionName)
	assert.Equal(t, AttrHTTP, http.Attr)
	assert.Equal(t, "GET", http.HTTPMethod)
	assert.Equal(t, "/api/history", http.HTTPPath)
}

func TestParseInterfaceHTTPHintDefaults(t *testing.T) {
	doc := ParseInterface(`interface x {
    record ping-signature-http {
        target: string,
        returning: string,
    }
}`)
	require.Len(t, doc.Signatures, 1)
	assert.Equal(t, "POST", doc.Signatures[0].HTTPMethod)
	assert.Equal(t, "/api", doc.Signatures[0].HTTPPath)
}

func TestParseInterfaceEscapedIdents(t *testing.T) {
	doc := ParseInterface(`interface x {
    record %record {
        %type: string,
    }
}`)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "record", doc.Records[0].Name)
	require.Len(t, doc.Records[0].Fields, 1)
	assert.Equal(t, "type", doc.Records[0].Fields[0].Name)
}

func TestParseWorld(t *testing.T) {
	w, ok := ParseWorld(`world my-app {
    import chat;
    import files;
    include process-v1;
    include process-v1;
}`)
	require.True(t, ok)
	assert.Equal(t, "my-app", w.Name)
	assert.Equal(t, []string{"import chat;", "import files;"}, w.Imports)
	// duplicate includes collapse
	assert.Equal(t, []string{"include process-v1;"}, w.Includes)

	_, ok = ParseWorld("interface chat {}")
	assert.False(t, ok)
}

func TestContainsWorld(t *testing.T) {
	assert.True(t, ContainsWorld("world foo {\n}"))
	assert.True(t, ContainsWorld("\n    world indented {\n}"))
	assert.False(t, ContainsWorld(sampleInterface))
}

func TestContainsWorldIgnoresIdentifiersAndComments(t *testing.T) {
	// "world" inside a function name or comment must not reclassify an
	// interface file; that would drop it from stub generation entirely.
	iface := `interface hello {
    // Function signature for: get-world (remote)
    record get-world-signature-remote {
        target: address,
        returning: string,
    }
}
`
	assert.False(t, ContainsWorld(iface))
	doc := ParseInterface(iface)
	require.Len(t, doc.Signatures, 1)
	assert.Equal(t, "get-world", doc.Signatures[0].FunctionName)
}
