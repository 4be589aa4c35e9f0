package typescript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/wit"
)

func TestWitTypeToTypeScript(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"u8", "number"},
		{"s64", "number"},
		{"f64", "number"},
		{"string", "string"},
		{"char", "string"},
		{"bool", "boolean"},
		{"_", "void"},
		{"address", "string"},
		{"list<u8>", "number[]"},
		{"list<string>", "string[]"},
		{"list<chat-message>", "ChatMessage[]"},
		{"option<u32>", "number | null"},
		{"result<string, string>", "{ Ok: string } | { Err: string }"},
		{"result<list<u8>, string>", "{ Ok: number[] } | { Err: string }"},
		{"result<string>", "{ Ok: string } | { Err: void }"},
		{"tuple<u64, bool>", "[number, boolean]"},
		{"chat-message", "ChatMessage"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WitTypeToTypeScript(tc.in), tc.in)
	}
}

func TestExtractResultOkType(t *testing.T) {
	okType, ok := ExtractResultOkType("result<list<chat-message>, string>")
	require.True(t, ok)
	assert.Equal(t, "ChatMessage[]", okType)

	_, ok = ExtractResultOkType("list<string>")
	assert.False(t, ok)
}

func TestGenerateEnum(t *testing.T) {
	got := GenerateEnum(wit.Enum{Name: "status", Cases: []string{"active", "archived"}})
	assert.Equal(t, "export enum Status {\n  Active = \"Active\",\n  Archived = \"Archived\",\n}", got)
}

func TestGenerateInterface(t *testing.T) {
	got := GenerateInterface(wit.Record{
		Name: "chat-message",
		Fields: []wit.SignatureField{
			{Name: "sender", Type: "string"},
			{Name: "chat-id", Type: "u64"},
		},
	})
	assert.Equal(t, "export interface ChatMessage {\n  sender: string;\n  chat_id: number;\n}", got)
}

func TestGenerateVariant(t *testing.T) {
	// no payloads: plain string union
	got := GenerateVariant(wit.Variant{
		Name:  "mode",
		Cases: []wit.VariantCase{{Name: "fast"}, {Name: "careful"}},
	})
	assert.Equal(t, `export type Mode = "Fast" | "Careful";`, got)

	// payloads: discriminated object union
	got = GenerateVariant(wit.Variant{
		Name: "chat-event",
		Cases: []wit.VariantCase{
			{Name: "joined", Type: "string"},
			{Name: "idle"},
		},
	})
	assert.Equal(t, "export type ChatEvent = { Joined: string } | { Idle: null };", got)
}

func httpSig(params ...wit.SignatureField) wit.SignatureStruct {
	fields := []wit.SignatureField{{Name: "target", Type: "string"}}
	fields = append(fields, params...)
	fields = append(fields, wit.SignatureField{Name: "returning", Type: "result<list<chat-message>, string>"})
	return wit.SignatureStruct{
		FunctionName: "fetch-history",
		Attr:         wit.AttrHTTP,
		HTTPMethod:   "GET",
		HTTPPath:     "/api/history",
		Fields:       fields,
	}
}

func TestGenerateFunction(t *testing.T) {
	reqIface, respAlias, fnImpl, ok := GenerateFunction(httpSig(
		wit.SignatureField{Name: "limit", Type: "u32"}))
	require.True(t, ok)

	assert.Equal(t, "export interface FetchHistoryRequestWrapper {\n  FetchHistory: number\n}", reqIface)
	assert.Equal(t, "export type FetchHistoryResponse = { Ok: ChatMessage[] } | { Err: string };", respAlias)

	// the function returns the unwrapped ok type, parseResponse strips the envelope
	assert.Contains(t, fnImpl, "export async function fetch_history(limit: number): Promise<ChatMessage[]> {")
	assert.Contains(t, fnImpl, "const data: FetchHistoryRequestWrapper = {\n    FetchHistory: limit,\n  };")
	assert.Contains(t, fnImpl, "apiRequest<FetchHistoryRequestWrapper, ChatMessage[]>('/api/history', 'GET', data);")
}

func TestGenerateFunctionMultiParam(t *testing.T) {
	_, _, fnImpl, ok := GenerateFunction(httpSig(
		wit.SignatureField{Name: "chat-id", Type: "u64"},
		wit.SignatureField{Name: "body", Type: "string"}))
	require.True(t, ok)
	assert.Contains(t, fnImpl, "fetch_history(chat_id: number, body: string)")
	assert.Contains(t, fnImpl, "FetchHistory: [chat_id, body],")
}

func TestGenerateFunctionSkipsNonHTTP(t *testing.T) {
	sig := httpSig()
	sig.Attr = wit.AttrRemote
	_, _, _, ok := GenerateFunction(sig)
	assert.False(t, ok)
}

const testInterface = `interface chat {
    use standard.{address};

    type payload = list<u8>;

    enum status {
        active,
        archived,
    }

    record chat-message {
        body: string,
    }

    // Function signature for: fetch-history (http)
    // HTTP: GET /api/history
    record fetch-history-signature-http {
        target: string,
        limit: u32,
        returning: result<list<chat-message>, string>,
    }

    // Function signature for: send-message (remote)
    record send-message-signature-remote {
        target: address,
        message: chat-message,
        returning: result<string, string>,
    }
}
`

func TestGenerate(t *testing.T) {
	apiDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "chat-sys-v0.wit"), []byte(testInterface), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "types-chat-dot-os-v0.wit"),
		[]byte("world types-chat-dot-os-v0 {\n    import chat;\n    include lib;\n}\n"), 0o644))

	outPath := filepath.Join(t.TempDir(), "ui", "caller-utils.ts")
	require.NoError(t, Generate(Options{APIDir: apiDir, OutPath: outPath}))

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	got := string(content)

	assert.Contains(t, got, "export class ApiError extends Error {")
	assert.Contains(t, got, "export function parseResponse<T>(response: any): T {")
	// -sys-v0 suffix stripped from the namespace name
	assert.Contains(t, got, "export namespace Chat {")
	assert.Contains(t, got, "export type Payload = number[]")
	assert.Contains(t, got, "export enum Status {")
	assert.Contains(t, got, "export interface ChatMessage {")
	assert.Contains(t, got, "export interface FetchHistoryRequestWrapper {")
	assert.Contains(t, got, "export async function fetch_history(")
	// remote signatures never reach the browser surface
	assert.NotContains(t, got, "send_message")
}

func TestGenerateSkipsWithoutHTTPSignatures(t *testing.T) {
	apiDir := t.TempDir()
	iface := `interface chat {
    // Function signature for: send-message (remote)
    record send-message-signature-remote {
        target: address,
        returning: string,
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "chat.wit"), []byte(iface), 0o644))

	outPath := filepath.Join(t.TempDir(), "caller-utils.ts")
	require.NoError(t, Generate(Options{APIDir: apiDir, OutPath: outPath}))

	_, err := os.Stat(outPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateRejectsReservedSuffixes(t *testing.T) {
	apiDir := t.TempDir()
	iface := `interface chat {
    record chat-response {
        body: string,
    }

    // Function signature for: ping (http)
    record ping-signature-http {
        target: string,
        returning: string,
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "chat.wit"), []byte(iface), 0o644))

	err := Generate(Options{APIDir: apiDir, OutPath: filepath.Join(t.TempDir(), "out.ts")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNamingViolation))
	assert.Contains(t, err.Error(), "chat-response")
}
