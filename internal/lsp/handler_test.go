package lsp_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"toyc/internal/lsp"
)

const testURI = "file:///workspace/test.toy"

// recorder captures the diagnostics the server publishes
type recorder struct {
	published []*protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method != protocol.ServerTextDocumentPublishDiagnostics {
				return
			}
			r.published = append(r.published, params.(*protocol.PublishDiagnosticsParams))
		},
	}
}

func (r *recorder) last(t *testing.T) []protocol.Diagnostic {
	t.Helper()
	require.NotEmpty(t, r.published, "no diagnostics were published")
	return r.published[len(r.published)-1].Diagnostics
}

func open(t *testing.T, h *lsp.ToycHandler, ctx *glsp.Context, uri, text string) {
	t.Helper()
	require.NoError(t, h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "toy", Version: 1, Text: text},
	}))
}

func change(t *testing.T, h *lsp.ToycHandler, ctx *glsp.Context, uri, text string) {
	t.Helper()
	require.NoError(t, h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: text}},
	}))
}

func TestInitialize(t *testing.T) {
	h := lsp.NewToycHandler(nil, "test")
	result, err := h.Initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	res, ok := result.(*protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, lsp.Name, res.ServerInfo.Name)
	require.NotNil(t, res.Capabilities.SemanticTokensProvider)
	require.NotNil(t, res.Capabilities.CompletionProvider)
}

func TestDidOpenPublishesCompilerDiagnostics(t *testing.T) {
	var rec recorder
	h := lsp.NewToycHandler(nil, "test")

	open(t, h, rec.context(), testURI, "int total = 0\necho(totl)\nfoo x = 1\n")

	require.Len(t, rec.published, 1)
	assert.Equal(t, testURI, rec.published[0].URI)

	diags := rec.last(t)
	require.Len(t, diags, 2)

	undeclared := diags[0]
	assert.Equal(t, "E0001", undeclared.Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityError, *undeclared.Severity)
	assert.Equal(t, "toyc", *undeclared.Source)
	assert.Equal(t, protocol.Position{Line: 1, Character: 5}, undeclared.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 9}, undeclared.Range.End)
	assert.Contains(t, undeclared.Message, "did you mean 'total'?")

	unresolved := diags[1]
	assert.Equal(t, "E0003", unresolved.Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *unresolved.Severity)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, unresolved.Range.Start)
}

func TestDidOpenPublishesParseErrors(t *testing.T) {
	var rec recorder
	h := lsp.NewToycHandler(nil, "test")

	open(t, h, rec.context(), testURI, "echo(1\n")

	diags := rec.last(t)
	require.NotEmpty(t, diags)
	assert.Equal(t, "E0100", diags[0].Code.Value)
	assert.Equal(t, "toyc-parser", *diags[0].Source)
}

func TestDidChangeClearsDiagnostics(t *testing.T) {
	var rec recorder
	h := lsp.NewToycHandler(nil, "test")
	ctx := rec.context()

	open(t, h, ctx, testURI, "echo(x)\n")
	require.Len(t, rec.last(t), 1)

	change(t, h, ctx, testURI, "int x = 1\necho(x)\n")
	assert.NotNil(t, rec.last(t))
	assert.Empty(t, rec.last(t))
}

func TestDidClose(t *testing.T) {
	var rec recorder
	h := lsp.NewToycHandler(nil, "test")
	ctx := rec.context()

	open(t, h, ctx, testURI, "echo(x)\n")
	require.NoError(t, h.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))

	require.Len(t, rec.published, 2)
	assert.Empty(t, rec.last(t))
}

func TestCompletion(t *testing.T) {
	var rec recorder
	h := lsp.NewToycHandler(nil, "test")
	ctx := rec.context()
	open(t, h, ctx, testURI, "int square(int x) { x * x }\ndouble half = 0.5\n")

	result, err := h.TextDocumentCompletion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		},
	})
	require.NoError(t, err)

	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok)

	kinds := map[string]protocol.CompletionItemKind{}
	for _, item := range list.Items {
		kinds[item.Label] = *item.Kind
	}
	assert.Equal(t, protocol.CompletionItemKindKeyword, kinds["int"])
	assert.Equal(t, protocol.CompletionItemKindFunction, kinds["echo"])
	assert.Equal(t, protocol.CompletionItemKindFunction, kinds["echod"])
	assert.Equal(t, protocol.CompletionItemKindFunction, kinds["square"])
	assert.Equal(t, protocol.CompletionItemKindVariable, kinds["half"])
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	var rec recorder
	h := lsp.NewToycHandler(nil, "test")
	ctx := rec.context()
	open(t, h, ctx, testURI, "int square(int x) { x * x }\necho(square(2))\n")

	tokens, err := h.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err, "Failed to decode semantic tokens")
	require.Len(t, decoded, 9)

	assertToken(t, &decoded[0], 1, 1, 3, "type", nil)
	assertToken(t, &decoded[1], 1, 5, 6, "function", []string{"declaration"})
	assertToken(t, &decoded[2], 1, 12, 3, "type", nil)
	assertToken(t, &decoded[3], 1, 16, 1, "parameter", []string{"declaration"})
	assertToken(t, &decoded[4], 1, 21, 1, "variable", nil)
	assertToken(t, &decoded[5], 1, 25, 1, "variable", nil)
	assertToken(t, &decoded[6], 2, 1, 4, "function", nil)
	assertToken(t, &decoded[7], 2, 6, 6, "function", nil)
	assertToken(t, &decoded[8], 2, 13, 1, "number", nil)
}

func TestSemanticTokensReadsUnopenedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.toy")
	require.NoError(t, os.WriteFile(path, []byte("int n = 3\n"), 0o644))
	uri := "file://" + filepath.ToSlash(path)

	var rec recorder
	h := lsp.NewToycHandler(nil, "test")
	tokens, err := h.TextDocumentSemanticTokensFull(rec.context(), &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	assertToken(t, &decoded[0], 1, 1, 3, "type", nil)
	assertToken(t, &decoded[1], 1, 5, 1, "variable", []string{"declaration"})
	assertToken(t, &decoded[2], 1, 9, 1, "number", nil)

	require.Len(t, rec.published, 1, "reading the file publishes its diagnostics")
	assert.Empty(t, rec.last(t))
}

type DecodedToken struct {
	Index     int
	Line      uint32
	Char      uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(raw []uint32) ([]DecodedToken, error) {
	if len(raw)%5 != 0 {
		return nil, fmt.Errorf("raw token data length %d is not a multiple of 5", len(raw))
	}

	var (
		decoded []DecodedToken
		line    uint32
		char    uint32
	)

	for i := 0; i < len(raw); i += 5 {
		deltaLine := raw[i]
		deltaStart := raw[i+1]

		if deltaLine == 0 {
			char += deltaStart
		} else {
			line += deltaLine
			char = deltaStart
		}

		var modifiers []string
		for j, name := range lsp.SemanticTokenModifiers {
			if raw[i+4]&(1<<j) != 0 {
				modifiers = append(modifiers, name)
			}
		}

		decoded = append(decoded, DecodedToken{
			Index:     i / 5,
			Line:      line + 1,
			Char:      char + 1,
			Length:    raw[i+2],
			Type:      lsp.SemanticTokenTypes[raw[i+3]],
			Modifiers: modifiers,
		})
	}

	return decoded, nil
}

func assertToken(t *testing.T, token *DecodedToken, expectedLine, expectedChar, expectedLength uint32, expectedType string, expectedModifiers []string) {
	t.Helper()
	require.Equal(t, expectedLine, token.Line, "line mismatch (expected line %d)", expectedLine)
	require.Equal(t, expectedChar, token.Char, "char mismatch (expected char %d)", expectedChar)
	require.Equal(t, expectedLength, token.Length, "length mismatch")
	require.Equal(t, expectedType, token.Type, "type mismatch")
	require.ElementsMatch(t, expectedModifiers, token.Modifiers, "modifiers mismatch")
}
