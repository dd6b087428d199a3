package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"toyc/internal/ast"
	"toyc/internal/builtins"
	"toyc/internal/codegen"
	"toyc/internal/config"
	"toyc/internal/parser"
	"toyc/internal/stdlib"
)

// Name identifies the server to clients
const Name = "toyc"

var log = commonlog.GetLogger("toyc.lsp")

// ToycHandler implements the LSP server handlers for the toy language
type ToycHandler struct {
	mu      sync.RWMutex
	asts    map[string]*ast.Block
	cfg     *config.Config
	version string
}

// NewToycHandler creates a handler compiling documents with cfg
func NewToycHandler(cfg *config.Config, version string) *ToycHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &ToycHandler{
		asts:    make(map[string]*ast.Block),
		cfg:     cfg,
		version: version,
	}
}

// Handler wires the handler methods into a glsp protocol handler
func (h *ToycHandler) Handler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:                     h.Initialize,
		Initialized:                    h.Initialized,
		Shutdown:                       h.Shutdown,
		SetTrace:                       h.SetTrace,
		TextDocumentDidOpen:            h.TextDocumentDidOpen,
		TextDocumentDidClose:           h.TextDocumentDidClose,
		TextDocumentDidChange:          h.TextDocumentDidChange,
		TextDocumentCompletion:         h.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: h.TextDocumentSemanticTokensFull,
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *ToycHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: ptrString(h.version),
		},
	}, nil
}

func (h *ToycHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *ToycHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *ToycHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen compiles the opened document and publishes its diagnostics
func (h *ToycHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	sendDiagnosticNotification(ctx, params.TextDocument.URI, h.analyze(path, params.TextDocument.Text))
	return nil
}

// TextDocumentDidChange recompiles the full new text of a document
func (h *ToycHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	text, ok := lastChange(params.ContentChanges)
	if !ok {
		return nil
	}

	sendDiagnosticNotification(ctx, params.TextDocument.URI, h.analyze(path, text))
	return nil
}

// TextDocumentDidClose forgets a document and clears its diagnostics
func (h *ToycHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debugf("closed file: %s", params.TextDocument.URI)

	rawURI := params.TextDocument.URI
	path, err := uriToPath(rawURI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	h.mu.Lock()
	delete(h.asts, path)
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, rawURI, []protocol.Diagnostic{})
	return nil
}

// TextDocumentCompletion offers builtin types, runtime functions and the
// names declared at the top level of the document
func (h *ToycHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	var items []protocol.CompletionItem

	typeNames := make([]string, 0, len(builtins.BuiltinTypes))
	for name := range builtins.BuiltinTypes {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)
	for _, name := range typeNames {
		items = append(items, completion(name, protocol.CompletionItemKindKeyword, "builtin type"))
	}

	for _, fn := range stdlib.Functions() {
		items = append(items, completion(fn.Name, protocol.CompletionItemKindFunction, fn.Doc))
	}

	if path, err := uriToPath(params.TextDocument.URI); err == nil {
		h.mu.RLock()
		root := h.asts[path]
		h.mu.RUnlock()

		if root != nil {
			for _, stmt := range root.Statements {
				switch s := stmt.(type) {
				case *ast.FunctionDeclaration:
					items = append(items, completion(s.Name.Name, protocol.CompletionItemKindFunction, s.ReturnType.Name+" function"))
				case *ast.VariableDeclaration:
					items = append(items, completion(s.Name.Name, protocol.CompletionItemKindVariable, s.Type.Name))
				}
			}
		}
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *ToycHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	rawURI := params.TextDocument.URI

	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	root, err := h.getOrUpdateAST(ctx, path, rawURI)
	if err != nil {
		return nil, err
	}

	tokens := collectSemanticTokens(root)

	var data []uint32
	var prevLine, prevStart uint32

	// delta-line, delta-start encoding
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		} else {
			deltaStart = token.StartChar
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

func (h *ToycHandler) getOrUpdateAST(ctx *glsp.Context, path string, rawURI protocol.DocumentUri) (*ast.Block, error) {
	h.mu.RLock()
	root, ok := h.asts[path]
	h.mu.RUnlock()
	if ok {
		return root, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	sendDiagnosticNotification(ctx, rawURI, h.analyze(path, string(content)))

	h.mu.RLock()
	root = h.asts[path]
	h.mu.RUnlock()
	return root, nil
}

// analyze parses and compiles text, remembering the syntax tree when it
// parses. Every diagnostic of the compilation is returned.
func (h *ToycHandler) analyze(path, text string) []protocol.Diagnostic {
	result := parser.ParseSource(path, text)

	h.mu.Lock()
	if result.OK() {
		h.asts[path] = result.Program
	} else {
		delete(h.asts, path)
	}
	h.mu.Unlock()

	if !result.OK() {
		return ConvertParseErrors(result.ParseErrors)
	}

	opts := h.cfg.CodegenOptions(nil)
	opts.Policy = codegen.ContinueOnError
	unit := codegen.New(opts)
	if err := unit.GenerateCode(result.Program); err != nil {
		log.Debugf("%s: %s", path, err)
	}
	return ConvertCompilerErrors(unit.Diagnostics())
}

// lastChange returns the text of the final full-document change
func lastChange(changes []any) (string, bool) {
	for i := len(changes) - 1; i >= 0; i-- {
		switch change := changes[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return change.Text, true
		case protocol.TextDocumentContentChangeEvent:
			return change.Text, true
		}
	}
	return "", false
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...)
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	log.Debugf("sending %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func completion(label string, kind protocol.CompletionItemKind, detail string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  label,
		Kind:   &kind,
		Detail: ptrString(detail),
	}
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
