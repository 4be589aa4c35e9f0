package rustsrc

import (
	"os"
	"strings"

	"github.com/witforge/witforge/errors"
)

// ParseFile reads and scans one Rust source file.
func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read source file %s", path)
	}
	return Parse(path, string(content)), nil
}

// Parse scans Rust source text. The scanner is tolerant: items it does not
// understand (macros, traits, free functions, modules) are skipped by brace
// matching, since the compiler validates the source elsewhere. Only
// top-level items are considered, matching how the generator resolves type
// definitions.
func Parse(path, src string) *File {
	s := &scanner{src: src}
	f := &File{Path: path}

	for !s.eof() {
		s.skipTrivia()
		if s.eof() {
			break
		}

		attrs := s.parseAttrs()
		s.skipVisibility()

		ident := s.readIdent()
		switch ident {
		case "struct":
			if st, ok := s.parseStruct(); ok {
				f.Structs = append(f.Structs, st)
			}
		case "enum":
			if en, ok := s.parseEnum(); ok {
				f.Enums = append(f.Enums, en)
			}
		case "impl":
			if im, ok := s.parseImpl(attrs); ok {
				f.Impls = append(f.Impls, im)
			}
		case "":
			s.pos++ // stray punctuation, e.g. a macro delimiter
		default:
			// use, mod, fn, trait, const, macro invocation, ...
			s.skipItem()
		}
	}

	return f
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) at(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

// skipTrivia consumes whitespace, line comments (including doc comments),
// and nested block comments.
func (s *scanner) skipTrivia() {
	for !s.eof() {
		c := s.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.at(1) == '/':
			for !s.eof() && s.peek() != '\n' {
				s.pos++
			}
		case c == '/' && s.at(1) == '*':
			depth := 0
			for !s.eof() {
				if s.peek() == '/' && s.at(1) == '*' {
					depth++
					s.pos += 2
				} else if s.peek() == '*' && s.at(1) == '/' {
					depth--
					s.pos += 2
					if depth == 0 {
						break
					}
				} else {
					s.pos++
				}
			}
		default:
			return
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (s *scanner) readIdent() string {
	s.skipTrivia()
	start := s.pos
	for !s.eof() && isIdentByte(s.peek()) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// skipString consumes a string, raw string, or char/lifetime token starting
// at the current position.
func (s *scanner) skipString() {
	switch s.peek() {
	case '"':
		s.pos++
		for !s.eof() {
			if s.peek() == '\\' {
				s.pos += 2
				continue
			}
			if s.peek() == '"' {
				s.pos++
				return
			}
			s.pos++
		}
	case '\'':
		// char literal or lifetime
		if s.at(1) == '\\' {
			s.pos += 2
			for !s.eof() && s.peek() != '\'' {
				s.pos++
			}
			s.pos++
			return
		}
		if s.at(2) == '\'' {
			s.pos += 3 // 'x'
			return
		}
		s.pos++ // lifetime: just the quote, the ident follows normally
	case 'r':
		// raw string r"..." or r#"..."#
		i := s.pos + 1
		hashes := 0
		for i < len(s.src) && s.src[i] == '#' {
			hashes++
			i++
		}
		if i >= len(s.src) || s.src[i] != '"' {
			s.pos++
			return
		}
		terminator := `"` + strings.Repeat("#", hashes)
		end := strings.Index(s.src[i+1:], terminator)
		if end < 0 {
			s.pos = len(s.src)
			return
		}
		s.pos = i + 1 + end + len(terminator)
	}
}

func (s *scanner) atString() bool {
	c := s.peek()
	if c == '"' || c == '\'' {
		return true
	}
	if c == 'r' && (s.at(1) == '"' || s.at(1) == '#') {
		// only treat as raw string when not part of an identifier
		if s.pos > 0 && isIdentByte(s.src[s.pos-1]) {
			return false
		}
		return true
	}
	return false
}

// skipBalanced consumes a bracketed group starting at the current position,
// respecting nesting, strings, and comments.
func (s *scanner) skipBalanced(open, close byte) {
	depth := 0
	for !s.eof() {
		s.skipTrivia()
		if s.eof() {
			return
		}
		switch {
		case s.atString():
			s.skipString()
		case s.peek() == open:
			depth++
			s.pos++
		case s.peek() == close:
			depth--
			s.pos++
			if depth == 0 {
				return
			}
		default:
			s.pos++
		}
	}
}

// captureBalanced consumes a bracketed group and returns its inner text.
func (s *scanner) captureBalanced(open, close byte) string {
	start := s.pos
	s.skipBalanced(open, close)
	if s.pos <= start+1 {
		return ""
	}
	return s.src[start+1 : s.pos-1]
}

// skipVisibility consumes `pub`, `pub(crate)`, `pub(super)`, ...
func (s *scanner) skipVisibility() {
	s.skipTrivia()
	if strings.HasPrefix(s.src[s.pos:], "pub") && !isIdentByte(s.at(3)) {
		s.pos += 3
		s.skipTrivia()
		if s.peek() == '(' {
			s.skipBalanced('(', ')')
		}
	}
}

// skipItem consumes the remainder of an item the scanner does not model:
// everything up to a top-level `;`, or a `{...}` body.
func (s *scanner) skipItem() {
	depth := 0
	for !s.eof() {
		s.skipTrivia()
		if s.eof() {
			return
		}
		if s.atString() {
			s.skipString()
			continue
		}
		switch s.peek() {
		case '(', '[':
			depth++
			s.pos++
		case ')', ']':
			depth--
			s.pos++
		case '{':
			if depth == 0 {
				s.skipBalanced('{', '}')
				return
			}
			depth++
			s.pos++
		case '}':
			depth--
			s.pos++
		case ';':
			s.pos++
			if depth <= 0 {
				return
			}
		default:
			s.pos++
		}
	}
}

// parseAttrs reads a run of outer attributes. Inner attributes (#![...])
// are skipped without being recorded.
func (s *scanner) parseAttrs() []Attr {
	var attrs []Attr
	for {
		s.skipTrivia()
		if s.peek() != '#' {
			return attrs
		}
		if s.at(1) == '!' {
			s.pos += 2
			s.skipTrivia()
			if s.peek() == '[' {
				s.skipBalanced('[', ']')
			}
			continue
		}
		s.pos++
		s.skipTrivia()
		if s.peek() != '[' {
			return attrs
		}
		inner := s.captureBalanced('[', ']')
		attrs = append(attrs, parseAttrText(inner))
	}
}

// parseAttrText turns attribute text like
// `hyperprocess(name = "x", wit_world = "w")` into structured form.
func parseAttrText(text string) Attr {
	text = strings.TrimSpace(text)
	attr := Attr{Args: map[string]string{}}

	paren := strings.Index(text, "(")
	if paren < 0 {
		attr.Name = lastPathSegment(text)
		return attr
	}

	attr.Name = lastPathSegment(strings.TrimSpace(text[:paren]))
	argsText := strings.TrimSpace(text[paren+1:])
	argsText = strings.TrimSuffix(argsText, ")")

	for _, arg := range splitTopLevel(argsText, false) {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if eq := topLevelIndex(arg, '='); eq >= 0 {
			key := strings.TrimSpace(arg[:eq])
			value := strings.TrimSpace(arg[eq+1:])
			attr.Args[key] = unquote(value)
		} else {
			attr.Args[arg] = ""
		}
	}
	return attr
}

func lastPathSegment(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}
	return path
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func (s *scanner) parseStruct() (Struct, bool) {
	name := s.readIdent()
	if name == "" {
		return Struct{}, false
	}
	st := Struct{Name: name}

	s.skipTrivia()
	if s.peek() == '<' {
		s.skipBalanced('<', '>')
		s.skipTrivia()
	}

	switch s.peek() {
	case '{':
		st.Kind = StructNamed
		st.Fields = s.parseNamedFields()
	case '(':
		st.Kind = StructTuple
		s.skipBalanced('(', ')')
		s.skipTrivia()
		if s.peek() == ';' {
			s.pos++
		}
	case ';':
		st.Kind = StructUnit
		s.pos++
	default:
		return Struct{}, false
	}
	return st, true
}

func (s *scanner) parseNamedFields() []Field {
	var fields []Field
	s.pos++ // consume '{'
	for !s.eof() {
		s.skipTrivia()
		if s.peek() == '}' {
			s.pos++
			return fields
		}
		s.parseAttrs()
		s.skipVisibility()

		name := s.readIdent()
		s.skipTrivia()
		if name == "" || s.peek() != ':' {
			s.skipItem()
			continue
		}
		s.pos++ // ':'
		typeText := s.readTypeText("},")
		fields = append(fields, Field{Name: name, Type: typeText})
		s.skipTrivia()
		if s.peek() == ',' {
			s.pos++
		}
	}
	return fields
}

// readTypeText captures a type expression up to (not consuming) any of the
// stop bytes at bracket depth zero.
func (s *scanner) readTypeText(stops string) string {
	var b strings.Builder
	depth := 0
	for !s.eof() {
		c := s.peek()
		if s.atString() {
			start := s.pos
			s.skipString()
			b.WriteString(s.src[start:s.pos])
			continue
		}
		switch c {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth == 0 && strings.IndexByte(stops, c) >= 0 {
				return strings.TrimSpace(b.String())
			}
			depth--
		default:
			if depth == 0 && strings.IndexByte(stops, c) >= 0 {
				return strings.TrimSpace(b.String())
			}
		}
		b.WriteByte(c)
		s.pos++
	}
	return strings.TrimSpace(b.String())
}

func (s *scanner) parseEnum() (Enum, bool) {
	name := s.readIdent()
	if name == "" {
		return Enum{}, false
	}
	en := Enum{Name: name}

	s.skipTrivia()
	if s.peek() == '<' {
		s.skipBalanced('<', '>')
		s.skipTrivia()
	}
	if s.peek() != '{' {
		return Enum{}, false
	}
	s.pos++

	for !s.eof() {
		s.skipTrivia()
		if s.peek() == '}' {
			s.pos++
			return en, true
		}
		s.parseAttrs()

		variantName := s.readIdent()
		if variantName == "" {
			s.pos++
			continue
		}
		variant := EnumVariant{Name: variantName, Kind: VariantUnit}

		s.skipTrivia()
		switch s.peek() {
		case '(':
			variant.Kind = VariantTuple
			inner := s.captureBalanced('(', ')')
			for _, p := range splitTopLevel(inner, true) {
				if p = strings.TrimSpace(p); p != "" {
					variant.Payloads = append(variant.Payloads, p)
				}
			}
		case '{':
			variant.Kind = VariantStructLike
			s.skipBalanced('{', '}')
		case '=':
			s.pos++
			s.readTypeText("},")
		}
		en.Variants = append(en.Variants, variant)

		s.skipTrivia()
		if s.peek() == ',' {
			s.pos++
		}
	}
	return en, true
}

func (s *scanner) parseImpl(attrs []Attr) (Impl, bool) {
	im := Impl{Attrs: attrs}

	// Scan the header up to the body, keeping the last type name seen so
	// `impl Trait for Type` resolves to Type.
	for !s.eof() {
		s.skipTrivia()
		c := s.peek()
		if c == '{' {
			break
		}
		if c == '<' {
			s.skipBalanced('<', '>')
			continue
		}
		if isIdentByte(c) {
			ident := s.readIdent()
			if ident != "for" && ident != "where" && ident != "dyn" {
				im.TypeName = ident
			}
			continue
		}
		s.pos++
	}
	if s.eof() || im.TypeName == "" {
		return Impl{}, false
	}

	s.pos++ // consume '{'
	for !s.eof() {
		s.skipTrivia()
		if s.peek() == '}' {
			s.pos++
			return im, true
		}

		methodAttrs := s.parseAttrs()
		s.skipVisibility()

		ident := s.readIdent()
		for ident == "async" || ident == "unsafe" || ident == "const" || ident == "extern" {
			s.skipTrivia()
			if s.atString() {
				s.skipString() // extern "C"
			}
			ident = s.readIdent()
		}

		if ident != "fn" {
			// associated const/type or something the scanner does not model
			s.skipItem()
			continue
		}

		if m, ok := s.parseMethod(methodAttrs); ok {
			im.Methods = append(im.Methods, m)
		}
	}
	return im, true
}

func (s *scanner) parseMethod(attrs []Attr) (Method, bool) {
	name := s.readIdent()
	if name == "" {
		return Method{}, false
	}
	m := Method{Name: name, Attrs: attrs}

	s.skipTrivia()
	if s.peek() == '<' {
		s.skipBalanced('<', '>')
		s.skipTrivia()
	}
	if s.peek() != '(' {
		return Method{}, false
	}
	paramsText := s.captureBalanced('(', ')')
	m.Params = parseParams(paramsText)

	s.skipTrivia()
	if s.peek() == '-' && s.at(1) == '>' {
		s.pos += 2
		m.Return = s.readTypeText("{;")
		if idx := whereIndex(m.Return); idx >= 0 {
			m.Return = strings.TrimSpace(m.Return[:idx])
		}
	}

	s.skipTrivia()
	switch s.peek() {
	case '{':
		s.skipBalanced('{', '}')
	case ';':
		s.pos++
	default:
		// where clause without captured return type
		s.skipItem()
	}
	return m, true
}

// whereIndex finds a trailing `where` clause boundary in captured return
// type text.
func whereIndex(typeText string) int {
	depth := 0
	for i := 0; i+5 <= len(typeText); i++ {
		switch typeText[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		}
		if depth == 0 && typeText[i:i+5] == "where" {
			before := i == 0 || !isIdentByte(typeText[i-1])
			after := i+5 == len(typeText) || !isIdentByte(typeText[i+5])
			if before && after {
				return i
			}
		}
	}
	return -1
}

func parseParams(text string) []Param {
	var params []Param
	for _, piece := range splitTopLevel(text, true) {
		piece = strings.TrimSpace(piece)
		if piece == "" || isSelfReceiver(piece) {
			continue
		}
		colon := topLevelIndex(piece, ':')
		if colon < 0 {
			continue
		}
		pattern := strings.TrimSpace(piece[:colon])
		typeText := strings.TrimSpace(piece[colon+1:])

		// `mut name` patterns bind by the trailing identifier
		if idx := strings.LastIndexByte(pattern, ' '); idx >= 0 {
			pattern = pattern[idx+1:]
		}
		params = append(params, Param{Name: pattern, Type: typeText})
	}
	return params
}

func isSelfReceiver(piece string) bool {
	p := strings.TrimSpace(piece)
	p = strings.TrimPrefix(p, "&")
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "'") {
		// &'a self
		if idx := strings.IndexAny(p, " \t"); idx >= 0 {
			p = strings.TrimSpace(p[idx+1:])
		}
	}
	p = strings.TrimPrefix(p, "mut ")
	p = strings.TrimSpace(p)
	return p == "self" || strings.HasPrefix(p, "self:") || strings.HasPrefix(p, "self ")
}

// splitTopLevel splits on commas at bracket depth zero. withAngles also
// tracks <> (for type lists); attribute arguments leave it off since `<`
// can appear as a comparison there.
func splitTopLevel(text string, withAngles bool) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	inString := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\\' {
				current.WriteByte(c)
				i++
				if i < len(text) {
					current.WriteByte(text[i])
				}
				continue
			}
			if c == '"' {
				inString = false
			}
			current.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '<':
			if withAngles {
				depth++
			}
		case '>':
			if withAngles && i > 0 && text[i-1] != '-' {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, current.String())
				current.Reset()
				continue
			}
		}
		current.WriteByte(c)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// topLevelIndex finds the first occurrence of sep at bracket depth zero.
func topLevelIndex(text string, sep byte) int {
	depth := 0
	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		default:
			if c == sep && depth == 0 {
				return i
			}
		}
	}
	return -1
}
