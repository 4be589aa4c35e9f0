package typescript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/witforge/witforge/errors"
	"github.com/witforge/witforge/logger"
	"github.com/witforge/witforge/naming"
	"github.com/witforge/witforge/wit"
)

// Options configures one TypeScript caller emission.
type Options struct {
	// APIDir holds the generated WIT interface and world files.
	APIDir string
	// OutPath is the aggregate file to write, conventionally
	// <root>/target/ui/caller-utils.ts.
	OutPath string
}

// appTypes is everything collected for one app's namespace.
type appTypes struct {
	docs []*wit.Document
}

// Generate writes the TypeScript caller file: shared fetch plumbing, then
// one namespace per app holding its custom types and the request/response
// pair plus async function for every http signature. When no interface
// exposes an http signature, nothing is written at all.
func Generate(opts Options) error {
	apps, err := collectApps(opts.APIDir)
	if err != nil {
		return err
	}

	hasFunctions := false
	for _, app := range apps {
		for _, doc := range app.docs {
			for _, sig := range doc.Signatures {
				if sig.Attr == wit.AttrHTTP {
					hasFunctions = true
				}
			}
		}
	}
	if !hasFunctions {
		logger.Debugw("no http signatures found, skipping TypeScript generation")
		return nil
	}

	var b strings.Builder
	b.WriteString(tsHeader)

	var names []string
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		writeNamespace(&b, name, apps[name])
	}
	b.WriteString("\n")

	if err := os.MkdirAll(filepath.Dir(opts.OutPath), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(opts.OutPath))
	}
	if err := os.WriteFile(opts.OutPath, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", opts.OutPath)
	}
	logger.Infof("generated TypeScript caller file %s", opts.OutPath)
	return nil
}

// collectApps parses every interface file under apiDir and groups the
// results by app, derived from the file name with the types- prefix and
// -sys-v0 suffix stripped.
func collectApps(apiDir string) (map[string]*appTypes, error) {
	entries, err := os.ReadDir(apiDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read API directory %s", apiDir)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".wit") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	apps := map[string]*appTypes{}
	for _, name := range names {
		path := filepath.Join(apiDir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read WIT file %s", path)
		}
		if wit.ContainsWorld(string(content)) {
			continue
		}

		doc := wit.ParseInterface(string(content))
		if err := checkReservedSuffixes(doc, path); err != nil {
			return nil, err
		}

		app := appName(strings.TrimSuffix(name, ".wit"))
		if apps[app] == nil {
			apps[app] = &appTypes{}
		}
		apps[app].docs = append(apps[app].docs, doc)
	}
	return apps, nil
}

func appName(stem string) string {
	name := strings.TrimPrefix(stem, "types-")
	name = strings.TrimSuffix(name, "-sys-v0")
	return naming.ToPascalCase(name)
}

// checkReservedSuffixes rejects user types whose PascalCase names collide
// with the wrapper type names this emitter synthesizes.
func checkReservedSuffixes(doc *wit.Document, path string) error {
	check := func(name string) error {
		pascal := naming.ToPascalCase(name)
		for _, suffix := range []string{"RequestWrapper", "ResponseWrapper", "Request", "Response"} {
			if strings.HasSuffix(pascal, suffix) {
				return errors.NamingViolationf(
					"type %s in %s has the reserved suffix %s; these suffixes are reserved for generated wrapper types, rename the type",
					name, path, suffix)
			}
		}
		return nil
	}
	for _, r := range doc.Records {
		if err := check(r.Name); err != nil {
			return err
		}
	}
	for _, v := range doc.Variants {
		if err := check(v.Name); err != nil {
			return err
		}
	}
	for _, e := range doc.Enums {
		if err := check(e.Name); err != nil {
			return err
		}
	}
	return nil
}

// GenerateInterface renders a WIT record as an exported interface.
func GenerateInterface(rec wit.Record) string {
	var fields []string
	for _, f := range rec.Fields {
		fields = append(fields, fmt.Sprintf("  %s: %s;",
			naming.ToSnakeCase(f.Name), WitTypeToTypeScript(f.Type)))
	}
	return fmt.Sprintf("export interface %s {\n%s\n}",
		naming.ToPascalCase(rec.Name), strings.Join(fields, "\n"))
}

// GenerateEnum renders a WIT enum as a string-valued enum, matching the
// serialized case names.
func GenerateEnum(en wit.Enum) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export enum %s {\n", naming.ToPascalCase(en.Name))
	for _, c := range en.Cases {
		pascal := naming.ToPascalCase(c)
		fmt.Fprintf(&b, "  %s = %q,\n", pascal, pascal)
	}
	b.WriteString("}")
	return b.String()
}

// GenerateVariant renders a WIT variant: a string union when no case carries
// a payload, otherwise a discriminated object union.
func GenerateVariant(v wit.Variant) string {
	typeName := naming.ToPascalCase(v.Name)

	hasData := false
	for _, c := range v.Cases {
		if c.Type != "" {
			hasData = true
		}
	}

	var cases []string
	if !hasData {
		for _, c := range v.Cases {
			cases = append(cases, fmt.Sprintf("%q", naming.ToPascalCase(c.Name)))
		}
	} else {
		for _, c := range v.Cases {
			caseName := naming.ToPascalCase(c.Name)
			if c.Type != "" {
				cases = append(cases, fmt.Sprintf("{ %s: %s }", caseName, WitTypeToTypeScript(c.Type)))
			} else {
				cases = append(cases, fmt.Sprintf("{ %s: null }", caseName))
			}
		}
	}
	return fmt.Sprintf("export type %s = %s;", typeName, strings.Join(cases, " | "))
}

// GenerateFunction renders the request wrapper interface, the response type
// alias, and the async function for one http signature. Returns false for
// any other transport.
func GenerateFunction(sig wit.SignatureStruct) (reqIface, respAlias, fnImpl string, ok bool) {
	if sig.Attr != wit.AttrHTTP {
		return "", "", "", false
	}

	fnName := naming.ToSnakeCase(sig.FunctionName)
	pascalName := naming.ToPascalCase(sig.FunctionName)

	var params, paramNames, paramTypes []string
	fullReturn := "void"
	unwrappedReturn := "void"
	for _, f := range sig.Fields {
		if f.Name == "target" {
			continue // handled by the request plumbing
		}
		tsType := WitTypeToTypeScript(f.Type)
		if f.Name == "returning" {
			fullReturn = tsType
			if okType, isResult := ExtractResultOkType(f.Type); isResult {
				unwrappedReturn = okType
			} else {
				unwrappedReturn = tsType
			}
			continue
		}
		name := naming.ToSnakeCase(f.Name)
		params = append(params, fmt.Sprintf("%s: %s", name, tsType))
		paramNames = append(paramNames, name)
		paramTypes = append(paramTypes, tsType)
	}

	var paramType, paramValue string
	switch len(paramNames) {
	case 0:
		paramType, paramValue = "null", "null"
	case 1:
		paramType, paramValue = paramTypes[0], paramNames[0]
	default:
		paramType = "[" + strings.Join(paramTypes, ", ") + "]"
		paramValue = "[" + strings.Join(paramNames, ", ") + "]"
	}

	wrapperName := pascalName + "RequestWrapper"
	reqIface = fmt.Sprintf("export interface %s {\n  %s: %s\n}", wrapperName, pascalName, paramType)
	respAlias = fmt.Sprintf("export type %sResponse = %s;", pascalName, fullReturn)

	method, path := sig.HTTPMethod, sig.HTTPPath
	if method == "" {
		method = "POST"
	}
	if path == "" {
		path = "/api"
	}

	var b strings.Builder
	b.WriteString("/**\n")
	fmt.Fprintf(&b, " * %s\n", fnName)
	for _, p := range params {
		fmt.Fprintf(&b, " * @param %s\n", p)
	}
	b.WriteString(" * @returns Promise with result\n")
	b.WriteString(" * @throws ApiError if the request fails\n")
	b.WriteString(" */\n")
	fmt.Fprintf(&b, "export async function %s(%s): Promise<%s> {\n",
		fnName, strings.Join(params, ", "), unwrappedReturn)
	fmt.Fprintf(&b, "  const data: %s = {\n    %s: %s,\n  };\n\n", wrapperName, pascalName, paramValue)
	fmt.Fprintf(&b, "  return await apiRequest<%s, %s>('%s', '%s', data);\n",
		wrapperName, unwrappedReturn, path, method)
	b.WriteString("}")
	return reqIface, respAlias, b.String(), true
}

func writeNamespace(b *strings.Builder, name string, app *appTypes) {
	fmt.Fprintf(b, "\n// ============= %s Hyperapp =============\n", name)
	fmt.Fprintf(b, "export namespace %s {\n", name)

	hasTypes := false
	for _, doc := range app.docs {
		if len(doc.Aliases)+len(doc.Enums)+len(doc.Records)+len(doc.Variants) > 0 {
			hasTypes = true
		}
	}

	if hasTypes {
		b.WriteString("\n  // Custom Types\n")
		for _, doc := range app.docs {
			for _, a := range doc.Aliases {
				rhs := WitTypeToTypeScript(a.RHS)
				if a.Name == "value" {
					// ergonomic JSON usage on the UI side
					rhs = "unknown"
				}
				fmt.Fprintf(b, "  export type %s = %s\n", naming.ToPascalCase(a.Name), rhs)
			}
			if len(doc.Aliases) > 0 {
				b.WriteString("\n")
			}
			for _, en := range doc.Enums {
				writeIndented(b, GenerateEnum(en))
			}
			for _, rec := range doc.Records {
				writeIndented(b, GenerateInterface(rec))
			}
			for _, v := range doc.Variants {
				writeIndented(b, GenerateVariant(v))
			}
		}
	}

	var reqParts, fnParts []string
	for _, doc := range app.docs {
		for _, sig := range doc.Signatures {
			reqIface, respAlias, fnImpl, ok := GenerateFunction(sig)
			if !ok {
				continue
			}
			reqParts = append(reqParts, reqIface, respAlias)
			fnParts = append(fnParts, fnImpl)
		}
	}
	if len(fnParts) > 0 {
		b.WriteString("\n  // API Request/Response Types\n")
		for _, part := range reqParts {
			writeIndented(b, part)
		}
		b.WriteString("\n  // API Functions\n")
		for _, part := range fnParts {
			writeIndented(b, part)
		}
	}

	b.WriteString("}\n")
}

func writeIndented(b *strings.Builder, block string) {
	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

const tsHeader = `// Define a custom error type for API errors
export class ApiError extends Error {
  constructor(message: string, public readonly details?: unknown) {
    super(message);
    this.name = 'ApiError';
  }
}

// Parser for the Result-style responses
// eslint-disable-next-line @typescript-eslint/no-explicit-any
export function parseResponse<T>(response: any): T {
  try {
    if ('Ok' in response && response.Ok !== undefined && response.Ok !== null) {
      return response.Ok as T;
    }

    if ('Err' in response && response.Err !== undefined) {
      throw new ApiError(` + "`API returned an error`" + `, response.Err);
    }
  } catch (e) {
    return response as T;
  }
  return response as T;
}

/**
 * Generic API request function
 * @param path - API endpoint path
 * @param method - HTTP method (GET, POST, PUT, DELETE, etc.)
 * @param data - Request data
 * @returns Promise with parsed response data
 * @throws ApiError if the request fails or response contains an error
 */
async function apiRequest<T, R>(path: string, method: string, data: T): Promise<R> {
  const BASE_URL = import.meta.env.BASE_URL || window.location.origin;

  const requestOptions: RequestInit = {
    method: method,
    headers: {
      "Content-Type": "application/json",
    },
  };

  // Only add body for methods that support it
  if (method !== 'GET' && method !== 'HEAD') {
    requestOptions.body = JSON.stringify(data);
  }

  const url = path.startsWith('/') ? ` + "`${BASE_URL}${path}`" + ` : ` + "`${BASE_URL}/${path}`" + `;
  const result = await fetch(url, requestOptions);

  if (!result.ok) {
    throw new ApiError(` + "`HTTP request failed with status: ${result.status}`" + `);
  }

  const jsonResponse = await result.json();
  return parseResponse<R>(jsonResponse);
}
`
