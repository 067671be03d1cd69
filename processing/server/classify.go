package server

import "strings"

// ErrorKind categorizes an error line emitted by the worker.
type ErrorKind string

const (
	ErrorImport     ErrorKind = "import"
	ErrorSyntax     ErrorKind = "syntax"
	ErrorFile       ErrorKind = "file"
	ErrorPermission ErrorKind = "permission"
	ErrorRuntime    ErrorKind = "runtime"
	ErrorValue      ErrorKind = "value"
	ErrorTraceback  ErrorKind = "traceback"
	ErrorException  ErrorKind = "exception"
	ErrorGeneric    ErrorKind = "generic"
)

// errorPatterns maps Python error markers to categories. The list is
// ordered: the first matching substring wins, so the specific marker
// types come before the catch-all Traceback/Exception entries.
var errorPatterns = []struct {
	substr string
	kind   ErrorKind
}{
	{"ImportError", ErrorImport},
	{"ModuleNotFoundError", ErrorImport},
	{"SyntaxError", ErrorSyntax},
	{"IndentationError", ErrorSyntax},
	{"FileNotFoundError", ErrorFile},
	{"PermissionError", ErrorPermission},
	{"RuntimeError", ErrorRuntime},
	{"ValueError", ErrorValue},
	{"Traceback", ErrorTraceback},
	{"Exception", ErrorException},
}

// classifyError assigns an ErrorKind to a stderr line. Lines matching
// no known marker are still reported, as ErrorGeneric.
func classifyError(line string) ErrorKind {
	for _, p := range errorPatterns {
		if strings.Contains(line, p.substr) {
			return p.kind
		}
	}
	return ErrorGeneric
}
