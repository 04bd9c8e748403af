package config

const SourceFileExt = ".ql"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".ql", ".quill"}

const Version = "0.3.0"

// Recursion limits. DefaultRecursionLimit is the per-function call depth
// at which a StackOverflow is raised. With overflow ignored, calls may
// continue up to HardRecursionLimit.
const (
	DefaultRecursionLimit = 500
	HardRecursionLimit    = 10000
	MaxEvalDepth          = 200000
)

// Built-in function names
const (
	PrintFuncName      = "print"
	StringFuncName     = "string"
	IntFuncName        = "int"
	FloatFuncName      = "float"
	BoolFuncName       = "bool"
	TypeFuncName       = "type"
	LenFuncName        = "len"
	RangeFuncName      = "range"
	CopyFuncName       = "copy"
	LocalsFuncName     = "locals"
	GlobalsFuncName    = "globals"
	ParseFuncName      = "parse"
	YamlDecodeFuncName = "yaml_decode"
	YamlEncodeFuncName = "yaml_encode"
	AssertFuncName     = "assert"
	SetAttrFuncName    = "setattr"
	GetAttrFuncName    = "getattr"
	HasAttrFuncName    = "hasattr"
	DelAttrFuncName    = "delattr"
)

// ThisName is bound to the receiving instance inside methods.
const ThisName = "this"

const (
	DefaultPrompt       = "quill> "
	ContinuationPrompt  = "  ...> "
	DefaultHistoryFile  = ".quill_history"
	DefaultSettingsFile = "quill.yaml"
	EnvPrefix           = "QUILL_"
)

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
