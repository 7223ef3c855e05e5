package errors

// Registered error codes.
const (
	CodeNoMem         = "E101"
	CodeCapacity      = "E102"
	CodeMalformed     = "E103"
	CodeInvalidCtx    = "E104"
	CodeStream        = "E105"
	CodeInvalidArg    = "E106"
	CodeConfigLoad    = "E201"
	CodeConfigInvalid = "E202"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Memory Errors (E101-E102)
	// ============================================

	CodeNoMem: {
		Category: CategoryMemory,
		Message:  "Out of memory",
		Detail:   "The requested size cannot be allocated or exceeds the buffer's configured limit.",
	},
	CodeCapacity: {
		Category: CategoryMemory,
		Message:  "Capacity exceeded",
		Detail:   "The buffer is backed by fixed storage and cannot grow to hold the data.",
	},

	// ============================================
	// Escape Errors (E103-E104)
	// ============================================

	CodeMalformed: {
		Category: CategoryEscape,
		Message:  "Malformed escape sequence",
		Detail:   "An escape introducer is not followed by a valid fixed-width representation.",
	},
	CodeInvalidCtx: {
		Category: CategoryEscape,
		Message:  "Invalid escape context",
		Detail:   "The escape context is undefined, unknown, or combines several contexts.",
	},

	// ============================================
	// I/O and Argument Errors (E105-E106)
	// ============================================

	CodeStream: {
		Category: CategoryIO,
		Message:  "Stream read failed",
		Detail:   "Reading from the input stream returned an error other than end of input.",
	},
	CodeInvalidArg: {
		Category: CategoryArgument,
		Message:  "Invalid argument",
		Detail:   "An argument is out of range or empty where a value is required.",
	},

	// ============================================
	// Config Errors (E201-E202)
	// ============================================

	CodeConfigLoad: {
		Category: CategoryConfig,
		Message:  "Config load failed",
		Detail:   "The configuration file could not be read or parsed.",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "The configuration file parsed but contains invalid values.",
	},
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
