package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Codec Errors (E060-E079)

	"E060": {
		Category: CategoryCodec,
		Message:  "Invalid BlazorPack batch",
		Detail:   "The input is not a sequence of length-prefixed MessagePack frames.",
	},
	"E061": {
		Category: CategoryCodec,
		Message:  "Invalid message JSON",
		Detail:   "The input must be a JSON array of message objects, each with a MessageType and the fields its variant requires.",
	},
	"E062": {
		Category: CategoryCodec,
		Message:  "Invalid hex input",
		Detail:   "With --hex the input must be hexadecimal digits; whitespace is ignored.",
	},

	// Proxy Errors (E080-E099)

	"E080": {
		Category: CategoryProxy,
		Message:  "Invalid upstream URL",
		Detail:   "The upstream must be an absolute http or https URL, e.g. http://localhost:5000.",
	},
	"E081": {
		Category: CategoryProxy,
		Message:  "Proxy failed",
		Detail:   "The proxy could not listen on the configured address or stopped unexpectedly.",
	},

	// Archive Errors (E100-E119)

	"E100": {
		Category: CategoryArchive,
		Message:  "Unknown archive backend",
		Detail:   `archive.backend must be "none", "disk" or "s3".`,
	},
	"E101": {
		Category: CategoryArchive,
		Message:  "Archive unavailable",
		Detail:   "The capture archive could not be opened.",
	},

	// Config Errors (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid btp.json",
		Detail:   "The configuration file is not valid JSON.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid scope pattern",
		Detail:   "Scope entries are host glob patterns such as *.example.com.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Configuration not saved",
		Detail:   "btp.json could not be written.",
	},

	// CLI Errors (E140-E159)

	"E140": {
		Category: CategoryCLI,
		Message:  "Cannot read input",
		Detail:   "The input file could not be read.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "No btp.json found",
		Detail:   "Run the command in a directory containing btp.json or pass --config.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
