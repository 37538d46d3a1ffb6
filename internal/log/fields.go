package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldURL          = "url"
	FieldStatusCode   = "status_code"
	FieldEnvelopeCode = "envelope_code"
	FieldDuration     = "duration_ms"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldBackend      = "backend"
	FieldKey          = "key"
	FieldFile         = "file"
	FieldHasToken     = "has_token"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentGateway = "gateway"
	ComponentHTTP    = "http"
	ComponentToken   = "token"
	ComponentStorage = "storage"
	ComponentUpload  = "upload"
	ComponentUI      = "ui"
	ComponentAMQP    = "amqp"
)

// Operations defines standard operation names
const (
	OpGet      = "get"
	OpSet      = "set"
	OpClear    = "clear"
	OpExecute  = "execute"
	OpUpload   = "upload"
	OpMigrate  = "migrate"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeStorage       = "storage_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeRejected      = "rejected_error"
	ErrorTypeSession       = "session_expired"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRequest adds outgoing request fields
func (f LogFields) WithRequest(method, path string, hasToken bool) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldHasToken] = hasToken
	return f
}

// WithResponse adds response fields
func (f LogFields) WithResponse(statusCode, envelopeCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldEnvelopeCode] = envelopeCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
