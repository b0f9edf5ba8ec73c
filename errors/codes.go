package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource errors
const (
	// ErrCodeResourceAcquisition indicates an origin could not be opened or listed.
	ErrCodeResourceAcquisition ErrorCode = "RESOURCE_ACQUISITION_FAILED"
	// ErrCodeProcessSpawn indicates a child process could not be started.
	ErrCodeProcessSpawn ErrorCode = "PROCESS_SPAWN_FAILED"
	// ErrCodeRead indicates an I/O error while reading an already open origin.
	ErrCodeRead ErrorCode = "READ_FAILED"
	// ErrCodeWrite indicates an I/O error while writing sink output.
	ErrCodeWrite ErrorCode = "WRITE_FAILED"
)

// Data errors
const (
	// ErrCodeFieldCountMismatch indicates a line has fewer segments than its column template.
	ErrCodeFieldCountMismatch ErrorCode = "FIELD_COUNT_MISMATCH"
	// ErrCodeMalformedLine indicates a line could not be tokenized.
	ErrCodeMalformedLine ErrorCode = "MALFORMED_LINE"
	// ErrCodeUnknownField indicates a field lookup on an item that does not carry it.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"
	// ErrCodeUnhashableItem indicates an item cannot be used as a frequency table key.
	ErrCodeUnhashableItem ErrorCode = "UNHASHABLE_ITEM"
)

// Configuration errors
const (
	// ErrCodeMisconfiguration indicates an invalid stage parameter or configuration value.
	ErrCodeMisconfiguration ErrorCode = "MISCONFIGURATION"
)

// resourceCodes groups the codes that denote a failure to acquire an origin.
var resourceCodes = map[ErrorCode]bool{
	ErrCodeResourceAcquisition: true,
	ErrCodeProcessSpawn:        true,
}

// IsResourceCode returns true if the code denotes a resource acquisition failure.
func IsResourceCode(code ErrorCode) bool {
	return resourceCodes[code]
}
