package errors

// Error codes for the toyc compiler
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0001-E0099: Lowering errors
// E0100-E0199: Parser errors

const (
	// E0001: identifier or assignment target not bound in the current frame
	ErrorUndeclaredVariable = "E0001"

	// E0002: call to a name that is not in the module
	ErrorMissingFunction = "E0002"

	// E0003: type name that does not resolve to a builtin type
	ErrorUnresolvedType = "E0003"

	// E0004: binary operator applied to operands it has no lowering for
	ErrorInvalidOperands = "E0004"

	// E0005: value that cannot be converted to the required type
	ErrorTypeMismatch = "E0005"

	// E0006: call with the wrong number of arguments
	ErrorArgumentMismatch = "E0006"

	// E0007: second declaration of a function name
	ErrorDuplicateFunction = "E0007"

	// E0008: two parameters of one function share a name
	ErrorDuplicateParameter = "E0008"

	// E0100: surface syntax error
	ErrorParse = "E0100"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUndeclaredVariable:
		return "Variable is used but not declared in the current function"
	case ErrorMissingFunction:
		return "Function is called but not declared before the call"
	case ErrorUnresolvedType:
		return "Type name is not one of int, double or void"
	case ErrorInvalidOperands:
		return "Binary operator is not defined for these operand types"
	case ErrorTypeMismatch:
		return "Value cannot be converted to the expected type"
	case ErrorArgumentMismatch:
		return "Call passes a different number of arguments than the function declares"
	case ErrorDuplicateFunction:
		return "Function name is already declared in the module"
	case ErrorDuplicateParameter:
		return "Parameter name is already used by an earlier parameter"
	case ErrorParse:
		return "Source text does not match the grammar"
	default:
		return "Unknown error"
	}
}

// GetErrorCategory returns the category of an error code
func GetErrorCategory(code string) string {
	switch code {
	case ErrorParse:
		return "Syntax"
	case ErrorUnresolvedType, ErrorTypeMismatch, ErrorInvalidOperands:
		return "Type"
	default:
		return "Lowering"
	}
}
