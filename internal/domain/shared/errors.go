package shared

// DomainError is a business rule failure with a stable code. The HTTP layer
// maps codes to statuses and response codes.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on code, so errors.Is(err, ErrInsufficientStock) holds for an
// error that names the product in its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")

	// storefront rules
	ErrInsufficientStock  = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock")
	ErrCartEmpty          = NewDomainError("CART_EMPTY", "Cart is empty.")
	ErrInvalidStatus      = NewDomainError("INVALID_STATUS", "Invalid status")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "Invalid credentials")
)
