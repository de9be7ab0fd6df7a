package utils

import (
	"errors"
	"fmt"
)

// ValidationError is a user-correctable failure keyed to the field that
// caused it (room_id, amount, status, ...). Controllers map it to 422.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Not-found sentinels. Cross-tenant access is reported with these same
// errors so existence never leaks across tenant boundaries.
var (
	ErrReservationNotFound   = errors.New("reservation_not_found")
	ErrRoomNotFound          = errors.New("room_not_found")
	ErrFolioNotFound         = errors.New("folio_not_found")
	ErrPaymentNotFound       = errors.New("payment_not_found")
	ErrInvoiceNotFound       = errors.New("invoice_not_found")
	ErrGuestNotFound         = errors.New("guest_not_found")
	ErrCashSessionNotFound   = errors.New("cash_session_not_found")
	ErrTicketNotFound        = errors.New("maintenance_ticket_not_found")
	ErrPaymentMethodNotFound = errors.New("payment_method_not_found")
	ErrHotelNotFound         = errors.New("hotel_not_found")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	for _, s := range []error{
		ErrReservationNotFound, ErrRoomNotFound, ErrFolioNotFound,
		ErrPaymentNotFound, ErrInvoiceNotFound, ErrGuestNotFound,
		ErrCashSessionNotFound, ErrTicketNotFound,
		ErrPaymentMethodNotFound, ErrHotelNotFound,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
