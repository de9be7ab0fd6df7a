package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReservationCode returns a unique reference like RSV-20250601-3F2A9C1B.
func NewReservationCode(at time.Time) string {
	return newCode("RSV", at)
}

// NewPOSFolioCode returns a code for a standalone (non-reservation) folio.
func NewPOSFolioCode(at time.Time) string {
	return newCode("POS", at)
}

// NewInvoiceNumber returns a unique invoice number like INV-20250601-3F2A9C1B.
func NewInvoiceNumber(at time.Time) string {
	return newCode("INV", at)
}

// NewRefundReference is the fallback reference stamped on refunds when
// the operator does not supply one.
func NewRefundReference() string {
	return "RFD-" + shortUUID()
}

// MainFolioCode derives the main folio code deterministically from the
// reservation code, keeping EnsureMainFolio idempotent.
func MainFolioCode(reservationCode string) string {
	return "FOL-" + reservationCode
}

func newCode(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, at.UTC().Format("20060102"), shortUUID())
}

func shortUUID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
