package services

import (
	"testing"
	"time"

	"pms-backend/models"
	"pms-backend/utils"
)

func (e *testEnv) posFolioWithCharge(t *testing.T, amount int64) *models.Folio {
	t.Helper()
	folio, err := e.Folios.CreatePOSFolio(e.TC, nil)
	if err != nil {
		t.Fatalf("create pos folio: %v", err)
	}
	if _, err := e.Folios.AddCharge(e.TC, folio.ID, ChargeInput{
		Description: "Consommation", Quantity: dec(1), UnitPrice: dec(amount),
	}); err != nil {
		t.Fatalf("add charge: %v", err)
	}
	return folio
}

func TestCashPaymentRequiresOpenSession(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 10000)

	_, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CashMethod.ID, Amount: dec(10000),
	})
	if err == nil {
		t.Fatal("cash payment without an open session must fail")
	}
	ve, ok := utils.AsValidation(err)
	if !ok || ve.Field != "cash_session_id" {
		t.Fatalf("expected cash_session_id validation error, got %v", err)
	}

	session, err := env.Sessions.Open(env.TC, models.CashSessionTypeFrontdesk, dec(5000), nil)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CashMethod.ID, Amount: dec(10000),
	})
	if err != nil {
		t.Fatalf("cash payment with open session: %v", err)
	}
	if payment.CashSessionID == nil || *payment.CashSessionID != session.ID {
		t.Fatal("payment must attach to the open session")
	}
}

func TestCardPaymentNeedsNoSession(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 8000)

	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(8000),
	})
	if err != nil {
		t.Fatalf("card payment: %v", err)
	}
	if payment.CashSessionID != nil {
		t.Fatal("card payment must not attach to a cash session")
	}
	if payment.EntryType != models.PaymentEntryNormal {
		t.Fatalf("entry type = %s, want normal", payment.EntryType)
	}
}

func TestRefundNeverExceedsOriginal(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 20000)

	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(20000),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	// Over-refund rejected.
	if _, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: payment.ID, Amount: dec(25000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	}); err == nil {
		t.Fatal("refund above the original amount must fail")
	}

	refund, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: payment.ID, Amount: dec(5000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	})
	if err != nil {
		t.Fatalf("partial refund: %v", err)
	}
	assertDecimal(t, refund.Amount, -5000, "refund amount")
	if refund.ParentPaymentID == nil || *refund.ParentPaymentID != payment.ID {
		t.Fatal("refund must link to its origin payment")
	}
	if refund.RefundReference == "" {
		t.Fatal("refund reference must be generated when absent")
	}

	got, err := env.Folios.Get(env.TC, folio.ID)
	if err != nil {
		t.Fatalf("reload folio: %v", err)
	}
	assertDecimal(t, got.PaymentsTotal, 15000, "net payments")
	assertDecimal(t, got.Balance, 5000, "balance after refund")

	// Remaining refundable is now 15000; 16000 must be rejected,
	// 15000 exactly must pass.
	if _, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: payment.ID, Amount: dec(16000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	}); err == nil {
		t.Fatal("refund above remaining refundable must fail")
	}
	if _, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: payment.ID, Amount: dec(15000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	}); err != nil {
		t.Fatalf("refund of exact remainder: %v", err)
	}
}

func TestRefundOfRefundRejected(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 10000)

	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(10000),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	refund, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: payment.ID, Amount: dec(4000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	})
	if err != nil {
		t.Fatalf("refund: %v", err)
	}

	if _, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: refund.ID, Amount: dec(1000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	}); err == nil {
		t.Fatal("refunding a refund must fail")
	}
}

func TestVoidPaymentSoftDeletesWithMetadata(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 10000)

	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(10000),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	if err := env.Payments.VoidPayment(env.TC, payment.ID, 7, "erreur de saisie", false); err != nil {
		t.Fatalf("void payment: %v", err)
	}

	// Gone from the default scope, folio back to unpaid.
	got, err := env.Folios.Get(env.TC, folio.ID)
	if err != nil {
		t.Fatalf("reload folio: %v", err)
	}
	assertDecimal(t, got.PaymentsTotal, 0, "payments after void")
	assertDecimal(t, got.Balance, 10000, "balance after void")

	// The tombstone keeps the void metadata.
	var tomb models.Payment
	if err := env.DB.Unscoped().First(&tomb, payment.ID).Error; err != nil {
		t.Fatalf("load tombstone: %v", err)
	}
	if tomb.VoidedAt == nil || tomb.VoidedByID == nil || *tomb.VoidedByID != 7 {
		t.Fatal("void metadata missing on tombstone")
	}
	if tomb.VoidReason != "erreur de saisie" {
		t.Fatalf("void reason = %q", tomb.VoidReason)
	}

	// A voided payment cannot be voided again, and the failure names the
	// void, not a missing payment.
	err = env.Payments.VoidPayment(env.TC, payment.ID, 7, "", false)
	if err == nil {
		t.Fatal("double void must fail")
	}
	ve, ok := utils.AsValidation(err)
	if !ok || ve.Field != "payment_id" {
		t.Fatalf("double void must report the payment as already voided, got %v", err)
	}
}

func TestVoidBlockedOncePaymentHasRefunds(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 10000)

	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(10000),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if _, err := env.Payments.RefundPayment(env.TC, RefundPaymentInput{
		PaymentID: payment.ID, Amount: dec(2000), PaymentMethodID: env.CardMethod.ID, ActorID: 1,
	}); err != nil {
		t.Fatalf("refund: %v", err)
	}

	if err := env.Payments.VoidPayment(env.TC, payment.ID, 1, "", false); err == nil {
		t.Fatal("void must be blocked once refunds exist")
	}
}

func TestClosedBusinessDayGatesPayments(t *testing.T) {
	env := newTestEnv(t)
	folio := env.posFolioWithCharge(t, 10000)

	paidAt := time.Date(2026, 8, 1, 15, 0, 0, 0, time.UTC)
	payment, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(10000), PaidAt: &paidAt,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	if err := env.NightAudit.CloseBusinessDay(env.TC, paidAt, nil); err != nil {
		t.Fatalf("close business day: %v", err)
	}

	// New payment dated to the closed day is rejected.
	if _, err := env.Payments.RecordPayment(env.TC, RecordPaymentInput{
		FolioID: folio.ID, PaymentMethodID: env.CardMethod.ID, Amount: dec(1000), PaidAt: &paidAt,
	}); err == nil {
		t.Fatal("payment on a closed day must fail")
	}

	// Void of a payment on the closed day: blocked, then allowed with
	// the explicit override.
	if err := env.Payments.VoidPayment(env.TC, payment.ID, 1, "", false); err == nil {
		t.Fatal("void on a closed day must fail without override")
	}
	if err := env.Payments.VoidPayment(env.TC, payment.ID, 1, "correction", true); err != nil {
		t.Fatalf("void with override: %v", err)
	}
}
