package services

import (
	"testing"
	"time"

	"pms-backend/models"
)

func TestBusinessDayCloseReopenCycle(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2026, 8, 1, 18, 30, 0, 0, time.UTC)

	// Open by default: no row means open.
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, date, false); err != nil {
		t.Fatalf("fresh date must be open: %v", err)
	}

	if err := env.NightAudit.CloseBusinessDay(env.TC, date, nil); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, date, false); err == nil {
		t.Fatal("closed date must be rejected")
	}
	// Any time on the same calendar day hits the same lock.
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, date.Add(5*time.Hour), false); err == nil {
		t.Fatal("same-day timestamp must be rejected too")
	}
	// Override bypasses the lock.
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, date, true); err != nil {
		t.Fatalf("override must bypass the lock: %v", err)
	}

	// Idempotent close.
	if err := env.NightAudit.CloseBusinessDay(env.TC, date, nil); err != nil {
		t.Fatalf("second close must be a no-op: %v", err)
	}
	var count int64
	env.DB.Model(&models.BusinessDay{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one business day row, got %d", count)
	}

	if err := env.NightAudit.ReopenBusinessDay(env.TC, date); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, date, false); err != nil {
		t.Fatalf("reopened date must be open: %v", err)
	}
	// Reopening an open day is an error.
	if err := env.NightAudit.ReopenBusinessDay(env.TC, date); err == nil {
		t.Fatal("reopening an open day must fail")
	}
}

func TestCloseYesterdayForAllHotels(t *testing.T) {
	env := newTestEnv(t)

	env.NightAudit.CloseYesterdayForAllHotels()

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, yesterday, false); err == nil {
		t.Fatal("yesterday must be closed after the audit run")
	}
	// Today stays open.
	if err := env.NightAudit.AssertBusinessDateOpen(env.TC, time.Now().UTC(), false); err != nil {
		t.Fatalf("today must remain open: %v", err)
	}
}
