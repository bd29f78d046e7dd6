package store

import (
	"context"
	"errors"
	"testing"

	"voicedesk/internal/calls"
)

func TestMemory_CreateContactValidation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateContact(ctx, "", "+15550001111"); !errors.Is(err, calls.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty name, got %v", err)
	}
	if _, err := m.CreateContact(ctx, "Ada", "  "); !errors.Is(err, calls.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for blank number, got %v", err)
	}
}

func TestMemory_ListContactsNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateContact(ctx, "Ada", "+10000000000"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := m.CreateContact(ctx, "Grace", "+10000000001"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	out, err := m.ListContacts(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(out))
	}
	if out[0].Name != "Grace" || out[1].Name != "Ada" {
		t.Fatalf("expected newest first, got %q then %q", out[0].Name, out[1].Name)
	}
	if out[0].ID == "" || out[0].CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and timestamp: %+v", out[0])
	}
}

func TestMemory_CallRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.CreateCall(ctx, calls.Call{
		ExternalCallID: "ext-1",
		PhoneNumber:    "+15550001111",
		Name:           "Ada",
		Status:         calls.CallStatusInitiated,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, err := m.FindCallByExternalID(ctx, created.ExternalCallID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != calls.CallStatusInitiated {
		t.Fatalf("expected initiated, got %q", got.Status)
	}
	if got.Transcript != nil {
		t.Fatalf("expected nil transcript, got %v", got.Transcript)
	}
}

func TestMemory_DuplicateExternalIDRejected(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateCall(ctx, calls.Call{ExternalCallID: "ext-1", PhoneNumber: "+1", Name: "A"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := m.CreateCall(ctx, calls.Call{ExternalCallID: "ext-1", PhoneNumber: "+1", Name: "A"}); !errors.Is(err, calls.ErrInvalidArgument) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestMemory_UpdateUnknownIDIsNoOp(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateCall(ctx, calls.Call{ExternalCallID: "ext-1", PhoneNumber: "+1", Name: "A", Status: calls.CallStatusInitiated}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	status := calls.CallStatusCompleted
	_, err := m.UpdateCallByExternalID(ctx, "no-such-id", calls.CallUpdate{Status: &status})
	if !errors.Is(err, calls.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	out, err := m.ListCalls(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 1 || out[0].Status != calls.CallStatusInitiated {
		t.Fatalf("expected existing call unchanged, got %+v", out)
	}
}

func TestMemory_UpdateMergesShallowly(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateCall(ctx, calls.Call{ExternalCallID: "ext-1", PhoneNumber: "+1", Name: "A", Status: calls.CallStatusInitiated}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	status := calls.CallStatus("ringing")
	got, err := m.UpdateCallByExternalID(ctx, "ext-1", calls.CallUpdate{Status: &status})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != "ringing" || got.Transcript != nil {
		t.Fatalf("expected status-only update, got %+v", got)
	}

	got, err = m.UpdateCallByExternalID(ctx, "ext-1", calls.CallUpdate{Transcript: "hello"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != "ringing" || got.Transcript != "hello" {
		t.Fatalf("expected transcript added with status kept, got %+v", got)
	}

	// Permissive by design: arbitrary upstream statuses are stored verbatim.
	weird := calls.CallStatus("voicemail-left")
	got, err = m.UpdateCallByExternalID(ctx, "ext-1", calls.CallUpdate{Status: &weird})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != "voicemail-left" {
		t.Fatalf("expected verbatim status, got %q", got.Status)
	}
}

func TestMemory_ListCallsNewestFirstKeepsRawContactID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.CreateCall(ctx, calls.Call{ExternalCallID: "ext-1", ContactID: "c-1", PhoneNumber: "+1", Name: "A"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := m.CreateCall(ctx, calls.Call{ExternalCallID: "ext-2", PhoneNumber: "+2", Name: "B"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	out, err := m.ListCalls(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 2 || out[0].ExternalCallID != "ext-2" {
		t.Fatalf("expected newest first, got %+v", out)
	}
	if out[1].ContactID != "c-1" || out[1].Contact != nil {
		t.Fatalf("memory backend should keep the raw contact id only, got %+v", out[1])
	}
}
