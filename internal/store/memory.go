package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"voicedesk/internal/calls"

	"github.com/google/uuid"
)

// Memory is the volatile backend: process lifetime only, single process only.
// Good enough for the demo and for tests; not safe for multi-process
// deployment, which is accepted.
type Memory struct {
	mu sync.Mutex

	contacts []calls.Contact
	calls    []calls.Call

	// byExternal indexes into the calls slice.
	byExternal map[string]int
}

func NewMemory() *Memory {
	return &Memory{byExternal: map[string]int{}}
}

func (m *Memory) Kind() string { return "memory" }

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateContact(ctx context.Context, name, phoneNumber string) (calls.Contact, error) {
	name = strings.TrimSpace(name)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if name == "" || phoneNumber == "" {
		return calls.Contact{}, fmt.Errorf("%w: name and phoneNumber are required", calls.ErrInvalidArgument)
	}

	c := calls.Contact{
		ID:          uuid.NewString(),
		Name:        name,
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now().UTC(),
	}

	m.mu.Lock()
	m.contacts = append(m.contacts, c)
	m.mu.Unlock()
	return c, nil
}

func (m *Memory) ListContacts(ctx context.Context) ([]calls.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]calls.Contact, 0, len(m.contacts))
	for i := len(m.contacts) - 1; i >= 0; i-- {
		out = append(out, m.contacts[i])
	}
	return out, nil
}

func (m *Memory) FindContact(ctx context.Context, id string) (calls.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return calls.Contact{}, fmt.Errorf("%w: contact %q", calls.ErrNotFound, id)
}

func (m *Memory) CreateCall(ctx context.Context, call calls.Call) (calls.Call, error) {
	if call.ExternalCallID == "" {
		return calls.Call{}, fmt.Errorf("%w: externalCallId is required", calls.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byExternal[call.ExternalCallID]; exists {
		return calls.Call{}, fmt.Errorf("%w: duplicate externalCallId %q", calls.ErrInvalidArgument, call.ExternalCallID)
	}

	call.ID = uuid.NewString()
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}
	m.calls = append(m.calls, call)
	m.byExternal[call.ExternalCallID] = len(m.calls) - 1
	return call, nil
}

func (m *Memory) FindCallByExternalID(ctx context.Context, externalCallID string) (calls.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byExternal[externalCallID]
	if !ok {
		return calls.Call{}, fmt.Errorf("%w: call %q", calls.ErrNotFound, externalCallID)
	}
	return m.calls[i], nil
}

func (m *Memory) UpdateCallByExternalID(ctx context.Context, externalCallID string, upd calls.CallUpdate) (calls.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.byExternal[externalCallID]
	if !ok {
		return calls.Call{}, fmt.Errorf("%w: call %q", calls.ErrNotFound, externalCallID)
	}

	if upd.Status != nil {
		m.calls[i].Status = *upd.Status
	}
	if upd.Transcript != nil {
		m.calls[i].Transcript = upd.Transcript
	}
	return m.calls[i], nil
}

func (m *Memory) ListCalls(ctx context.Context) ([]calls.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]calls.Call, 0, len(m.calls))
	for i := len(m.calls) - 1; i >= 0; i-- {
		out = append(out, m.calls[i])
	}
	return out, nil
}
