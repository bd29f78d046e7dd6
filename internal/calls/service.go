package calls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voicedesk/internal/vapi"
	"voicedesk/pkg/logger"
	"voicedesk/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Dialer places one outbound call and returns the provider's raw response
// plus the external call id. Implementations: the Vapi client adapter below
// and the Simulator.
type Dialer interface {
	Name() string
	CreateCall(ctx context.Context, name, phoneNumber string, overrides map[string]any) (map[string]any, string, error)
}

// CallCap is the optional redis-backed limit on concurrently active outbound
// calls. Nil disables the cap entirely.
type CallCap struct {
	RDB   *redis.Client
	Limit int

	// TTL bounds how long a leaked slot survives a crashed process.
	TTL time.Duration
}

const callCapKey = "voicedesk:active_calls"

// Service orchestrates call creation and webhook reconciliation.
type Service struct {
	store  Store
	dialer Dialer
	cap    *CallCap
}

func NewService(store Store, dialer Dialer, callCap *CallCap) *Service {
	if callCap != nil && callCap.TTL <= 0 {
		callCap.TTL = 15 * time.Minute
	}
	return &Service{store: store, dialer: dialer, cap: callCap}
}

// StartCallRequest names either an existing contact or a raw name+number.
type StartCallRequest struct {
	ContactID          string
	Name               string
	PhoneNumber        string
	AssistantOverrides map[string]any
}

// StartCallResult carries the provider's raw response alongside the locally
// persisted record; the HTTP layer merges them into one body.
type StartCallResult struct {
	Provider map[string]any
	Local    Call
}

// StartCall resolves the customer identity, places the call (real or
// simulated) and persists the resulting record with status initiated and a
// nil transcript.
func (s *Service) StartCall(ctx context.Context, req StartCallRequest) (StartCallResult, error) {
	name := strings.TrimSpace(req.Name)
	number := strings.TrimSpace(req.PhoneNumber)
	contactID := strings.TrimSpace(req.ContactID)

	if contactID != "" {
		contact, err := s.store.FindContact(ctx, contactID)
		if err != nil {
			return StartCallResult{}, err
		}
		name = contact.Name
		number = contact.PhoneNumber
	}
	if name == "" || number == "" {
		return StartCallResult{}, fmt.Errorf("%w: contactId or name and phoneNumber required", ErrInvalidArgument)
	}

	release, err := s.acquireSlot(ctx)
	if err != nil {
		return StartCallResult{}, err
	}

	resp, externalID, err := s.dialer.CreateCall(ctx, name, number, req.AssistantOverrides)
	if err != nil {
		release(ctx)
		return StartCallResult{}, fmt.Errorf("dial via %s: %w", s.dialer.Name(), err)
	}
	if externalID == "" {
		release(ctx)
		return StartCallResult{}, fmt.Errorf("dial via %s: response carried no call id", s.dialer.Name())
	}

	call, err := s.store.CreateCall(ctx, Call{
		ExternalCallID: externalID,
		ContactID:      contactID,
		PhoneNumber:    number,
		Name:           name,
		Status:         CallStatusInitiated,
		Transcript:     nil,
	})
	if err != nil {
		release(ctx)
		return StartCallResult{}, fmt.Errorf("persist call: %w", err)
	}

	return StartCallResult{Provider: resp, Local: call}, nil
}

// ApplyEvent reconciles one inbound webhook event onto the matching call
// record. Events without a call id are dropped; an unknown id is a no-op
// (replay and stale ids are expected). Nothing here is an error the webhook
// caller should see.
func (s *Service) ApplyEvent(ctx context.Context, event map[string]any) error {
	id := vapi.ExtractCallID(event)
	if id == "" {
		logger.From(ctx).Debug("webhook event without call id dropped")
		return nil
	}

	u := vapi.DeriveUpdate(event)

	upd := CallUpdate{Transcript: u.Transcript}
	if u.Status != "" {
		status := CallStatus(u.Status)
		upd.Status = &status
	}

	if upd.Status != nil || upd.Transcript != nil {
		if _, err := s.store.UpdateCallByExternalID(ctx, id, upd); err != nil {
			if errors.Is(err, ErrNotFound) {
				logger.From(ctx).Debug("webhook for unknown call ignored", "external_call_id", id, "type", u.Type)
				return nil
			}
			return fmt.Errorf("apply %s event to %s: %w", u.Type, id, err)
		}
	}

	if u.Type == vapi.TypeCallEnded || u.Type == vapi.TypeHang {
		s.releaseSlot(ctx)
	}
	return nil
}

// Contacts and calls pass through to the store; the service is the only
// entry point handlers use.

func (s *Service) CreateContact(ctx context.Context, name, phoneNumber string) (Contact, error) {
	return s.store.CreateContact(ctx, name, phoneNumber)
}

func (s *Service) ListContacts(ctx context.Context) ([]Contact, error) {
	return s.store.ListContacts(ctx)
}

func (s *Service) ListCalls(ctx context.Context) ([]Call, error) {
	return s.store.ListCalls(ctx)
}

func (s *Service) StoreKind() string { return s.store.Kind() }

func (s *Service) acquireSlot(ctx context.Context) (func(context.Context), error) {
	if s.cap == nil {
		return func(context.Context) {}, nil
	}
	ok, err := utils.AcquireCallCap(ctx, s.cap.RDB, callCapKey, s.cap.Limit, s.cap.TTL)
	if err != nil {
		// A broken redis must not block the demo; log and proceed uncapped.
		logger.From(ctx).Warn("call cap acquire failed, proceeding", "err", err)
		return func(context.Context) {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: limit %d", ErrCapacity, s.cap.Limit)
	}
	return func(ctx context.Context) { s.releaseSlot(ctx) }, nil
}

func (s *Service) releaseSlot(ctx context.Context) {
	if s.cap == nil {
		return
	}
	if err := utils.ReleaseCallCap(ctx, s.cap.RDB, callCapKey); err != nil {
		logger.From(ctx).Warn("call cap release failed", "err", err)
	}
}

// VapiDialer adapts the REST client to the Dialer interface.
type VapiDialer struct {
	Client *vapi.Client
}

func (d VapiDialer) Name() string { return "vapi" }

func (d VapiDialer) CreateCall(ctx context.Context, name, phoneNumber string, overrides map[string]any) (map[string]any, string, error) {
	resp, err := d.Client.CreateCall(ctx, vapi.CreateCallRequest{
		Customer:           vapi.Customer{Number: phoneNumber, Name: name},
		AssistantOverrides: overrides,
	})
	if err != nil {
		return nil, "", err
	}
	id, _ := resp["id"].(string)
	return resp, id, nil
}
