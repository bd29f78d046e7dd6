package httpapi

import (
	"errors"
	"net/http"

	"voicedesk/internal/calls"
	"voicedesk/internal/vapi"
	"voicedesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse input, call the service, map sentinels to status
// codes. Business logic lives in internal/calls.

type Handlers struct {
	Calls *calls.Service
	Vapi  *vapi.Client
}

// Health reports the active store backend and whether real calling-service
// credentials are configured.
func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":                       true,
		"storeKind":                h.Calls.StoreKind(),
		"callingServiceConfigured": h.Vapi.Configured(),
	})
}

// --- Contacts ---

type createContactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h Handlers) CreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	contact, err := h.Calls.CreateContact(c.Request.Context(), req.Name, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, calls.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name and phoneNumber are required"})
			return
		}
		logger.FromGin(c).Error("contact create failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create contact"})
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h Handlers) ListContacts(c *gin.Context) {
	contacts, err := h.Calls.ListContacts(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("contact list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list contacts"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// --- Calls ---

type createCallRequest struct {
	ContactID          string         `json:"contactId"`
	PhoneNumber        string         `json:"phoneNumber"`
	Name               string         `json:"name"`
	AssistantOverrides map[string]any `json:"assistantOverrides"`
}

// CreateCall responds with the provider's raw response merged with the
// locally persisted record under "local". Downstream failure detail is
// logged, never surfaced; callers get a generic 500.
func (h Handlers) CreateCall(c *gin.Context) {
	var req createCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.Calls.StartCall(c.Request.Context(), calls.StartCallRequest{
		ContactID:          req.ContactID,
		Name:               req.Name,
		PhoneNumber:        req.PhoneNumber,
		AssistantOverrides: req.AssistantOverrides,
	})
	if err != nil {
		switch {
		case errors.Is(err, calls.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "contact not found"})
		case errors.Is(err, calls.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "contactId or name and phoneNumber required"})
		case errors.Is(err, calls.ErrCapacity):
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many active calls"})
		default:
			logger.FromGin(c).Error("call create failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to create call"})
		}
		return
	}

	body := gin.H{}
	for k, v := range res.Provider {
		body[k] = v
	}
	body["local"] = res.Local
	c.JSON(http.StatusOK, body)
}

func (h Handlers) ListCalls(c *gin.Context) {
	out, err := h.Calls.ListCalls(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("call list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list calls"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Webhook ---

// Webhook ingests calling-service events. Always 200: the sender retries on
// failure and we must not invite a retry storm. Processing errors are logged
// and the event is dropped.
func (h Handlers) Webhook(c *gin.Context) {
	var event map[string]any
	if err := c.ShouldBindJSON(&event); err != nil {
		logger.FromGin(c).Warn("webhook body not decodable, dropped", "err", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.Calls.ApplyEvent(c.Request.Context(), event); err != nil {
		logger.FromGin(c).Error("webhook event not applied", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// --- Vapi passthrough ---

// ListPhoneNumbers proxies the service's provisioned numbers. 503 in
// simulation mode; there is nothing to list without credentials.
func (h Handlers) ListPhoneNumbers(c *gin.Context) {
	if !h.Vapi.Configured() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "calling service not configured"})
		return
	}
	out, err := h.Vapi.ListPhoneNumbers(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("phone number list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to list phone numbers"})
		return
	}
	c.JSON(http.StatusOK, out)
}
