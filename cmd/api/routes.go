package main

import (
	"voicedesk/internal/calls"
	"voicedesk/internal/httpapi"
	"voicedesk/internal/vapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, svc *calls.Service, client *vapi.Client) {
	r.Use(httpapi.CORS())

	h := httpapi.Handlers{Calls: svc, Vapi: client}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.POST("/contacts", h.CreateContact)
		api.GET("/contacts", h.ListContacts)

		api.POST("/calls", h.CreateCall)
		api.GET("/calls", h.ListCalls)

		// Calling-service webhook (public). The service must never see a
		// failure response that would trigger its retry logic.
		api.POST("/vapi/webhook", h.Webhook)

		api.GET("/vapi/phone-numbers", h.ListPhoneNumbers)
	}
}
