package config

import "testing"

func TestValidate_EmptyEnvironmentBootsDemoMode(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 5000},
		Redis: RedisConfig{Port: 6379, MaxActiveCalls: 5},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected demo defaults to validate, got %v", err)
	}
	if c.CallingServiceConfigured() {
		t.Fatalf("expected simulation mode without credentials")
	}
	if c.RedisEnabled() {
		t.Fatalf("expected redis disabled without REDIS_HOST")
	}
}

func TestValidate_RejectsBadPort(t *testing.T) {
	c := Config{App: AppConfig{Env: "local", Port: 0}}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for port 0")
	}
}

func TestValidate_KeyWithoutAssistantRejected(t *testing.T) {
	c := Config{
		App:  AppConfig{Env: "local", Port: 5000},
		Vapi: VapiConfig{APIKey: "sk-test"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when VAPI_API_KEY set without VAPI_ASSISTANT_ID")
	}
}

func TestCallingServiceConfigured(t *testing.T) {
	c := Config{Vapi: VapiConfig{APIKey: "sk-test", AssistantID: "asst-1"}}
	if !c.CallingServiceConfigured() {
		t.Fatalf("expected configured with key and assistant id")
	}
}
