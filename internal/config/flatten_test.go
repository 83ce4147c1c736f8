package config

import (
	"testing"
)

func TestFlatten_Nested(t *testing.T) {
	m := map[string]any{
		"llm": map[string]any{
			"provider": "openai",
			"api_key":  "sk-test123",
		},
		"log_level": "info",
	}
	got := Flatten(m)
	if got["llm.provider"] != "openai" {
		t.Errorf("expected llm.provider=openai, got %v", got["llm.provider"])
	}
	if got["llm.api_key"] != "sk-test123" {
		t.Errorf("expected llm.api_key=sk-test123, got %v", got["llm.api_key"])
	}
	if got["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", got["log_level"])
	}
	if len(got) != 3 {
		t.Errorf("expected 3 keys, got %d", len(got))
	}
}

func TestFlatten_DeeplyNested(t *testing.T) {
	m := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": "deep",
			},
		},
	}
	got := Flatten(m)
	if got["a.b.c"] != "deep" {
		t.Errorf("expected a.b.c=deep, got %v", got["a.b.c"])
	}
	if len(got) != 1 {
		t.Errorf("expected 1 key, got %d", len(got))
	}
}

func TestUnflatten_Nested(t *testing.T) {
	flat := map[string]any{
		"supabase.url":         "https://x.supabase.co",
		"supabase.service_key": "key-123",
		"log_level":            "info",
	}
	got := Unflatten(flat)
	sb, ok := got["supabase"].(map[string]any)
	if !ok {
		t.Fatalf("expected supabase to be map, got %T", got["supabase"])
	}
	if sb["url"] != "https://x.supabase.co" {
		t.Errorf("expected supabase.url, got %v", sb["url"])
	}
	if sb["service_key"] != "key-123" {
		t.Errorf("expected supabase.service_key, got %v", sb["service_key"])
	}
	if got["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", got["log_level"])
	}
}

func TestRoundTrip_FlattenUnflatten(t *testing.T) {
	original := map[string]any{
		"data_dir":  "/home/test/.leasecraft",
		"log_level": "debug",
		"llm": map[string]any{
			"provider": "openai",
			"api_key":  "sk-test123456",
			"model":    "gpt-4o-mini",
		},
		"cohere": map[string]any{
			"api_key": "cohere-key-xyz",
			"model":   "rerank-multilingual-v3.0",
		},
		"telegram": map[string]any{
			"token": "bot-token-abc",
		},
	}

	flat := Flatten(original)
	restored := Unflatten(flat)

	if restored["data_dir"] != original["data_dir"] {
		t.Errorf("data_dir mismatch: %v != %v", restored["data_dir"], original["data_dir"])
	}

	llm := restored["llm"].(map[string]any)
	origLLM := original["llm"].(map[string]any)
	if llm["model"] != origLLM["model"] {
		t.Errorf("llm.model mismatch: %v != %v", llm["model"], origLLM["model"])
	}

	cohere := restored["cohere"].(map[string]any)
	origCohere := original["cohere"].(map[string]any)
	if cohere["model"] != origCohere["model"] {
		t.Errorf("cohere.model mismatch: %v != %v", cohere["model"], origCohere["model"])
	}
}

func TestMaskSecrets_AllSecrets(t *testing.T) {
	flat := map[string]any{
		"llm.provider":         "openai",
		"llm.api_key":          "sk-test123456",
		"supabase.service_key": "eyJ-abcdef1234",
		"cohere.api_key":       "co-key-98765",
		"telegram.token":       "123456:ABCdefGHIjkl",
		"log_level":            "info",
	}
	got := MaskSecrets(flat)

	if got["llm.provider"] != "openai" {
		t.Errorf("expected llm.provider=openai, got %v", got["llm.provider"])
	}
	if got["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", got["log_level"])
	}

	if got["llm.api_key"] != "***3456" {
		t.Errorf("expected llm.api_key=***3456, got %v", got["llm.api_key"])
	}
	if got["supabase.service_key"] != "***1234" {
		t.Errorf("expected supabase.service_key=***1234, got %v", got["supabase.service_key"])
	}
	if got["cohere.api_key"] != "***8765" {
		t.Errorf("expected cohere.api_key=***8765, got %v", got["cohere.api_key"])
	}
	if got["telegram.token"] != "***Ijkl" {
		t.Errorf("expected telegram.token=***Ijkl, got %v", got["telegram.token"])
	}
}

func TestMaskSecrets_EmptySecret(t *testing.T) {
	flat := map[string]any{
		"llm.api_key": "",
	}
	got := MaskSecrets(flat)
	if got["llm.api_key"] != "" {
		t.Errorf("expected empty string to remain empty, got %v", got["llm.api_key"])
	}
}

func TestMaskSecrets_ShortSecret(t *testing.T) {
	flat := map[string]any{
		"llm.api_key": "ab",
	}
	got := MaskSecrets(flat)
	if got["llm.api_key"] != "***ab" {
		t.Errorf("expected ***ab for short secret, got %v", got["llm.api_key"])
	}
}
