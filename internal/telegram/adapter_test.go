// internal/telegram/adapter_test.go
package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessage(t *testing.T) {
	short := "Hello world"
	parts := splitMessage(short)
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0] != short {
		t.Errorf("expected %q, got %q", short, parts[0])
	}
}

func TestSplitMessageLong(t *testing.T) {
	long := strings.Repeat("a", 5000)
	parts := splitMessage(long)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if len(parts[0]) != maxTelegramMessage {
		t.Errorf("expected first part length %d, got %d", maxTelegramMessage, len(parts[0]))
	}
}

func TestSplitMessageArabic(t *testing.T) {
	long := strings.Repeat("عقد", 3000)
	parts := splitMessage(long)
	if len(parts) < 2 {
		t.Fatalf("expected multiple parts, got %d", len(parts))
	}
	for i, p := range parts {
		if n := len([]rune(p)); n > maxTelegramMessage {
			t.Errorf("part %d has %d runes, cap is %d", i, n, maxTelegramMessage)
		}
		if !strings.HasPrefix(p, "ع") && !strings.HasPrefix(p, "ق") && !strings.HasPrefix(p, "د") {
			t.Errorf("part %d starts with broken rune: %q", i, p[:4])
		}
	}
}

func TestBuildSessionKey(t *testing.T) {
	key := buildSessionKey(67890)
	if string(key) != "telegram:67890" {
		t.Errorf("expected 'telegram:67890', got %q", key)
	}
}
