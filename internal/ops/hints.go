// internal/ops/hints.go
package ops

import (
	"sort"
	"strings"
)

// leaseContextPatterns maps a lease context to the keywords (Arabic and
// English) that signal it in a user message.
var leaseContextPatterns = map[string][]string{
	"furnished":    {"furnished", "مفروش", "مفروشة", "أثاث", "furniture"},
	"commercial":   {"commercial", "business", "تجاري", "تجارية", "محل", "مكتب"},
	"short_term":   {"short", "daily", "weekly", "monthly", "قصيرة", "يومي", "أسبوعي", "شهري"},
	"shared":       {"shared", "roommate", "مشترك", "مشاركة", "زميل سكن"},
	"with_parking": {"parking", "garage", "موقف", "جراج", "سيارة"},
	"with_pets":    {"pet", "dog", "cat", "حيوان", "كلب", "قطة", "حيوانات أليفة"},
	"with_garden":  {"garden", "yard", "حديقة", "فناء"},
	"villa":        {"villa", "فيلا"},
	"office":       {"office", "مكتب"},
	"shop":         {"shop", "store", "retail", "محل", "متجر"},
	"warehouse":    {"warehouse", "storage", "مستودع", "مخزن"},
	"agricultural": {"agricultural", "farm", "land", "زراعي", "مزرعة", "أرض"},
	"tourism":      {"tourism", "vacation", "holiday", "سياحي", "إجازة", "عطلة"},
	"seasonal":     {"seasonal", "summer", "winter", "موسمي", "صيفي", "شتوي"},
	"students":     {"student", "university", "college", "طالب", "جامعة", "طلاب"},
}

// DetectLeaseContext returns the lease contexts whose keywords appear in the
// message, sorted for stable prompt text. Matching is substring-based, so
// "students" fires on "student housing".
func DetectLeaseContext(text string) []string {
	lower := strings.ToLower(text)

	var hits []string
	for key, words := range leaseContextPatterns {
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits = append(hits, key)
				break
			}
		}
	}
	sort.Strings(hits)
	return hits
}
