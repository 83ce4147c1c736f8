// internal/ops/prompts.go
package ops

import (
	"fmt"
	"strings"

	"github.com/user/leasecraft/internal/lang"
)

// Prompt-side truncation limits, in runes. The context block is already
// token-bounded; these cap the free-form pieces (pasted contracts can be
// arbitrarily long).
const (
	maxGenerateContext = 2500
	maxReviewContract  = 4000
	maxReviewContext   = 1500
	maxExplainContext  = 1500
)

// systemPrompt is the assistant persona sent with every completion. It fixes
// the domain (Jordanian lease agreements), the placeholder discipline, the
// refusal list, and the contract skeleton.
const systemPrompt = `
You are a Jordanian legal drafting assistant specializing in lease agreements.

========================
WHAT YOU DO
========================
✅ Handle lease/rental contracts (residential, commercial, farm, land)
✅ Draft, modify, review lease contracts
✅ Answer questions about leasing, tenancy, Jordanian rental law
✅ Have friendly conversations about leasing topics
✅ Greet users and answer general questions politely

❌ refuse NON-LEASE contracts:
For example:
- Job/employment contracts → say: "أنا متخصص فقط في عقود الإيجار" (brief, polite)
- Sales/purchase contracts → same refusal
- Marriage/partnership contracts → same refusal

========================
HANDLING GREETINGS & GENERAL QUESTIONS
========================
For greetings like "hello", "مرحبا", "hi":
- Respond warmly and naturally
- Ask how you can help with lease contracts
- Keep it brief and friendly

For general questions about leasing:
- Answer naturally and helpfully
- Provide relevant information
- Suggest creating a contract if appropriate

========================
LANGUAGE POLICY
========================
- Detect user's language from their message
- Respond 100% in the SAME language (Arabic or English)
- Don't mix languages

========================
CRITICAL: PLACEHOLDERS VS CONTENT
========================

USE PLACEHOLDERS for personal data user didn't provide:
- Names: [اسم المؤجر الكامل], [اسم المستأجر الكامل]
- IDs: [رقم هوية المؤجر], [رقم هوية المستأجر]
- Addresses: [عنوان المؤجر], [عنوان المستأجر]
- Property: [وصف العقار التفصيلي]
- Amounts: [بدل الإيجار الشهري]
- Dates: [تاريخ بداية الإيجار], [تاريخ نهاية الإيجار]

WRITE REAL CONTENT for legal clauses:
- 12-18 clauses with complete legal language
- Each clause: 2-4 complete sentences
- Use proper Jordanian legal terminology
- NEVER add illegal clauses

🚫 NEVER invent personal data (names, dates, amounts) if user didn't provide them

========================
ILLEGAL CLAUSES TO REFUSE
========================
Never add clauses that:
- Allow landlord to change locks without court order
- Waive tenant's legal rights
- Allow entry without 24-hour notice
- Permit discrimination or arbitrary eviction
- Violate Jordanian Landlord-Tenant Law

When requested, politely refuse and explain the legal alternative.

========================
CONTRACT STRUCTURE
========================
عقد إيجار

المؤجر: [الاسم الكامل للمؤجر]
رقم الهوية: [رقم هوية المؤجر]
العنوان: [عنوان المؤجر]

المستأجر: [الاسم الكامل للمستأجر]
رقم الهوية: [رقم هوية المستأجر]
العنوان: [عنوان المستأجر]

وصف العقار: شقة مفروشة تقع في [عنوان العقار]، تتكون من [عدد الغرف] غرف نوم، [عدد الحمامات] حمام، وصالة.
بدل الإيجار الشهري: [المبلغ] دينار أردني
مدة الإيجار: من [تاريخ بدء الإيجار] إلى [تاريخ انتهاء الإيجار]
الغرض من الاستئجار: السكن

حيث أن الطرف الأول يملك العقار الموصوف أعلاه وحيث أن الطرف الثاني يرغب باستئجاره، فقد اتفق الطرفان على ما يلي

never add any information that is not in the user request like dates or names
change the header format based on the user request (important)

شروط العقد
[12-18 clauses here] should not be fixed its ok to put any number between 12 to 18

تليت الشروط على الأطراف وتفهموا مضمونها ومن ثم قاموا بتوقيعها.
 المؤجر                المستأجر              شاهد               شاهد
`

// truncateRunes caps s at n runes without splitting a multi-byte character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func langInstruction(l lang.Language) string {
	if l == lang.Arabic {
		return "CRITICAL: Respond 100% in ARABIC only."
	}
	return "CRITICAL: Respond 100% in ENGLISH only."
}

// buildGenerateContext is the user-role message for contract generation. It
// carries the request, the retrieved reference clauses, and any detected
// lease-context hints.
func buildGenerateContext(userMessage, ragContext string, hints []string) string {
	hintLine := ""
	if len(hints) > 0 {
		hintLine = fmt.Sprintf("\nDetected lease context: %s\n", strings.Join(hints, ", "))
	}

	return fmt.Sprintf(`
========================
TASK: Generate a COMPLETE lease contract
========================

User request: %s
%s
Reference examples (ONLY use legal clauses that comply with Jordanian law):
%s

========================
CRITICAL RULES:
========================

1. EXTRACT user-provided data from the request:
   - If user mentions names, use them EXACTLY
   - If user mentions amounts, use them EXACTLY
   - If user mentions dates, use them EXACTLY
   - If user mentions addresses/locations, use them EXACTLY

2. For data NOT provided by user:
   - Use clear placeholders in square brackets
   - Format: [وصف البيانات المطلوبة]
   - Examples: [اسم المؤجر الكامل], [رقم الهوية], [المبلغ]

3. For LEGAL CLAUSES (البنود):
   - Use proper legal terminology
   - Make content substantive and meaningful
   - DO NOT use placeholders in clause content
   - ONLY include clauses that are legal under Jordanian law

========================
INSTRUCTIONS:
========================

1. Detect the user's language from their message (Arabic or English)
2. Respond 100%% in that same language
3. Check user's message for any provided data (names, amounts, dates, locations)
4. Use that data EXACTLY in the appropriate fields
5. For missing data, use clear placeholders as shown above
6. Write ALL clauses with complete legal content
7. VALIDATE all clauses against Jordanian law

NOW GENERATE THE COMPLETE CONTRACT:
`, userMessage, hintLine, truncateRunes(ragContext, maxGenerateContext))
}

// buildEditPrompt instructs the model to apply only the requested change and
// keep every other name, amount, date, and clause intact.
func buildEditPrompt(currentContract, userRequest string, l lang.Language) string {
	if l == lang.Arabic {
		return fmt.Sprintf(`%s

========================
المهمة: تعديل العقد الحالي
========================

العقد الحالي:
%s

طلب التعديل: %s

========================
قواعد التعديل الحرجة:
========================

1. احتفظ بجميع البيانات الموجودة:
   ✅ الأسماء الحالية
   ✅ الأرقام والمبالغ الحالية
   ✅ التواريخ الحالية
   ✅ العناوين الحالية
   ✅ جميع البنود الموجودة

2. قم فقط بالتغييرات المطلوبة:
   - إذا طلب تغيير اسم → غيّر الاسم فقط
   - إذا طلب تغيير مبلغ → غيّر المبلغ فقط
   - إذا طلب تغيير تاريخ → غيّر التاريخ فقط
   - إذا طلب إضافة بند → أضف البند فقط

3. ❌ لا تغيّر أي شيء آخر
4. ❌ لا تحذف بيانات موجودة
5. ❌ لا تعيد كتابة العقد من الصفر

أعد العقد الكامل مع التعديلات المطلوبة فقط:
`, langInstruction(l), currentContract, userRequest)
	}

	return fmt.Sprintf(`%s

========================
TASK: Edit current contract
========================

Current contract:
%s

Edit request: %s

========================
CRITICAL EDIT RULES:
========================

1. PRESERVE all existing data:
   ✅ Current names
   ✅ Current numbers and amounts
   ✅ Current dates
   ✅ Current addresses
   ✅ All existing clauses

2. ONLY make the requested changes:
   - If name change requested → change name only
   - If amount change requested → change amount only
   - If date change requested → change date only
   - If clause addition requested → add clause only

3. ❌ Don't change anything else
4. ❌ Don't delete existing data
5. ❌ Don't rewrite the contract from scratch
6. ❌ Don't ever add any illegal clauses or might be illegal

Return the complete contract with ONLY the requested modifications:
`, langInstruction(l), currentContract, userRequest)
}

// buildReviewPrompt asks for a focused legal analysis of the contract against
// the retrieved law and common-mistake references.
func buildReviewPrompt(contractText, ragContext string, l lang.Language) string {
	contract := truncateRunes(contractText, maxReviewContract)
	refs := truncateRunes(ragContext, maxReviewContext)

	if l == lang.Arabic {
		return fmt.Sprintf(`راجع عقد الإيجار:

%s

العقد:
%s

المراجع القانونية:
%s

افحص بدقة:
1. البنود المفقودة الأساسية
2. المخالفات القانونية (خاصة: تغيير الأقفال، الدخول بدون إخطار، إسقاط الحقوق)
3. البنود الخطرة أو غير العادلة
4. التوافق مع قانون المالكين والمستأجرين الأردني
5. البنود التي تحتاج تعديل
6. التواريخ وصحتها

قدم تحليل موجز ومركز مع تحذيرات واضحة للبنود غير القانونية.
`, langInstruction(l), contract, refs)
	}

	return fmt.Sprintf(`Review this lease contract:

%s

Contract:
%s

Legal reference:
%s

Check carefully:
1. Missing essential clauses
2. Legal violations (especially: lock changes, entry without notice, rights waiver)
3. Dangerous or unfair clauses
4. Compliance with Jordanian Landlord-Tenant Law
5. Clauses needing modification
6. Date validity

Provide brief, focused analysis with clear warnings for illegal clauses.
`, langInstruction(l), contract, refs)
}

// buildExplainPrompt asks for a short explanation of whatever clause or term
// the user is pointing at, grounded in the contract and the references.
func buildExplainPrompt(userQuery, contractExcerpt, ragContext string, l lang.Language) string {
	clause := contractExcerpt
	refs := truncateRunes(ragContext, maxExplainContext)

	if l == lang.Arabic {
		if clause == "" {
			clause = "غير محدد"
		}
		return fmt.Sprintf(`اشرح ما يسأل عنه المستخدم: %s

%s

العقد: %s
أمثلة: %s

اشرح بإيجاز:
1. الهدف
2. ما يجب تضمينه
3. الحقوق والالتزامات
4. متطلبات القانون الأردني
`, userQuery, langInstruction(l), truncateRunes(clause, maxReviewContract), refs)
	}

	if clause == "" {
		clause = "Not specified"
	}
	return fmt.Sprintf(`Explain what the user is asking about: %s

%s

Contract: %s
Examples: %s

Explain briefly:
1. Purpose
2. What should be included
3. Rights and obligations
4. Jordanian law requirements
`, userQuery, langInstruction(l), truncateRunes(clause, maxReviewContract), refs)
}
