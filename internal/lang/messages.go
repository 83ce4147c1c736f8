// internal/lang/messages.go
package lang

import "fmt"

// DateAlert wraps a date-validation diagnostic in the localized warning the
// user sees before any generation is attempted.
func DateAlert(l Language, detail string) string {
	if l == Arabic {
		return fmt.Sprintf("⚠️ خطأ في التاريخ:\n\n%s\n\nالرجاء تصحيح التاريخ والمحاولة مرة أخرى.", detail)
	}
	return fmt.Sprintf("⚠️ Date Validation Error:\n\n%s\n\nPlease correct the date and try again.", detail)
}

// GeneratedInvalidDates reports that a freshly generated contract failed the
// output-side date gate.
func GeneratedInvalidDates(l Language, detail string) string {
	if l == Arabic {
		return fmt.Sprintf("⚠️ العقد المُنشأ يحتوي على تواريخ غير صحيحة:\n\n%s\n\nالرجاء المحاولة مرة أخرى.", detail)
	}
	return fmt.Sprintf("⚠️ Generated contract contains invalid dates:\n\n%s\n\nPlease try again.", detail)
}

// EditInvalidDates reports that an edit produced bad dates; the original
// contract is kept.
func EditInvalidDates(l Language, detail string) string {
	if l == Arabic {
		return fmt.Sprintf("⚠️ التعديل أنتج تواريخ غير صحيحة:\n\n%s\n\nالعقد الأصلي محفوظ.", detail)
	}
	return fmt.Sprintf("⚠️ Edit produced invalid dates:\n\n%s\n\nOriginal contract preserved.", detail)
}

func ContractCreated(l Language) string {
	return pick(l, "تم إنشاء العقد بنجاح ✓", "Contract created successfully ✓")
}

func ContractUpdated(l Language) string {
	return pick(l, "تم التعديل بنجاح ✓", "Updated successfully ✓")
}

func GenerateFailed(l Language) string {
	return pick(l, "عذراً، حدث خطأ في إنشاء العقد.", "Sorry, error generating contract.")
}

func EditFailed(l Language) string {
	return pick(l, "عذراً، حدث خطأ في التعديل.", "Sorry, error during edit.")
}

func ReviewFailed(l Language) string {
	return pick(l, "عذراً، حدث خطأ في المراجعة.", "Sorry, error during review.")
}

func ExplainFailed(l Language) string {
	return pick(l, "عذراً، لم أستطع الشرح.", "Sorry, couldn't explain.")
}

func ChatFailed(l Language) string {
	return pick(l, "عذراً، خطأ في معالجة الطلب.", "Sorry, error processing request.")
}

func NeedContractToEdit(l Language) string {
	return pick(l,
		"أحتاج عقد موجود لأعدله. الصق العقد أو اطلب إنشاء عقد جديد.",
		"I need an existing contract to edit. Paste one or ask me to create a new contract.")
}

func NeedContractToExplain(l Language) string {
	return pick(l,
		"أحتاج عقد لأشرحه. الصق العقد أو اطلب إنشاء عقد جديد.",
		"I need a contract to explain. Paste one or ask me to create a new contract.")
}

func NeedContractToReview(l Language) string {
	return pick(l,
		"أحتاج عقد لأراجعه. الصق العقد أو اطلب إنشاء عقد جديد.",
		"I need a contract to review. Paste one or ask me to create a new contract.")
}

// EditNoChange is the soft-failure reply when an edit was a no-op or too
// short to be a viable contract.
func EditNoChange(l Language) string {
	return pick(l,
		"لم أتمكن من التعديل. هل يمكنك توضيح الطلب؟",
		"Couldn't update. Can you clarify?")
}

// ConfirmOverwrite is returned when a create request arrives while a
// contract exists and overwriting is disabled by configuration.
func ConfirmOverwrite(l Language) string {
	return pick(l,
		"لديك عقد حالي بالفعل. اطلب مني صراحةً استبداله بعقد جديد، أو عدّل العقد الحالي.",
		"You already have a contract. Ask me explicitly to replace it with a new one, or edit the current contract.")
}

// DateIssuesHeader labels the informational date findings appended to a
// review.
func DateIssuesHeader(l Language) string {
	return pick(l, "⚠️ مشاكل في التواريخ:", "⚠️ Date Issues Found:")
}
