// internal/ingest/chunker_test.go
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/user/leasecraft/internal/retrieval"
)

const clauseFiller = " يلتزم الطرفان بتنفيذ ما ورد في هذا البند تنفيذاً كاملاً ودون إخلال"

func TestSplitClauses(t *testing.T) {
	text := "عقد إيجار نموذجي للاستخدام السكني في عمان والمناطق التابعة لها\n" +
		"البند 1 - يلتزم المستأجر بدفع بدل الإيجار في موعده المحدد" + clauseFiller + "\n" +
		"وتفاصيل إضافية عن طريقة الدفع والمواعيد المقررة لذلك\n" +
		"البند 2 - يلتزم المؤجر بتسليم العقار بحالة جيدة" + clauseFiller + "\n"

	chunks := SplitClauses(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[1], "البند 1") {
		t.Errorf("chunk 1 = %q", chunks[1])
	}
	if !strings.Contains(chunks[1], "وتفاصيل إضافية") {
		t.Error("continuation line not merged into its clause")
	}
	if !strings.HasPrefix(chunks[2], "البند 2") {
		t.Errorf("chunk 2 = %q", chunks[2])
	}
}

func TestSplitClausesDropsJunk(t *testing.T) {
	chunks := SplitClauses("سطر قصير\n")
	if len(chunks) != 0 {
		t.Errorf("short fragments should be dropped, got %q", chunks)
	}
}

func TestSplitLawArticles(t *testing.T) {
	article := strings.Repeat("يعمل بهذا القانون من تاريخ نشره في الجريدة الرسمية. ", 3)
	text := "المادة 1\n" + article + "\nالمادة 2\n" + article

	chunks := SplitLawArticles(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "المادة 1") {
		t.Errorf("chunk 0 = %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "المادة 2") {
		t.Errorf("chunk 1 = %q", chunks[1])
	}
}

func TestSplitLawArticlesSafetySplit(t *testing.T) {
	long := "المادة 1\n" + strings.Repeat("نص قانوني طويل جداً يتجاوز الحد الأقصى للمقطع الواحد. ", 200)
	chunks := SplitLawArticles(long)
	if len(chunks) < 2 {
		t.Fatalf("overlong article should be split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > maxArticleLen {
			t.Errorf("chunk %d has %d runes, cap is %d", i, n, maxArticleLen)
		}
	}
}

func TestSplitMistakesNumbered(t *testing.T) {
	entry := strings.Repeat("من الأخطاء الشائعة في عقود الإيجار عدم تحديد مدة العقد بوضوح. ", 2)
	text := "1- " + entry + "\n2- " + entry

	chunks := SplitMistakes(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
}

func TestSplitMistakesBlankLineFallback(t *testing.T) {
	entry := strings.Repeat("خطأ شائع في صياغة عقود الإيجار يجب الانتباه له عند الكتابة. ", 2)
	text := entry + "\n\n" + entry

	chunks := SplitMistakes(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks via fallback, got %d", len(chunks))
	}
}

func TestSplitMistakesSentenceSplit(t *testing.T) {
	long := "1- " + strings.Repeat("جملة عن خطأ شائع في العقود تنتهي بنقطة واضحة. ", 150)
	chunks := SplitMistakes(long)
	if len(chunks) < 2 {
		t.Fatalf("overlong entry should be sentence-split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > maxMistakeLen {
			t.Errorf("chunk %d has %d runes, cap is %d", i, n, maxMistakeLen)
		}
	}
}

func TestBuildDocuments(t *testing.T) {
	text := "البند 1 - بند أول بمحتوى قانوني كامل" + clauseFiller + "\n" +
		"البند 2 - بند ثانٍ بمحتوى قانوني كامل" + clauseFiller + "\n"

	docs := BuildDocuments(retrieval.CategoryLease, "leases/sample.txt", text)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "lease:sample:1" || docs[1].ID != "lease:sample:2" {
		t.Errorf("ids = %s, %s", docs[0].ID, docs[1].ID)
	}
	if docs[0].Metadata["doc_type"] != "lease" || docs[0].Metadata["source_file"] != "sample.txt" {
		t.Errorf("metadata = %v", docs[0].Metadata)
	}
}

// recordingUpserter counts batches.
type recordingUpserter struct {
	batches [][]retrieval.Document
	err     error
}

func (r *recordingUpserter) Upsert(_ context.Context, _ retrieval.Category, docs []retrieval.Document) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, docs)
	return nil
}

func TestPipelineBatches(t *testing.T) {
	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, "البند "+string(rune('1'+i))+" - بند بمحتوى"+clauseFiller)
	}
	text := strings.Join(lines, "\n")

	up := &recordingUpserter{}
	p := NewPipeline(up, 2, slog.New(slog.DiscardHandler))
	n, err := p.IngestText(context.Background(), retrieval.CategoryLease, "sample.txt", text)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("ingested = %d, want 5", n)
	}
	if len(up.batches) != 3 {
		t.Errorf("batches = %d, want 3", len(up.batches))
	}
}

func TestPipelineUpsertFailure(t *testing.T) {
	up := &recordingUpserter{err: errors.New("store down")}
	p := NewPipeline(up, 2, slog.New(slog.DiscardHandler))

	text := "البند 1 - بند بمحتوى قانوني" + clauseFiller
	if _, err := p.IngestText(context.Background(), retrieval.CategoryLease, "sample.txt", text); err == nil {
		t.Fatal("expected error")
	}
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>قانون المالكين والمستأجرين</h1><p>المادة 1</p></body></html>"))
	}))
	defer srv.Close()

	md, err := NewFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "قانون المالكين والمستأجرين") {
		t.Errorf("markdown = %q", md)
	}
}

func TestFetcherHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewFetcher().Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}
