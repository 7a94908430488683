package chat

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"lexrag/internal/rag/schema"
)

func TestCreateAndGet(t *testing.T) {
	st := NewStore()
	st.Create("s1", "Land dispute research")

	got := st.Get("s1")
	if got == nil {
		t.Fatal("session not found after Create")
	}
	if got.Title != "Land dispute research" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Messages) != 0 {
		t.Errorf("new session has %d messages", len(got.Messages))
	}
}

func TestCreateDefaultTitle(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	if got := st.Get("s1"); got.Title != "New Chat" {
		t.Errorf("title = %q, want New Chat", got.Title)
	}
}

func TestCreateReplacesExisting(t *testing.T) {
	st := NewStore()
	st.Create("s1", "first")
	st.AppendUser("s1", "a question")

	st.Create("s1", "second")
	got := st.Get("s1")
	if got.Title != "second" {
		t.Errorf("title = %q, want second", got.Title)
	}
	if len(got.Messages) != 0 {
		t.Errorf("replacement kept %d old messages", len(got.Messages))
	}
}

func TestAppendUserCountsQuestions(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")

	for i := 0; i < 3; i++ {
		if !st.AppendUser("s1", fmt.Sprintf("question %d", i)) {
			t.Fatalf("AppendUser %d failed", i)
		}
	}

	got := st.Get("s1")
	if got.Meta.QuestionCount != 3 {
		t.Errorf("question count = %d, want 3", got.Meta.QuestionCount)
	}
	if len(got.Messages) != 3 {
		t.Errorf("message count = %d, want 3", len(got.Messages))
	}
}

func TestAppendAssistantKeepsSources(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	st.AppendUser("s1", "q")

	sources := []schema.SourceCitation{{Ordinal: 1, Filename: "a.pdf", SourceLocation: "a.pdf:chunk_0"}}
	if !st.AppendAssistant("s1", "an answer", sources) {
		t.Fatal("AppendAssistant failed")
	}

	got := st.Get("s1")
	last := got.Messages[len(got.Messages)-1]
	if last.Role != RoleAssistant {
		t.Errorf("last role = %q", last.Role)
	}
	if len(last.Sources) != 1 || last.Sources[0].Filename != "a.pdf" {
		t.Errorf("sources lost: %+v", last.Sources)
	}
	// Assistant turns never increment the question count.
	if got.Meta.QuestionCount != 1 {
		t.Errorf("question count = %d, want 1", got.Meta.QuestionCount)
	}
}

func TestAppendToMissingSession(t *testing.T) {
	st := NewStore()
	if st.AppendUser("absent", "q") {
		t.Error("AppendUser reported success for a missing session")
	}
	if st.AppendAssistant("absent", "a", nil) {
		t.Error("AppendAssistant reported success for a missing session")
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	st.AppendUser("s1", "q")

	snap := st.Get("s1")
	snap.Messages[0].Content = "mutated"
	snap.Title = "mutated"

	fresh := st.Get("s1")
	if fresh.Messages[0].Content != "q" || fresh.Title == "mutated" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestDelete(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	if !st.Delete("s1") {
		t.Error("Delete reported failure for an existing session")
	}
	if st.Get("s1") != nil {
		t.Error("session still present after Delete")
	}
	if st.Delete("s1") {
		t.Error("Delete reported success for an absent session")
	}
}

func TestListSortedByUpdate(t *testing.T) {
	st := NewStore()
	st.Create("old", "")
	time.Sleep(2 * time.Millisecond)
	st.Create("new", "")
	time.Sleep(2 * time.Millisecond)
	st.AppendUser("old", "q")

	infos := st.List()
	if len(infos) != 2 {
		t.Fatalf("got %d sessions, want 2", len(infos))
	}
	// old was touched last, so it lists first.
	if infos[0].ID != "old" {
		t.Errorf("first listed = %q, want old", infos[0].ID)
	}
	if infos[0].QuestionCount != 1 || infos[0].MessageCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", infos[0].QuestionCount, infos[0].MessageCount)
	}
}

func TestConcurrentAppends(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.AppendUser("s1", fmt.Sprintf("question %d", i))
		}(i)
	}
	wg.Wait()

	got := st.Get("s1")
	if len(got.Messages) != n {
		t.Errorf("message count = %d, want %d", len(got.Messages), n)
	}
	if got.Meta.QuestionCount != n {
		t.Errorf("question count = %d, want %d", got.Meta.QuestionCount, n)
	}
}

func TestLastUserMessage(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	st.AppendUser("s1", "first")
	st.AppendAssistant("s1", "answer", nil)
	st.AppendUser("s1", "second")

	if got := st.Get("s1").LastUserMessage(); got != "second" {
		t.Errorf("last user message = %q, want second", got)
	}
}

func TestRecentMessages(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	for i := 0; i < 12; i++ {
		st.AppendUser("s1", fmt.Sprintf("q%d", i))
	}

	recent := st.Get("s1").RecentMessages(10)
	if len(recent) != 10 {
		t.Fatalf("got %d recent messages, want 10", len(recent))
	}
	if recent[0].Content != "q2" {
		t.Errorf("window start = %q, want q2", recent[0].Content)
	}
}

func TestQAPairs(t *testing.T) {
	st := NewStore()
	st.Create("s1", "")
	st.AppendUser("s1", "q1")
	st.AppendAssistant("s1", "a1", []schema.SourceCitation{{Ordinal: 1, Filename: "x.pdf"}})
	st.AppendUser("s1", "unanswered")

	pairs := st.Get("s1").QAPairs()
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].Question != "q1" || pairs[0].Answer != "a1" {
		t.Errorf("pair = %+v", pairs[0])
	}
	if len(pairs[0].Sources) != 1 {
		t.Errorf("pair lost sources")
	}
}
