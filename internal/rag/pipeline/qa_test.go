package pipeline

import (
	"context"
	"strings"
	"testing"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

func rankedResults(n int) []schema.RankedResult {
	out := make([]schema.RankedResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, schema.RankedResult{
			ChunkRecord: schema.ChunkRecord{
				Text:       "excerpt number " + string(rune('A'+i)),
				Filename:   "case.pdf",
				ChunkIndex: i,
			},
			RelevanceScore: 0.9,
		})
	}
	return out
}

func TestAnswerContextTruncation(t *testing.T) {
	llm := &fakeLLM{answer: "the holding"}
	c := NewComposer(llm, nil)

	answer, err := c.Answer(context.Background(), "what was held?", rankedResults(5))
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if answer != "the holding" {
		t.Errorf("answer = %q", answer)
	}
	if len(llm.gotMessages) != 1 {
		t.Fatalf("got %d messages, want 1", len(llm.gotMessages))
	}

	prompt := llm.gotMessages[0].Content
	for _, want := range []string{"[Source 1: case.pdf:chunk_0]", "[Source 3: case.pdf:chunk_2]"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// Top 3 of 5: the fourth and fifth results must not be quoted.
	if strings.Contains(prompt, "[Source 4:") {
		t.Errorf("prompt quotes more than 3 sources")
	}
	if !strings.Contains(prompt, "what was held?") {
		t.Errorf("prompt missing the question")
	}
}

func TestAnswerSystemPrompt(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	c := NewComposer(llm, nil)

	if _, err := c.Answer(context.Background(), "q", rankedResults(1)); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !strings.Contains(llm.gotSystem, "ONLY on the provided legal document context") {
		t.Errorf("system prompt does not constrain the model to context")
	}
}

func TestChatAnswerAppendsContextToLastUserTurn(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	c := NewComposer(llm, nil)

	history := []interfaces.ChatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "system", Content: "should be filtered out"},
		{Role: "user", Content: "follow-up question"},
	}

	if _, err := c.ChatAnswer(context.Background(), history, rankedResults(2)); err != nil {
		t.Fatalf("ChatAnswer failed: %v", err)
	}

	if len(llm.gotMessages) != 3 {
		t.Fatalf("got %d messages, want 3 (system turn filtered)", len(llm.gotMessages))
	}
	last := llm.gotMessages[len(llm.gotMessages)-1]
	if last.Role != "user" {
		t.Fatalf("last message role = %q", last.Role)
	}
	if !strings.Contains(last.Content, "follow-up question") {
		t.Errorf("last turn lost the question")
	}
	if !strings.Contains(last.Content, "[Document Context]:") {
		t.Errorf("last turn missing the document context block")
	}
	if strings.Contains(llm.gotMessages[0].Content, "[Document Context]:") {
		t.Errorf("context attached to the wrong turn")
	}
}

func TestChatAnswerNoTrailingUserTurn(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	c := NewComposer(llm, nil)

	history := []interfaces.ChatMessage{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
	}
	if _, err := c.ChatAnswer(context.Background(), history, rankedResults(1)); err != nil {
		t.Fatalf("ChatAnswer failed: %v", err)
	}
	// Context only rides on a trailing user turn; an assistant tail is
	// passed through untouched.
	for _, msg := range llm.gotMessages {
		if strings.Contains(msg.Content, "[Document Context]:") {
			t.Errorf("context attached despite assistant tail")
		}
	}
}

func TestQAAnswerUsesDedicatedClient(t *testing.T) {
	mainLLM := &fakeLLM{answer: "main"}
	qaLLM := &fakeLLM{answer: "focused"}
	c := NewComposer(mainLLM, qaLLM)

	answer, err := c.QAAnswer(context.Background(), "q", rankedResults(1))
	if err != nil {
		t.Fatalf("QAAnswer failed: %v", err)
	}
	if answer != "focused" {
		t.Errorf("answer = %q, want the dedicated client's output", answer)
	}
	if mainLLM.gotSystem != "" {
		t.Errorf("main client was called for the focused path")
	}
}

func TestContextBlockEmptyResults(t *testing.T) {
	if got := contextBlock(nil); got != "" {
		t.Errorf("contextBlock(nil) = %q, want empty", got)
	}
}
