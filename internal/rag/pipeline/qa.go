package pipeline

import (
	"context"
	"fmt"
	"strings"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

// contextResults is how many top-ranked chunks are quoted to the LLM.
const contextResults = 3

// queryPrompt frames a one-shot question over retrieved context.
const queryPrompt = `You are a legal expert assistant specializing in Bangladesh law.
Answer questions based ONLY on the provided legal document context.
If the context doesn't contain relevant information, say so clearly.
Cite specific sections, case names, or legal provisions when applicable.
Reference the source citations [Source X: filename:chunk_number] when providing information.`

// chatPrompt frames a multi-turn conversation over retrieved context.
const chatPrompt = `You are a legal expert assistant specializing in Bangladesh law.
You are having a conversation with a user about legal documents.
Answer questions based ONLY on the provided legal document context.
If the context doesn't contain relevant information, say so clearly.
Cite specific sections, case names, or legal provisions when applicable.
Reference the source citations [Source X: filename:chunk_number] when providing information.
Keep responses concise and conversational.`

// qaPrompt frames a focused, session-tracked question and answer.
const qaPrompt = `You are an expert legal assistant specializing in Bangladesh law.
Provide clear, accurate, and concise answers to legal questions.
Base your answer ONLY on the provided legal document context.
If the context doesn't contain relevant information, state that clearly.
Always cite specific sections, case names, and legal provisions.
Format source citations as [Source X: filename:chunk_number].`

// Composer generates grounded prose answers from ranked results. The
// focused Q&A path may use a different model client than query and chat.
type Composer struct {
	llm   interfaces.LLM
	qaLLM interfaces.LLM
}

// NewComposer builds a Composer. qaLLM may be nil, in which case the
// main client also serves the focused Q&A path.
func NewComposer(llm, qaLLM interfaces.LLM) *Composer {
	if qaLLM == nil {
		qaLLM = llm
	}
	return &Composer{llm: llm, qaLLM: qaLLM}
}

// Answer generates a one-shot answer for a question over ranked results.
func (c *Composer) Answer(ctx context.Context, question string, results []schema.RankedResult) (string, error) {
	user := fmt.Sprintf(`Context from legal documents:
%s

Question: %s

Please provide a clear, concise answer based on the context above.
Include source citations in your response using the format: [Source X: filename:chunk_number]`,
		contextBlock(results), question)

	answer, err := c.llm.Complete(ctx, queryPrompt, []interfaces.ChatMessage{
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// ChatAnswer generates a conversational answer. The retrieved context is
// appended to the final user turn so the model sees it next to the
// question it grounds.
func (c *Composer) ChatAnswer(ctx context.Context, history []interfaces.ChatMessage, results []schema.RankedResult) (string, error) {
	messages := make([]interfaces.ChatMessage, 0, len(history))
	for _, msg := range history {
		role := strings.ToLower(msg.Role)
		if role != "user" && role != "assistant" {
			continue
		}
		messages = append(messages, interfaces.ChatMessage{Role: role, Content: msg.Content})
	}

	if len(messages) > 0 && messages[len(messages)-1].Role == "user" {
		messages[len(messages)-1].Content = fmt.Sprintf("%s\n\n[Document Context]:\n%s",
			messages[len(messages)-1].Content, contextBlock(results))
	}

	answer, err := c.llm.Complete(ctx, chatPrompt, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// QAAnswer generates a focused answer for the session-tracked Q&A path.
func (c *Composer) QAAnswer(ctx context.Context, question string, results []schema.RankedResult) (string, error) {
	user := fmt.Sprintf(`Based on the following legal document excerpts, answer this question:

Question: %s

Document Context:
%s

Please provide a direct, concise answer that:
1. Directly addresses the question
2. Cites relevant sources
3. Includes specific legal references when applicable
4. Is written in clear, professional language`,
		question, contextBlock(results))

	answer, err := c.qaLLM.Complete(ctx, qaPrompt, []interfaces.ChatMessage{
		{Role: "user", Content: user},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// contextBlock quotes the top-ranked chunks, each labelled with its
// source location so the model can cite it back.
func contextBlock(results []schema.RankedResult) string {
	n := len(results)
	if n > contextResults {
		n = contextResults
	}

	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s",
			i+1, SourceLocation(results[i].ChunkRecord), results[i].Text))
	}
	return strings.Join(parts, "\n\n")
}
