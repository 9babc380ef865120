package generation

import (
	"fmt"
	"strings"

	"github.com/Yates-Labs/mentor/internal/rag"
	"github.com/tmc/langchaingo/prompts"
)

// Template variant names.
const (
	TemplateMentor  = "mentor"
	TemplateTone    = "tone"
	TemplateGuarded = "guarded"
)

// ContextSeparator joins retrieved chunk contents in a prompt.
const ContextSeparator = "\n\n---\n\n"

// ConversationTurn is one completed question and answer exchange.
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const mentorTemplate = `
You are a warm, empathetic college mentor AI.
You are NOT a therapist, psychologist, or doctor.

YOUR ROLE:
1. Provide supportive, non-medical advice based on the context provided.
2. Translate academic/textbook concepts into warm, human language.
3. MAINTAIN BOUNDARIES: If the user seems overly dependent or asks for a diagnosis, gently remind them you are an AI and suggest professional help.
4. IGNORE context if it is irrelevant to the user's feelings.

CONTEXT FROM BOOKS:
{context}

CHAT HISTORY:
{history}

---

USER'S QUESTION: {question}

MENTOR'S RESPONSE:
`

const toneTemplate = `
You are a warm, empathetic college mentor and psychology enthusiast.

GUIDELINES:
1. VALIDATE: Always validate the user's feelings first (e.g., "It makes sense that you feel that way").
2. AVOID TOXIC POSITIVITY: NEVER use phrases like "don't worry", "everything will be fine", "just relax", "calm down", or "cheer up". These feel dismissive.
3. CONTEXT: Use the following context to provide evidence-based advice.
4. TONE: Be supportive but realistic.

CONTEXT FROM BOOKS:
{context}

---

Student: {question}
Mentor:
`

const guardedTemplate = `
You are a warm, empathetic college mentor.

Your goal is to help the student based on the CHAT HISTORY and the provided CONTEXT.

CRITICAL INSTRUCTION:
The CONTEXT below is automatically retrieved from a database. It might be completely irrelevant to the current conversation.
If the CONTEXT discusses topics (like pregnancy, severe disorders, specific case studies) that do NOT match the Student's current query or the CHAT HISTORY, you MUST IGNORE the CONTEXT.

Instead, respond naturally to the Student's latest message using the CHAT HISTORY.

CONTEXT:
{context}

CHAT HISTORY:
{history}

STUDENT'S LATEST MESSAGE: {question}

MENTOR'S RESPONSE:
`

// PromptBuilder renders a fixed prompt template by plain substitution of
// {context}, {history} and {question}. Values are not escaped: braces typed by
// a user appear in the prompt verbatim.
type PromptBuilder struct {
	variant  string
	template prompts.PromptTemplate
}

// NewPromptBuilder returns a builder for the named template variant.
func NewPromptBuilder(variant string) (*PromptBuilder, error) {
	var text string
	switch variant {
	case TemplateMentor, "":
		variant, text = TemplateMentor, mentorTemplate
	case TemplateTone:
		text = toneTemplate
	case TemplateGuarded:
		text = guardedTemplate
	default:
		return nil, fmt.Errorf("unknown prompt template %q", variant)
	}

	return &PromptBuilder{
		variant: variant,
		template: prompts.PromptTemplate{
			Template:       text,
			InputVariables: []string{"context", "history", "question"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
	}, nil
}

// Variant returns the template variant name.
func (b *PromptBuilder) Variant() string {
	return b.variant
}

// UsesHistory reports whether the template renders conversation history.
func (b *PromptBuilder) UsesHistory() bool {
	return b.variant != TemplateTone
}

// Build renders the prompt. results should be nil when retrieval was judged
// not relevant; the context then renders empty. Empty history renders "".
func (b *PromptBuilder) Build(question string, results []rag.RetrievalResult, history []ConversationTurn) (string, error) {
	return b.template.Format(map[string]any{
		"context":  FormatContext(results),
		"history":  FormatHistory(history),
		"question": question,
	})
}

// FormatContext joins chunk contents with ContextSeparator.
func FormatContext(results []rag.RetrievalResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Content
	}
	return strings.Join(parts, ContextSeparator)
}

// FormatHistory renders turns oldest first as "Student: q\nMentor: a", one turn per line group.
func FormatHistory(turns []ConversationTurn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = "Student: " + t.Question + "\nMentor: " + t.Answer
	}
	return strings.Join(lines, "\n")
}
