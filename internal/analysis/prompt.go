package analysis

import (
	"fmt"
	"unicode/utf8"
)

// MaxInputChars bounds what gets sent for analysis. Longer documents are
// analyzed only up to this prefix.
const MaxInputChars = 4000

const systemPrompt = "Extract key information from RFP documents into structured data. " +
	"Return ONLY a JSON object. Use these fields when the document provides them: " +
	"project_name, deadline, budget, summary, requirements (array of strings), " +
	"stakeholders (array of strings), evaluation_criteria (array of strings), " +
	"submission_instructions, contact_information. " +
	"Keep list entries in the order they appear. Omit fields you cannot find; never output null."

// truncateInput cuts text to at most MaxInputChars bytes without splitting a
// UTF-8 rune mid-sequence.
func truncateInput(text string) string {
	if len(text) <= MaxInputChars {
		return text
	}

	cut := MaxInputChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func buildUserPrompt(text string) string {
	return fmt.Sprintf("Extract key information from this RFP text into JSON format:\n\n%s", truncateInput(text))
}

// buildChatPrompt grounds a follow-up question on a document's stored
// summary text.
func buildChatPrompt(summary, question string) string {
	return fmt.Sprintf("Document content:\n\n%s\n\nQuestion: %s", truncateInput(summary), question)
}
