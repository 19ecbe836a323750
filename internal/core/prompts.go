package core

import "fmt"

// prompts.go holds the prompt templates and fixed user-facing strings for the
// chat and summarization pipelines. Keeping them together makes them easy to
// tweak without touching the orchestration code.

const (
	// NoMedicalDataMessage is returned to the user when neither prescriptions
	// nor an intake form exist. It short-circuits the pipeline: no embedding
	// or LLM call is made.
	NoMedicalDataMessage = "No medical history found. Please upload your medical details."

	// ChatFallbackMessage is rendered as an in-conversation bot message when
	// the LLM call fails. Chat failures never surface as HTTP errors.
	ChatFallbackMessage = "I'm sorry, I encountered an error while processing your request."

	// SummaryFallbackMessage substitutes for the session summary when the LLM
	// call fails during end-of-session processing.
	SummaryFallbackMessage = "Unable to generate conversation summary due to an error."

	chatPromptTemplate = `You are MedBot, a highly intelligent AI medical assistant. Your goal is to provide medically accurate, highly personalized responses based on:

- The user's retrieved medical history (prescriptions, conditions, allergies, medications).
- Relevant medical knowledge.

Instructions:
1. Analyze the user's medical history.
2. Understand the current query.
3. If the query relates to health, tailor your response using their history.
4. Offer clear explanations and actionable advice.
5. If the query is general, respond normally.
6. If you are uncertain, advise the user to consult a medical specialist.
7. If the user shows signs of distress, include a human support contact in your response.
8. First answer the user's query and mention your thinking at last separately.
9. Response should be user understandable.
10. Response should be in points.

User's Medical History:
%s

Retrieved Medical Knowledge:
%s

User's Query:
%s

MedBot's Response:`

	summaryPromptTemplate = `You are an expert medical conversation analyst. Your task is to create a comprehensive yet concise summary of a medical chatbot conversation between a user and MedBot (an AI medical assistant).

The summary should:
1. Highlight the main medical topics discussed
2. Note any symptoms or conditions mentioned
3. Summarize advice or explanations provided by the bot
4. Identify any follow-up actions recommended to the user
5. Maintain medical accuracy while being concise

Conversation History:
==================
%s
==================

Please provide a professional medical conversation summary in 3-5 key points.`
)

// RenderChatPrompt builds the full prompt for one chat turn. Both the complete
// medical history and the retrieved chunks are included: the history gives the
// model full coverage, the retrieved chunks emphasize what is most relevant to
// the query.
func RenderChatPrompt(medicalHistory, retrievedContext, userQuery string) string {
	return fmt.Sprintf(chatPromptTemplate, medicalHistory, retrievedContext, userQuery)
}

// RenderSummaryPrompt builds the end-of-session summarization prompt.
func RenderSummaryPrompt(conversation string) string {
	return fmt.Sprintf(summaryPromptTemplate, conversation)
}
