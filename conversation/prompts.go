package conversation

import (
	"strings"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
)

// DefaultFallbackAnswer is returned when retrieval finds no fragments.
const DefaultFallbackAnswer = "I'm sorry, but the data does not provide enough information to answer that question."

// DefaultSystemPrompt is the analyst instruction placed before the
// retrieved context.
const DefaultSystemPrompt = "You are an intelligent assistant specialized in analyzing and generating insights " +
	"from CSV files containing organizational data. Your goal is to answer questions, provide detailed " +
	"insights, and generate relevant analyses based on the information within the CSV files. You can " +
	"compute statistics, identify trends, and offer recommendations if the data allows it. If the data " +
	"doesn't contain enough information to answer a query, respond with: '" + DefaultFallbackAnswer + "'"

// contextSeparator joins retrieved fragment contents.
const contextSeparator = "\n\n"

const condenseInstruction = "Given the following conversation and a follow up question, " +
	"rephrase the follow up question to be a standalone question, in its original language."

// answerMessages builds the completion request: instruction and context,
// prior turns, then the question.
func answerMessages(instruction string, sources []core.Fragment, history []core.ConversationTurn, query string) []ai.Message {
	contents := make([]string, len(sources))
	for i, f := range sources {
		contents[i] = f.Content
	}

	messages := make([]ai.Message, 0, 2+2*len(history))
	messages = append(messages, ai.SystemMessage(instruction+"\n\n"+strings.Join(contents, contextSeparator)))
	for _, turn := range history {
		messages = append(messages, ai.HumanMessage(turn.UserQuery), ai.AIMessage(turn.Answer))
	}
	return append(messages, ai.HumanMessage(query))
}

// condenseMessages asks for a standalone rewrite of a follow-up question.
func condenseMessages(history []core.ConversationTurn, query string) []ai.Message {
	var b strings.Builder
	b.WriteString(condenseInstruction)
	b.WriteString("\n\nChat History:\n")
	for _, turn := range history {
		b.WriteString("Human: ")
		b.WriteString(turn.UserQuery)
		b.WriteString("\nAssistant: ")
		b.WriteString(turn.Answer)
		b.WriteString("\n")
	}
	b.WriteString("Follow Up Input: ")
	b.WriteString(query)
	b.WriteString("\nStandalone question:")
	return []ai.Message{ai.HumanMessage(b.String())}
}
