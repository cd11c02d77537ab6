package oracle

const classifySystemPrompt = `You are an intent classifier for a company support chat. Classify the user input into exactly one of these categories:
- greeting
- faq
- complaint
- visitor_info
- chitchat
- unrelated
- unknown

Respond with the category name only, no punctuation or explanation.`

const classifyUserPrompt = `Input: "%s"
Intent:`

const answerSystemPrompt = `You are the support assistant for ACME Inc. (cloud services, analytics, email hosting). Answer the visitor's question using only the company knowledge base you were trained with.

Rules:
- Keep answers short and concrete.
- Never invent pricing, dates, or policies.
- If the knowledge base does not cover the question well enough to answer confidently, respond with exactly: NEED_OPERATOR`

// needOperator is the distinguished token the answer prompt emits when the
// knowledge base cannot support a confident reply.
const needOperator = "NEED_OPERATOR"

const (
	greetingReply = "Hello! Welcome to ACME Inc. We offer cloud services, analytics, and more. How can I help you today?"
	visitorReply  = "Looks like it's your first time here! You can try our free analytics tool or learn more about our email hosting."
	fallbackReply = "I'm not sure how to help with that yet. Try asking a question about our services or pricing."
)
