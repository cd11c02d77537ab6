package oracle

import "context"

// Intent is the closed set of classifications the responder understands.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentFAQ         Intent = "faq"
	IntentComplaint   Intent = "complaint"
	IntentVisitorInfo Intent = "visitor_info"
	IntentChitchat    Intent = "chitchat"
	IntentUnrelated   Intent = "unrelated"
	IntentUnknown     Intent = "unknown"
)

// Result is what the oracle hands back for one utterance: either a reply to
// send, or Defer set when the conversation should go to a human operator.
// Defer is an explicit classification outcome — transport failures come back
// as errors, never as Defer.
type Result struct {
	Intent Intent
	Reply  string
	Defer  bool
}

// Responder classifies a visitor utterance and produces an answer. The
// controller treats it as an opaque, potentially slow collaborator.
type Responder interface {
	Respond(ctx context.Context, utterance string) (Result, error)
}
