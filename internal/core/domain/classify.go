package domain

// MentionKind distinguishes a conversation-opening mention from a reply
// buried deeper in a thread.
type MentionKind int

const (
	// KindRoot means the mention itself starts the conversation.
	KindRoot MentionKind = iota
	// KindReply means the mention replies inside an existing conversation;
	// the root tweet must be fetched to build generation input.
	KindReply
)

// Classification is the result of classifying a mention. RootID is set only
// for KindReply.
type Classification struct {
	Kind   MentionKind
	RootID string
}

// Classify decides whether a mention opens a conversation or replies inside
// one. A tweet whose conversation ID equals its own ID is the conversation
// root; anything else is a reply that points at its root. A reply with no
// conversation ID has an empty RootID and cannot be resolved downstream.
func Classify(m Mention) Classification {
	if m.ConversationID == m.ID && m.ID != "" {
		return Classification{Kind: KindRoot}
	}
	return Classification{Kind: KindReply, RootID: m.ConversationID}
}
