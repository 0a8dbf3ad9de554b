package domain

// KeywordEntry is one "extracted word" document: a word some pipeline pulled
// out of a user's conversations, with the conversations that mention it.
// This system only reads these; extraction happens elsewhere.
type KeywordEntry struct {
	ID              string
	Word            string
	Owner           Username
	ConversationIDs []ConversationID
}
