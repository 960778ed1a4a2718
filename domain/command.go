package domain

// SendMessageCommand carries a participant's intent to post a message.
type SendMessageCommand struct {
	From string
	To   string
	Text string
	Kind Kind
}

// GetMessagesCommand asks for the tail of the log as seen by Viewer.
// A non-positive Limit returns the whole visible history.
type GetMessagesCommand struct {
	Viewer string
	Limit  int
}

// DeleteMessageCommand asks for the removal of a message by its sender.
type DeleteMessageCommand struct {
	ID        string
	Requester string
}
