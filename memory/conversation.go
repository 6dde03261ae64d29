package memory

// Roles used in the log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one exchanged chat message.
// Name identifies the specialist that produced an assistant reply.
type Message struct {
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

// UserMessage returns a user-authored message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AgentMessage returns a reply attributed to the named specialist.
func AgentMessage(name, text string) Message {
	return Message{Role: RoleAssistant, Name: name, Text: text}
}

// Conversation is the append-only message log shared by all turns.
// It is not safe for concurrent use; the chat loop owns it.
type Conversation struct {
	msgs []Message
}

// NewConversation returns a log seeded with msgs, oldest first.
func NewConversation(msgs ...Message) *Conversation {
	c := &Conversation{}
	c.msgs = append(c.msgs, msgs...)
	return c
}

func (c *Conversation) Append(msgs ...Message) {
	c.msgs = append(c.msgs, msgs...)
}

// Messages returns a copy of the log so callers cannot rewrite history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Conversation) Len() int { return len(c.msgs) }

// Last returns the newest message, if any.
func (c *Conversation) Last() (Message, bool) {
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}
