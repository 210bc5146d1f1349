package model

// Caller is the acting identity threaded explicitly through every mutating
// operation. It is never read from ambient process state, which keeps audit
// fields deterministic in tests.
type Caller struct {
	Agent string
}

// AnonymousAgent is used when the presentation layer supplies no identity.
const AnonymousAgent = "anonymous"

// AgentOrAnonymous returns the agent name, defaulting when empty.
func (c Caller) AgentOrAnonymous() string {
	if c.Agent == "" {
		return AnonymousAgent
	}
	return c.Agent
}
