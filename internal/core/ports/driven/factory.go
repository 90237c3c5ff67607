package driven

// ChatFactory resolves a provider/model selection into a chat service.
// Unknown providers and missing credentials surface here, before any
// generation work begins.
type ChatFactory interface {
	// Create returns a chat service for the provider. An empty model
	// selects the provider's configured default.
	Create(provider, model string) (ChatService, error)
}
