package imageedit

// StartConversation begins a conversation that dispatches through the manager.
func (m *Manager) StartConversation(opts ...ConversationOption) *Conversation {
	m.mu.RLock()
	logger := m.logger
	m.mu.RUnlock()

	opts = append([]ConversationOption{WithConversationLogger(logger)}, opts...)
	return NewConversation(m, opts...)
}

// StartConversationWithModel begins a conversation pinned to model.
func (m *Manager) StartConversationWithModel(model Model, opts ...ConversationOption) *Conversation {
	opts = append([]ConversationOption{WithConversationConfig(DefaultConfig().WithModel(model))}, opts...)
	return m.StartConversation(opts...)
}
