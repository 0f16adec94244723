package runtime

import (
	"chat-aggregator/contract"
	"sync"
)

type Set map[string]struct{}

// Registry tracks live connections and the channels they listen to.
type Registry struct {
	mu              sync.RWMutex
	Sessions        map[string]contract.EventSink // map session -> Sink
	ChannelMembers  map[string]Set                // map channel to sessions
	sessionChannels map[string]Set
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:        make(map[string]contract.EventSink),
		ChannelMembers:  make(map[string]Set),
		sessionChannels: make(map[string]Set),
	}
}

// GetSinksForChannel retrieves all active communication channels for a specific channel.
// It performs a two-step lookup:
// 1. Identifies session IDs associated with the channel via ChannelMembers.
// 2. Resolves those IDs into actual EventSinks using the Sessions map.
// Returns nil if the channel has no connected session.
func (r *Registry) GetSinksForChannel(channelID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.ChannelMembers[channelID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for sessionID := range members {
		if sink, exists := r.Sessions[sessionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a session's connection and adds it to a channel.
// A session may subscribe to several channels with the same sink.
func (r *Registry) Subscribe(sessionID, channelID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[sessionID] = sink

	if _, ok := r.ChannelMembers[channelID]; !ok {
		r.ChannelMembers[channelID] = make(Set)
	}
	r.ChannelMembers[channelID][sessionID] = struct{}{}

	if _, ok := r.sessionChannels[sessionID]; !ok {
		r.sessionChannels[sessionID] = make(Set)
	}
	r.sessionChannels[sessionID][channelID] = struct{}{}
}

// Unsubscribe removes a session from the registry and from every channel it joined.
// Channels left without sessions are dropped.
func (r *Registry) Unsubscribe(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, sessionID)
	for channelID := range r.sessionChannels[sessionID] {
		if members, ok := r.ChannelMembers[channelID]; ok {
			delete(members, sessionID)
			if len(members) == 0 {
				delete(r.ChannelMembers, channelID)
			}
		}
	}
	delete(r.sessionChannels, sessionID)
}

// RemoveChannel forgets a channel. Sessions stay connected to their other channels.
func (r *Registry) RemoveChannel(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sessionID := range r.ChannelMembers[channelID] {
		delete(r.sessionChannels[sessionID], channelID)
	}
	delete(r.ChannelMembers, channelID)
}

var _ contract.IRegistry = (*Registry)(nil)
