package testhelpers

import (
	"fmt"
)

// AskReply mirrors the ask endpoint's response body.
type AskReply struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	Persisted      bool   `json:"persisted"`
}

// HistoryEntry mirrors one item of the history endpoint.
type HistoryEntry struct {
	Sender         string `json:"sender"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
}

// ConversationEntry mirrors one item of the conversations endpoint.
type ConversationEntry struct {
	ConversationID string `json:"conversation_id"`
	Preview        string `json:"preview"`
	Timestamp      string `json:"timestamp"`
	Sender         string `json:"sender"`
}

// Ask posts a question. An empty conversationID starts a new conversation.
func Ask(baseURL, token, question string, useRAG bool, conversationID string) (*AskReply, error) {
	body := map[string]any{"question": question, "use_rag": useRAG}
	if conversationID != "" {
		body["conversation_id"] = conversationID
	}

	var reply AskReply
	resp, err := newClient(baseURL).R().
		SetAuthToken(token).
		SetBody(body).
		SetResult(&reply).
		Post("/api/v1/ask")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ask failed: %d %s", resp.StatusCode(), resp.String())
	}
	return &reply, nil
}

// History fetches one conversation's transcript.
func History(baseURL, token, conversationID string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	req := newClient(baseURL).R().SetAuthToken(token).SetResult(&entries)
	if conversationID != "" {
		req.SetQueryParam("conversation_id", conversationID)
	}
	resp, err := req.Get("/api/v1/history")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("history failed: %d %s", resp.StatusCode(), resp.String())
	}
	return entries, nil
}

// Conversations lists the caller's conversations.
func Conversations(baseURL, token string) ([]ConversationEntry, error) {
	var entries []ConversationEntry
	resp, err := newClient(baseURL).R().SetAuthToken(token).SetResult(&entries).Get("/api/v1/conversations")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("conversations failed: %d %s", resp.StatusCode(), resp.String())
	}
	return entries, nil
}
