package models

import "time"

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageAudio MessageType = "audio"
)

type SenderKind string

const (
	SenderUser  SenderKind = "user"
	SenderAgent SenderKind = "agent"
)

// Sender tags a message author with its kind, so user and agent ids never
// have to be told apart by probing both stores.
type Sender struct {
	Kind SenderKind `json:"kind"`
	ID   string     `json:"id"`
}

func UserSender(id string) Sender  { return Sender{Kind: SenderUser, ID: id} }
func AgentSender(id string) Sender { return Sender{Kind: SenderAgent, ID: id} }

// Message is immutable once stored; it is never updated or deleted.
type Message struct {
	ID        string      `json:"id"`
	GroupID   string      `json:"group_id"`
	Sender    Sender      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	AudioPath string      `json:"audio_path,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
