package domain

import (
	"encoding/json"
	"time"
)

// MessageKind tags a chat transcript entry.
type MessageKind string

const (
	KindUser         MessageKind = "user"
	KindAI           MessageKind = "ai"
	KindSystem       MessageKind = "system"
	KindLoader       MessageKind = "loader"
	KindLeadList     MessageKind = "lead_list"
	KindFollowUpList MessageKind = "follow_up_list"
)

// Message is one entry of the assistant chat transcript. The set of
// implementations is closed: only types in this package satisfy it.
type Message interface {
	Kind() MessageKind
	Meta() MessageMeta
	isMessage()
}

// MessageMeta is common to every message kind.
type MessageMeta struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Meta returns the identifying fields.
func (m MessageMeta) Meta() MessageMeta { return m }

func (MessageMeta) isMessage() {}

// UserMessage is typed (or uploaded) by the agent.
type UserMessage struct {
	MessageMeta
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// AIMessage is free-text output from the assistant.
type AIMessage struct {
	MessageMeta
	Text string `json:"text"`
}

// SystemMessage is a UI hint such as "image attached".
type SystemMessage struct {
	MessageMeta
	Text string `json:"text"`
}

// LoaderMessage is a placeholder shown while an AI request is in flight.
type LoaderMessage struct {
	MessageMeta
}

// LeadCard is the short contact projection rendered in lead lists.
type LeadCard struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Status  string  `json:"status"`
	Urgency Urgency `json:"urgency"`
}

// CardFor projects c into a LeadCard.
func CardFor(c Contact) LeadCard {
	return LeadCard{ID: c.ID, Name: c.Name, Phone: c.Phone, Status: c.Status, Urgency: c.Urgency}
}

// LeadListMessage lists contacts picked straight from the store.
type LeadListMessage struct {
	MessageMeta
	Text  string     `json:"text"`
	Leads []LeadCard `json:"leads"`
}

// PrioritizedLead is one AI-ranked follow-up suggestion.
type PrioritizedLead struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	Status               string `json:"status"`
	PrioritizationReason string `json:"prioritizationReason"`
}

// FollowUpListMessage carries an AI-prioritized follow-up list.
type FollowUpListMessage struct {
	MessageMeta
	Text  string            `json:"text"`
	Leads []PrioritizedLead `json:"leads"`
}

func (UserMessage) Kind() MessageKind         { return KindUser }
func (AIMessage) Kind() MessageKind           { return KindAI }
func (SystemMessage) Kind() MessageKind       { return KindSystem }
func (LoaderMessage) Kind() MessageKind       { return KindLoader }
func (LeadListMessage) Kind() MessageKind     { return KindLeadList }
func (FollowUpListMessage) Kind() MessageKind { return KindFollowUpList }

// MarshalJSON adds the kind tag.
func (m UserMessage) MarshalJSON() ([]byte, error) {
	type plain UserMessage
	return json.Marshal(struct {
		Kind MessageKind `json:"kind"`
		plain
	}{KindUser, plain(m)})
}

// MarshalJSON adds the kind tag.
func (m AIMessage) MarshalJSON() ([]byte, error) {
	type plain AIMessage
	return json.Marshal(struct {
		Kind MessageKind `json:"kind"`
		plain
	}{KindAI, plain(m)})
}

// MarshalJSON adds the kind tag.
func (m SystemMessage) MarshalJSON() ([]byte, error) {
	type plain SystemMessage
	return json.Marshal(struct {
		Kind MessageKind `json:"kind"`
		plain
	}{KindSystem, plain(m)})
}

// MarshalJSON adds the kind tag.
func (m LoaderMessage) MarshalJSON() ([]byte, error) {
	type plain LoaderMessage
	return json.Marshal(struct {
		Kind MessageKind `json:"kind"`
		plain
	}{KindLoader, plain(m)})
}

// MarshalJSON adds the kind tag.
func (m LeadListMessage) MarshalJSON() ([]byte, error) {
	type plain LeadListMessage
	return json.Marshal(struct {
		Kind MessageKind `json:"kind"`
		plain
	}{KindLeadList, plain(m)})
}

// MarshalJSON adds the kind tag.
func (m FollowUpListMessage) MarshalJSON() ([]byte, error) {
	type plain FollowUpListMessage
	return json.Marshal(struct {
		Kind MessageKind `json:"kind"`
		plain
	}{KindFollowUpList, plain(m)})
}
