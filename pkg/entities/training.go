package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Jacobbrewer1/ticketeer/pkg/custom"
)

// KeywordRule maps a comma separated keyword group to a canned response.
type KeywordRule struct {
	// Keywords is the comma joined keyword group, e.g. "role, rank".
	Keywords string `json:"keywords" bson:"keywords"`

	// Response is posted into a ticket whose reason matches the group.
	Response string `json:"response" bson:"response"`
}

// KeywordRules is the ordered rule list of a guild. Order is insertion order.
type KeywordRules []KeywordRule

// UnmarshalJSON accepts both the list form and the older {group: response} map form.
// Rules from the map form keep the order they are written in.
func (r *KeywordRules) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}

	if data[0] == '{' {
		out, err := decodeKeywordMap(data)
		if err != nil {
			return fmt.Errorf("error decoding keyword map: %w", err)
		}
		*r = out
		return nil
	}

	var list []KeywordRule
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("error decoding keyword list: %w", err)
	}
	*r = list
	return nil
}

// decodeKeywordMap reads a {group: response} object in document order. A group written twice
// keeps its first position and its last response.
func decodeKeywordMap(data []byte) (KeywordRules, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	out := make(KeywordRules, 0)
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		group, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var response string
		if err := dec.Decode(&response); err != nil {
			return nil, err
		}

		if i, ok := index[group]; ok {
			out[i].Response = response
			continue
		}
		index[group] = len(out)
		out = append(out, KeywordRule{Keywords: group, Response: response})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingTraining is a training request waiting for staff.
type PendingTraining struct {
	// ID is the training request ID.
	ID string `json:"id" bson:"id"`

	// Reason is the unmatched ticket reason.
	Reason string `json:"reason" bson:"reason"`

	// TicketNumber is the number of the ticket the reason came from.
	TicketNumber int `json:"ticket_number" bson:"ticket_number"`

	// ChannelID is the ticket channel.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// CreatorID is the user that opened the ticket.
	CreatorID string `json:"creator_id" bson:"creator_id"`

	// MessageID is the notification message in the training channel.
	MessageID string `json:"message_id" bson:"message_id"`

	// CreatedAt is when the request was queued.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`
}

// UnmarshalJSON accepts references written as numbers.
func (p *PendingTraining) UnmarshalJSON(data []byte) error {
	type alias PendingTraining
	aux := struct {
		*alias
		ChannelID Snowflake `json:"channel_id"`
		CreatorID Snowflake `json:"creator_id"`
		MessageID Snowflake `json:"message_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ChannelID = string(aux.ChannelID)
	p.CreatorID = string(aux.CreatorID)
	p.MessageID = string(aux.MessageID)
	return nil
}

// TrainingData is the keyword responder state of a guild.
type TrainingData struct {
	Keywords        KeywordRules                `json:"keywords" bson:"keywords"`
	PendingTraining map[string]*PendingTraining `json:"pending_training" bson:"pending_training"`
}

// TrainingDocument is the persisted document holding every guild's responder state.
type TrainingDocument struct {
	Servers map[string]*TrainingData `json:"servers" bson:"servers"`
}

// Init implements the dataaccess initializer.
func (d *TrainingDocument) Init() {
	if d.Servers == nil {
		d.Servers = make(map[string]*TrainingData)
	}
	for id, s := range d.Servers {
		if s == nil {
			d.Servers[id] = &TrainingData{PendingTraining: make(map[string]*PendingTraining)}
			continue
		}
		if s.PendingTraining == nil {
			s.PendingTraining = make(map[string]*PendingTraining)
		}
		for pid, pt := range s.PendingTraining {
			if pt == nil {
				delete(s.PendingTraining, pid)
			}
		}
	}
}

// Guild returns the guild's training data, creating it if needed.
func (d *TrainingDocument) Guild(guildID string) *TrainingData {
	if d.Servers == nil {
		d.Servers = make(map[string]*TrainingData)
	}
	s, ok := d.Servers[guildID]
	if !ok {
		s = &TrainingData{PendingTraining: make(map[string]*PendingTraining)}
		d.Servers[guildID] = s
	}
	return s
}
