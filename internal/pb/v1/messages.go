package v1

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SystemActor identifies who issued a mutating call.
type SystemActor struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

// GetHostname returns the hostname, or "" for a nil actor.
func (a *SystemActor) GetHostname() string {
	if a == nil {
		return ""
	}

	return a.Hostname
}

// GetUsername returns the username, or "" for a nil actor.
func (a *SystemActor) GetUsername() string {
	if a == nil {
		return ""
	}

	return a.Username
}

// ListActiveRequest asks for the armed timers of one owner, or of all owners
// when OwnerID is empty.
type ListActiveRequest struct {
	OwnerID string `json:"owner_id,omitempty"`
}

// Timer is an armed reminder timer.
type Timer struct {
	OwnerID          string    `json:"owner_id"`
	Label            string    `json:"label"`
	Hour             int       `json:"hour"`
	Minute           int       `json:"minute"`
	TestMode         bool      `json:"test_mode,omitempty"`
	NextTrigger      time.Time `json:"next_trigger"`
	RemainingSeconds float64   `json:"remaining_seconds"`
}

// ListActiveResponse lists armed timers ordered by next trigger.
type ListActiveResponse struct {
	Timers []Timer `json:"timers"`
}

// OwnerRequest targets the timers and alarms of one item.
type OwnerRequest struct {
	Actor   *SystemActor `json:"actor,omitempty"`
	OwnerID string       `json:"owner_id"`
}

// GetActor returns the actor, nil-safe.
func (r *OwnerRequest) GetActor() *SystemActor {
	if r == nil {
		return nil
	}

	return r.Actor
}

// CountResponse carries the number of affected timers and alarms.
type CountResponse struct {
	Count int `json:"count"`
}

// ReloadRequest re-reads the items file.
type ReloadRequest struct {
	Actor *SystemActor `json:"actor,omitempty"`
}

// ReloadResponse summarizes a reload.
type ReloadResponse struct {
	Items   int `json:"items"`
	Armed   int `json:"armed"`
	Cleared int `json:"cleared"`
}

// TestRequest arms a one-shot test reminder.
type TestRequest struct {
	Actor        *SystemActor `json:"actor,omitempty"`
	Label        string       `json:"label,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	Message      string       `json:"message,omitempty"`
	DelaySeconds float64      `json:"delay_seconds,omitempty"`
}

// TestResponse reports the armed test reminder.
type TestResponse struct {
	OwnerID     string    `json:"owner_id"`
	Armed       int       `json:"armed"`
	NextTrigger time.Time `json:"next_trigger"`
}

// VoicesRequest lists the speech voices.
type VoicesRequest struct{}

// Voice is a speech voice.
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// VoicesResponse lists voices and names the preferred one.
type VoicesResponse struct {
	Voices    []Voice `json:"voices"`
	Preferred string  `json:"preferred,omitempty"`
}

// SayRequest speaks a message with the given voice settings.
type SayRequest struct {
	Text   string  `json:"text,omitempty"`
	Voice  string  `json:"voice,omitempty"`
	Volume float64 `json:"volume,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	Pitch  float64 `json:"pitch,omitempty"`
}

// SayResponse reports whether the message was spoken.
type SayResponse struct {
	Spoken bool `json:"spoken"`
}

// HistoryRequest asks for recently fired alarms.
type HistoryRequest struct {
	OwnerID string `json:"owner_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// FiredAlarm is a fired alarm.
type FiredAlarm struct {
	OwnerID   string    `json:"owner_id"`
	Label     string    `json:"label"`
	Hour      int       `json:"hour"`
	Minute    int       `json:"minute"`
	TestMode  bool      `json:"test_mode,omitempty"`
	Delivered bool      `json:"delivered"`
	FiredAt   time.Time `json:"fired_at"`
}

// HistoryResponse lists fired alarms, newest first.
type HistoryResponse struct {
	Alarms []FiredAlarm `json:"alarms"`
}

// Encode maps a message onto a Struct. A nil message encodes as an empty Struct.
func Encode(message any) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	data, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	if string(data) == "null" {
		return out, nil
	}

	if err = protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert message: %w", err)
	}

	return out, nil
}

// Decode maps a Struct onto the message pointed to by target.
func Decode(in *structpb.Struct, target any) error {
	if in == nil {
		in = new(structpb.Struct)
	}

	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("convert message: %w", err)
	}

	if err = json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	return nil
}
