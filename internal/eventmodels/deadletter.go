package eventmodels

import "encoding/json"

// DeadLetter is the payload published on deadletter.{subject} (spec §6).
type DeadLetter struct {
	Reason   string          `json:"reason"`
	Original json.RawMessage `json:"original"`
}
