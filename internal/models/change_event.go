package models

type ChangeReason string

const (
	ReasonSave     ChangeReason = "save"
	ReasonReset    ChangeReason = "reset"
	ReasonExternal ChangeReason = "external"
)

// ChangeEvent describes one bump of the store snapshot counter.
type ChangeEvent struct {
	Snapshot uint64       `json:"snapshot"`
	Reason   ChangeReason `json:"reason"`
	At       Timestamp    `json:"at"`
}
