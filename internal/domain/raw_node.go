package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawNode is the untrusted nested payload returned by GET /referrals. Every
// field may be missing or malformed; the tree builder decides what survives.
type RawNode struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	TotalIncome float64   `json:"totalIncome"`
	ROIIncome   float64   `json:"roiIncome,omitempty"`
	LevelIncome float64   `json:"levelIncome,omitempty"`
	Children    []RawNode `json:"children"`
}

type rawNodeWire struct {
	ID          json.RawMessage `json:"id"`
	LegacyID    json.RawMessage `json:"_id"`
	Name        json.RawMessage `json:"name"`
	Email       json.RawMessage `json:"email"`
	TotalIncome json.RawMessage `json:"totalIncome"`
	ROIIncome   json.RawMessage `json:"roiIncome"`
	LevelIncome json.RawMessage `json:"levelIncome"`
	Children    json.RawMessage `json:"children"`
}

// UnmarshalJSON never fails on well-formed JSON. It accepts the legacy "_id"
// key, numeric identifiers and string-encoded amounts. Amounts that cannot be
// parsed decode to NaN, non-string names and emails decode to "", and a value
// that is not an object decodes to a node without identifier, so the builder
// flags each defect instead of the whole payload being rejected.
func (n *RawNode) UnmarshalJSON(data []byte) error {
	var wire rawNodeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		*n = RawNode{}
		return nil
	}

	id := decodeID(wire.ID)
	if id == "" {
		id = decodeID(wire.LegacyID)
	}

	*n = RawNode{
		ID:          id,
		Name:        decodeString(wire.Name),
		Email:       decodeString(wire.Email),
		TotalIncome: decodeAmount(wire.TotalIncome),
		ROIIncome:   decodeAmount(wire.ROIIncome),
		LevelIncome: decodeAmount(wire.LevelIncome),
		Children:    decodeChildren(wire.Children),
	}
	return nil
}

// decodeID accepts string and numeric identifiers.
func decodeID(raw json.RawMessage) string {
	if s := decodeString(raw); s != "" {
		return s
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return ""
}

func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// decodeChildren decodes element by element; a children value that is not an
// array yields no children.
func decodeChildren(raw json.RawMessage) []RawNode {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil
	}
	children := make([]RawNode, len(elems))
	for i, elem := range elems {
		_ = children[i].UnmarshalJSON(elem)
	}
	return children
}

func decodeAmount(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			return v
		}
	}
	return math.NaN()
}
