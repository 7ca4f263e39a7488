package clicker

import (
	"encoding/json"
	"fmt"
)

// QueryMsg is the contract's query enum. Exactly one field is set.
type QueryMsg struct {
	GetFortune *struct{} `json:"get_fortune,omitempty"`
	GetScores  *struct{} `json:"get_scores,omitempty"`
}

// ExecuteMsg is the contract's execute enum. Exactly one field is set.
type ExecuteMsg struct {
	UpsertScore *UpsertScoreMsg `json:"upsert_score,omitempty"`
	Send        *SendMsg        `json:"send,omitempty"`
}

type UpsertScoreMsg struct {
	Score uint16 `json:"score"`
}

// SendMsg pays amount (a Uint128 in decimal) from the contract to Addr.
// Only the contract owner may send.
type SendMsg struct {
	Addr   string `json:"addr"`
	Amount string `json:"amount"`
}

// FortuneResponse answers get_fortune.
type FortuneResponse struct {
	Fortune int32 `json:"fortune"`
}

// ScoreEntry is one address and its recorded score.
type ScoreEntry struct {
	Address string `json:"address"`
	Score   uint16 `json:"score"`
}

// ScoreResponse answers get_scores. On the wire each entry is an
// [address, score] pair.
type ScoreResponse struct {
	Scores []ScoreEntry `json:"scores"`
}

// ParseFortune decodes a get_fortune result.
func ParseFortune(raw json.RawMessage) (*FortuneResponse, error) {
	var resp FortuneResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode fortune: %w", err)
	}
	return &resp, nil
}

// ParseScores decodes a get_scores result.
func ParseScores(raw json.RawMessage) (*ScoreResponse, error) {
	var wire struct {
		Scores [][2]json.RawMessage `json:"scores"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode scores: %w", err)
	}

	resp := &ScoreResponse{Scores: make([]ScoreEntry, 0, len(wire.Scores))}
	for i, pair := range wire.Scores {
		var entry ScoreEntry
		if err := json.Unmarshal(pair[0], &entry.Address); err != nil {
			return nil, fmt.Errorf("decode scores[%d] address: %w", i, err)
		}
		if err := json.Unmarshal(pair[1], &entry.Score); err != nil {
			return nil, fmt.Errorf("decode scores[%d] score: %w", i, err)
		}
		resp.Scores = append(resp.Scores, entry)
	}
	return resp, nil
}
