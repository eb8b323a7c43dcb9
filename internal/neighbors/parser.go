package neighbors

import (
	"encoding/json"
	"errors"
	"fmt"

	"graph-crawler/internal/models"
)

var ErrMalformedResponse = errors.New("neighbors: malformed response")

// ParseNeighbors decodes {"neighbors": ["id", ...]}. A missing or non-array
// "neighbors" field, or any non-string element, is ErrMalformedResponse.
func ParseNeighbors(body []byte) ([]models.NodeID, error) {
	var payload struct {
		Neighbors json.RawMessage `json:"neighbors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(payload.Neighbors) == 0 || string(payload.Neighbors) == "null" {
		return nil, fmt.Errorf("%w: missing neighbors field", ErrMalformedResponse)
	}

	var ids []string
	if err := json.Unmarshal(payload.Neighbors, &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := make([]models.NodeID, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.NodeID(id))
	}
	return out, nil
}
