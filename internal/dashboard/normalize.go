package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vidfriends/admin/internal/models"
)

// normalizeVideos accepts the admin video listing in either of its shapes: a
// bare array, or an object with a "videos" array. Anything else yields an
// empty list. Duplicate ids keep their first occurrence.
func normalizeVideos(raw json.RawMessage) ([]models.Video, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []models.Video{}, nil
	}

	var list []models.Video
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode video list: %w", err)
		}
	case '{':
		var wrapped struct {
			Videos json.RawMessage `json:"videos"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode video envelope: %w", err)
		}
		inner := bytes.TrimSpace(wrapped.Videos)
		if len(inner) == 0 || inner[0] != '[' {
			return []models.Video{}, nil
		}
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, fmt.Errorf("decode wrapped video list: %w", err)
		}
	default:
		return []models.Video{}, nil
	}

	return dedupe(list), nil
}

func dedupe(list []models.Video) []models.Video {
	seen := make(map[string]struct{}, len(list))
	out := make([]models.Video, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}
