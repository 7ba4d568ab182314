package derived

import (
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/confpack/confpack/internal/ids"
	"github.com/confpack/confpack/internal/rawdata"
)

// TagLabelMap maps canonicalized tag labels to tag ids, for label-based
// external references. When several tags share a label key, the lowest id
// wins and the full colliding set is recorded for operator visibility.
type TagLabelMap struct {
	Version    int                 `json:"version"`
	ByLabel    map[string]ids.ID   `json:"byLabel"`
	Collisions map[string][]ids.ID `json:"collisions,omitempty"`
}

// LabelKey canonicalizes a tag label into its lookup key: lowercase,
// transliterated, non-alphanumeric runs folded to single underscores.
func LabelKey(label string) string {
	return strings.ReplaceAll(slug.Make(label), "-", "_")
}

// BuildTagLabelMap folds every tag across all tag types into the label map.
func BuildTagLabelMap(tagTypes []rawdata.TagType) TagLabelMap {
	out := TagLabelMap{Version: 1, ByLabel: make(map[string]ids.ID)}

	collisions := make(map[string]map[ids.ID]struct{})
	for _, tagType := range tagTypes {
		for _, tag := range tagType.Tags {
			id, ok := tag.ID.Norm()
			if !ok {
				continue
			}
			key := LabelKey(tag.Label)
			if key == "" {
				continue
			}
			existing, seen := out.ByLabel[key]
			if !seen {
				out.ByLabel[key] = id
				continue
			}
			if existing == id {
				continue
			}
			if id < existing {
				out.ByLabel[key] = id
			}
			set := collisions[key]
			if set == nil {
				set = make(map[ids.ID]struct{})
				collisions[key] = set
			}
			set[existing] = struct{}{}
			set[id] = struct{}{}
		}
	}

	if len(collisions) > 0 {
		out.Collisions = make(map[string][]ids.ID, len(collisions))
		for key, set := range collisions {
			list := make([]ids.ID, 0, len(set))
			for id := range set {
				list = append(list, id)
			}
			sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
			out.Collisions[key] = list
		}
	}
	return out
}
