package gltfutil

import (
	"encoding/json"
	"sort"
)

type references struct {
	Buffers []struct {
		URI string `json:"uri"`
	} `json:"buffers"`
	Images []struct {
		URI string `json:"uri"`
	} `json:"images"`
	Textures []struct {
		Source *uint32 `json:"source"`
	} `json:"textures"`
}

// Dependencies lists the external files referenced by buffers and textures
// of the document at docPath, sorted and without duplicates. Data-URLs are
// returned as they are. Unparseable input yields an empty list.
func Dependencies(data []byte, docPath string) []string {
	js := data
	if IsBinary(data) {
		var err error
		if js, _, err = SplitBinary(data); err != nil {
			return []string{}
		}
	}
	var refs references
	if err := json.Unmarshal(js, &refs); err != nil {
		return []string{}
	}

	base := BaseDir(docPath)
	found := map[string]bool{}
	for _, b := range refs.Buffers {
		if b.URI != "" {
			found[ResolveURI(base, b.URI)] = true
		}
	}
	for _, t := range refs.Textures {
		if t.Source == nil || int(*t.Source) >= len(refs.Images) {
			continue
		}
		if uri := refs.Images[*t.Source].URI; uri != "" {
			found[ResolveURI(base, uri)] = true
		}
	}

	deps := make([]string, 0, len(found))
	for p := range found {
		deps = append(deps, p)
	}
	sort.Strings(deps)
	return deps
}
