package tree

import "encoding/json"

// Marshal encodes a canonical tree as JSON. The encoding round-trips
// through [Unmarshal] and doubles as the content-hash input for caching:
// two trees marshal identically iff they are structurally identical.
func Marshal(root *Node) ([]byte, error) {
	return json.Marshal(root)
}

// Unmarshal decodes a tree previously encoded with [Marshal].
// The result is already canonical; it does not pass through Normalize
// again, so ids are taken as-is.
func Unmarshal(data []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}
