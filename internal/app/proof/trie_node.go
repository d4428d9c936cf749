package proof

import "github.com/osvaldoandrade/ledgerproof/internal/app/rlp"

type nodeKind int

const (
	nodeInvalid nodeKind = iota
	nodeBlank
	nodeLeaf
	nodeExtension
	nodeBranch
)

const branchValueSlot = 16

// classify infers the node variant from structure alone. Trie nodes carry no
// explicit tag: an empty string is the blank sentinel, a 2-element list is a
// leaf or extension depending on the terminator flag of its packed nibble
// path, and a 17-element list is a branch.
func classify(item rlp.Item) nodeKind {
	switch node := item.(type) {
	case rlp.String:
		if len(node.Str) == 0 {
			return nodeBlank
		}
		return nodeInvalid
	case rlp.List:
		switch len(node.Items) {
		case 2:
			path, ok := node.Items[0].(rlp.String)
			if !ok || len(path.Str) == 0 {
				return nodeInvalid
			}
			if hpIsTerminated(path.Str) {
				return nodeLeaf
			}
			return nodeExtension
		case 17:
			return nodeBranch
		}
	}
	return nodeInvalid
}

// hpIsTerminated reads the terminator flag of a hex-prefix encoded nibble
// path. Flag nibbles: 0 even extension, 1 odd extension, 2 even leaf,
// 3 odd leaf.
func hpIsTerminated(path []byte) bool {
	return path[0]>>4 >= 2
}

// nodeValue unpacks the stored value of a leaf element or branch value slot.
// Stored values are wrapped as a single-element rlp list.
func nodeValue(slot rlp.Item) ([]byte, bool) {
	str, ok := slot.(rlp.String)
	if !ok || len(str.Str) == 0 {
		return nil, false
	}
	wrapped, err := rlp.Decode(str.Str)
	if err != nil {
		return nil, false
	}
	list, ok := wrapped.(rlp.List)
	if !ok || len(list.Items) == 0 {
		return nil, false
	}
	value, ok := list.Items[0].(rlp.String)
	if !ok {
		return nil, false
	}
	return value.Str, true
}
