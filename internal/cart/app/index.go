package app

// RemoteIndex maps product id to the id of its remote cart record.
// It has no locking of its own; Service guards it with the same mutex as the ledger.
type RemoteIndex struct {
	ids map[string]string
}

func NewRemoteIndex() *RemoteIndex {
	return &RemoteIndex{ids: make(map[string]string)}
}

func (x *RemoteIndex) Set(productID, recordID string) {
	x.ids[productID] = recordID
}

func (x *RemoteIndex) Get(productID string) (string, bool) {
	id, ok := x.ids[productID]
	return id, ok
}

func (x *RemoteIndex) Delete(productID string) {
	delete(x.ids, productID)
}

func (x *RemoteIndex) Clear() {
	clear(x.ids)
}

func (x *RemoteIndex) Len() int {
	return len(x.ids)
}

// Reset replaces the whole index with pairs.
func (x *RemoteIndex) Reset(pairs map[string]string) {
	clear(x.ids)
	for productID, recordID := range pairs {
		x.ids[productID] = recordID
	}
}
