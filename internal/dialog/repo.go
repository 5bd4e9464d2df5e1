package dialog

import "sync"

// Repo keeps conversation state in memory. Dialog positions are
// ephemeral by design: a restart simply drops users back to the menu.
type Repo struct {
	mu    sync.Mutex
	items map[int64]Item
}

func NewRepo() *Repo {
	return &Repo{items: make(map[int64]Item)}
}

func (r *Repo) Get(chatID int64) Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[chatID]; ok {
		return it
	}
	return Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}
}

func (r *Repo) Set(chatID int64, state State, payload Payload) {
	if payload == nil {
		payload = Payload{}
	}
	r.mu.Lock()
	r.items[chatID] = Item{ChatID: chatID, State: state, Payload: payload}
	r.mu.Unlock()
}

func (r *Repo) Reset(chatID int64) {
	r.mu.Lock()
	delete(r.items, chatID)
	r.mu.Unlock()
}
