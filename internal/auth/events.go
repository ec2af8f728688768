package auth

import (
	"sync"
	"time"
)

// EventKind は認証イベントの種別を表す。
type EventKind string

const (
	// EventSignedIn はサインイン完了イベント。
	EventSignedIn EventKind = "SIGNED_IN"
	// EventSignedOut はサインアウトイベント。
	EventSignedOut EventKind = "SIGNED_OUT"
	// EventTokenRefreshed はセッション延長イベント。購読側では状態を変更しない。
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
)

// Event は認証状態の変化を表す。
type Event struct {
	Kind      EventKind
	SessionID string
	SubjectID string
	At        time.Time
}

// Broadcaster は認証イベントをチャネル経由で購読者に配信する。
// コールバック登録方式ではなくチャネルを使うことで、購読側が
// 自身のゴルーチンでイベントを直列に処理できる。
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBroadcaster はBroadcasterを生成する。
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[int]chan Event),
	}
}

// subscriberBuffer は購読チャネルのバッファ長。
// 受信が追いつかない購読者へのイベントは破棄される。
const subscriberBuffer = 16

// Subscribe はイベントチャネルと購読解除関数を返す。
// 購読解除後はチャネルがクローズされる。
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish は全購読者にイベントを配信する。
// バッファが満杯の購読者はスキップし、配信をブロックしない。
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount は現在の購読者数を返す。
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
