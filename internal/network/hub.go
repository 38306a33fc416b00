package network

import (
	"sync"

	"github.com/sirupsen/logrus"

	"isogrid-server/internal/domain"
	"isogrid-server/pkg/api"
	"isogrid-server/pkg/logger"
)

// subscriberBuffer - сколько снимков держим для медленного клиента.
// Переполненный канал просто пропускает снимок: следующий все равно полный по акторам.
const subscriberBuffer = 64

// Broadcaster занимается только рассылкой сообщений подписчикам
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: EntityID -> Личный канал
	subscribers map[domain.EntityID]chan api.ServerResponse
	dropped     map[domain.EntityID]int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[domain.EntityID]chan api.ServerResponse),
		dropped:     make(map[domain.EntityID]int),
	}
}

// Register создает личный канал для сущности (Игрока или Бота)
func (b *Broadcaster) Register(entityID domain.EntityID) chan api.ServerResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[entityID]; ok {
		close(old)
	}

	ch := make(chan api.ServerResponse, subscriberBuffer)
	b.subscribers[entityID] = ch
	delete(b.dropped, entityID)
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(entityID domain.EntityID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[entityID]; ok {
		close(ch)
		delete(b.subscribers, entityID)
	}
	if n := b.dropped[entityID]; n > 0 {
		logger.Log.WithFields(logrus.Fields{
			"component": "hub",
			"entity":    entityID,
			"dropped":   n,
		}).Debug("Subscriber removed after dropping snapshots")
	}
	delete(b.dropped, entityID)
}

// SendTo отправляет сообщение конкретному ID (Unicast)
func (b *Broadcaster) SendTo(entityID domain.EntityID, msg api.ServerResponse) {
	b.mu.RLock()
	ch, ok := b.subscribers[entityID]
	if !ok {
		b.mu.RUnlock()
		return
	}
	select {
	case ch <- msg:
		b.mu.RUnlock()
	default:
		b.mu.RUnlock()
		b.mu.Lock()
		b.dropped[entityID]++
		b.mu.Unlock()
	}
}

// Broadcast отправляет всем (нужен для зрителей/игроков)
func (b *Broadcaster) Broadcast(msg api.ServerResponse) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber проверяет, управляется ли сущность кем-то
// Инстанс шлет снимки только тем, у кого есть подписка.
func (b *Broadcaster) HasSubscriber(entityID domain.EntityID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[entityID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped - сколько снимков подписчик пропустил из-за полного канала.
func (b *Broadcaster) Dropped(entityID domain.EntityID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped[entityID]
}
