// Package notify рассылает изменения состояния клиента подписчикам.
package notify

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Popolzen/shortlink/internal/model"
)

// Phase этап выполнения операции
type Phase string

const (
	PhaseStarted   Phase = "started"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Event одно изменение состояния
type Event struct {
	Timestamp int64           `json:"ts"`
	Operation model.Operation `json:"operation"`
	Phase     Phase           `json:"phase"`
	State     model.Snapshot  `json:"state"`
}

// NewEvent создаёт событие с текущим временем
func NewEvent(op model.Operation, phase Phase, snap model.Snapshot) Event {
	return Event{
		Timestamp: time.Now().Unix(),
		Operation: op,
		Phase:     phase,
		State:     snap,
	}
}

// Observer получает события по одному, в порядке их возникновения.
// Notify не должен синхронно вызывать операции, которые сами публикуют события.
type Observer interface {
	Notify(event Event)
	Close() error
}

// ObserverFunc позволяет использовать функцию как Observer
type ObserverFunc func(event Event)

func (f ObserverFunc) Notify(event Event) {
	f(event)
}

func (f ObserverFunc) Close() error {
	return nil
}

// Publisher раздаёт события подписанным наблюдателям
type Publisher struct {
	mu          sync.Mutex
	subscribers []Observer
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Subscribe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, o)
}

// Publish синхронно раздаёт событие всем подписчикам в порядке подписки.
// Паника одного наблюдателя не мешает остальным и возвращается ошибкой.
func (p *Publisher) Publish(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, s := range p.subscribers {
		if err := notifySafe(s, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func notifySafe(o Observer, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	o.Notify(event)
	return nil
}

// Close закрывает всех наблюдателей, возвращает первую ошибку
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for _, obs := range p.subscribers {
		if err := obs.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.subscribers = nil
	return first
}
