//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"draw-lab/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker is a long-lived loop run by the supervisor.
// Returning nil means the work is over; an error or a panic gets it
// restarted.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName names a worker after its concrete type, for logs and
// restart counters.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives the board events of one session.
// Consume must give up once ctx is done.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the directory of the sessions currently connected.
type IRegistry interface {
	Sinks() map[string]EventSink
	Subscribe(sessionID string, sink EventSink)
	Unsubscribe(sessionID string)
	Count() int
}
