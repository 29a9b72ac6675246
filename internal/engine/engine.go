package engine

import (
	"swapmeet/internal/database"
	"swapmeet/internal/engine/actors"
	"swapmeet/internal/notify"
	"swapmeet/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	userActor    *actor.PID
	messageActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, dispatcher notify.Dispatcher, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(store, metrics)
	})
	userPID := context.Spawn(userProps)

	messageProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewMessageActor(store, dispatcher, metrics)
	})
	messagePID := context.Spawn(messageProps)

	return &Engine{
		userActor:    userPID,
		messageActor: messagePID,
	}
}

// GetUserActor returns the PID of the user actor
func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}

// GetMessageActor returns the PID of the message actor
func (e *Engine) GetMessageActor() *actor.PID {
	return e.messageActor
}
