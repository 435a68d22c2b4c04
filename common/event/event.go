package event

import (
	"sync"

	messagebus "github.com/vardius/message-bus"
	"vincit.fi/image-metadata/api"
	"vincit.fi/image-metadata/api/apitype"
	"vincit.fi/image-metadata/common/logger"
)

type Handler func(command apitype.Command)

// Broker delivers commands to topic subscribers asynchronously.
type Broker struct {
	bus         messagebus.MessageBus
	mutex       sync.Mutex
	subscribers map[api.Topic]int
	pending     sync.WaitGroup
}

func InitBus(queueSize int) *Broker {
	return &Broker{
		bus:         messagebus.New(queueSize),
		subscribers: map[api.Topic]int{},
	}
}

func (s *Broker) Subscribe(topic api.Topic, handler Handler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.bus.Subscribe(string(topic), func(command apitype.Command) {
		defer s.pending.Done()
		handler(command)
	})
	if err != nil {
		logger.Error.Printf("Could not subscribe to '%s': %s", topic, err)
		return err
	}
	s.subscribers[topic]++
	return nil
}

func (s *Broker) SendCommandToTopic(topic api.Topic, command apitype.Command) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	logger.Trace.Printf("Sending command to '%s'", topic)
	s.pending.Add(s.subscribers[topic])
	s.bus.Publish(string(topic), command)
}

// Wait blocks until every command sent so far has been handled.
func (s *Broker) Wait() {
	s.pending.Wait()
}
