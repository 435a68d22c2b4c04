package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"vincit.fi/image-metadata/api"
	"vincit.fi/image-metadata/api/apitype"
)

func TestBroker_SendCommandToTopic(t *testing.T) {
	a := assert.New(t)

	broker := InitBus(10)

	var mutex sync.Mutex
	var received []string
	err := broker.Subscribe(api.ImageSaved, func(command apitype.Command) {
		mutex.Lock()
		defer mutex.Unlock()
		received = append(received, command.(*apitype.ImageSavedCommand).Image.Filename)
	})
	a.Nil(err)

	for _, name := range []string{"a_00001_.png", "a_00002_.png", "a_00003_.png"} {
		broker.SendCommandToTopic(api.ImageSaved, &apitype.ImageSavedCommand{Image: apitype.NewSavedImage(name, "", apitype.OutputType)})
	}
	broker.Wait()

	mutex.Lock()
	defer mutex.Unlock()
	a.Equal([]string{"a_00001_.png", "a_00002_.png", "a_00003_.png"}, received)
}

func TestBroker_NoSubscribers(t *testing.T) {
	broker := InitBus(1)

	broker.SendCommandToTopic(api.ImageLoaded, &apitype.ImageLoadedCommand{Name: "image.png"})
	broker.Wait()
}
