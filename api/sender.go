package api

import "vincit.fi/image-metadata/api/apitype"

type Topic string

const (
	ImageLoaded Topic = "event-image-loaded"
	ImageSaved  Topic = "event-image-saved"
)

type Sender interface {
	SendCommandToTopic(topic Topic, command apitype.Command)
}

// NoopSender drops everything sent to it.
type NoopSender struct{}

func (s NoopSender) SendCommandToTopic(Topic, apitype.Command) {}
