package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/anicoll/homedash/internal/pkg/model"
)

// Write mirrors view to the broker. Device state is retained so late
// subscribers see the latest value. Unchanged payloads are not republished.
func (s *service) Write(ctx context.Context, view model.View) error {
	for _, d := range view.Devices {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.publishDevice(d); err != nil {
			return err
		}
	}
	return s.publishStatus(view)
}

func (s *service) DeviceTopic(id string) string {
	return fmt.Sprintf("%s/device/%s/state", s.prefix, topicID(id))
}

// topicID turns id into a topic level. Slugging folds case and drops
// punctuation, so ids that are not slugs already get a hash of the raw id
// appended to keep "Lamp" and "lamp" on different topics.
func topicID(id string) string {
	s := slug.Make(id)
	if s == id {
		return s
	}
	if s == "" {
		s = "device"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return fmt.Sprintf("%s-%08x", s, h.Sum32())
}

func (s *service) StatusTopic() string {
	return s.prefix + "/status"
}

func (s *service) publishDevice(d model.Device) error {
	topic := s.DeviceTopic(d.ID)
	key, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if !s.shouldUpdate(topic, key) {
		return nil
	}
	payload, err := json.Marshal(model.DeviceStateMessage{Device: d, PublishedAt: s.now()})
	if err != nil {
		return err
	}
	if err := s.publish(topic, true, payload); err != nil {
		return err
	}
	s.published.Store(topic, key)
	return nil
}

func (s *service) publishStatus(view model.View) error {
	msg := model.StatusMessage{
		Status:      view.Status,
		DeviceCount: len(view.Devices),
		EventCount:  len(view.Events),
	}
	topic := s.StatusTopic()
	key, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if !s.shouldUpdate(topic, key) {
		return nil
	}
	msg.PublishedAt = s.now()
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.publish(topic, true, payload); err != nil {
		return err
	}
	s.published.Store(topic, key)
	return nil
}

func (s *service) shouldUpdate(topic string, key []byte) bool {
	prev, ok := s.published.Load(topic)
	if !ok {
		return true
	}
	return !bytes.Equal(prev.([]byte), key)
}

func (s *service) publish(topic string, retained bool, payload []byte) error {
	token := s.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(waitTimeout) {
		if err := token.Error(); err != nil {
			return err
		}
		return fmt.Errorf("%w: publishing %s", ErrTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return err
	}
	s.logger.Debug("published", zap.String("topic", topic))
	return nil
}
