package mq

import (
	"context"
	"encoding/json"
	"log"

	"roamly/models"
	"roamly/rdx"
)

const channel = "roamly-events"

// Emit publishes a domain event to Redis for the cache worker.
func Emit(ctx context.Context, eventName string, content models.Index) {
	payload := struct {
		Event string       `json:"event"`
		Data  models.Index `json:"data"`
	}{eventName, content}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[mq] failed to marshal %s: %v", eventName, err)
		return
	}

	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[mq] failed to publish %s: %v", eventName, err)
	}
}

// StartCacheWorker subscribes to the event channel and drops stale cache
// entries for mutated entities. Runs until the process exits.
func StartCacheWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[mq] cache worker listening")

	for msg := range ch {
		var event struct {
			Event string       `json:"event"`
			Data  models.Index `json:"data"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[mq] failed to parse event: %v", err)
			continue
		}

		switch event.Data.EntityType {
		case "tour":
			invalidate(ctx, "tours:list", "tour:"+event.Data.EntityId)
		case "review":
			invalidate(ctx, "tour:"+event.Data.ItemId)
		}
	}
}

func invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := rdx.Conn.Del(ctx, key).Err(); err != nil {
			log.Printf("[mq] failed to invalidate %s: %v", key, err)
		}
	}
}
