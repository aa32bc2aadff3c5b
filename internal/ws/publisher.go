package ws

import (
	"encoding/json"
	"fmt"
	"log"

	"go_domains/internal/db"
	"go_domains/internal/model"
)

const domainsTopic = "domains"

// PublishDomainEvent persists a domain event and broadcasts it to all clients.
// eventType is one of "add", "update", "delete"; payload is what clients receive.
func PublishDomainEvent(eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WebSocket] Failed to marshal payload: %v", err)
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := model.WSEvent{
		Topic:     domainsTopic,
		EventType: eventType,
		Payload:   string(payloadJSON),
	}

	if err := db.GetDB().Create(&event).Error; err != nil {
		log.Printf("[WebSocket] Failed to write event to database: %v", err)
		return fmt.Errorf("failed to write event to database: %w", err)
	}

	// Broadcast failure must not affect the main flow
	BroadcastToAll("domains:update", map[string]interface{}{
		"eventId": event.ID,
		"type":    eventType,
		"data":    payload,
	})

	log.Printf("[WebSocket] Event published: id=%d, type=%s, topic=%s", event.ID, eventType, event.Topic)

	return nil
}

// GetIncrementalEvents returns domain events with id > lastEventID,
// oldest first, limited to maxCount
func GetIncrementalEvents(lastEventID int64, maxCount int) ([]model.WSEvent, error) {
	var events []model.WSEvent

	err := db.GetDB().
		Where("topic = ? AND id > ?", domainsTopic, lastEventID).
		Order("id ASC").
		Limit(maxCount).
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("failed to query incremental events: %w", err)
	}

	return events, nil
}

// GetLatestEventID returns the id of the newest domain event, or 0 when
// no events exist yet
func GetLatestEventID() (int64, error) {
	var event model.WSEvent

	err := db.GetDB().
		Where("topic = ?", domainsTopic).
		Order("id DESC").
		Limit(1).
		First(&event).Error

	if err != nil {
		if err.Error() == "record not found" {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query latest event: %w", err)
	}

	return event.ID, nil
}
