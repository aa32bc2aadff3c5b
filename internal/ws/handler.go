package ws

import (
	"encoding/json"
	"log"

	socketio "github.com/googollee/go-socket.io"
	"go_domains/internal/db"
	"go_domains/internal/dto"
	"go_domains/internal/model"
)

// handleRequestDomains handles the request:domains event. Clients reconnecting
// send the last event id they saw; when possible we replay the gap instead of
// resending the full list.
func handleRequestDomains(s socketio.Conn, data interface{}) {
	log.Printf("[WebSocket] request:domains from client %s", s.ID())

	var lastEventID int64
	if dataMap, ok := data.(map[string]interface{}); ok {
		if v, ok := dataMap["lastEventId"].(float64); ok {
			lastEventID = int64(v)
		}
	}

	if lastEventID > 0 {
		if sendIncrementalUpdates(s, lastEventID) {
			return
		}
		log.Printf("[WebSocket] Incremental updates failed, falling back to full list")
	}

	sendFullDomainsList(s)
}

// sendIncrementalUpdates replays events after lastEventID to the client.
// Returns false when the caller should fall back to the full list.
func sendIncrementalUpdates(s socketio.Conn, lastEventID int64) bool {
	maxCount := 500
	events, err := GetIncrementalEvents(lastEventID, maxCount)
	if err != nil {
		log.Printf("[WebSocket] Failed to query incremental events: %v", err)
		return false
	}

	// Too large a gap, a full list is cheaper
	if len(events) >= maxCount {
		log.Printf("[WebSocket] Too many incremental events (%d), falling back to full list", len(events))
		return false
	}

	if len(events) == 0 {
		latestEventID, _ := GetLatestEventID()
		s.Emit("domains:initial", map[string]interface{}{
			"items":       []interface{}{},
			"total":       0,
			"lastEventId": latestEventID,
		})
		return true
	}

	log.Printf("[WebSocket] Sending %d incremental events", len(events))
	for _, event := range events {
		var payload interface{}
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			log.Printf("[WebSocket] Failed to unmarshal event payload: %v", err)
			continue
		}

		s.Emit("domains:update", map[string]interface{}{
			"eventId": event.ID,
			"type":    event.EventType,
			"data":    payload,
		})
	}

	return true
}

// sendFullDomainsList sends the complete tenant domain list to the client
func sendFullDomainsList(s socketio.Conn) {
	var total int64
	query := db.GetDB().Model(&model.TenantDomain{})

	if err := query.Count(&total).Error; err != nil {
		log.Printf("[WebSocket] Failed to count domains: %v", err)
		s.Emit("error", map[string]interface{}{
			"message": "Failed to query domains",
		})
		return
	}

	var domains []model.TenantDomain
	if err := query.Order("created_at ASC").Limit(10000).Find(&domains).Error; err != nil {
		log.Printf("[WebSocket] Failed to query domains: %v", err)
		s.Emit("error", map[string]interface{}{
			"message": "Failed to query domains",
		})
		return
	}

	latestEventID, _ := GetLatestEventID()

	s.Emit("domains:initial", map[string]interface{}{
		"items":       dto.FromTenantDomains(domains),
		"total":       total,
		"lastEventId": latestEventID,
	})

	log.Printf("[WebSocket] Sent full domains list: total=%d, lastEventId=%d", total, latestEventID)
}
