// Package alert defines the Alertmanager alert model and fingerprinting.
package alert

import (
	"strings"
	"time"
)

// Alert status values as sent by Alertmanager.
const (
	StatusFiring   = "firing"
	StatusResolved = "resolved"
)

// Alert represents a single alert from an Alertmanager webhook payload.
type Alert struct {
	Status      string            `json:"status"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    time.Time         `json:"startsAt,omitempty"`
	EndsAt      time.Time         `json:"endsAt,omitempty"`
}

// Fingerprint derives the deduplication identity key for an alert.
// Two alerts with the same alertname, instance and status collide to the
// same fingerprint regardless of annotations or timestamps; that is the
// intended dedup granularity. An all-empty alert yields "||".
func Fingerprint(a Alert) string {
	return strings.Join([]string{
		a.Labels["alertname"],
		a.Labels["instance"],
		a.Status,
	}, "|")
}
