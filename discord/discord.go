// Package discord delivers notifications to a Discord webhook: plain embed
// batches for the daily flow run, and multipart uploads with a file
// attachment for the chart run.
package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// Payload is the webhook message body.
type Payload struct {
	Content string `json:"content,omitempty"`
	Embeds  []any  `json:"embeds,omitempty"`
}

var client = &http.Client{Timeout: 60 * time.Second}

// Send posts a batch of embeds to the webhook.
func Send(webhook string, embeds ...any) error {
	body, err := json.Marshal(Payload{Embeds: embeds})
	if err != nil {
		return err
	}
	resp, err := client.Post(webhook, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cannot execute webhook request: %w", err)
	}
	defer resp.Body.Close()
	log.Printf("[discord] status=%d", resp.StatusCode)
	return checkStatus(resp)
}

// SendFile posts the payload as a multipart upload with one file attachment.
// The payload travels in the payload_json sidecar part, the way the webhook
// API expects it; an embed can reference the file as attachment://<filename>.
func SendFile(webhook string, payload Payload, filename string, file []byte) error {
	sidecar, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(sidecar)); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(file); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	resp, err := client.Post(webhook, w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("cannot execute webhook request: %w", err)
	}
	defer resp.Body.Close()
	log.Printf("[discord] status=%d", resp.StatusCode)
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("webhook refused delivery: status %d: %s", resp.StatusCode, body)
}
