// Package record persists finished game recordings.
package record

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Saver stores one sealed recording. Implementations are called from a
// background goroutine after each game ends.
type Saver interface {
	Save(data []byte, serverName string, start time.Time) error
}

// FileSaver writes recordings to a directory on the local filesystem.
type FileSaver struct {
	// Dir is created on demand.
	Dir string
}

func (s FileSaver) Save(data []byte, serverName string, start time.Time) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s.%s.hrp", serverName, start.Format("2006-01-02T150405"))
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

// HTTPSaver uploads recordings to an HTTP endpoint as a multipart form with
// the fields time, server and replay.
type HTTPSaver struct {
	URL    string
	Client *http.Client
}

func (s HTTPSaver) Save(data []byte, serverName string, start time.Time) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("time", start.Format(time.RFC3339)); err != nil {
		return err
	}
	if err := mw.WriteField("server", serverName); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("replay", "replay.hrp")
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(s.URL, mw.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("replay upload failed with status %s: %s", resp.Status, b)
	}
	return nil
}
