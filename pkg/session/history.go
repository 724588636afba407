package session

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is a single conversation turn in a session's durable history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DiskHistory persists conversation history as JSONL files keyed by
// (session id, project path). The project path is hashed into a directory
// name so arbitrary filesystem paths stay out of file names.
type DiskHistory struct {
	baseDir    string
	writeLocks map[string]*sync.Mutex
	locksMu    sync.Mutex
}

// NewDiskHistory creates a history store rooted at baseDir.
func NewDiskHistory(baseDir string) (*DiskHistory, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".agentplane", "sessions")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &DiskHistory{
		baseDir:    baseDir,
		writeLocks: make(map[string]*sync.Mutex),
	}, nil
}

// validateSessionID rejects ids that could escape the history directory.
func validateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("session id cannot contain '..'")
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("session id cannot contain path separators")
	}
	if strings.Contains(id, "\x00") {
		return fmt.Errorf("session id cannot contain null bytes")
	}
	return nil
}

// projectDir maps a project path to a stable directory name. Sessions with
// no project path share the "global" directory.
func projectDir(projectPath string) string {
	if projectPath == "" {
		return "global"
	}
	sum := sha256.Sum256([]byte(projectPath))
	return hex.EncodeToString(sum[:8])
}

func (h *DiskHistory) historyPath(id, projectPath string) string {
	return filepath.Join(h.baseDir, projectDir(projectPath), id+".jsonl")
}

func (h *DiskHistory) getWriteLock(key string) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()

	if lock, ok := h.writeLocks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	h.writeLocks[key] = lock
	return lock
}

// Exists reports whether history exists for (id, projectPath). Invalid ids
// simply have no history.
func (h *DiskHistory) Exists(id, projectPath string) bool {
	if err := validateSessionID(id); err != nil {
		return false
	}
	info, err := os.Stat(h.historyPath(id, projectPath))
	return err == nil && !info.IsDir()
}

// Append appends one message to a session's history file, creating it on
// first write.
func (h *DiskHistory) Append(id, projectPath string, msg Message) error {
	if err := validateSessionID(id); err != nil {
		return err
	}
	if msg.Role == "" {
		return fmt.Errorf("message role cannot be empty")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	path := h.historyPath(id, projectPath)
	lock := h.getWriteLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return file.Sync()
}

// Load reads all messages for (id, projectPath), skipping corrupt lines.
// A missing file yields an empty history, not an error.
func (h *DiskHistory) Load(id, projectPath string) ([]Message, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	path := h.historyPath(id, projectPath)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	var messages []Message
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			log.Warn().
				Str("sessionId", id).
				Int("line", lineNum).
				Err(err).
				Msg("Skipping corrupt history line")
			continue
		}
		if msg.Role == "" {
			continue
		}
		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return messages, nil
}

// Delete removes a session's history file.
func (h *DiskHistory) Delete(id, projectPath string) error {
	if err := validateSessionID(id); err != nil {
		return err
	}

	path := h.historyPath(id, projectPath)
	lock := h.getWriteLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}

	h.locksMu.Lock()
	delete(h.writeLocks, path)
	h.locksMu.Unlock()
	return nil
}
