package blocker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// RunningProcess is the slice of process state the blocker cares about.
type RunningProcess struct {
	PID  int32
	Name string
}

// System abstracts process listing and termination so the matching
// logic is testable without killing anything.
type System interface {
	List(ctx context.Context) ([]RunningProcess, error)
	Kill(ctx context.Context, pid int32) error
}

type Config struct {
	APIBaseURL string
	Token      string
	CacheFile  string
	Interval   time.Duration
}

// Blocker polls the backend for the owner's blocked-app list and
// force-terminates matching processes on every tick. It keeps no state
// between ticks: a relaunched process is simply killed again.
type Blocker struct {
	cfg    Config
	client *http.Client
	system System
}

func New(cfg Config, system System) *Blocker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &Blocker{
		cfg:    cfg,
		client: &http.Client{Timeout: 4 * time.Second},
		system: system,
	}
}

// Run ticks until the context is cancelled. Tick errors are logged and
// never fatal; the next tick starts from scratch.
func (b *Blocker) Run(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Tick(ctx); err != nil {
				log.Printf("blocker tick failed: %v", err)
			}
		}
	}
}

func (b *Blocker) Tick(ctx context.Context) error {
	blocklist, err := b.FetchBlocklist(ctx)
	if err != nil {
		return err
	}
	if len(blocklist) == 0 {
		return nil
	}

	procs, err := b.system.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	for _, proc := range procs {
		if !Matches(blocklist, proc.Name) {
			continue
		}
		if err := b.system.Kill(ctx, proc.PID); err != nil {
			log.Printf("failed to kill %s (pid %d): %v", proc.Name, proc.PID, err)
			continue
		}
		log.Printf("Blocked: %s (pid %d)", proc.Name, proc.PID)
	}

	return nil
}

// Matches reports whether name equals any blocklist entry, ignoring
// case. Exact comparison only: "code" must not match "xcode".
func Matches(blocklist []string, name string) bool {
	for _, entry := range blocklist {
		if strings.EqualFold(entry, name) {
			return true
		}
	}
	return false
}

// FetchBlocklist asks the backend for the owner's blocked apps. A
// successful fetch rewrites the local cache file whole; on failure the
// cache serves as fallback so the blocker works offline.
func (b *Blocker) FetchBlocklist(ctx context.Context) ([]string, error) {
	names, err := b.fetchRemote(ctx)
	if err != nil {
		cached, cacheErr := b.readCache()
		if cacheErr != nil {
			return nil, fmt.Errorf("fetch failed (%v) and no usable cache: %w", err, cacheErr)
		}
		log.Printf("using cached blocklist: %v", err)
		return cached, nil
	}

	if b.cfg.CacheFile != "" {
		if err := b.writeCache(names); err != nil {
			log.Printf("failed to write blocklist cache: %v", err)
		}
	}
	return names, nil
}

func (b *Blocker) fetchRemote(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.APIBaseURL+"/api/v1/blocked-apps", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+b.cfg.Token)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var apps []struct {
		AppName string `json:"app_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apps); err != nil {
		return nil, fmt.Errorf("failed to decode blocked apps: %w", err)
	}

	names := make([]string, 0, len(apps))
	for _, a := range apps {
		names = append(names, a.AppName)
	}
	return names, nil
}

// Cache format is a flat JSON array of strings, read and written whole.
func (b *Blocker) readCache() ([]string, error) {
	if b.cfg.CacheFile == "" {
		return nil, fmt.Errorf("no cache file configured")
	}
	data, err := os.ReadFile(b.cfg.CacheFile)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (b *Blocker) writeCache(names []string) error {
	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(b.cfg.CacheFile, data, 0o644)
}
