// Copyright 2026 The Canopy Authors
// SPDX-License-Identifier: Apache-2.0

package cardui

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// ChangeEvent announces that the catalog was reloaded. Delivered on
// the Subscribe channel so the browser model can rebuild its panels.
type ChangeEvent struct {
	// Cards is the new catalog snapshot.
	Cards []Card
}

// CatalogSource owns the live card catalog: a snapshot for readers
// plus a subscription channel fed by the file watcher. A digest of
// the raw file bytes suppresses reloads when the content is
// unchanged; editors that write via atomic rename fire inotify
// events even when nothing differs.
type CatalogSource struct {
	mu          sync.Mutex
	cards       []Card
	digest      [32]byte
	subscribers []chan ChangeEvent
}

// NewCatalogSource creates a source holding the given cards.
func NewCatalogSource(cards []Card) *CatalogSource {
	return &CatalogSource{cards: append([]Card(nil), cards...)}
}

// Cards returns the current catalog snapshot. Callers must not mutate
// the returned slice.
func (source *CatalogSource) Cards() []Card {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.cards
}

// Subscribe returns a channel receiving a ChangeEvent per reload.
// Events are dropped, not queued, for subscribers that fall behind.
func (source *CatalogSource) Subscribe() <-chan ChangeEvent {
	source.mu.Lock()
	defer source.mu.Unlock()
	channel := make(chan ChangeEvent, 4)
	source.subscribers = append(source.subscribers, channel)
	return channel
}

// Replace parses raw catalog bytes and swaps the snapshot, notifying
// subscribers. Returns false without an event when the bytes digest
// identically to the current content.
func (source *CatalogSource) Replace(data []byte) (bool, error) {
	digest := blake3.Sum256(data)

	source.mu.Lock()
	if digest == source.digest {
		source.mu.Unlock()
		return false, nil
	}
	source.mu.Unlock()

	cards, err := ParseCatalog(data)
	if err != nil {
		return false, err
	}

	source.mu.Lock()
	source.digest = digest
	source.cards = cards
	subscribers := append([]chan ChangeEvent(nil), source.subscribers...)
	source.mu.Unlock()

	for _, channel := range subscribers {
		select {
		case channel <- ChangeEvent{Cards: cards}:
		default:
		}
	}
	return true, nil
}

// WatchCatalogFile loads the catalog and starts an inotify watcher
// that reloads it on change. The cleanup function stops the watcher.
//
// The watcher monitors the parent directory rather than the file:
// editors that write a temp file and rename it create a new inode,
// which a file-level watch on the old inode would miss.
func WatchCatalogFile(path string, logger *slog.Logger) (*CatalogSource, func(), error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}

	source := NewCatalogSource(nil)
	if _, err := source.Replace(data); err != nil {
		return nil, nil, err
	}

	directory := filepath.Dir(absolutePath)
	filename := filepath.Base(absolutePath)

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, nil, fmt.Errorf("inotify init: %w", err)
	}
	if _, err := unix.InotifyAddWatch(fd, directory, unix.IN_CLOSE_WRITE|unix.IN_MOVED_TO); err != nil {
		unix.Close(fd)
		return nil, nil, fmt.Errorf("inotify watch %s: %w", directory, err)
	}

	stopChannel := make(chan struct{})
	go watchLoop(fd, absolutePath, filename, source, logger, stopChannel)

	var stopOnce sync.Once
	cleanup := func() {
		stopOnce.Do(func() { close(stopChannel) })
	}
	return source, cleanup, nil
}

// watchLoop polls the inotify fd for events on the catalog file and
// feeds re-reads into the source. Uses poll(2) with a 100ms timeout
// for responsive stop-channel checking; after detecting a change it
// waits 50ms and drains queued events to coalesce rapid writes.
func watchLoop(
	fd int,
	path string,
	filename string,
	source *CatalogSource,
	logger *slog.Logger,
	stopChannel <-chan struct{},
) {
	defer unix.Close(fd)

	buffer := make([]byte, 4096)

	for {
		select {
		case <-stopChannel:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			// Fatal poll error: the browser degrades to a static
			// catalog.
			if logger != nil {
				logger.Warn("catalog watcher stopped", "error", err)
			}
			return
		}
		if count == 0 {
			continue
		}

		bytesRead, err := unix.Read(fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}

		if !inotifyMatchesFile(buffer[:bytesRead], filename) {
			continue
		}

		// Settle window: coalesce a burst of writes into one re-read.
		time.Sleep(50 * time.Millisecond)
		drainInotifyEvents(fd, buffer)

		data, err := os.ReadFile(path)
		if err != nil {
			// Mid-write or briefly absent during an atomic replace;
			// the completing write delivers another event.
			continue
		}
		if _, err := source.Replace(data); err != nil && logger != nil {
			logger.Warn("catalog reload failed", "path", path, "error", err)
		}
	}
}

// inotifyMatchesFile reports whether any event in the buffer names
// the target file. Event layout per inotify(7): a fixed header with
// the name length at offset 12, followed by the null-padded name.
func inotifyMatchesFile(buffer []byte, targetFilename string) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		if nameLength > 0 {
			nameBytes := buffer[offset+unix.SizeofInotifyEvent : offset+eventSize]
			if nullTerminated(nameBytes) == targetFilename {
				return true
			}
		}
		offset += eventSize
	}
	return false
}

// nullTerminated extracts a string from a null-padded byte slice.
func nullTerminated(data []byte) string {
	for index, b := range data {
		if b == 0 {
			return string(data[:index])
		}
	}
	return string(data)
}

// drainInotifyEvents reads and discards pending events after the
// settle window.
func drainInotifyEvents(fd int, buffer []byte) {
	for {
		if _, err := unix.Read(fd, buffer); err != nil {
			return
		}
	}
}
