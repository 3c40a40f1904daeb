package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/png"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

// observed are the mpv properties translated into signals.
var observed = []string{
	"duration",
	"time-pos",
	"demuxer-cache-state",
	"paused-for-cache",
}

// MPV implements Resource on top of an mpv process driven through its JSON-IPC protocol.
type MPV struct {
	binary     string
	socketPath string
	source     string

	cmd    *exec.Cmd
	exited chan struct{} // closed when mpv process exits
	events *EventListener

	mu sync.Mutex // protects socket writes

	lmu      sync.Mutex // guards listener
	listener func(Signal)
}

// NewMPV creates a new MPV resource. The process is started lazily by Load.
func NewMPV(binary string) *MPV {
	if binary == "" {
		binary = "mpv"
	}

	exited := make(chan struct{})
	close(exited)

	return &MPV{
		binary: binary,
		exited: exited,
	}
}

// SetSource validates and stores the media target.
func (m *MPV) SetSource(rawURL string) error {
	// Sanitize the URL to prevent flag injection
	safeURL, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.source = safeURL
	return nil
}

// Load starts mpv if needed and replaces whatever it plays with the stored source.
// mpv is started paused: playback only begins when the state machine asks for it.
func (m *MPV) Load() error {
	if m.source == "" {
		return ErrDetached
	}

	if !m.running() {
		if err := m.start(); err != nil {
			return err
		}
	}

	_, err := m.sendCommand([]interface{}{"loadfile", m.source, "replace"})
	return err
}

func (m *MPV) start() error {
	// Generate a random socket path using os.TempDir() for cross-platform support
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("marquee-%x.sock", randomBytes))

	// Do NOT pass --vo, --profile, --hwdec: respect user's mpv.conf.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
	}

	m.cmd = exec.Command(m.binary, args...)

	// Detach from parent process group to prevent cascading shell panics.
	detach(m.cmd)
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Background goroutine to reap the process and prevent zombies
	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = terminate(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.events = NewEventListener(m.socketPath, observed, m.handleEvent)
	if err := m.events.Start(); err != nil {
		return err
	}

	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) running() bool {
	if m.socketPath == "" {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

// SetCurrentTime seeks to an exact absolute position, so captured frames match the requested time.
func (m *MPV) SetCurrentTime(seconds float64) error {
	if !m.running() {
		return ErrDetached
	}

	_, err := m.sendCommand([]interface{}{"seek", seconds, "absolute+exact"})
	return err
}

// CurrentTime returns the current playback position in seconds.
func (m *MPV) CurrentTime() (float64, error) {
	if !m.running() {
		return 0, ErrDetached
	}

	return m.getFloatProperty("time-pos")
}

// SetVolume maps [0,1] onto mpv's percentage scale.
func (m *MPV) SetVolume(volume float64) error {
	return m.set("volume", volume*100)
}

func (m *MPV) SetPlaybackRate(rate float64) error {
	return m.set("speed", rate)
}

// RequestPictureInPicture always fails: mpv has no picture-in-picture window mode.
func (m *MPV) RequestPictureInPicture(context.Context, bool) error {
	return ErrUnsupported
}

// CaptureFrame asks mpv to write the current video frame (without subtitles or OSD) to a
// temporary PNG and decodes it.
func (m *MPV) CaptureFrame(ctx context.Context) (image.Image, error) {
	if !m.running() {
		return nil, ErrDetached
	}

	path := filepath.Join(where.Temp(), fmt.Sprintf("frame-%s.png", uuid.NewString()))
	defer filesystem.API().Remove(path)

	if _, err := m.sendCommand([]interface{}{"screenshot-to-file", path, "video"}); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	return img, nil
}

// Listen registers the signal callback.
func (m *MPV) Listen(fn func(Signal)) {
	m.lmu.Lock()
	defer m.lmu.Unlock()
	m.listener = fn
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.events != nil {
		m.events.Stop()
		m.events = nil
	}

	if !m.running() {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand([]interface{}{"quit"})

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = terminate(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	m.socketPath = ""

	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) set(property string, value interface{}) error {
	if !m.running() {
		return ErrDetached
	}

	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

func (m *MPV) signal(sig Signal) {
	m.lmu.Lock()
	fn := m.listener
	m.lmu.Unlock()

	if fn != nil {
		fn(sig)
	}
}

// handleEvent translates one mpv property change or event into a Signal.
func (m *MPV) handleEvent(name string, data interface{}) {
	switch name {
	case "duration":
		if d, ok := data.(float64); ok {
			m.signal(Signal{Kind: MetadataReady, Value: d})
		}
	case "time-pos":
		if t, ok := data.(float64); ok {
			m.signal(Signal{Kind: TimeProgress, Value: t})
		}
	case "demuxer-cache-state":
		m.signal(Signal{Kind: BufferedExtent, Ranges: cacheRanges(data)})
	case "paused-for-cache":
		if stalled, ok := data.(bool); ok {
			if stalled {
				m.signal(Signal{Kind: Stall})
			} else {
				m.signal(Signal{Kind: Resume})
			}
		}
	case "playback-restart":
		// Sent once per completed seek. The seeking property can flip and settle between two
		// notifications, so it is not observed.
		m.signal(Signal{Kind: Seeked})
	case "file-loaded":
		m.signal(Signal{Kind: Ready})
	case "end-file":
		event, _ := data.(map[string]interface{})
		if reason, _ := event["reason"].(string); reason == "error" {
			message, _ := event["file_error"].(string)
			if message == "" {
				message = "playback error"
			}
			m.signal(Signal{Kind: FatalError, Message: message})
		}
	}
}

// cacheRanges extracts the seekable ranges of mpv's demuxer-cache-state property.
func cacheRanges(data interface{}) []machine.BufferRange {
	state, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}

	raw, ok := state["seekable-ranges"].([]interface{})
	if !ok {
		return nil
	}

	ranges := make([]machine.BufferRange, 0, len(raw))
	for _, r := range raw {
		entry, ok := r.(map[string]interface{})
		if !ok {
			continue
		}

		start, okStart := entry["start"].(float64)
		end, okEnd := entry["end"].(float64)
		if okStart && okEnd {
			ranges = append(ranges, machine.BufferRange{Start: start, End: end})
		}
	}

	return normalizeRanges(ranges)
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}
