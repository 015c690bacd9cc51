package ban

import (
	"bufio"
	"net/netip"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// File is a ban list backed by a text file with one address per line. The
// file is re-read whenever its modification time changes, so bans can be
// edited by hand while the server runs.
type File struct {
	log  *logrus.Logger
	path string

	mu      sync.Mutex
	addrs   map[netip.Addr]struct{}
	lastMod time.Time
}

// NewFile loads the ban list at path, creating the file if it is missing.
func NewFile(log *logrus.Logger, path string) (*File, error) {
	f := &File{
		log:   log,
		path:  path,
		addrs: make(map[netip.Addr]struct{}),
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return nil, err
		}
	}
	if err := f.reload(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) IsBanned(addr netip.Addr) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maybeReload()
	_, ok := f.addrs[addr.Unmap()]
	return ok
}

func (f *File) Ban(addr netip.Addr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maybeReload()
	f.addrs[addr.Unmap()] = struct{}{}
	f.rewrite()
}

func (f *File) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addrs = make(map[netip.Addr]struct{})
	f.rewrite()
}

func (f *File) maybeReload() {
	info, err := os.Stat(f.path)
	if err != nil {
		return
	}
	if info.ModTime().Equal(f.lastMod) {
		return
	}
	if err := f.reload(); err != nil {
		f.log.WithError(err).WithField("path", f.path).Warn("Could not reload ban list")
	}
}

func (f *File) reload() error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}
	addrs := make(map[netip.Addr]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, err := netip.ParseAddr(line)
		if err != nil {
			f.log.WithField("line", line).Warn("Skipping unparsable ban list entry")
			continue
		}
		addrs[addr.Unmap()] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	f.addrs = addrs
	f.lastMod = info.ModTime()
	return nil
}

func (f *File) rewrite() {
	var sb strings.Builder
	for addr := range f.addrs {
		sb.WriteString(addr.String())
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(f.path, []byte(sb.String()), 0o644); err != nil {
		f.log.WithError(err).WithField("path", f.path).Error("Could not write ban list")
		return
	}
	if info, err := os.Stat(f.path); err == nil {
		f.lastMod = info.ModTime()
	}
}
