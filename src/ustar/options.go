package ustar

import (
	"os"
	"time"
)

// Option is an option for appending an entry to an Archive.
type Option interface {
	applyOption(cfg *entryConfig)
}

type entryConfig struct {
	mode    int64
	uid     int
	gid     int
	uname   string
	gname   string
	modTime time.Time
}

func newEntryConfig(mode int64, opts []Option) *entryConfig {
	cfg := &entryConfig{mode: mode}
	for _, opt := range opts {
		opt.applyOption(cfg)
	}
	if cfg.modTime.IsZero() {
		cfg.modTime = time.Now()
	}
	return cfg
}

func (cfg *entryConfig) header(typeflag Typeflag) Header {
	return Header{
		Mode:     cfg.mode,
		UID:      cfg.uid,
		GID:      cfg.gid,
		Uname:    cfg.uname,
		Gname:    cfg.gname,
		Typeflag: typeflag,
	}
}

type modeOption int64

func (opt modeOption) applyOption(cfg *entryConfig) {
	cfg.mode = int64(opt)
}

// OptMode sets the permission bits of the entry.
func OptMode(mode os.FileMode) Option {
	m := int64(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		m |= modeSUID
	}
	if mode&os.ModeSetgid != 0 {
		m |= modeSGID
	}
	if mode&os.ModeSticky != 0 {
		m |= modeSticky
	}
	return modeOption(m)
}

type uidOption int

func (opt uidOption) applyOption(cfg *entryConfig) {
	cfg.uid = int(opt)
}

// OptUID sets the owner user id.
func OptUID(uid int) Option { return uidOption(uid) }

type gidOption int

func (opt gidOption) applyOption(cfg *entryConfig) {
	cfg.gid = int(opt)
}

// OptGID sets the owner group id.
func OptGID(gid int) Option { return gidOption(gid) }

type unameOption string

func (opt unameOption) applyOption(cfg *entryConfig) {
	cfg.uname = string(opt)
}

// OptUname sets the owner user name.
func OptUname(name string) Option { return unameOption(name) }

type gnameOption string

func (opt gnameOption) applyOption(cfg *entryConfig) {
	cfg.gname = string(opt)
}

// OptGname sets the owner group name.
func OptGname(name string) Option { return gnameOption(name) }

type modTimeOption time.Time

func (opt modTimeOption) applyOption(cfg *entryConfig) {
	cfg.modTime = time.Time(opt)
}

// OptModTime sets the modification time of links, directories, devices and
// FIFOs. It defaults to the time the entry is added. Files take the
// modification time of their content instead.
func OptModTime(t time.Time) Option { return modTimeOption(t) }

// ReadOption is an option for ReadArchive.
type ReadOption interface {
	applyReadOption(cfg *readConfig)
}

type readConfig struct {
	verifyChecksum bool
}

// OptVerifyChecksum makes ReadArchive fail with ErrChecksum on headers whose
// stored checksum does not match their bytes.
var OptVerifyChecksum = new(optVerifyChecksum)

type optVerifyChecksum struct{}

func (opt optVerifyChecksum) applyReadOption(cfg *readConfig) {
	cfg.verifyChecksum = true
}
