package codec

import (
	"errors"
	"fmt"
	"strings"
)

// ProfileType identifies the profile variant. Values are written to the wire
// as int32 and are fixed by the consumer.
type ProfileType int32

const (
	ProfileTypeLocal  ProfileType = 0
	ProfileTypeICloud ProfileType = 1
	ProfileTypeRemote ProfileType = 2
)

var (
	ErrEmptyName          = errors.New("profile name is empty")
	ErrMissingRemotePath  = errors.New("remote path is required for icloud and remote profiles")
	ErrUnknownProfileType = errors.New("unknown profile type")
	ErrNilProfile         = errors.New("profile is nil")
)

// String returns the lower-case name used on the command line
func (t ProfileType) String() string {
	switch t {
	case ProfileTypeLocal:
		return "local"
	case ProfileTypeICloud:
		return "icloud"
	case ProfileTypeRemote:
		return "remote"
	default:
		return fmt.Sprintf("unknown(%d)", int32(t))
	}
}

// ParseProfileType parses "local", "icloud" or "remote" (case-insensitive)
func ParseProfileType(name string) (ProfileType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "local":
		return ProfileTypeLocal, nil
	case "icloud":
		return ProfileTypeICloud, nil
	case "remote":
		return ProfileTypeRemote, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfileType, name)
	}
}

// Profile is a profile record ready for encoding. The only implementations
// are LocalProfile, ICloudProfile and RemoteProfile.
type Profile interface {
	Name() string
	Config() string
	Type() ProfileType

	sealed()
}

// LocalProfile embeds its configuration and has no remote source
type LocalProfile struct {
	name   string
	config string
}

// NewLocalProfile creates a local profile
func NewLocalProfile(name, config string) (*LocalProfile, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &LocalProfile{name: name, config: config}, nil
}

func (p *LocalProfile) Name() string { return p.name }
func (p *LocalProfile) Config() string { return p.config }
func (p *LocalProfile) Type() ProfileType { return ProfileTypeLocal }

func (p *LocalProfile) sealed() {}

// ICloudProfile is sourced from a path in iCloud Drive
type ICloudProfile struct {
	name       string
	config     string
	remotePath string
}

// NewICloudProfile creates an iCloud profile. remotePath must not be empty.
func NewICloudProfile(name, config, remotePath string) (*ICloudProfile, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if remotePath == "" {
		return nil, ErrMissingRemotePath
	}
	return &ICloudProfile{name: name, config: config, remotePath: remotePath}, nil
}

func (p *ICloudProfile) Name() string { return p.name }
func (p *ICloudProfile) Config() string { return p.config }
func (p *ICloudProfile) Type() ProfileType { return ProfileTypeICloud }
func (p *ICloudProfile) RemotePath() string { return p.remotePath }

func (p *ICloudProfile) sealed() {}

// RemoteOptions holds the auto-update settings of a remote profile
type RemoteOptions struct {
	AutoUpdate         bool
	AutoUpdateInterval int32 // seconds
	LastUpdated        int64 // Unix seconds
}

// RemoteProfile is fetched from a URL and optionally refreshed
type RemoteProfile struct {
	name       string
	config     string
	remotePath string
	opts       RemoteOptions
}

// NewRemoteProfile creates a remote profile. remotePath must not be empty.
// Options are stored as given; a zero LastUpdated is encoded as zero.
func NewRemoteProfile(name, config, remotePath string, opts RemoteOptions) (*RemoteProfile, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if remotePath == "" {
		return nil, ErrMissingRemotePath
	}
	return &RemoteProfile{name: name, config: config, remotePath: remotePath, opts: opts}, nil
}

func (p *RemoteProfile) Name() string { return p.name }
func (p *RemoteProfile) Config() string { return p.config }
func (p *RemoteProfile) Type() ProfileType { return ProfileTypeRemote }
func (p *RemoteProfile) RemotePath() string { return p.remotePath }
func (p *RemoteProfile) AutoUpdate() bool { return p.opts.AutoUpdate }
func (p *RemoteProfile) AutoUpdateInterval() int32 { return p.opts.AutoUpdateInterval }
func (p *RemoteProfile) LastUpdated() int64 { return p.opts.LastUpdated }
func (p *RemoteProfile) Options() RemoteOptions { return p.opts }

func (p *RemoteProfile) sealed() {}

// NewProfile builds the profile variant selected by t. Fields that do not
// apply to t are ignored.
func NewProfile(t ProfileType, name, config, remotePath string, opts RemoteOptions) (Profile, error) {
	var (
		p   Profile
		err error
	)
	switch t {
	case ProfileTypeLocal:
		p, err = NewLocalProfile(name, config)
	case ProfileTypeICloud:
		p, err = NewICloudProfile(name, config, remotePath)
	case ProfileTypeRemote:
		p, err = NewRemoteProfile(name, config, remotePath, opts)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownProfileType, int32(t))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
