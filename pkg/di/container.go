// Package di provides dependency injection container
package di

import (
	"io"
	"log/slog"
	"time"

	"github.com/ssargent/boxprofile/pkg/codec"
)

// Container holds all the dependencies for the application
type Container struct {
	codec  *codec.ProfileCodec
	logger *slog.Logger
	now    func() time.Time
}

// NewContainer creates a new dependency injection container with a
// default codec, a discarding logger and the wall clock
func NewContainer() *Container {
	return &Container{
		codec:  codec.NewProfileCodec(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
}

// GetCodec returns the profile codec
func (c *Container) GetCodec() *codec.ProfileCodec {
	return c.codec
}

// GetLogger returns the logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// Now returns the current time from the configured clock
func (c *Container) Now() time.Time {
	return c.now()
}

// SetCodec replaces the codec, e.g. after the compression level is configured
func (c *Container) SetCodec(profileCodec *codec.ProfileCodec) {
	c.codec = profileCodec
}

// SetLogger replaces the logger
func (c *Container) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// SetClock allows overriding the clock (for testing)
func (c *Container) SetClock(now func() time.Time) {
	c.now = now
}
