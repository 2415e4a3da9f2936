// SPDX-License-Identifier: MPL-2.0

package boxlite

import (
	"fmt"
	"strings"

	"boxlite-go/internal/backend"
)

// ErrInvalidOptions is the sentinel wrapped by option validation failures.
var ErrInvalidOptions = fmt.Errorf("%w: invalid box options", ErrBoxlite)

type (
	// VolumeMount maps a host path into the box.
	VolumeMount struct {
		HostPath  string
		GuestPath string
		ReadOnly  bool
	}

	// PortMapping exposes a guest port on the host. A zero HostPort asks
	// the backend for an ephemeral port; an empty Protocol means TCP.
	PortMapping struct {
		HostPort  int
		GuestPort int
		Protocol  string
	}

	// Options is the immutable configuration of a Box. It is captured at
	// construction and never changes after the backing box materializes.
	Options struct {
		// Image is the container image reference to run. Required.
		Image string

		// Name optionally names the box; it must be unique among live
		// boxes. Anonymous boxes get a generated name.
		Name string

		// CPUs limits the box to the given number of CPUs. Zero means
		// no limit.
		CPUs int

		// MemoryMiB limits the box's memory, in MiB. Zero means no limit.
		MemoryMiB int

		// WorkDir is the working directory for commands inside the box.
		WorkDir string

		// Env is the box-level environment. Keys are unique by
		// construction of the map.
		Env map[string]string

		// Volumes are host paths mounted into the box.
		Volumes []VolumeMount

		// Ports are guest ports exposed on the host.
		Ports []PortMapping

		// AutoRemove purges the box's persisted state when it stops.
		AutoRemove bool

		// Detach leaves the box running when a scoped acquisition ends,
		// instead of stopping it.
		Detach bool
	}
)

// DefaultOptions returns Options for the given image with the defaults the
// SDK documents: AutoRemove on, everything else zero.
func DefaultOptions(image string) Options {
	return Options{
		Image:      image,
		AutoRemove: true,
	}
}

// Validate checks the options for internal consistency.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Image) == "" {
		return fmt.Errorf("%w: image reference is required", ErrInvalidOptions)
	}
	if o.CPUs < 0 {
		return fmt.Errorf("%w: cpu count %d must not be negative", ErrInvalidOptions, o.CPUs)
	}
	if o.MemoryMiB < 0 {
		return fmt.Errorf("%w: memory size %d MiB must not be negative", ErrInvalidOptions, o.MemoryMiB)
	}
	for _, v := range o.Volumes {
		if v.HostPath == "" || v.GuestPath == "" {
			return fmt.Errorf("%w: volume mount needs both host and guest paths, got %q:%q",
				ErrInvalidOptions, v.HostPath, v.GuestPath)
		}
	}
	for _, p := range o.Ports {
		if p.GuestPort <= 0 || p.GuestPort > 65535 {
			return fmt.Errorf("%w: guest port %d out of range", ErrInvalidOptions, p.GuestPort)
		}
		if p.HostPort < 0 || p.HostPort > 65535 {
			return fmt.Errorf("%w: host port %d out of range", ErrInvalidOptions, p.HostPort)
		}
		if p.Protocol != "" && p.Protocol != "tcp" && p.Protocol != "udp" {
			return fmt.Errorf("%w: port protocol %q must be tcp or udp", ErrInvalidOptions, p.Protocol)
		}
	}
	return nil
}

// backendConfig translates Options into the runtime boundary's shape.
func (o Options) backendConfig() backend.BoxConfig {
	cfg := backend.BoxConfig{
		Image:      o.Image,
		Name:       o.Name,
		CPUs:       o.CPUs,
		MemoryMiB:  o.MemoryMiB,
		WorkDir:    o.WorkDir,
		Env:        o.Env,
		AutoRemove: o.AutoRemove,
	}
	for _, v := range o.Volumes {
		cfg.Volumes = append(cfg.Volumes, backend.VolumeMount(v))
	}
	for _, p := range o.Ports {
		cfg.Ports = append(cfg.Ports, backend.PortMapping(p))
	}
	return cfg
}
