package resolver

import (
	"fmt"
	"strings"

	"github.com/timvideos/fwfetch/internal/revision"
	"github.com/timvideos/fwfetch/internal/utils"
)

// Kind names the level of the archive tree a lookup failed at.
type Kind string

const (
	KindPlatform Kind = "platform"
	KindTarget   Kind = "target"
	KindArch     Kind = "arch"
	KindFirmware Kind = "firmware"
)

// NotFoundError is a terminal lookup failure at one level of the tree.
type NotFoundError struct {
	Kind      Kind
	Want      string
	Revision  revision.Version
	Context   string // e.g. "for target hdmi2usb for platform opsis"
	Available []string
}

func (e *NotFoundError) Error() string {
	where := ""
	if e.Context != "" {
		where = " " + e.Context
	}
	return fmt.Sprintf("did not find %s %s%s at rev %s (found %s)",
		e.Kind, e.Want, where, e.Revision, joinOrNone(e.Available))
}

type RevisionNotFoundError struct {
	Revision revision.Version
	Known    []revision.Version
}

func (e *RevisionNotFoundError) Error() string {
	newest := revision.Newest(e.Known)
	if len(newest) > 5 {
		newest = newest[:5]
	}
	names := utils.Map(newest, revision.Version.String)
	return fmt.Sprintf("revision %s is not found among %d known revisions (newest: %s)",
		e.Revision, len(e.Known), joinOrNone(names))
}

type ChannelNotFoundError struct {
	Channel   string
	Available []string
}

func (e *ChannelNotFoundError) Error() string {
	return fmt.Sprintf("did not find channel %s in the channel registry (found %s)", e.Channel, joinOrNone(e.Available))
}

// TargetMovedError reports a target that is missing at the requested
// revision but present at an older one. Resolution stops there; the user
// retries with --rev.
type TargetMovedError struct {
	Target    string
	Platform  string
	Requested revision.Version
	Found     revision.Version
}

func (e *TargetMovedError) Error() string {
	return fmt.Sprintf("target %s for platform %s is not available at rev %s; most recent revision with it is %s (retry with --rev %s)",
		e.Target, e.Platform, e.Requested, e.Found, e.Found)
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
