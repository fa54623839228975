package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timvideos/fwfetch/internal/listing"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/registry"
	"github.com/timvideos/fwfetch/internal/revision"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

const archiveURL = "https://api.example.test/repos/timvideos/HDMI2USB-firmware-prebuilt/contents/archive/master/"

// fakeArchive answers List from an in-memory tree keyed by path relative to
// the archive root, e.g. "v0.0.4-44-g0cd842f/opsis/".
type fakeArchive struct {
	tree  map[string][]listing.Entry
	calls []string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{tree: map[string][]listing.Entry{}}
}

func (f *fakeArchive) dirs(path string, names ...string) {
	for _, n := range names {
		f.tree[path] = append(f.tree[path], listing.Entry{Name: n, Type: listing.TypeDir})
	}
}

func (f *fakeArchive) files(path string, names ...string) {
	for _, n := range names {
		f.tree[path] = append(f.tree[path], listing.Entry{Name: n, Type: listing.TypeFile})
	}
}

func (f *fakeArchive) List(_ context.Context, url string, _ time.Duration) ([]listing.Entry, error) {
	rel := strings.TrimPrefix(url, archiveURL)
	f.calls = append(f.calls, rel)
	entries, ok := f.tree[rel]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", url, listing.ErrMissing)
	}
	return entries, nil
}

func mustParse(t *testing.T, s string) revision.Version {
	t.Helper()
	v, err := revision.Parse(s)
	require.NoError(t, err)
	return v
}

func noRegistry(context.Context) (*registry.Registry, error) {
	return nil, errors.New("registry must not be consulted")
}

func TestArchiveURL(t *testing.T) {
	got := ArchiveURL("https://api.github.com", "HDMI2USB-firmware-prebuilt", Selection{User: "timvideos", Branch: "master"})
	assert.Equal(t, "https://api.github.com/repos/timvideos/HDMI2USB-firmware-prebuilt/contents/archive/master/", got)
}

func TestRevisions_ParsesSortsAndSkipsJunk(t *testing.T) {
	fa := newFakeArchive()
	fa.dirs("", "v0.0.4-44-g0cd842f", "v0.0.4-9-gaaaaaaa", "not-a-rev", "v0.0.4-120-gbbbbbbb")
	fa.files("", "README.md")

	revs, err := Revisions(context.Background(), fa, archiveURL, time.Minute)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, "v0.0.4-9-gaaaaaaa", revs[0].String())
	assert.Equal(t, "v0.0.4-120-gbbbbbbb", revs[2].String())
}

func TestResolveRevision(t *testing.T) {
	known := []revision.Version{
		{Tag: "v0.0.4", Commits: 3, Hash: "a"},
		{Tag: "v0.0.4", Commits: 9, Hash: "b"},
		{Tag: "v0.0.4", Commits: 44, Hash: "c"},
	}
	ctx := context.Background()

	t.Run("latest channel picks newest", func(t *testing.T) {
		v, err := ResolveRevision(ctx, known, "", "unstable", noRegistry)
		require.NoError(t, err)
		assert.Equal(t, 44, v.Commits)
	})

	t.Run("explicit rev must be known", func(t *testing.T) {
		v, err := ResolveRevision(ctx, known, "v0.0.4-9-gb", "unstable", noRegistry)
		require.NoError(t, err)
		assert.Equal(t, known[1], v)

		_, err = ResolveRevision(ctx, known, "v0.0.4-10-gb", "unstable", noRegistry)
		var nf *RevisionNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 10, nf.Revision.Commits)
	})

	t.Run("malformed explicit rev", func(t *testing.T) {
		_, err := ResolveRevision(ctx, known, "garbage", "", noRegistry)
		assert.ErrorIs(t, err, revision.ErrMalformed)
	})

	t.Run("empty archive", func(t *testing.T) {
		_, err := ResolveRevision(ctx, nil, "", "unstable", noRegistry)
		assert.ErrorIs(t, err, ErrNoRevisions)
	})

	reg := &registry.Registry{Channels: map[string]revision.Version{"stable": known[0]}}
	load := func(context.Context) (*registry.Registry, error) { return reg, nil }

	t.Run("registry channel", func(t *testing.T) {
		v, err := ResolveRevision(ctx, known, "", "stable", load)
		require.NoError(t, err)
		assert.Equal(t, known[0], v)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := ResolveRevision(ctx, known, "", "testing", load)
		var cnf *ChannelNotFoundError
		require.ErrorAs(t, err, &cnf)
		assert.Equal(t, []string{"stable"}, cnf.Available)
	})
}

const (
	rev1 = "v0.0.4-1-g1111111"
	rev2 = "v0.0.4-2-g2222222"
	rev3 = "v0.0.4-3-g3333333"
)

func opsisTree() *fakeArchive {
	fa := newFakeArchive()
	fa.dirs(rev3+"/", "opsis")
	fa.dirs(rev3+"/opsis/", "hdmi2usb", "base")
	fa.dirs(rev3+"/opsis/hdmi2usb/", "lm32", "or1k")
	fa.files(rev3+"/opsis/hdmi2usb/lm32/", "bios.bin", "firmware.bin", "firmware.fbi", "gateware.bit")
	return fa
}

func TestResolve_HappyPath(t *testing.T) {
	fa := opsisTree()
	w := NewWalker(fa, archiveURL, 0)
	sel := Selection{Platform: "opsis", Target: "hdmi2usb", Arch: "lm32", Firmware: "firmware"}

	p, err := w.Resolve(context.Background(), sel, mustParse(t, rev3), nil)
	require.NoError(t, err)
	assert.Equal(t, "firmware.bin", p.Filename)
	assert.Equal(t, rev3, p.Revision.String())
	assert.Equal(t, []string{
		rev3 + "/",
		rev3 + "/opsis/",
		rev3 + "/opsis/hdmi2usb/",
		rev3 + "/opsis/hdmi2usb/lm32/",
	}, fa.calls)
}

func TestResolve_PicksFirstMatchingFirmware(t *testing.T) {
	fa := opsisTree()
	fa.tree[rev3+"/opsis/hdmi2usb/lm32/"] = nil
	fa.files(rev3+"/opsis/hdmi2usb/lm32/", "a-foo.bin", "b-foo.bin", "foo.txt")
	w := NewWalker(fa, archiveURL, 0)

	p, err := w.Resolve(context.Background(),
		Selection{Platform: "opsis", Target: "hdmi2usb", Arch: "lm32", Firmware: "foo"}, mustParse(t, rev3), nil)
	require.NoError(t, err)
	assert.Equal(t, "a-foo.bin", p.Filename)
}

func TestResolve_LevelErrors(t *testing.T) {
	rev := "v0.0.4-3-g3333333"
	cases := []struct {
		name string
		sel  Selection
		kind Kind
	}{
		{"platform", Selection{Platform: "atlys", Target: "hdmi2usb", Arch: "lm32", Firmware: "firmware"}, KindPlatform},
		{"arch", Selection{Platform: "opsis", Target: "hdmi2usb", Arch: "vexriscv", Firmware: "firmware"}, KindArch},
		{"firmware", Selection{Platform: "opsis", Target: "hdmi2usb", Arch: "lm32", Firmware: "zephyr"}, KindFirmware},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWalker(opsisTree(), archiveURL, 0)
			_, err := w.Resolve(context.Background(), tc.sel, mustParse(t, rev), nil)

			var nf *NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tc.kind, nf.Kind)
			assert.NotEmpty(t, nf.Available)
		})
	}
}

func TestResolve_TargetAtOlderRevision(t *testing.T) {
	fa := opsisTree()
	fa.dirs(rev2+"/", "opsis")
	fa.dirs(rev2+"/opsis/", "base")
	fa.dirs(rev1+"/", "opsis")
	fa.dirs(rev1+"/opsis/", "hdmi2usb", "zephyr")

	known := []revision.Version{mustParse(t, rev1), mustParse(t, rev2), mustParse(t, rev3)}
	w := NewWalker(fa, archiveURL, 0)
	sel := Selection{Platform: "opsis", Target: "zephyr", Arch: "lm32", Firmware: "firmware"}

	_, err := w.Resolve(context.Background(), sel, known[2], known)

	var moved *TargetMovedError
	require.ErrorAs(t, err, &moved)
	assert.Equal(t, rev3, moved.Requested.String())
	assert.Equal(t, rev1, moved.Found.String())
	assert.Contains(t, err.Error(), "--rev "+rev1)
	assert.NotContains(t, fa.calls, rev3+"/opsis/zephyr/", "the walk stops once the fallback is found")
}

func TestResolve_TargetNowhere(t *testing.T) {
	fa := opsisTree()
	fa.dirs(rev2+"/", "opsis")
	fa.dirs(rev2+"/opsis/", "base")

	known := []revision.Version{mustParse(t, rev2), mustParse(t, rev3)}
	w := NewWalker(fa, archiveURL, 0)

	_, err := w.Resolve(context.Background(),
		Selection{Platform: "opsis", Target: "zephyr", Arch: "lm32", Firmware: "firmware"}, known[1], known)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindTarget, nf.Kind)
	assert.Equal(t, []string{"hdmi2usb", "base"}, nf.Available)
}

func TestFindLastRevision_PlatformMissingIsTerminal(t *testing.T) {
	fa := opsisTree()
	fa.dirs(rev2+"/", "atlys")
	fa.dirs(rev1+"/", "opsis")
	fa.dirs(rev1+"/opsis/", "zephyr")

	known := []revision.Version{mustParse(t, rev1), mustParse(t, rev2), mustParse(t, rev3)}
	w := NewWalker(fa, archiveURL, 0)

	_, err := w.FindLastRevision(context.Background(), known, known[2], "opsis", "zephyr")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindPlatform, nf.Kind)
	assert.Equal(t, rev2, nf.Revision.String())
	assert.NotContains(t, fa.calls, rev1+"/", "older revisions are not visited")
}

func TestLookupTarget(t *testing.T) {
	w := NewWalker(opsisTree(), archiveURL, 0)
	rev := mustParse(t, rev3)

	got, err := w.LookupTarget(context.Background(), rev, "opsis", "hdmi2usb")
	require.NoError(t, err)
	assert.Equal(t, TargetFound, got.Status)

	got, err = w.LookupTarget(context.Background(), rev, "opsis", "zephyr")
	require.NoError(t, err)
	assert.Equal(t, TargetNotAtRevision, got.Status)
	assert.Equal(t, "not at revision", got.Status.String())
}

func TestErrorMessages(t *testing.T) {
	rev := revision.Version{Tag: "v0.0.4", Commits: 44, Hash: "0cd842f"}

	err := &NotFoundError{Kind: KindArch, Want: "or1k", Revision: rev, Context: "for target hdmi2usb for platform opsis", Available: []string{"lm32"}}
	assert.Equal(t, "did not find arch or1k for target hdmi2usb for platform opsis at rev v0.0.4-44-g0cd842f (found lm32)", err.Error())

	cerr := &ChannelNotFoundError{Channel: "beta"}
	assert.Equal(t, "did not find channel beta in the channel registry (found none)", cerr.Error())
}
