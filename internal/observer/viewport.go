package observer

import (
	"errors"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrUnknownRoot is returned when Options.Root names a container the service does not manage.
var ErrUnknownRoot = errors.New("unknown observation root")

// ErrInvalidThreshold is returned for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")

// Region is the vertical extent of a target on the page, in rows.
type Region struct {
	Top    int
	Height int
}

type registration struct {
	target     Target
	cb         Callback
	margin     Margin
	thresholds []float64

	known        bool
	intersecting bool
	bucket       int
}

// ViewportService computes intersections between page regions and a
// vertically scrolling window. It is driven from the event loop: callers
// update the layout with SetRegion and the window with SetViewport, and
// every call that can change geometry returns the batched callback commands.
type ViewportService struct {
	root   string
	offset int
	height int

	regions map[Target]Region
	regs    map[Handle]*registration
	next    Handle
}

// NewViewportService creates a service for the scroll container named root.
// Observers with an empty Options.Root also bind to it.
func NewViewportService(root string) *ViewportService {
	return &ViewportService{
		root:    root,
		regions: make(map[Target]Region),
		regs:    make(map[Handle]*registration),
	}
}

// Observe registers cb for target. The first entry is delivered on the next
// Refresh once both the window and the target's region are known.
func (s *ViewportService) Observe(target Target, cb Callback, opts Options) (Handle, error) {
	if opts.Root != "" && opts.Root != s.root {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRoot, opts.Root)
	}
	margin, err := ParseMargin(opts.RootMargin)
	if err != nil {
		return 0, err
	}
	thresholds := slices.Clone(opts.thresholds())
	for _, t := range thresholds {
		if t < 0 || t > 1 {
			return 0, fmt.Errorf("%w: %v", ErrInvalidThreshold, t)
		}
	}
	slices.Sort(thresholds)

	s.next++
	s.regs[s.next] = &registration{
		target:     target,
		cb:         cb,
		margin:     margin,
		thresholds: thresholds,
	}
	return s.next, nil
}

// Disconnect ends a session. Unknown handles are ignored.
func (s *ViewportService) Disconnect(h Handle) {
	delete(s.regs, h)
}

// Active returns the number of live sessions.
func (s *ViewportService) Active() int { return len(s.regs) }

// SetRegion records the layout of target. A non-positive height is kept as
// zero: such a target intersects only while its top row is inside the window.
func (s *ViewportService) SetRegion(target Target, r Region) {
	r.Height = max(r.Height, 0)
	s.regions[target] = r
}

// RemoveRegion forgets the layout of target. Sessions on it stay registered
// but receive no entries until the region is set again.
func (s *ViewportService) RemoveRegion(target Target) {
	delete(s.regions, target)
}

// Viewport returns the current window offset and height.
func (s *ViewportService) Viewport() (offset, height int) { return s.offset, s.height }

// SetViewport moves or resizes the window and refreshes every session.
func (s *ViewportService) SetViewport(offset, height int) tea.Cmd {
	s.offset = max(offset, 0)
	s.height = max(height, 0)
	return s.Refresh()
}

// Refresh evaluates all sessions and invokes callbacks whose state changed.
// Callbacks may disconnect or observe; the pass works on a snapshot of handles.
func (s *ViewportService) Refresh() tea.Cmd {
	if s.height == 0 {
		return nil
	}

	handles := make([]Handle, 0, len(s.regs))
	for h := range s.regs {
		handles = append(handles, h)
	}
	slices.Sort(handles)

	var cmds []tea.Cmd
	for _, h := range handles {
		reg, ok := s.regs[h]
		if !ok {
			continue
		}
		region, ok := s.regions[reg.target]
		if !ok {
			continue
		}

		ratio := s.ratio(region, reg.margin)
		bucket, intersecting := crossing(ratio, reg.thresholds)
		if reg.known && bucket == reg.bucket && intersecting == reg.intersecting {
			continue
		}
		reg.known = true
		reg.bucket = bucket
		reg.intersecting = intersecting

		if cmd := reg.cb(Entry{Target: reg.target, IsIntersecting: intersecting, Ratio: ratio}); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (s *ViewportService) ratio(r Region, m Margin) float64 {
	top := s.offset - m.TopRows(s.height)
	bottom := s.offset + s.height + m.BottomRows(s.height)
	if bottom <= top {
		return 0
	}

	if r.Height == 0 {
		if r.Top >= top && r.Top < bottom {
			return 1
		}
		return 0
	}

	visible := min(r.Top+r.Height, bottom) - max(r.Top, top)
	if visible <= 0 {
		return 0
	}
	return float64(visible) / float64(r.Height)
}

// crossing returns how many thresholds ratio has reached and whether that
// counts as intersecting. A zero threshold is reached by any visible row.
func crossing(ratio float64, thresholds []float64) (int, bool) {
	bucket := 0
	for _, t := range thresholds {
		if ratio >= t && (t > 0 || ratio > 0) {
			bucket++
		}
	}
	return bucket, bucket > 0
}
